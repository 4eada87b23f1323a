package dto

import (
	"time"

	"github.com/feral-file/ff-agent-registry/internal/domain"
	"github.com/feral-file/ff-agent-registry/internal/store/schema"
)

// RegistryProvenanceResponse identifies the registry an entry was found in
type RegistryProvenanceResponse struct {
	Type       domain.RegistryType `json:"type"`
	Identifier *string             `json:"identifier"`
	URL        *string             `json:"url"`
}

// CapabilityResponse represents the capability an entry advertises
type CapabilityResponse struct {
	Name        string  `json:"name"`
	Version     string  `json:"version"`
	Description *string `json:"description"`
}

// AuthorResponse represents the optional author block of an entry
type AuthorResponse struct {
	Name         *string `json:"name"`
	Contact      *string `json:"contact"`
	Organization *string `json:"organization"`
}

// LegalResponse represents the optional legal block of an entry
type LegalResponse struct {
	PrivacyPolicy *string `json:"privacy_policy"`
	Terms         *string `json:"terms"`
	Other         *string `json:"other"`
}

// PaymentIdentifierResponse represents an address payments to the entry settle on
type PaymentIdentifierResponse struct {
	PaymentIdentifier string             `json:"payment_identifier"`
	PaymentType       domain.PaymentType `json:"payment_type"`
}

// RegistryEntryResponse represents a registry entry in API responses
type RegistryEntryResponse struct {
	ID                 string                      `json:"id"`
	AssetIdentifier    string                      `json:"asset_identifier"`
	Registry           RegistryProvenanceResponse  `json:"registry"`
	Name               string                      `json:"name"`
	Description        *string                     `json:"description"`
	APIURL             string                      `json:"api_url"`
	CompanyName        *string                     `json:"company_name"`
	Image              *string                     `json:"image"`
	Author             AuthorResponse              `json:"author"`
	Legal              LegalResponse               `json:"legal"`
	RequestsPerHour    *int64                      `json:"requests_per_hour"`
	Tags               []string                    `json:"tags"`
	Capability         *CapabilityResponse         `json:"capability"`
	Status             domain.EntryStatus          `json:"status"`
	LastUptimeCheck    time.Time                   `json:"last_uptime_check"`
	UptimeCount        int64                       `json:"uptime_count"`
	UptimeCheckCount   int64                       `json:"uptime_check_count"`
	PaymentIdentifiers []PaymentIdentifierResponse `json:"payment_identifiers"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
}

// MapEntryToDTO maps a schema.RegistryEntry to RegistryEntryResponse
func MapEntryToDTO(entry *schema.RegistryEntry) *RegistryEntryResponse {
	tags := []string(entry.Tags)
	if tags == nil {
		tags = []string{}
	}

	resp := &RegistryEntryResponse{
		ID:              FormatCursor(entry.ID),
		AssetIdentifier: entry.Identifier,
		Name:            entry.Name,
		Description:     entry.Description,
		APIURL:          entry.APIURL,
		CompanyName:     entry.CompanyName,
		Image:           entry.Image,
		Author: AuthorResponse{
			Name:         entry.AuthorName,
			Contact:      entry.AuthorContact,
			Organization: entry.AuthorOrganization,
		},
		Legal: LegalResponse{
			PrivacyPolicy: entry.PrivacyPolicy,
			Terms:         entry.TermsAndCondition,
			Other:         entry.OtherLegal,
		},
		RequestsPerHour:    entry.RequestsPerHour,
		Tags:               tags,
		Status:             entry.Status,
		LastUptimeCheck:    entry.LastUptimeCheck,
		UptimeCount:        entry.UptimeCount,
		UptimeCheckCount:   entry.UptimeCheckCount,
		PaymentIdentifiers: make([]PaymentIdentifierResponse, 0, len(entry.PaymentIdentifiers)),
		CreatedAt:          entry.CreatedAt,
		UpdatedAt:          entry.UpdatedAt,
	}

	if entry.Source != nil {
		resp.Registry = RegistryProvenanceResponse{
			Type:       entry.Source.Type,
			Identifier: entry.Source.Identifier,
			URL:        entry.Source.URL,
		}
	}

	if entry.Capability != nil {
		resp.Capability = &CapabilityResponse{
			Name:        entry.Capability.Name,
			Version:     entry.Capability.Version,
			Description: entry.Capability.Description,
		}
	}

	for _, p := range entry.PaymentIdentifiers {
		resp.PaymentIdentifiers = append(resp.PaymentIdentifiers, PaymentIdentifierResponse{
			PaymentIdentifier: p.Address,
			PaymentType:       p.PaymentType,
		})
	}

	return resp
}
