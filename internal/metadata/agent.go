package metadata

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/feral-file/ff-agent-registry/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Validate String fields by their normalized value
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if s, ok := field.Interface().(String); ok {
			return s.First()
		}
		return nil
	}, String{})
	// required only checks that a pointer is set; notblank checks the value behind it
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

// Author describes who operates a registered service
type Author struct {
	Name         *String
	Contact      *String
	Organization *String
}

// Legal links to the legal documents of a registered service
type Legal struct {
	PrivacyPolicy *String
	Terms         *String
	Other         *String
}

// AgentMetadata is the on-chain metadata attached to a registry asset
type AgentMetadata struct {
	Name                  *string `json:"name" validate:"required,notblank"`
	Description           *String `json:"description"`
	APIURL                *String `json:"api_url" validate:"required,notblank,url"`
	CapabilityName        *String `json:"capability_name" validate:"required,notblank"`
	CapabilityVersion     *string `json:"capability_version" validate:"required,notblank"`
	CapabilityDescription *String `json:"capability_description"`
	CompanyName           *String `json:"company_name"`

	// Descriptive extras; malformed values are ignored rather than rejected
	Image           *String         `json:"-"`
	Tags            *String         `json:"-"`
	Author          *Author         `json:"-"`
	Legal           *Legal          `json:"-"`
	RequestsPerHour json.RawMessage `json:"-"`
}

// Parse decodes and validates on-chain metadata. Any error wraps
// domain.ErrInvalidMetadata: the asset is not a registrable service.
func Parse(raw json.RawMessage) (*AgentMetadata, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, fmt.Errorf("%w: metadata is empty", domain.ErrInvalidMetadata)
	}

	var m AgentMetadata
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidMetadata, err)
	}

	if err := validate.Struct(&m); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidMetadata, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err == nil {
		m.Image = lenientString(fields["image"])
		m.Tags = lenientString(fields["tags"])
		m.RequestsPerHour = fields["requests_per_hour"]
		m.Author = parseAuthor(fields["author"])
		m.Legal = parseLegal(fields["legal"])
	}

	return &m, nil
}

func lenientString(raw json.RawMessage) *String {
	if len(raw) == 0 {
		return nil
	}
	var s String
	if err := json.Unmarshal(raw, &s); err != nil || s == nil {
		return nil
	}
	return &s
}

func parseAuthor(raw json.RawMessage) *Author {
	var fields map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &fields) != nil {
		return nil
	}
	return &Author{
		Name:         lenientString(fields["name"]),
		Contact:      lenientString(fields["contact"]),
		Organization: lenientString(fields["organization"]),
	}
}

func parseLegal(raw json.RawMessage) *Legal {
	var fields map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &fields) != nil {
		return nil
	}
	privacy := lenientString(fields["privacy_policy"])
	if privacy == nil {
		// registry guidelines spell this key with a space
		privacy = lenientString(fields["privacy policy"])
	}
	return &Legal{
		PrivacyPolicy: privacy,
		Terms:         lenientString(fields["terms"]),
		Other:         lenientString(fields["other"]),
	}
}

// Endpoint returns the normalized API URL
func (m *AgentMetadata) Endpoint() string {
	return m.APIURL.First()
}

// Capability returns the normalized capability name and version
func (m *AgentMetadata) Capability() (name string, version string) {
	return strings.TrimSpace(m.CapabilityName.First()), strings.TrimSpace(*m.CapabilityVersion)
}

// Organization returns the company name, falling back to the author's organization
func (m *AgentMetadata) Organization() *string {
	if name := Normalize(m.CompanyName); name != nil {
		return name
	}
	if m.Author != nil {
		return Normalize(m.Author.Organization)
	}
	return nil
}

// TagList returns every tag with surrounding whitespace removed; empty tags are dropped
func (m *AgentMetadata) TagList() []string {
	if m.Tags == nil {
		return nil
	}
	tags := make([]string, 0, len(*m.Tags))
	for _, t := range *m.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// RequestsPerHourValue returns requests_per_hour when it is a non-negative
// integer or a numeric string
func (m *AgentMetadata) RequestsPerHourValue() *int64 {
	raw := strings.TrimSpace(string(m.RequestsPerHour))
	if raw == "" || raw == "null" {
		return nil
	}

	var asString string
	if err := json.Unmarshal(m.RequestsPerHour, &asString); err == nil {
		raw = strings.TrimSpace(asString)
	}

	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if v < 0 {
			return nil
		}
		return &v
	}

	// Fractions and exponents are truncated; anything outside int64 is rejected
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || f < 0 || f >= math.MaxInt64 {
		return nil
	}
	v := int64(f)
	return &v
}

// AuthorField returns a normalized author attribute, or nil when absent
func (m *AgentMetadata) AuthorField(pick func(*Author) *String) *string {
	if m.Author == nil {
		return nil
	}
	return Normalize(pick(m.Author))
}

// LegalField returns a normalized legal attribute, or nil when absent
func (m *AgentMetadata) LegalField(pick func(*Legal) *String) *string {
	if m.Legal == nil {
		return nil
	}
	return Normalize(pick(m.Legal))
}
