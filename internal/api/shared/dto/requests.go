package dto

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apierrors "github.com/feral-file/ff-agent-registry/internal/api/shared/errors"
	"github.com/feral-file/ff-agent-registry/internal/domain"
	"github.com/feral-file/ff-agent-registry/internal/registry"
)

// CapabilityFilter selects entries by capability name and optional version
type CapabilityFilter struct {
	Name    string  `json:"name"`
	Version *string `json:"version,omitempty"`
}

// EntryFilter holds the optional entry filters of a query
type EntryFilter struct {
	PaymentTypes       []domain.PaymentType `json:"payment_types,omitempty"`
	Statuses           []domain.EntryStatus `json:"statuses,omitempty"`
	RegistryIdentifier *string              `json:"registry_identifier,omitempty"`
	AssetIdentifier    *string              `json:"asset_identifier,omitempty"`
	Tags               []string             `json:"tags,omitempty"`
	Capability         *CapabilityFilter    `json:"capability,omitempty"`
}

// QueryEntriesRequest is the body of POST /api/v1/registry-entries/query
type QueryEntriesRequest struct {
	Network            domain.Network `json:"network"`
	Limit              *int           `json:"limit,omitempty"`
	Cursor             *string        `json:"cursor,omitempty"`
	Filter             *EntryFilter   `json:"filter,omitempty"`
	MinRegistryDate    *time.Time     `json:"min_registry_date,omitempty"`
	MinHealthCheckDate *time.Time     `json:"min_health_check_date,omitempty"`
}

// Validate validates the request
func (r *QueryEntriesRequest) Validate() error {
	if !domain.IsValidNetwork(r.Network) {
		return apierrors.NewValidationError(fmt.Sprintf("invalid network: %q", r.Network))
	}

	if r.Limit != nil && (*r.Limit < 1 || *r.Limit > domain.MAX_QUERY_LIMIT) {
		return apierrors.NewValidationError(fmt.Sprintf("limit must be between 1 and %d", domain.MAX_QUERY_LIMIT))
	}

	if r.Cursor != nil {
		if _, err := parseCursor(*r.Cursor); err != nil {
			return apierrors.NewValidationError("invalid cursor")
		}
	}

	if r.Filter == nil {
		return nil
	}

	for _, status := range r.Filter.Statuses {
		if !domain.IsValidEntryStatus(status) {
			return apierrors.NewValidationError(fmt.Sprintf("invalid status: %q", status))
		}
	}

	if r.Filter.Capability != nil && strings.TrimSpace(r.Filter.Capability.Name) == "" {
		return apierrors.NewValidationError("capability name is required when filtering by capability")
	}

	return nil
}

// ToQueryInput converts a validated request into the registry query input
func (r *QueryEntriesRequest) ToQueryInput() registry.QueryInput {
	input := registry.QueryInput{
		Network:            r.Network,
		MinRegistryDate:    r.MinRegistryDate,
		MinHealthCheckDate: r.MinHealthCheckDate,
	}

	if r.Limit != nil {
		input.Limit = *r.Limit
	}

	if r.Cursor != nil {
		if cursor, err := parseCursor(*r.Cursor); err == nil {
			input.Cursor = &cursor
		}
	}

	if r.Filter != nil {
		input.Filter = registry.QueryFilter{
			PaymentTypes:       r.Filter.PaymentTypes,
			Statuses:           r.Filter.Statuses,
			RegistryIdentifier: r.Filter.RegistryIdentifier,
			AssetIdentifier:    r.Filter.AssetIdentifier,
			Tags:               r.Filter.Tags,
		}
		if r.Filter.Capability != nil {
			name := strings.TrimSpace(r.Filter.Capability.Name)
			input.Filter.CapabilityName = &name
			input.Filter.CapabilityVersion = r.Filter.Capability.Version
		}
	}

	return input
}

func parseCursor(s string) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(s), 10, 64)
}

// FormatCursor renders an entry id as an opaque cursor string
func FormatCursor(id uint64) string {
	return strconv.FormatUint(id, 10)
}
