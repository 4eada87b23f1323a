package schema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/feral-file/ff-agent-registry/internal/domain"
)

// RegistryEntry represents the registry_entries table - one registered service mirrored from the ledger
type RegistryEntry struct {
	// ID is an auto-incrementing sequence number, also used as the query cursor
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// SourceID references the registry source the asset was found under
	SourceID string `gorm:"column:source_id;not null;type:uuid"`
	// Identifier is the ledger asset id, unique per source
	Identifier string `gorm:"column:identifier;not null;type:text"`

	Name               string  `gorm:"column:name;not null;type:text"`
	Description        *string `gorm:"column:description;type:text"`
	APIURL             string  `gorm:"column:api_url;not null;type:text"`
	CompanyName        *string `gorm:"column:company_name;type:text"`
	Image              *string `gorm:"column:image;type:text"`
	AuthorName         *string `gorm:"column:author_name;type:text"`
	AuthorContact      *string `gorm:"column:author_contact;type:text"`
	AuthorOrganization *string `gorm:"column:author_organization;type:text"`
	PrivacyPolicy      *string `gorm:"column:privacy_policy;type:text"`
	TermsAndCondition  *string `gorm:"column:terms_and_condition;type:text"`
	OtherLegal         *string `gorm:"column:other_legal;type:text"`
	RequestsPerHour    *int64  `gorm:"column:requests_per_hour"`
	// Tags is a JSON array of strings
	Tags datatypes.JSONSlice[string] `gorm:"column:tags;type:jsonb"`
	// Metadata is the raw on-chain metadata the entry was built from
	Metadata datatypes.JSON `gorm:"column:metadata;type:jsonb"`

	// Status is ONLINE/OFFLINE from the last probe, or the terminal DEREGISTERED
	Status domain.EntryStatus `gorm:"column:status;not null;type:text"`
	// UptimeCount is the number of successful probes
	UptimeCount int64 `gorm:"column:uptime_count;not null;default:0"`
	// UptimeCheckCount is the total number of probes
	UptimeCheckCount int64     `gorm:"column:uptime_check_count;not null;default:0"`
	LastUptimeCheck  time.Time `gorm:"column:last_uptime_check;not null;default:now();type:timestamptz"`
	// CapabilityID is NULL for entries created directly as deregistered
	CapabilityID *uint64 `gorm:"column:capability_id"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`

	Source             *RegistrySource     `gorm:"foreignKey:SourceID"`
	Capability         *Capability         `gorm:"foreignKey:CapabilityID"`
	PaymentIdentifiers []PaymentIdentifier `gorm:"foreignKey:EntryID"`
}

// TableName specifies the table name for the RegistryEntry model
func (RegistryEntry) TableName() string {
	return "registry_entries"
}

// Deregistered reports whether the entry reached its terminal state
func (e *RegistryEntry) Deregistered() bool {
	return e.Status == domain.EntryStatusDeregistered
}
