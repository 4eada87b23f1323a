package schema

import (
	"time"

	"github.com/feral-file/ff-agent-registry/internal/domain"
)

// RegistrySource represents the registry_sources table - one configured ledger registry
type RegistrySource struct {
	// ID is a UUID assigned on creation
	ID string `gorm:"column:id;primaryKey;type:uuid"`
	// Type is the ledger registry type, e.g. WEB3_CARDANO_V1
	Type domain.RegistryType `gorm:"column:type;not null;type:text"`
	// Network selects the ledger network the source lives on
	Network domain.Network `gorm:"column:network;not null;type:text"`
	// APIKey is the ledger API credential used for this source
	APIKey *string `gorm:"column:api_key;type:text"`
	// Identifier is the issuing policy id; sources without one are never synced
	Identifier *string `gorm:"column:identifier;type:text"`
	URL        *string `gorm:"column:url;type:text"`
	Note       *string `gorm:"column:note;type:text"`
	// LatestPage is the last ledger page fetched by a completed sync (1-based)
	LatestPage int `gorm:"column:latest_page;not null;default:1"`
	// LatestIdentifier is the last asset seen on LatestPage
	LatestIdentifier *string `gorm:"column:latest_identifier;type:text"`
	// CreatedAt is the timestamp when this source was registered
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt doubles as the last successful sync time
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the RegistrySource model
func (RegistrySource) TableName() string {
	return "registry_sources"
}

// PolicyID returns the issuing policy id, or "" when unset
func (s *RegistrySource) PolicyID() string {
	if s.Identifier == nil {
		return ""
	}
	return *s.Identifier
}

// Credential returns the ledger API credential, or "" when unset
func (s *RegistrySource) Credential() string {
	if s.APIKey == nil {
		return ""
	}
	return *s.APIKey
}
