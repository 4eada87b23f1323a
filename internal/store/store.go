package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/feral-file/ff-agent-registry/internal/domain"
	"github.com/feral-file/ff-agent-registry/internal/store/schema"
)

// UpsertSourceInput represents the data needed to register or refresh a registry source
type UpsertSourceInput struct {
	Type       domain.RegistryType
	Network    domain.Network
	APIKey     *string
	Identifier *string
	URL        *string
	Note       *string
}

// UpdateSourceCursorInput represents the cursor persisted after a completed sync of a source
type UpdateSourceCursorInput struct {
	SourceID string
	// Page is the last ledger page fetched
	Page int
	// LastIdentifier is the last asset seen on Page
	LastIdentifier *string
	// SyncedAt becomes the source's updated_at
	SyncedAt time.Time
}

// UpsertEntryInput represents a validated, probed asset ready to be materialized
type UpsertEntryInput struct {
	SourceID   string
	Identifier string

	Name               string
	Description        *string
	APIURL             string
	CompanyName        *string
	Image              *string
	AuthorName         *string
	AuthorContact      *string
	AuthorOrganization *string
	PrivacyPolicy      *string
	TermsAndCondition  *string
	OtherLegal         *string
	RequestsPerHour    *int64
	Tags               []string
	Metadata           json.RawMessage

	CapabilityName        string
	CapabilityVersion     string
	CapabilityDescription *string

	// PaymentAddress is the current top holder of the asset
	PaymentAddress string
	PaymentType    domain.PaymentType

	// Status is the probe verdict, ONLINE or OFFLINE
	Status    domain.EntryStatus
	CheckedAt time.Time
}

// UpsertEntryResult is the row written by an entry upsert
type UpsertEntryResult struct {
	Entry *schema.RegistryEntry
	// Created is true when the row did not exist before the upsert
	Created bool
}

// LiveEntryCursor is the keyset position used to page live entries of a source
type LiveEntryCursor struct {
	LastUptimeCheck time.Time
	ID              uint64
}

// EntryQueryFilter represents filtering options for registry entry queries
type EntryQueryFilter struct {
	Network            domain.Network
	PaymentTypes       []domain.PaymentType
	Statuses           []domain.EntryStatus
	RegistryIdentifier *string
	AssetIdentifier    *string
	Tags               []string
	CapabilityName     *string
	CapabilityVersion  *string
	// Cursor returns entries with id strictly greater than it
	Cursor *uint64
	Limit  int
}

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// UpsertSource registers a source or refreshes its credential, url and note.
	// Cursor state of an existing source is never touched.
	UpsertSource(ctx context.Context, input UpsertSourceInput) (*schema.RegistrySource, error)
	// GetSourcesForSync retrieves sources of a type with an identifier whose last sync is at or before threshold
	GetSourcesForSync(ctx context.Context, registryType domain.RegistryType, threshold time.Time) ([]*schema.RegistrySource, error)
	// GetSourcesWithIdentifier retrieves all sources of a type that have an identifier
	GetSourcesWithIdentifier(ctx context.Context, registryType domain.RegistryType) ([]*schema.RegistrySource, error)
	// GetSourceByID retrieves a source by its id
	GetSourceByID(ctx context.Context, id string) (*schema.RegistrySource, error)
	// UpdateSourceCursor persists the paging cursor and marks the source as synced
	UpdateSourceCursor(ctx context.Context, input UpdateSourceCursorInput) error

	// UpsertEntry inserts or updates an entry with its capability and payment identifier in one transaction.
	// Returns nil when the entry is DEREGISTERED.
	UpsertEntry(ctx context.Context, input UpsertEntryInput) (*UpsertEntryResult, error)
	// UpsertDeregisteredEntry creates an entry directly as DEREGISTERED or moves an existing entry there.
	// Returns nil when the entry was already DEREGISTERED.
	UpsertDeregisteredEntry(ctx context.Context, sourceID, identifier string, at time.Time) (*UpsertEntryResult, error)
	// MarkEntryDeregistered sets the status of a live entry to DEREGISTERED and reports whether it changed
	MarkEntryDeregistered(ctx context.Context, sourceID, identifier string) (bool, error)
	// GetLiveEntriesPage retrieves ONLINE/OFFLINE entries of a source ordered by last_uptime_check and id descending
	GetLiveEntriesPage(ctx context.Context, sourceID string, after *LiveEntryCursor, limit int) ([]*schema.RegistryEntry, error)
	// GetEntries retrieves entries matching the filter ordered by id ascending
	GetEntries(ctx context.Context, filter EntryQueryFilter) ([]*schema.RegistryEntry, error)
	// GetEntryByIdentifier retrieves an entry by its source and asset identifier
	GetEntryByIdentifier(ctx context.Context, sourceID, identifier string) (*schema.RegistryEntry, error)
	// RecordHealthCheck folds a probe verdict into a non-deregistered entry and returns the current row
	RecordHealthCheck(ctx context.Context, entryID uint64, status domain.EntryStatus, checkedAt time.Time) (*schema.RegistryEntry, error)

	// Ping checks the database connection
	Ping(ctx context.Context) error
}
