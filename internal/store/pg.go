package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/feral-file/ff-agent-registry/internal/domain"
	"github.com/feral-file/ff-agent-registry/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// Zero values fall back to the defaults of NormalizeConnectionPoolSettings.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
//
// Defaults (when zero):
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
//
// Non-positive values are replaced by the defaults; MaxIdleConns is capped at MaxOpenConns.
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns <= 0 {
		maxOpenConns = 20
	}
	if maxIdleConns <= 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime <= 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime <= 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// Ping checks the database connection
func (s *pgStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// UpsertSource registers a source keyed by (type, network, identifier).
// A new source starts at page 1 with an epoch updated_at so the first sync always selects it.
func (s *pgStore) UpsertSource(ctx context.Context, input UpsertSourceInput) (*schema.RegistrySource, error) {
	now := time.Now()
	source := schema.RegistrySource{
		ID:         uuid.NewString(),
		Type:       input.Type,
		Network:    input.Network,
		APIKey:     input.APIKey,
		Identifier: input.Identifier,
		URL:        input.URL,
		Note:       input.Note,
		LatestPage: 1,
		CreatedAt:  now,
		UpdatedAt:  time.Unix(0, 0).UTC(),
	}

	err := s.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns:   []clause.Column{{Name: "type"}, {Name: "network"}, {Name: "identifier"}},
				DoUpdates: clause.AssignmentColumns([]string{"api_key", "url", "note"}),
			},
			clause.Returning{},
		).
		Create(&source).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert source: %w", err)
	}

	return &source, nil
}

// GetSourcesForSync retrieves sources whose last sync is at or before threshold, oldest registration first
func (s *pgStore) GetSourcesForSync(ctx context.Context, registryType domain.RegistryType, threshold time.Time) ([]*schema.RegistrySource, error) {
	var sources []*schema.RegistrySource
	err := s.db.WithContext(ctx).
		Where("type = ? AND identifier IS NOT NULL AND updated_at <= ?", registryType, threshold).
		Order("created_at ASC, id ASC").
		Find(&sources).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get sources for sync: %w", err)
	}

	return sources, nil
}

// GetSourcesWithIdentifier retrieves all sources of a type that have an identifier
func (s *pgStore) GetSourcesWithIdentifier(ctx context.Context, registryType domain.RegistryType) ([]*schema.RegistrySource, error) {
	var sources []*schema.RegistrySource
	err := s.db.WithContext(ctx).
		Where("type = ? AND identifier IS NOT NULL", registryType).
		Order("created_at ASC, id ASC").
		Find(&sources).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get sources with identifier: %w", err)
	}

	return sources, nil
}

// UpsertEntry inserts or updates an entry in one transaction:
//  1. find or create the capability by (name, version)
//  2. lock the existing entry row, if any
//  3. insert or update the entry, skipping DEREGISTERED rows
//  4. upsert the payment identifier for the entry's payment type
func (s *pgStore) UpsertEntry(ctx context.Context, input UpsertEntryInput) (*UpsertEntryResult, error) {
	var result *UpsertEntryResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Capability
		capability := schema.Capability{
			Name:        input.CapabilityName,
			Version:     input.CapabilityVersion,
			Description: input.CapabilityDescription,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}, {Name: "version"}},
			DoNothing: true,
		}).Create(&capability).Error; err != nil {
			return fmt.Errorf("failed to create capability: %w", err)
		}
		if capability.ID == 0 {
			if err := tx.Where("name = ? AND version = ?", input.CapabilityName, input.CapabilityVersion).
				First(&capability).Error; err != nil {
				return fmt.Errorf("failed to get capability: %w", err)
			}
		}

		// 2. Lock the existing row so concurrent upserts of the same asset serialize here
		var existing []schema.RegistryEntry
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("source_id = ? AND identifier = ?", input.SourceID, input.Identifier).
			Limit(1).
			Find(&existing).Error; err != nil {
			return fmt.Errorf("failed to lock entry: %w", err)
		}
		if len(existing) > 0 && existing[0].Deregistered() {
			return nil
		}

		// 3. Entry
		var uptime int64
		if input.Status == domain.EntryStatusOnline {
			uptime = 1
		}
		tags := input.Tags
		if tags == nil {
			tags = []string{}
		}
		now := time.Now()
		entry := schema.RegistryEntry{
			SourceID:           input.SourceID,
			Identifier:         input.Identifier,
			Name:               input.Name,
			Description:        input.Description,
			APIURL:             input.APIURL,
			CompanyName:        input.CompanyName,
			Image:              input.Image,
			AuthorName:         input.AuthorName,
			AuthorContact:      input.AuthorContact,
			AuthorOrganization: input.AuthorOrganization,
			PrivacyPolicy:      input.PrivacyPolicy,
			TermsAndCondition:  input.TermsAndCondition,
			OtherLegal:         input.OtherLegal,
			RequestsPerHour:    input.RequestsPerHour,
			Tags:               datatypes.JSONSlice[string](tags),
			Metadata:           datatypes.JSON(input.Metadata),
			Status:             input.Status,
			UptimeCount:        uptime,
			UptimeCheckCount:   1,
			LastUptimeCheck:    input.CheckedAt,
			CapabilityID:       &capability.ID,
			CreatedAt:          now,
			UpdatedAt:          now,
		}

		updates := clause.AssignmentColumns([]string{
			"name", "description", "api_url", "company_name", "image",
			"author_name", "author_contact", "author_organization",
			"privacy_policy", "terms_and_condition", "other_legal",
			"requests_per_hour", "tags", "metadata",
			"status", "last_uptime_check", "capability_id", "updated_at",
		})
		updates = append(updates,
			clause.Assignment{
				Column: clause.Column{Name: "uptime_count"},
				Value:  gorm.Expr("registry_entries.uptime_count + EXCLUDED.uptime_count"),
			},
			clause.Assignment{
				Column: clause.Column{Name: "uptime_check_count"},
				Value:  gorm.Expr("registry_entries.uptime_check_count + 1"),
			},
		)

		if err := tx.Omit(clause.Associations).
			Clauses(
				clause.OnConflict{
					Columns:   []clause.Column{{Name: "source_id"}, {Name: "identifier"}},
					DoUpdates: updates,
					Where: clause.Where{Exprs: []clause.Expression{
						clause.Expr{SQL: "registry_entries.status <> ?", Vars: []interface{}{domain.EntryStatusDeregistered}},
					}},
				},
				clause.Returning{},
			).
			Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to upsert entry: %w", err)
		}
		if entry.ID == 0 {
			// Conflict row is DEREGISTERED
			return nil
		}

		// 4. Payment identifier
		if input.PaymentAddress != "" {
			payment := schema.PaymentIdentifier{
				EntryID:     entry.ID,
				Address:     input.PaymentAddress,
				PaymentType: input.PaymentType,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "entry_id"}, {Name: "payment_type"}},
				DoUpdates: clause.AssignmentColumns([]string{"payment_identifier", "updated_at"}),
			}).Create(&payment).Error; err != nil {
				return fmt.Errorf("failed to upsert payment identifier: %w", err)
			}
		}

		loaded, err := s.loadEntry(tx, entry.ID)
		if err != nil {
			return err
		}

		result = &UpsertEntryResult{
			Entry:   loaded,
			Created: len(existing) == 0 && loaded.UptimeCheckCount == 1,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// UpsertDeregisteredEntry records a burned asset. A missing entry is created with empty descriptive
// fields and zero counters. An existing live entry only has its status changed.
func (s *pgStore) UpsertDeregisteredEntry(ctx context.Context, sourceID, identifier string, at time.Time) (*UpsertEntryResult, error) {
	if at.IsZero() {
		at = time.Now()
	}

	entry := schema.RegistryEntry{
		SourceID:        sourceID,
		Identifier:      identifier,
		Tags:            datatypes.JSONSlice[string]{},
		Status:          domain.EntryStatusDeregistered,
		LastUptimeCheck: at,
		CreatedAt:       at,
		UpdatedAt:       at,
	}

	err := s.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "source_id"}, {Name: "identifier"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"status":     domain.EntryStatusDeregistered,
					"updated_at": at,
				}),
				Where: clause.Where{Exprs: []clause.Expression{
					clause.Expr{SQL: "registry_entries.status <> ?", Vars: []interface{}{domain.EntryStatusDeregistered}},
				}},
			},
			clause.Returning{},
		).
		Create(&entry).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert deregistered entry: %w", err)
	}
	if entry.ID == 0 {
		return nil, nil
	}

	return &UpsertEntryResult{
		Entry:   &entry,
		Created: entry.UptimeCheckCount == 0,
	}, nil
}

// MarkEntryDeregistered sets a live entry to DEREGISTERED with a single-column update
func (s *pgStore) MarkEntryDeregistered(ctx context.Context, sourceID, identifier string) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&schema.RegistryEntry{}).
		Where("source_id = ? AND identifier = ? AND status <> ?", sourceID, identifier, domain.EntryStatusDeregistered).
		UpdateColumn("status", domain.EntryStatusDeregistered)
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark entry deregistered: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// GetLiveEntriesPage retrieves one keyset page of ONLINE/OFFLINE entries of a source
func (s *pgStore) GetLiveEntriesPage(ctx context.Context, sourceID string, after *LiveEntryCursor, limit int) ([]*schema.RegistryEntry, error) {
	query := s.db.WithContext(ctx).
		Where("source_id = ? AND status IN ?", sourceID, domain.LiveEntryStatuses)

	if after != nil {
		query = query.Where("(last_uptime_check, id) < (?, ?)", after.LastUptimeCheck, after.ID)
	}

	var entries []*schema.RegistryEntry
	err := query.
		Order("last_uptime_check DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get live entries: %w", err)
	}

	return entries, nil
}

// GetEntries retrieves entries matching the filter, ordered by id ascending with the
// source, capability and payment identifiers preloaded
func (s *pgStore) GetEntries(ctx context.Context, filter EntryQueryFilter) ([]*schema.RegistryEntry, error) {
	query := s.db.WithContext(ctx).
		Model(&schema.RegistryEntry{}).
		Select("registry_entries.*").
		Joins("JOIN registry_sources ON registry_sources.id = registry_entries.source_id")

	if filter.Network != "" {
		query = query.Where("registry_sources.network = ?", filter.Network)
	}

	statuses := filter.Statuses
	if len(statuses) == 0 {
		statuses = domain.LiveEntryStatuses
	}
	query = query.Where("registry_entries.status IN ?", statuses)

	if filter.RegistryIdentifier != nil {
		query = query.Where("registry_sources.identifier = ?", *filter.RegistryIdentifier)
	}

	if filter.AssetIdentifier != nil {
		query = query.Where("registry_entries.identifier = ?", *filter.AssetIdentifier)
	}

	if filter.CapabilityName != nil {
		query = query.
			Joins("JOIN capabilities ON capabilities.id = registry_entries.capability_id").
			Where("capabilities.name = ?", *filter.CapabilityName)
		if filter.CapabilityVersion != nil {
			query = query.Where("capabilities.version = ?", *filter.CapabilityVersion)
		}
	}

	if len(filter.Tags) > 0 {
		tagsJSON, err := json.Marshal(filter.Tags)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal tags filter: %w", err)
		}
		query = query.Where("registry_entries.tags @> ?::jsonb", string(tagsJSON))
	}

	preloadPayments := func(db *gorm.DB) *gorm.DB { return db.Order("payment_identifiers.id ASC") }
	if len(filter.PaymentTypes) > 0 {
		query = query.Where(`EXISTS (
			SELECT 1 FROM payment_identifiers pi
			WHERE pi.entry_id = registry_entries.id AND pi.payment_type IN ?
		)`, filter.PaymentTypes)
		preloadPayments = func(db *gorm.DB) *gorm.DB {
			return db.Where("payment_type IN ?", filter.PaymentTypes).Order("payment_identifiers.id ASC")
		}
	}

	if filter.Cursor != nil {
		query = query.Where("registry_entries.id > ?", *filter.Cursor)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = domain.DEFAULT_QUERY_LIMIT
	}

	var entries []*schema.RegistryEntry
	err := query.
		Preload("Source").
		Preload("Capability").
		Preload("PaymentIdentifiers", preloadPayments).
		Order("registry_entries.id ASC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get entries: %w", err)
	}

	return entries, nil
}

// GetEntryByIdentifier retrieves an entry by its source and asset identifier
func (s *pgStore) GetEntryByIdentifier(ctx context.Context, sourceID, identifier string) (*schema.RegistryEntry, error) {
	var entry schema.RegistryEntry
	err := s.db.WithContext(ctx).
		Preload("Source").
		Preload("Capability").
		Preload("PaymentIdentifiers").
		Where("source_id = ? AND identifier = ?", sourceID, identifier).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	return &entry, nil
}

// RecordHealthCheck folds a verdict into the entry's counters. DEREGISTERED entries are left untouched
// and returned as they are so callers can drop them.
func (s *pgStore) RecordHealthCheck(ctx context.Context, entryID uint64, status domain.EntryStatus, checkedAt time.Time) (*schema.RegistryEntry, error) {
	var uptime int64
	if status == domain.EntryStatusOnline {
		uptime = 1
	}

	var entry *schema.RegistryEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&schema.RegistryEntry{}).
			Where("id = ? AND status <> ?", entryID, domain.EntryStatusDeregistered).
			Updates(map[string]interface{}{
				"status":             status,
				"last_uptime_check":  checkedAt,
				"uptime_count":       gorm.Expr("uptime_count + ?", uptime),
				"uptime_check_count": gorm.Expr("uptime_check_count + 1"),
				"updated_at":         time.Now(),
			}).Error; err != nil {
			return fmt.Errorf("failed to record health check: %w", err)
		}

		loaded, err := s.loadEntry(tx, entryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		entry = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// loadEntry reads an entry with its relations inside the given transaction
func (s *pgStore) loadEntry(tx *gorm.DB, id uint64) (*schema.RegistryEntry, error) {
	var entry schema.RegistryEntry
	err := tx.
		Preload("Source").
		Preload("Capability").
		Preload("PaymentIdentifiers", func(db *gorm.DB) *gorm.DB { return db.Order("payment_identifiers.id ASC") }).
		Where("id = ?", id).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load entry: %w", err)
	}

	return &entry, nil
}
