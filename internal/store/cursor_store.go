package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/feral-file/ff-agent-registry/internal/store/schema"
)

// GetSourceByID retrieves a source by its id
func (s *pgStore) GetSourceByID(ctx context.Context, id string) (*schema.RegistrySource, error) {
	var source schema.RegistrySource
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&source).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get source: %w", err)
	}

	return &source, nil
}

// UpdateSourceCursor stores the last fetched page and identifier of a source in a single write
func (s *pgStore) UpdateSourceCursor(ctx context.Context, input UpdateSourceCursorInput) error {
	page := input.Page
	if page < 1 {
		page = 1
	}

	syncedAt := input.SyncedAt
	if syncedAt.IsZero() {
		syncedAt = time.Now()
	}

	result := s.db.WithContext(ctx).
		Model(&schema.RegistrySource{}).
		Where("id = ?", input.SourceID).
		Updates(map[string]interface{}{
			"latest_page":       page,
			"latest_identifier": input.LastIdentifier,
			"updated_at":        syncedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update source cursor: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update source cursor: source %s not found", input.SourceID)
	}

	return nil
}
