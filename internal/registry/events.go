package registry

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-agent-registry/internal/domain"
	"github.com/feral-file/ff-agent-registry/internal/logger"
	"github.com/feral-file/ff-agent-registry/internal/messaging"
	"github.com/feral-file/ff-agent-registry/internal/store/schema"
)

func newEntryEvent(source *schema.RegistrySource, entry *schema.RegistryEntry, eventType domain.EntryEventType, at time.Time) *domain.EntryEvent {
	return &domain.EntryEvent{
		Type:               eventType,
		Network:            source.Network,
		RegistryType:       source.Type,
		RegistryIdentifier: source.PolicyID(),
		AssetIdentifier:    entry.Identifier,
		EntryID:            entry.ID,
		Status:             entry.Status,
		OccurredAt:         at,
	}
}

// publishEntryEvent publishes the event; a broker failure never fails the write that produced it
func publishEntryEvent(ctx context.Context, publisher messaging.Publisher, event *domain.EntryEvent) {
	if err := publisher.PublishEntryEvent(ctx, event); err != nil {
		logger.WarnCtx(ctx, "Failed to publish entry event",
			zap.String("type", string(event.Type)),
			zap.String("asset", event.AssetIdentifier),
			zap.Uint64("entry_id", event.EntryID),
			zap.Error(err),
		)
	}
}
