package messaging

import (
	"context"

	"github.com/feral-file/ff-agent-registry/internal/domain"
)

// Publisher defines the interface for publishing entry lifecycle events to the message broker
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishEntryEvent publishes an entry lifecycle event
	PublishEntryEvent(ctx context.Context, event *domain.EntryEvent) error
	// Close closes the connection
	Close()
}

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops every event, used when no broker is configured
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) PublishEntryEvent(ctx context.Context, event *domain.EntryEvent) error {
	return nil
}

func (noopPublisher) Close() {}
