package jetstream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	natsjs "github.com/nats-io/nats.go/jetstream"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-agent-registry/internal/adapter"
	"github.com/feral-file/ff-agent-registry/internal/domain"
	"github.com/feral-file/ff-agent-registry/internal/logger"
	"github.com/feral-file/ff-agent-registry/internal/messaging"
)

// SubjectWildcard matches every entry event subject
const SubjectWildcard = "registry.>"

// Config holds the configuration for NATS JetStream connection
type Config struct {
	URL            string
	StreamName     string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
}

type publisher struct {
	nc adapter.NatsConn
	js adapter.JetStream
}

// NewPublisher connects to NATS, makes sure the event stream exists and returns a JetStream publisher
func NewPublisher(ctx context.Context, cfg Config, natsJS adapter.NatsJetStream) (messaging.Publisher, error) {
	opts := []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(fmt.Errorf("disconnected from NATS: %w", err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, js, err := natsJS.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	if cfg.StreamName != "" {
		if err := js.EnsureStream(ctx, cfg.StreamName, []string{SubjectWildcard}); err != nil {
			nc.Close()
			return nil, fmt.Errorf("failed to ensure stream %s: %w", cfg.StreamName, err)
		}
	}

	return &publisher{
		nc: nc,
		js: js,
	}, nil
}

// PublishEntryEvent publishes an entry event on its network/type subject.
// Events without an id get a ULID, which also serves as the JetStream dedup id.
func (p *publisher) PublishEntryEvent(ctx context.Context, event *domain.EntryEvent) error {
	if event.ID == "" {
		event.ID = ulid.Make().String()
	}
	if !event.Valid() {
		return fmt.Errorf("invalid entry event: %s %s", event.Type, event.AssetIdentifier)
	}

	logger.DebugCtx(ctx, "Publishing entry event",
		zap.String("subject", event.Subject()),
		zap.String("asset", event.AssetIdentifier),
	)

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := p.js.Publish(ctx, event.Subject(), data, natsjs.WithMsgID(event.ID)); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Close drains and closes the NATS connection
func (p *publisher) Close() {
	if p.nc == nil {
		return
	}

	if err := p.nc.Drain(); err != nil {
		logger.Warn("Failed to drain NATS connection", zap.Error(err))
		p.nc.Close()
	}
}
