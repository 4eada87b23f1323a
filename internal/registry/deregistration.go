package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-agent-registry/internal/adapter"
	"github.com/feral-file/ff-agent-registry/internal/domain"
	"github.com/feral-file/ff-agent-registry/internal/logger"
	"github.com/feral-file/ff-agent-registry/internal/messaging"
	"github.com/feral-file/ff-agent-registry/internal/providers/cardano"
	"github.com/feral-file/ff-agent-registry/internal/store"
	"github.com/feral-file/ff-agent-registry/internal/store/schema"
)

type deregistrar struct {
	store     store.Store
	clients   cardano.ClientFactory
	publisher messaging.Publisher
	guard     *Guard
	clock     adapter.Clock
	pageSize  int
}

// NewDeregistrar creates the deregistration sweep
func NewDeregistrar(
	st store.Store,
	clients cardano.ClientFactory,
	publisher messaging.Publisher,
	guard *Guard,
	clock adapter.Clock,
	pageSize int,
) Deregistrar {
	if pageSize <= 0 {
		pageSize = domain.SWEEP_PAGE_SIZE
	}
	return &deregistrar{
		store:     st,
		clients:   clients,
		publisher: publisher,
		guard:     guard,
		clock:     clock,
		pageSize:  pageSize,
	}
}

// Sweep checks every live entry against the ledger and retires the burned ones
func (d *deregistrar) Sweep(ctx context.Context) error {
	sources, err := d.store.GetSourcesWithIdentifier(ctx, domain.RegistryTypeCardanoV1)
	if err != nil {
		return fmt.Errorf("failed to get sources: %w", err)
	}
	if len(sources) == 0 {
		return nil
	}

	return d.guard.Do(ctx, func(ctx context.Context) error {
		return d.sweepSources(ctx, sources)
	}, nil)
}

func (d *deregistrar) sweepSources(ctx context.Context, sources []*schema.RegistrySource) error {
	pool := pond.NewPool(len(sources), pond.WithContext(ctx))
	defer pool.StopAndWait()

	group := pool.NewGroup()
	for _, source := range sources {
		group.Submit(func() {
			sourceCtx := logger.WithFields(ctx, zap.String("source_id", source.ID))
			retired, err := d.sweepSource(sourceCtx, source)
			if err != nil {
				logger.ErrorCtx(sourceCtx, fmt.Errorf("failed to sweep source: %w", err))
				return
			}
			logger.InfoCtx(sourceCtx, "Source swept", zap.Int("deregistered", retired))
		})
	}

	if err := group.Wait(); err != nil {
		logger.WarnCtx(ctx, "Deregistration sweep interrupted", zap.Error(err))
	}

	return nil
}

// sweepSource walks the live entries of a source newest-checked first and returns how many were retired
func (d *deregistrar) sweepSource(ctx context.Context, source *schema.RegistrySource) (int, error) {
	client, err := d.clients.ForSource(source.Network, source.Credential())
	if err != nil {
		return 0, fmt.Errorf("failed to create ledger client: %w", err)
	}

	retired := 0
	var cursor *store.LiveEntryCursor
	for {
		entries, err := d.store.GetLiveEntriesPage(ctx, source.ID, cursor, d.pageSize)
		if err != nil {
			return retired, fmt.Errorf("failed to get live entries: %w", err)
		}

		for _, entry := range entries {
			changed, err := d.sweepEntry(ctx, client, source, entry)
			if err != nil {
				return retired, err
			}
			if changed {
				retired++
			}
		}

		if len(entries) < d.pageSize {
			return retired, nil
		}

		tail := entries[len(entries)-1]
		cursor = &store.LiveEntryCursor{LastUptimeCheck: tail.LastUptimeCheck, ID: tail.ID}
	}
}

func (d *deregistrar) sweepEntry(ctx context.Context, client cardano.Client, source *schema.RegistrySource, entry *schema.RegistryEntry) (bool, error) {
	asset, err := client.GetAsset(ctx, entry.Identifier)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.WarnCtx(ctx, "Entry asset is unknown to the ledger API", zap.String("asset", entry.Identifier))
			return false, nil
		}
		return false, fmt.Errorf("failed to get asset %s: %w", entry.Identifier, err)
	}

	if asset.Quantity != domain.BURNED_QUANTITY {
		return false, nil
	}

	changed, err := d.store.MarkEntryDeregistered(ctx, source.ID, entry.Identifier)
	if err != nil {
		return false, fmt.Errorf("failed to mark entry deregistered: %w", err)
	}
	if !changed {
		return false, nil
	}

	entry.Status = domain.EntryStatusDeregistered
	logger.InfoCtx(ctx, "Entry deregistered", zap.String("asset", entry.Identifier), zap.Uint64("entry_id", entry.ID))
	publishEntryEvent(ctx, d.publisher, newEntryEvent(source, entry, domain.EntryEventDeregistered, d.clock.Now()))

	return true, nil
}
