package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-agent-registry/internal/adapter"
	"github.com/feral-file/ff-agent-registry/internal/domain"
	"github.com/feral-file/ff-agent-registry/internal/logger"
	"github.com/feral-file/ff-agent-registry/internal/providers/cardano"
	"github.com/feral-file/ff-agent-registry/internal/store"
	"github.com/feral-file/ff-agent-registry/internal/store/schema"
)

// SyncConfig holds the sync engine configuration
type SyncConfig struct {
	// PageSize is the number of policy assets fetched per ledger page
	PageSize int
	// SourceConcurrency bounds parallel sources; 0 runs every selected source at once
	SourceConcurrency int
	ResumeMissPolicy  domain.ResumeMissPolicy
	// RecheckAfterWait re-selects stale sources after waiting for a concurrent run
	RecheckAfterWait bool
}

type syncer struct {
	store      store.Store
	clients    cardano.ClientFactory
	reconciler *Reconciler
	guard      *Guard
	clock      adapter.Clock
	config     SyncConfig
}

// NewSyncer creates a new incremental sync engine
func NewSyncer(
	st store.Store,
	clients cardano.ClientFactory,
	reconciler *Reconciler,
	guard *Guard,
	clock adapter.Clock,
	config SyncConfig,
) Syncer {
	if config.PageSize <= 0 {
		config.PageSize = domain.SYNC_PAGE_SIZE
	}
	if !domain.IsValidResumeMissPolicy(config.ResumeMissPolicy) {
		config.ResumeMissPolicy = domain.ResumeMissReprocessPage
	}

	return &syncer{
		store:      st,
		clients:    clients,
		reconciler: reconciler,
		guard:      guard,
		clock:      clock,
		config:     config,
	}
}

// SyncSince syncs the sources whose last successful sync is at or before threshold
func (s *syncer) SyncSince(ctx context.Context, threshold *time.Time) error {
	if threshold == nil {
		return nil
	}
	return s.syncSince(ctx, *threshold, s.config.RecheckAfterWait)
}

func (s *syncer) syncSince(ctx context.Context, threshold time.Time, recheck bool) error {
	sources, err := s.store.GetSourcesForSync(ctx, domain.RegistryTypeCardanoV1, threshold)
	if err != nil {
		return fmt.Errorf("failed to get sources for sync: %w", err)
	}
	if len(sources) == 0 {
		return nil
	}

	var onWait func(ctx context.Context) error
	if recheck {
		// The holder may have synced some of our sources already; only the still stale ones are left
		onWait = func(ctx context.Context) error {
			return s.syncSince(ctx, threshold, false)
		}
	}

	return s.guard.Do(ctx, func(ctx context.Context) error {
		return s.syncSources(ctx, sources)
	}, onWait)
}

// syncSources fans out one task per source. Source failures are logged and never returned.
func (s *syncer) syncSources(ctx context.Context, sources []*schema.RegistrySource) error {
	for _, source := range sources {
		if !domain.IsValidRegistryType(source.Type) || source.PolicyID() == "" {
			return fmt.Errorf("%w: source %s", domain.ErrInvalidSource, source.ID)
		}
	}

	concurrency := s.config.SourceConcurrency
	if concurrency <= 0 {
		concurrency = len(sources)
	}

	logger.InfoCtx(ctx, "Starting registry sync", zap.Int("sources", len(sources)))

	pool := pond.NewPool(concurrency, pond.WithContext(ctx))
	defer pool.StopAndWait()

	group := pool.NewGroup()
	for _, source := range sources {
		group.Submit(func() {
			sourceCtx := logger.WithFields(ctx, zap.String("source_id", source.ID))
			if err := s.syncSource(sourceCtx, source); err != nil {
				logger.ErrorCtx(sourceCtx, fmt.Errorf("failed to sync source: %w", err))
			}
		})
	}

	if err := group.Wait(); err != nil {
		logger.WarnCtx(ctx, "Registry sync interrupted", zap.Error(err))
	}

	return nil
}

// syncSource pages the source's policy assets from its cursor and persists the new cursor
// once every page has been reconciled
func (s *syncer) syncSource(ctx context.Context, source *schema.RegistrySource) error {
	client, err := s.clients.ForSource(source.Network, source.Credential())
	if err != nil {
		return fmt.Errorf("failed to create ledger client: %w", err)
	}

	policyID := source.PolicyID()
	page := max(source.LatestPage, 1)
	last := source.LatestIdentifier
	cursorPage := page
	resuming := true
	processed := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		assets, err := client.ListPolicyAssets(ctx, policyID, page, s.config.PageSize)
		if err != nil {
			return fmt.Errorf("failed to list policy assets on page %d: %w", page, err)
		}

		work := assets
		if resuming {
			resuming = false

			window, found := resumeWindow(assets, last)
			if !found {
				logger.WarnCtx(ctx, "Last synced asset is missing from its page",
					zap.Int("page", page),
					zap.Stringp("last_identifier", last),
					zap.String("policy", string(s.config.ResumeMissPolicy)),
				)
				if s.config.ResumeMissPolicy == domain.ResumeMissRescan && page > 1 {
					page = 1
					cursorPage = 1
					last = nil
					continue
				}
			}
			work = window
		}

		if len(work) > 0 {
			if _, err := s.reconciler.ReconcileAssets(ctx, client, source, work); err != nil {
				return fmt.Errorf("failed to reconcile page %d: %w", page, err)
			}
			processed += len(work)
		}

		// An empty page past the end keeps the cursor on the page that holds last
		if len(assets) > 0 {
			tail := assets[len(assets)-1].Asset
			last = &tail
			cursorPage = page
		}

		if len(assets) < s.config.PageSize {
			break
		}
		page++
	}

	if err := s.store.UpdateSourceCursor(ctx, store.UpdateSourceCursorInput{
		SourceID:       source.ID,
		Page:           cursorPage,
		LastIdentifier: last,
		SyncedAt:       s.clock.Now(),
	}); err != nil {
		return fmt.Errorf("failed to update source cursor: %w", err)
	}

	logger.InfoCtx(ctx, "Source synced",
		zap.Int("page", cursorPage),
		zap.Stringp("last_identifier", last),
		zap.Int("assets", processed),
	)

	return nil
}
