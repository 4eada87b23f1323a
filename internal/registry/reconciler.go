package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-agent-registry/internal/adapter"
	"github.com/feral-file/ff-agent-registry/internal/domain"
	"github.com/feral-file/ff-agent-registry/internal/health"
	"github.com/feral-file/ff-agent-registry/internal/logger"
	"github.com/feral-file/ff-agent-registry/internal/messaging"
	"github.com/feral-file/ff-agent-registry/internal/metadata"
	"github.com/feral-file/ff-agent-registry/internal/providers/cardano"
	"github.com/feral-file/ff-agent-registry/internal/store"
	"github.com/feral-file/ff-agent-registry/internal/store/schema"
)

const defaultAssetConcurrency = 10

// Reconciler turns policy assets into registry entries
type Reconciler struct {
	store       store.Store
	prober      health.Prober
	publisher   messaging.Publisher
	clock       adapter.Clock
	concurrency int
}

// NewReconciler creates a reconciler that processes up to concurrency assets at once
func NewReconciler(st store.Store, prober health.Prober, publisher messaging.Publisher, clock adapter.Clock, concurrency int) *Reconciler {
	if concurrency <= 0 {
		concurrency = defaultAssetConcurrency
	}
	return &Reconciler{
		store:       st,
		prober:      prober,
		publisher:   publisher,
		clock:       clock,
		concurrency: concurrency,
	}
}

// ReconcileAssets upserts one entry per asset and returns the written entries ordered by creation time.
// Assets that are not registrable services are skipped. The first failure is returned once every
// asset has been processed; the caller must then treat the batch as not done.
func (r *Reconciler) ReconcileAssets(ctx context.Context, client cardano.Client, source *schema.RegistrySource, assets []cardano.PolicyAsset) ([]*schema.RegistryEntry, error) {
	if len(assets) == 0 {
		return []*schema.RegistryEntry{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pool := pond.NewPool(r.concurrency, pond.WithContext(ctx))
	defer pool.StopAndWait()

	var (
		mu       sync.Mutex
		entries  = make([]*schema.RegistryEntry, 0, len(assets))
		firstErr error
	)

	group := pool.NewGroup()
	for _, asset := range assets {
		group.Submit(func() {
			entry, err := r.reconcileAsset(ctx, client, source, asset)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.ErrorCtx(ctx, err, zap.String("source_id", source.ID), zap.String("asset", asset.Asset))
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			if entry != nil {
				entries = append(entries, entry)
			}
		})
	}

	if err := group.Wait(); err != nil && firstErr == nil {
		firstErr = err
	}
	if firstErr == nil && ctx.Err() != nil {
		firstErr = ctx.Err()
	}

	mu.Lock()
	defer mu.Unlock()

	if firstErr != nil {
		return entries, firstErr
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})

	return entries, nil
}

// reconcileAsset applies a single asset. A nil entry with a nil error means the asset was skipped.
func (r *Reconciler) reconcileAsset(ctx context.Context, client cardano.Client, source *schema.RegistrySource, asset cardano.PolicyAsset) (*schema.RegistryEntry, error) {
	if asset.Burned() {
		return r.reconcileBurned(ctx, source, asset)
	}

	detail, err := client.GetAsset(ctx, asset.Asset)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.WarnCtx(ctx, "Asset listed under policy is unknown to the ledger API", zap.String("asset", asset.Asset))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	meta, err := metadata.Parse(detail.OnchainMetadata)
	if err != nil {
		logger.DebugCtx(ctx, "Skipping asset without valid registry metadata",
			zap.String("asset", asset.Asset),
			zap.Error(err),
		)
		return nil, nil
	}

	holders, err := client.ListAssetAddresses(ctx, asset.Asset, cardano.OrderDesc)
	if err != nil {
		return nil, fmt.Errorf("failed to list asset addresses: %w", err)
	}
	if len(holders) == 0 {
		logger.DebugCtx(ctx, "Skipping asset without holders", zap.String("asset", asset.Asset))
		return nil, nil
	}

	status := r.prober.Probe(ctx, health.ProbeRequest{
		Endpoint:           meta.Endpoint(),
		AssetIdentifier:    asset.Asset,
		RegistryIdentifier: source.PolicyID(),
		RegistryType:       source.Type,
	})
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	result, err := r.store.UpsertEntry(ctx, buildUpsertEntryInput(source, asset.Asset, detail, meta, holders[0].Address, status, r.clock))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert entry: %w", err)
	}
	if result == nil {
		logger.DebugCtx(ctx, "Entry is deregistered, skipping", zap.String("asset", asset.Asset))
		return nil, nil
	}

	eventType := domain.EntryEventUpdated
	if result.Created {
		eventType = domain.EntryEventRegistered
	}
	publishEntryEvent(ctx, r.publisher, newEntryEvent(source, result.Entry, eventType, r.clock.Now()))

	return result.Entry, nil
}

func (r *Reconciler) reconcileBurned(ctx context.Context, source *schema.RegistrySource, asset cardano.PolicyAsset) (*schema.RegistryEntry, error) {
	now := r.clock.Now()
	result, err := r.store.UpsertDeregisteredEntry(ctx, source.ID, asset.Asset, now)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert deregistered entry: %w", err)
	}
	if result == nil {
		return nil, nil
	}

	logger.InfoCtx(ctx, "Entry deregistered", zap.String("asset", asset.Asset), zap.Uint64("entry_id", result.Entry.ID))
	publishEntryEvent(ctx, r.publisher, newEntryEvent(source, result.Entry, domain.EntryEventDeregistered, now))

	return result.Entry, nil
}

func buildUpsertEntryInput(
	source *schema.RegistrySource,
	assetID string,
	detail *cardano.Asset,
	meta *metadata.AgentMetadata,
	paymentAddress string,
	status domain.EntryStatus,
	clock adapter.Clock,
) store.UpsertEntryInput {
	capabilityName, capabilityVersion := meta.Capability()

	return store.UpsertEntryInput{
		SourceID:           source.ID,
		Identifier:         assetID,
		Name:               strings.TrimSpace(*meta.Name),
		Description:        metadata.Normalize(meta.Description),
		APIURL:             meta.Endpoint(),
		CompanyName:        meta.Organization(),
		Image:              metadata.Normalize(meta.Image),
		AuthorName:         meta.AuthorField(func(a *metadata.Author) *metadata.String { return a.Name }),
		AuthorContact:      meta.AuthorField(func(a *metadata.Author) *metadata.String { return a.Contact }),
		AuthorOrganization: meta.AuthorField(func(a *metadata.Author) *metadata.String { return a.Organization }),
		PrivacyPolicy:      meta.LegalField(func(l *metadata.Legal) *metadata.String { return l.PrivacyPolicy }),
		TermsAndCondition:  meta.LegalField(func(l *metadata.Legal) *metadata.String { return l.Terms }),
		OtherLegal:         meta.LegalField(func(l *metadata.Legal) *metadata.String { return l.Other }),
		RequestsPerHour:    meta.RequestsPerHourValue(),
		Tags:               meta.TagList(),
		Metadata:           detail.OnchainMetadata,

		CapabilityName:        capabilityName,
		CapabilityVersion:     capabilityVersion,
		CapabilityDescription: metadata.Normalize(meta.CapabilityDescription),

		PaymentAddress: paymentAddress,
		PaymentType:    domain.PaymentTypeCardanoV1,

		Status:    status,
		CheckedAt: clock.Now(),
	}
}
