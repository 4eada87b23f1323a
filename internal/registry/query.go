package registry

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-agent-registry/internal/domain"
	"github.com/feral-file/ff-agent-registry/internal/health"
	"github.com/feral-file/ff-agent-registry/internal/logger"
	"github.com/feral-file/ff-agent-registry/internal/store"
	"github.com/feral-file/ff-agent-registry/internal/store/schema"
)

// QueryFilter narrows the entries returned by a query
type QueryFilter struct {
	// PaymentTypes defaults to every supported payment type
	PaymentTypes []domain.PaymentType
	// Statuses defaults to ONLINE and OFFLINE; DEREGISTERED entries are never returned
	Statuses           []domain.EntryStatus
	RegistryIdentifier *string
	AssetIdentifier    *string
	Tags               []string
	CapabilityName     *string
	// CapabilityVersion is only applied together with CapabilityName
	CapabilityVersion *string
}

// QueryInput represents a query request
type QueryInput struct {
	Network domain.Network
	Limit   int
	// Cursor returns entries with id strictly greater than it
	Cursor *uint64
	Filter QueryFilter
	// MinRegistryDate triggers a sync of sources not synced since then
	MinRegistryDate *time.Time
	// MinHealthCheckDate re-probes entries last checked before then
	MinHealthCheckDate *time.Time
}

// QueryResult is one page of entries
type QueryResult struct {
	Entries []*schema.RegistryEntry
	// NextCursor is the id to pass as Cursor for the following page
	NextCursor *uint64
}

type querier struct {
	store  store.Store
	prober health.Prober
	syncer Syncer
}

// NewQuerier creates the query aggregator
func NewQuerier(st store.Store, prober health.Prober, syncer Syncer) Querier {
	return &querier{
		store:  st,
		prober: prober,
		syncer: syncer,
	}
}

// NormalizeLimit applies the default and the upper bound to a requested page size
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return domain.DEFAULT_QUERY_LIMIT
	}
	return min(limit, domain.MAX_QUERY_LIMIT)
}

// allowedPaymentTypes intersects the requested payment types with the supported ones
func allowedPaymentTypes(requested []domain.PaymentType) []domain.PaymentType {
	if len(requested) == 0 {
		return domain.SupportedPaymentTypes
	}

	allowed := make([]domain.PaymentType, 0, len(requested))
	for _, t := range requested {
		if domain.IsSupportedPaymentType(t) && !containsPaymentType(allowed, t) {
			allowed = append(allowed, t)
		}
	}
	return allowed
}

func containsPaymentType(types []domain.PaymentType, t domain.PaymentType) bool {
	for _, v := range types {
		if v == t {
			return true
		}
	}
	return false
}

// liveStatuses keeps the requested statuses an entry can be served with
func liveStatuses(requested []domain.EntryStatus) []domain.EntryStatus {
	if len(requested) == 0 {
		return domain.LiveEntryStatuses
	}

	statuses := make([]domain.EntryStatus, 0, len(requested))
	for _, s := range requested {
		if s == domain.EntryStatusOnline || s == domain.EntryStatusOffline {
			statuses = append(statuses, s)
		}
	}
	return statuses
}

// Query pulls batches of twice the limit, revalidates them and stops once limit valid entries
// have been gathered or the store has nothing more to offer
func (q *querier) Query(ctx context.Context, input QueryInput) (*QueryResult, error) {
	limit := NormalizeLimit(input.Limit)

	paymentTypes := allowedPaymentTypes(input.Filter.PaymentTypes)
	statuses := liveStatuses(input.Filter.Statuses)
	if len(paymentTypes) == 0 || len(statuses) == 0 {
		return &QueryResult{Entries: []*schema.RegistryEntry{}}, nil
	}

	if input.MinRegistryDate != nil {
		if err := q.syncer.SyncSince(ctx, input.MinRegistryDate); err != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("failed to sync before query: %w", err),
				zap.Time("min_registry_date", *input.MinRegistryDate),
			)
		}
	}

	filter := store.EntryQueryFilter{
		Network:            input.Network,
		PaymentTypes:       paymentTypes,
		Statuses:           statuses,
		RegistryIdentifier: input.Filter.RegistryIdentifier,
		AssetIdentifier:    input.Filter.AssetIdentifier,
		Tags:               input.Filter.Tags,
		CapabilityName:     input.Filter.CapabilityName,
		CapabilityVersion:  input.Filter.CapabilityVersion,
		Cursor:             input.Cursor,
		Limit:              2 * limit,
	}

	entries := make([]*schema.RegistryEntry, 0, limit)
	var nextCursor *uint64
	for {
		batch, err := q.store.GetEntries(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to get entries: %w", err)
		}
		if len(batch) == 0 {
			nextCursor = nil
			break
		}

		lastID := batch[len(batch)-1].ID
		nextCursor = &lastID

		valid := q.prober.RevalidateBatch(ctx, batch, input.MinHealthCheckDate)
		if len(entries)+len(valid) >= limit {
			valid = valid[:limit-len(entries)]
			entries = append(entries, valid...)
			// Entries after the last returned one are picked up by the next page
			cut := entries[len(entries)-1].ID
			nextCursor = &cut
			break
		}
		entries = append(entries, valid...)

		if len(batch) < filter.Limit {
			break
		}
		filter.Cursor = nextCursor
	}

	return &QueryResult{
		Entries:    entries,
		NextCursor: nextCursor,
	}, nil
}
