// Package registry keeps the local mirror of ledger-registered services in step with the ledger.
//
// Three operations share the store: SyncSince pages each source's policy assets from its persisted
// cursor and reconciles them into entries, Sweep retires entries whose asset was burned, and Query
// serves filtered pages of entries with optional registry and health freshness.
package registry

import (
	"context"
	"time"
)

// Syncer defines the incremental sync operation
//
//go:generate mockgen -source=registry.go -destination=../mocks/registry.go -package=mocks -mock_names=Syncer=MockSyncer,Deregistrar=MockDeregistrar,Querier=MockQuerier
type Syncer interface {
	// SyncSince syncs every source whose last sync is at or before threshold.
	// A nil threshold is a no-op.
	SyncSince(ctx context.Context, threshold *time.Time) error
}

// Deregistrar defines the deregistration sweep
type Deregistrar interface {
	// Sweep marks entries whose asset has been burned as DEREGISTERED
	Sweep(ctx context.Context) error
}

// Querier defines the query-time freshness loop
type Querier interface {
	// Query returns up to input.Limit live entries matching the filter, revalidated
	// against the requested freshness thresholds
	Query(ctx context.Context, input QueryInput) (*QueryResult, error)
}
