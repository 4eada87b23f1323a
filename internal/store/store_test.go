package store

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-agent-registry/internal/domain"
	"github.com/feral-file/ff-agent-registry/internal/store/schema"
)

// StoreTestSuite provides the interface for running store tests against different implementations
type StoreTestSuite struct {
	Store Store
	// InitDB should be called before each test to initialize the database
	InitDB func(t *testing.T) Store
	// CleanupDB should be called after each test to clean up the database
	CleanupDB func(t *testing.T)
}

// =============================================================================
// Test Data Builders
// =============================================================================

func strPtr(s string) *string {
	return &s
}

// buildTestSource creates a test source input
func buildTestSource(network domain.Network, identifier string) UpsertSourceInput {
	return UpsertSourceInput{
		Type:       domain.RegistryTypeCardanoV1,
		Network:    network,
		APIKey:     strPtr("project-key"),
		Identifier: strPtr(identifier),
		URL:        strPtr("https://registry.example.com"),
	}
}

// buildTestEntry creates a test entry input for an asset under a source
func buildTestEntry(sourceID, identifier string, status domain.EntryStatus) UpsertEntryInput {
	raw, _ := json.Marshal(map[string]interface{}{
		"name":               "Agent " + identifier,
		"api_url":            "https://agent.example.com",
		"capability_name":    "translate",
		"capability_version": "1.0.0",
	})

	return UpsertEntryInput{
		SourceID:          sourceID,
		Identifier:        identifier,
		Name:              "Agent " + identifier,
		Description:       strPtr("Translates things"),
		APIURL:            "https://agent.example.com",
		Tags:              []string{"nlp", "translation"},
		Metadata:          raw,
		CapabilityName:    "translate",
		CapabilityVersion: "1.0.0",
		PaymentAddress:    "addr_test1holder",
		PaymentType:       domain.PaymentTypeCardanoV1,
		Status:            status,
		CheckedAt:         time.Now().UTC(),
	}
}

func mustCreateSource(t *testing.T, store Store, network domain.Network, identifier string) *schema.RegistrySource {
	t.Helper()
	source, err := store.UpsertSource(context.Background(), buildTestSource(network, identifier))
	require.NoError(t, err)
	require.NotNil(t, source)
	return source
}

func mustUpsertEntry(t *testing.T, store Store, input UpsertEntryInput) *schema.RegistryEntry {
	t.Helper()
	result, err := store.UpsertEntry(context.Background(), input)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result.Entry
}

// =============================================================================
// Test: Sources
// =============================================================================

func testUpsertSource(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("new source starts at page 1 and is immediately due", func(t *testing.T) {
		source := mustCreateSource(t, store, domain.NetworkPreview, "policy-new")

		assert.NotEmpty(t, source.ID)
		assert.Equal(t, 1, source.LatestPage)
		assert.Nil(t, source.LatestIdentifier)
		assert.True(t, source.UpdatedAt.Before(time.Now().Add(-24*time.Hour)))
	})

	t.Run("re-upsert refreshes credential but keeps cursor", func(t *testing.T) {
		source := mustCreateSource(t, store, domain.NetworkPreprod, "policy-refresh")
		require.NoError(t, store.UpdateSourceCursor(ctx, UpdateSourceCursorInput{
			SourceID:       source.ID,
			Page:           4,
			LastIdentifier: strPtr("asset-400"),
			SyncedAt:       time.Now(),
		}))

		input := buildTestSource(domain.NetworkPreprod, "policy-refresh")
		input.APIKey = strPtr("rotated-key")
		again, err := store.UpsertSource(ctx, input)
		require.NoError(t, err)

		assert.Equal(t, source.ID, again.ID)
		assert.Equal(t, "rotated-key", again.Credential())
		assert.Equal(t, 4, again.LatestPage)
		require.NotNil(t, again.LatestIdentifier)
		assert.Equal(t, "asset-400", *again.LatestIdentifier)
	})

	t.Run("same identifier on another network is a separate source", func(t *testing.T) {
		a := mustCreateSource(t, store, domain.NetworkMainnet, "policy-shared")
		b := mustCreateSource(t, store, domain.NetworkPreview, "policy-shared")
		assert.NotEqual(t, a.ID, b.ID)
	})
}

func testGetSourcesForSync(t *testing.T, store Store) {
	ctx := context.Background()

	stale := mustCreateSource(t, store, domain.NetworkPreview, "policy-stale")
	fresh := mustCreateSource(t, store, domain.NetworkPreview, "policy-fresh")
	require.NoError(t, store.UpdateSourceCursor(ctx, UpdateSourceCursorInput{
		SourceID: fresh.ID,
		Page:     1,
		SyncedAt: time.Now(),
	}))
	_, err := store.UpsertSource(ctx, UpsertSourceInput{
		Type:    domain.RegistryTypeCardanoV1,
		Network: domain.NetworkPreview,
		APIKey:  strPtr("k"),
	})
	require.NoError(t, err)

	sources, err := store.GetSourcesForSync(ctx, domain.RegistryTypeCardanoV1, time.Now().Add(-time.Minute))
	require.NoError(t, err)

	ids := make([]string, 0, len(sources))
	for _, s := range sources {
		ids = append(ids, s.ID)
		assert.NotNil(t, s.Identifier)
	}
	assert.Contains(t, ids, stale.ID)
	assert.NotContains(t, ids, fresh.ID)

	all, err := store.GetSourcesWithIdentifier(ctx, domain.RegistryTypeCardanoV1)
	require.NoError(t, err)
	allIDs := make([]string, 0, len(all))
	for _, s := range all {
		allIDs = append(allIDs, s.ID)
		assert.NotNil(t, s.Identifier)
	}
	assert.Contains(t, allIDs, stale.ID)
	assert.Contains(t, allIDs, fresh.ID)
}

func testUpdateSourceCursor(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("persists page, identifier and sync time", func(t *testing.T) {
		source := mustCreateSource(t, store, domain.NetworkMainnet, "policy-cursor")
		syncedAt := time.Now().UTC().Truncate(time.Millisecond)

		require.NoError(t, store.UpdateSourceCursor(ctx, UpdateSourceCursorInput{
			SourceID:       source.ID,
			Page:           3,
			LastIdentifier: strPtr("asset-250"),
			SyncedAt:       syncedAt,
		}))

		got, err := store.GetSourceByID(ctx, source.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 3, got.LatestPage)
		assert.Equal(t, "asset-250", *got.LatestIdentifier)
		assert.WithinDuration(t, syncedAt, got.UpdatedAt, time.Millisecond)
	})

	t.Run("page below 1 is clamped", func(t *testing.T) {
		source := mustCreateSource(t, store, domain.NetworkMainnet, "policy-clamp")
		require.NoError(t, store.UpdateSourceCursor(ctx, UpdateSourceCursorInput{SourceID: source.ID, Page: 0}))

		got, err := store.GetSourceByID(ctx, source.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.LatestPage)
		assert.Nil(t, got.LatestIdentifier)
	})

	t.Run("unknown source", func(t *testing.T) {
		err := store.UpdateSourceCursor(ctx, UpdateSourceCursorInput{
			SourceID: "00000000-0000-0000-0000-000000000000",
			Page:     2,
		})
		assert.Error(t, err)
	})

	t.Run("get unknown source returns nil", func(t *testing.T) {
		got, err := store.GetSourceByID(ctx, "00000000-0000-0000-0000-000000000000")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

// =============================================================================
// Test: Entries
// =============================================================================

func testUpsertEntry(t *testing.T, store Store) {
	ctx := context.Background()
	source := mustCreateSource(t, store, domain.NetworkPreview, "policy-entries")

	t.Run("first upsert creates entry with capability and payment identifier", func(t *testing.T) {
		result, err := store.UpsertEntry(ctx, buildTestEntry(source.ID, "asset-1", domain.EntryStatusOnline))
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.True(t, result.Created)
		entry := result.Entry
		assert.Equal(t, domain.EntryStatusOnline, entry.Status)
		assert.EqualValues(t, 1, entry.UptimeCount)
		assert.EqualValues(t, 1, entry.UptimeCheckCount)
		assert.Equal(t, []string{"nlp", "translation"}, []string(entry.Tags))
		require.NotNil(t, entry.Capability)
		assert.Equal(t, "translate", entry.Capability.Name)
		require.NotNil(t, entry.Source)
		assert.Equal(t, source.ID, entry.Source.ID)
		require.Len(t, entry.PaymentIdentifiers, 1)
		assert.Equal(t, "addr_test1holder", entry.PaymentIdentifiers[0].Address)
	})

	t.Run("second upsert updates counters, fields and payment address", func(t *testing.T) {
		input := buildTestEntry(source.ID, "asset-1", domain.EntryStatusOffline)
		input.Name = "Renamed"
		input.PaymentAddress = "addr_test1newholder"

		result, err := store.UpsertEntry(ctx, input)
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.False(t, result.Created)
		entry := result.Entry
		assert.Equal(t, "Renamed", entry.Name)
		assert.Equal(t, domain.EntryStatusOffline, entry.Status)
		assert.EqualValues(t, 1, entry.UptimeCount)
		assert.EqualValues(t, 2, entry.UptimeCheckCount)
		require.Len(t, entry.PaymentIdentifiers, 1)
		assert.Equal(t, "addr_test1newholder", entry.PaymentIdentifiers[0].Address)
	})

	t.Run("capability is shared by (name, version)", func(t *testing.T) {
		a := mustUpsertEntry(t, store, buildTestEntry(source.ID, "asset-cap-a", domain.EntryStatusOnline))
		b := mustUpsertEntry(t, store, buildTestEntry(source.ID, "asset-cap-b", domain.EntryStatusOnline))
		require.NotNil(t, a.CapabilityID)
		require.NotNil(t, b.CapabilityID)
		assert.Equal(t, *a.CapabilityID, *b.CapabilityID)

		input := buildTestEntry(source.ID, "asset-cap-c", domain.EntryStatusOnline)
		input.CapabilityVersion = "2.0.0"
		c := mustUpsertEntry(t, store, input)
		assert.NotEqual(t, *a.CapabilityID, *c.CapabilityID)
	})

	t.Run("deregistered entry is never resurrected", func(t *testing.T) {
		mustUpsertEntry(t, store, buildTestEntry(source.ID, "asset-burned", domain.EntryStatusOnline))
		changed, err := store.MarkEntryDeregistered(ctx, source.ID, "asset-burned")
		require.NoError(t, err)
		require.True(t, changed)

		result, err := store.UpsertEntry(ctx, buildTestEntry(source.ID, "asset-burned", domain.EntryStatusOnline))
		require.NoError(t, err)
		assert.Nil(t, result)

		entry, err := store.GetEntryByIdentifier(ctx, source.ID, "asset-burned")
		require.NoError(t, err)
		assert.Equal(t, domain.EntryStatusDeregistered, entry.Status)
		assert.EqualValues(t, 1, entry.UptimeCheckCount)
	})
}

func testUpsertDeregisteredEntry(t *testing.T, store Store) {
	ctx := context.Background()
	source := mustCreateSource(t, store, domain.NetworkPreview, "policy-dereg")

	t.Run("unknown asset is created deregistered with empty fields", func(t *testing.T) {
		result, err := store.UpsertDeregisteredEntry(ctx, source.ID, "asset-never-seen", time.Now())
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.True(t, result.Created)
		assert.Equal(t, domain.EntryStatusDeregistered, result.Entry.Status)
		assert.Empty(t, result.Entry.Name)
		assert.Empty(t, result.Entry.APIURL)
		assert.Nil(t, result.Entry.CapabilityID)
		assert.EqualValues(t, 0, result.Entry.UptimeCount)
		assert.EqualValues(t, 0, result.Entry.UptimeCheckCount)
	})

	t.Run("live asset only changes status", func(t *testing.T) {
		live := mustUpsertEntry(t, store, buildTestEntry(source.ID, "asset-live", domain.EntryStatusOnline))

		result, err := store.UpsertDeregisteredEntry(ctx, source.ID, "asset-live", time.Now())
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.False(t, result.Created)
		assert.Equal(t, live.ID, result.Entry.ID)
		assert.Equal(t, domain.EntryStatusDeregistered, result.Entry.Status)
		assert.Equal(t, live.Name, result.Entry.Name)
		assert.EqualValues(t, 1, result.Entry.UptimeCheckCount)
	})

	t.Run("already deregistered is a no-op", func(t *testing.T) {
		result, err := store.UpsertDeregisteredEntry(ctx, source.ID, "asset-never-seen", time.Now())
		require.NoError(t, err)
		assert.Nil(t, result)
	})
}

func testMarkEntryDeregistered(t *testing.T, store Store) {
	ctx := context.Background()
	source := mustCreateSource(t, store, domain.NetworkMainnet, "policy-mark")
	mustUpsertEntry(t, store, buildTestEntry(source.ID, "asset-1", domain.EntryStatusOffline))

	changed, err := store.MarkEntryDeregistered(ctx, source.ID, "asset-1")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = store.MarkEntryDeregistered(ctx, source.ID, "asset-1")
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = store.MarkEntryDeregistered(ctx, source.ID, "asset-missing")
	require.NoError(t, err)
	assert.False(t, changed)
}

func testGetLiveEntriesPage(t *testing.T, store Store) {
	ctx := context.Background()
	source := mustCreateSource(t, store, domain.NetworkPreview, "policy-live")

	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)
	for i := 0; i < 5; i++ {
		input := buildTestEntry(source.ID, fmt.Sprintf("asset-%d", i), domain.EntryStatusOnline)
		input.CheckedAt = base.Add(time.Duration(i) * time.Minute)
		mustUpsertEntry(t, store, input)
	}
	_, err := store.MarkEntryDeregistered(ctx, source.ID, "asset-2")
	require.NoError(t, err)

	first, err := store.GetLiveEntriesPage(ctx, source.ID, nil, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "asset-4", first[0].Identifier)
	assert.Equal(t, "asset-3", first[1].Identifier)

	last := first[len(first)-1]
	second, err := store.GetLiveEntriesPage(ctx, source.ID, &LiveEntryCursor{LastUptimeCheck: last.LastUptimeCheck, ID: last.ID}, 2)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, "asset-1", second[0].Identifier)
	assert.Equal(t, "asset-0", second[1].Identifier)

	last = second[len(second)-1]
	third, err := store.GetLiveEntriesPage(ctx, source.ID, &LiveEntryCursor{LastUptimeCheck: last.LastUptimeCheck, ID: last.ID}, 2)
	require.NoError(t, err)
	assert.Empty(t, third)
}

func testGetEntries(t *testing.T, store Store) {
	ctx := context.Background()
	preview := mustCreateSource(t, store, domain.NetworkPreview, "policy-query-preview")
	mainnet := mustCreateSource(t, store, domain.NetworkMainnet, "policy-query-mainnet")

	a := mustUpsertEntry(t, store, buildTestEntry(preview.ID, "asset-a", domain.EntryStatusOnline))

	inputB := buildTestEntry(preview.ID, "asset-b", domain.EntryStatusOffline)
	inputB.Tags = []string{"vision"}
	inputB.CapabilityName = "describe"
	b := mustUpsertEntry(t, store, inputB)

	mustUpsertEntry(t, store, buildTestEntry(preview.ID, "asset-c", domain.EntryStatusOnline))
	_, err := store.MarkEntryDeregistered(ctx, preview.ID, "asset-c")
	require.NoError(t, err)

	mustUpsertEntry(t, store, buildTestEntry(mainnet.ID, "asset-m", domain.EntryStatusOnline))

	identifiers := func(entries []*schema.RegistryEntry) []string {
		out := make([]string, 0, len(entries))
		for _, e := range entries {
			out = append(out, e.Identifier)
		}
		return out
	}

	tests := []struct {
		name     string
		filter   EntryQueryFilter
		expected []string
	}{
		{
			name:     "network scopes results and default statuses exclude deregistered",
			filter:   EntryQueryFilter{Network: domain.NetworkPreview, Limit: 10},
			expected: []string{"asset-a", "asset-b"},
		},
		{
			name:     "explicit status",
			filter:   EntryQueryFilter{Network: domain.NetworkPreview, Statuses: []domain.EntryStatus{domain.EntryStatusDeregistered}, Limit: 10},
			expected: []string{"asset-c"},
		},
		{
			name:     "registry identifier",
			filter:   EntryQueryFilter{RegistryIdentifier: strPtr("policy-query-mainnet"), Limit: 10},
			expected: []string{"asset-m"},
		},
		{
			name:     "asset identifier",
			filter:   EntryQueryFilter{Network: domain.NetworkPreview, AssetIdentifier: strPtr("asset-b"), Limit: 10},
			expected: []string{"asset-b"},
		},
		{
			name:     "tags containment",
			filter:   EntryQueryFilter{Network: domain.NetworkPreview, Tags: []string{"nlp", "translation"}, Limit: 10},
			expected: []string{"asset-a"},
		},
		{
			name:     "capability name",
			filter:   EntryQueryFilter{Network: domain.NetworkPreview, CapabilityName: strPtr("describe"), Limit: 10},
			expected: []string{"asset-b"},
		},
		{
			name:     "capability name and version",
			filter:   EntryQueryFilter{Network: domain.NetworkPreview, CapabilityName: strPtr("translate"), CapabilityVersion: strPtr("9.9.9"), Limit: 10},
			expected: []string{},
		},
		{
			name:     "payment type",
			filter:   EntryQueryFilter{Network: domain.NetworkPreview, PaymentTypes: []domain.PaymentType{domain.PaymentTypeCardanoV1}, Limit: 10},
			expected: []string{"asset-a", "asset-b"},
		},
		{
			name:     "cursor is exclusive",
			filter:   EntryQueryFilter{Network: domain.NetworkPreview, Cursor: &a.ID, Limit: 10},
			expected: []string{"asset-b"},
		},
		{
			name:     "limit",
			filter:   EntryQueryFilter{Network: domain.NetworkPreview, Limit: 1},
			expected: []string{"asset-a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := store.GetEntries(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, identifiers(entries))
		})
	}

	t.Run("relations are preloaded", func(t *testing.T) {
		entries, err := store.GetEntries(ctx, EntryQueryFilter{Network: domain.NetworkPreview, AssetIdentifier: strPtr("asset-b"), Limit: 10})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, b.ID, entries[0].ID)
		require.NotNil(t, entries[0].Source)
		assert.Equal(t, "policy-query-preview", entries[0].Source.PolicyID())
		require.NotNil(t, entries[0].Capability)
		assert.Equal(t, "describe", entries[0].Capability.Name)
		assert.Len(t, entries[0].PaymentIdentifiers, 1)
	})
}

func testRecordHealthCheck(t *testing.T, store Store) {
	ctx := context.Background()
	source := mustCreateSource(t, store, domain.NetworkPreview, "policy-health")
	entry := mustUpsertEntry(t, store, buildTestEntry(source.ID, "asset-1", domain.EntryStatusOffline))

	t.Run("online verdict increments both counters", func(t *testing.T) {
		checkedAt := time.Now().UTC().Truncate(time.Millisecond)
		updated, err := store.RecordHealthCheck(ctx, entry.ID, domain.EntryStatusOnline, checkedAt)
		require.NoError(t, err)
		require.NotNil(t, updated)

		assert.Equal(t, domain.EntryStatusOnline, updated.Status)
		assert.EqualValues(t, 1, updated.UptimeCount)
		assert.EqualValues(t, 2, updated.UptimeCheckCount)
		assert.WithinDuration(t, checkedAt, updated.LastUptimeCheck, time.Millisecond)
		require.NotNil(t, updated.Source)
	})

	t.Run("offline verdict increments total only", func(t *testing.T) {
		updated, err := store.RecordHealthCheck(ctx, entry.ID, domain.EntryStatusOffline, time.Now())
		require.NoError(t, err)
		assert.EqualValues(t, 1, updated.UptimeCount)
		assert.EqualValues(t, 3, updated.UptimeCheckCount)
	})

	t.Run("deregistered entry is untouched", func(t *testing.T) {
		_, err := store.MarkEntryDeregistered(ctx, source.ID, "asset-1")
		require.NoError(t, err)

		updated, err := store.RecordHealthCheck(ctx, entry.ID, domain.EntryStatusOnline, time.Now())
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, domain.EntryStatusDeregistered, updated.Status)
		assert.EqualValues(t, 3, updated.UptimeCheckCount)
	})

	t.Run("unknown entry returns nil", func(t *testing.T) {
		updated, err := store.RecordHealthCheck(ctx, 999999999, domain.EntryStatusOnline, time.Now())
		require.NoError(t, err)
		assert.Nil(t, updated)
	})
}

// RunStoreTests runs all store tests against the given implementation; newStore must isolate each subtest
func RunStoreTests(t *testing.T, newStore func(t *testing.T) Store) {
	tests := []struct {
		name string
		fn   func(*testing.T, Store)
	}{
		{"UpsertSource", testUpsertSource},
		{"GetSourcesForSync", testGetSourcesForSync},
		{"UpdateSourceCursor", testUpdateSourceCursor},
		{"UpsertEntry", testUpsertEntry},
		{"UpsertDeregisteredEntry", testUpsertDeregisteredEntry},
		{"MarkEntryDeregistered", testMarkEntryDeregistered},
		{"GetLiveEntriesPage", testGetLiveEntriesPage},
		{"GetEntries", testGetEntries},
		{"RecordHealthCheck", testRecordHealthCheck},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}
