package registry_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-agent-registry/internal/domain"
	"github.com/feral-file/ff-agent-registry/internal/mocks"
	"github.com/feral-file/ff-agent-registry/internal/providers/cardano"
	"github.com/feral-file/ff-agent-registry/internal/registry"
	"github.com/feral-file/ff-agent-registry/internal/store"
	"github.com/feral-file/ff-agent-registry/internal/store/schema"
)

const testPageSize = 2

type syncerFixture struct {
	store   *mocks.MockStore
	clients *mocks.MockCardanoClientFactory
	client  *mocks.MockCardanoClient
	guard   *registry.Guard
	syncer  registry.Syncer

	mu         sync.Mutex
	reconciled []string
}

func newSyncerFixture(t *testing.T, ctrl *gomock.Controller, policy domain.ResumeMissPolicy, recheck bool) *syncerFixture {
	t.Helper()

	f := &syncerFixture{
		store:   mocks.NewMockStore(ctrl),
		clients: mocks.NewMockCardanoClientFactory(ctrl),
		client:  mocks.NewMockCardanoClient(ctrl),
		guard:   registry.NewGuard(0, 0),
	}

	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(testNow).AnyTimes()

	// Burned assets keep the reconciler off the ledger and the prober; each call records the asset
	f.store.EXPECT().UpsertDeregisteredEntry(gomock.Any(), gomock.Any(), gomock.Any(), testNow).
		DoAndReturn(func(ctx context.Context, sourceID, identifier string, at time.Time) (*store.UpsertEntryResult, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.reconciled = append(f.reconciled, identifier)
			return nil, nil
		}).AnyTimes()

	reconciler := registry.NewReconciler(f.store, mocks.NewMockProber(ctrl), mocks.NewMockPublisher(ctrl), clock, 1)
	f.syncer = registry.NewSyncer(f.store, f.clients, reconciler, f.guard, clock, registry.SyncConfig{
		PageSize:         testPageSize,
		ResumeMissPolicy: policy,
		RecheckAfterWait: recheck,
	})
	return f
}

func (f *syncerFixture) reconciledAssets() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.reconciled...)
}

func burnedPage(ids ...string) []cardano.PolicyAsset {
	page := make([]cardano.PolicyAsset, len(ids))
	for i, id := range ids {
		page[i] = cardano.PolicyAsset{Asset: id, Quantity: "0"}
	}
	return page
}

func TestSyncer_SyncSince(t *testing.T) {
	threshold := testNow.Add(-time.Hour)

	t.Run("nil threshold is a no-op", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSyncerFixture(t, ctrl, domain.ResumeMissReprocessPage, true)

		assert.NoError(t, f.syncer.SyncSince(context.Background(), nil))
	})

	t.Run("no stale sources", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSyncerFixture(t, ctrl, domain.ResumeMissReprocessPage, true)

		f.store.EXPECT().GetSourcesForSync(gomock.Any(), domain.RegistryTypeCardanoV1, threshold).Return(nil, nil)

		assert.NoError(t, f.syncer.SyncSince(context.Background(), &threshold))
	})

	t.Run("source without identifier is rejected before any work", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSyncerFixture(t, ctrl, domain.ResumeMissReprocessPage, true)

		invalid := buildSource("src1")
		invalid.Identifier = nil
		f.store.EXPECT().GetSourcesForSync(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]*schema.RegistrySource{buildSource("src0"), invalid}, nil)

		err := f.syncer.SyncSince(context.Background(), &threshold)
		assert.ErrorIs(t, err, domain.ErrInvalidSource)
	})

	t.Run("store failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSyncerFixture(t, ctrl, domain.ResumeMissReprocessPage, true)

		f.store.EXPECT().GetSourcesForSync(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))

		assert.Error(t, f.syncer.SyncSince(context.Background(), &threshold))
	})
}

func TestSyncer_Paging(t *testing.T) {
	threshold := testNow.Add(-time.Hour)

	tests := []struct {
		name       string
		policy     domain.ResumeMissPolicy
		startPage  int
		startLast  *string
		pages      map[int][][]cardano.PolicyAsset
		reconciled []string
		cursorPage int
		cursorLast string
	}{
		{
			name:      "fresh source pages until a short page",
			policy:    domain.ResumeMissReprocessPage,
			startPage: 1,
			pages: map[int][][]cardano.PolicyAsset{
				1: {burnedPage("a", "b")},
				2: {burnedPage("c")},
			},
			reconciled: []string{"a", "b", "c"},
			cursorPage: 2,
			cursorLast: "c",
		},
		{
			name:      "resume skips assets up to the cursor",
			policy:    domain.ResumeMissReprocessPage,
			startPage: 2,
			startLast: strPtr("c"),
			pages: map[int][][]cardano.PolicyAsset{
				2: {burnedPage("c", "d")},
				3: {burnedPage()},
			},
			reconciled: []string{"d"},
			cursorPage: 2,
			cursorLast: "d",
		},
		{
			name:      "nothing new keeps the cursor",
			policy:    domain.ResumeMissReprocessPage,
			startPage: 2,
			startLast: strPtr("c"),
			pages: map[int][][]cardano.PolicyAsset{
				2: {burnedPage("c")},
			},
			reconciled: []string{},
			cursorPage: 2,
			cursorLast: "c",
		},
		{
			name:      "missing cursor reprocesses the page",
			policy:    domain.ResumeMissReprocessPage,
			startPage: 2,
			startLast: strPtr("gone"),
			pages: map[int][][]cardano.PolicyAsset{
				2: {burnedPage("c")},
			},
			reconciled: []string{"c"},
			cursorPage: 2,
			cursorLast: "c",
		},
		{
			name:      "missing cursor rescans from the first page",
			policy:    domain.ResumeMissRescan,
			startPage: 2,
			startLast: strPtr("gone"),
			pages: map[int][][]cardano.PolicyAsset{
				2: {burnedPage("c", "d"), burnedPage("c", "d")},
				1: {burnedPage("a", "b")},
				3: {burnedPage("e")},
			},
			reconciled: []string{"a", "b", "c", "d", "e"},
			cursorPage: 3,
			cursorLast: "e",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			f := newSyncerFixture(t, ctrl, tt.policy, true)

			source := buildSource("src1")
			source.LatestPage = tt.startPage
			source.LatestIdentifier = tt.startLast

			f.store.EXPECT().GetSourcesForSync(gomock.Any(), domain.RegistryTypeCardanoV1, threshold).
				Return([]*schema.RegistrySource{source}, nil)
			f.clients.EXPECT().ForSource(domain.NetworkPreprod, "preprodKey").Return(f.client, nil)
			for page, responses := range tt.pages {
				for _, assets := range responses {
					f.client.EXPECT().ListPolicyAssets(gomock.Any(), "policy-src1", page, testPageSize).Return(assets, nil)
				}
			}
			f.store.EXPECT().UpdateSourceCursor(gomock.Any(), store.UpdateSourceCursorInput{
				SourceID:       "src1",
				Page:           tt.cursorPage,
				LastIdentifier: strPtr(tt.cursorLast),
				SyncedAt:       testNow,
			}).Return(nil)

			require.NoError(t, f.syncer.SyncSince(context.Background(), &threshold))
			assert.ElementsMatch(t, tt.reconciled, f.reconciledAssets())
		})
	}
}

func TestSyncer_FailuresDoNotAdvanceCursor(t *testing.T) {
	threshold := testNow.Add(-time.Hour)

	t.Run("ledger failure on a later page", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSyncerFixture(t, ctrl, domain.ResumeMissReprocessPage, true)

		f.store.EXPECT().GetSourcesForSync(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]*schema.RegistrySource{buildSource("src1")}, nil)
		f.clients.EXPECT().ForSource(gomock.Any(), gomock.Any()).Return(f.client, nil)
		f.client.EXPECT().ListPolicyAssets(gomock.Any(), gomock.Any(), 1, testPageSize).Return(burnedPage("a", "b"), nil)
		f.client.EXPECT().ListPolicyAssets(gomock.Any(), gomock.Any(), 2, testPageSize).Return(nil, errors.New("blockfrost: 500"))

		require.NoError(t, f.syncer.SyncSince(context.Background(), &threshold))
		assert.ElementsMatch(t, []string{"a", "b"}, f.reconciledAssets())
	})

	t.Run("one failing source does not affect its sibling", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSyncerFixture(t, ctrl, domain.ResumeMissReprocessPage, true)

		broken := buildSource("broken")
		broken.APIKey = strPtr("brokenKey")
		healthy := buildSource("healthy")

		f.store.EXPECT().GetSourcesForSync(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]*schema.RegistrySource{broken, healthy}, nil)
		f.clients.EXPECT().ForSource(domain.NetworkPreprod, "brokenKey").Return(nil, errors.New("no ledger API url configured"))
		f.clients.EXPECT().ForSource(domain.NetworkPreprod, "preprodKey").Return(f.client, nil)
		f.client.EXPECT().ListPolicyAssets(gomock.Any(), "policy-healthy", 1, testPageSize).Return(burnedPage("a"), nil)
		f.store.EXPECT().UpdateSourceCursor(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, input store.UpdateSourceCursorInput) error {
				assert.Equal(t, "healthy", input.SourceID)
				return nil
			})

		require.NoError(t, f.syncer.SyncSince(context.Background(), &threshold))
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSyncerFixture(t, ctrl, domain.ResumeMissReprocessPage, true)

		ctx, cancel := context.WithCancel(context.Background())

		f.store.EXPECT().GetSourcesForSync(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]*schema.RegistrySource{buildSource("src1")}, nil)
		f.clients.EXPECT().ForSource(gomock.Any(), gomock.Any()).Return(f.client, nil).MaxTimes(1)
		f.client.EXPECT().ListPolicyAssets(gomock.Any(), gomock.Any(), 1, testPageSize).
			DoAndReturn(func(ctx context.Context, policyID string, page, count int) ([]cardano.PolicyAsset, error) {
				cancel()
				return burnedPage("a", "b"), nil
			}).MaxTimes(1)

		_ = f.syncer.SyncSince(ctx, &threshold)
	})
}

func TestSyncer_WaitsForConcurrentRun(t *testing.T) {
	threshold := testNow.Add(-time.Hour)

	run := func(t *testing.T, recheck bool, selections int) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSyncerFixture(t, ctrl, domain.ResumeMissReprocessPage, recheck)

		// The holder synced the source meanwhile, so a re-selection finds nothing stale
		first := f.store.EXPECT().GetSourcesForSync(gomock.Any(), gomock.Any(), threshold).
			Return([]*schema.RegistrySource{buildSource("src1")}, nil)
		if selections > 1 {
			f.store.EXPECT().GetSourcesForSync(gomock.Any(), gomock.Any(), threshold).
				Return(nil, nil).After(first)
		}

		acquired := make(chan struct{})
		release := make(chan struct{})
		holder := make(chan error, 1)
		go func() {
			holder <- f.guard.Do(context.Background(), func(ctx context.Context) error {
				close(acquired)
				<-release
				return nil
			}, nil)
		}()
		<-acquired

		result := make(chan error, 1)
		go func() {
			result <- f.syncer.SyncSince(context.Background(), &threshold)
		}()

		time.Sleep(50 * time.Millisecond)
		close(release)

		require.NoError(t, <-holder)
		require.NoError(t, <-result)
	}

	t.Run("re-selects stale sources after waiting", func(t *testing.T) {
		run(t, true, 2)
	})

	t.Run("returns without new work when re-check is disabled", func(t *testing.T) {
		run(t, false, 1)
	})
}
