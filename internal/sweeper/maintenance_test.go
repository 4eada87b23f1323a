package sweeper_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-agent-registry/internal/logger"
	"github.com/feral-file/ff-agent-registry/internal/mocks"
	"github.com/feral-file/ff-agent-registry/internal/sweeper"
)

// testSweeperMocks contains all the mocks needed for testing the sweeper
type testSweeperMocks struct {
	ctrl        *gomock.Controller
	deregistrar *mocks.MockDeregistrar
	syncer      *mocks.MockSyncer
	clock       *mocks.MockClock
	sweeper     sweeper.Sweeper
}

func setupTestSweeper(t *testing.T) *testSweeperMocks {
	err := logger.Initialize(logger.Config{
		Debug: true,
	})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	ctrl := gomock.NewController(t)

	tm := &testSweeperMocks{
		ctrl:        ctrl,
		deregistrar: mocks.NewMockDeregistrar(ctrl),
		syncer:      mocks.NewMockSyncer(ctrl),
		clock:       mocks.NewMockClock(ctrl),
	}

	tm.sweeper = sweeper.NewMaintenanceSweeper(
		sweeper.MaintenanceSweeperConfig{
			Interval:   time.Minute,
			SyncMaxAge: 30 * time.Minute,
		},
		tm.deregistrar,
		tm.syncer,
		tm.clock,
	)

	return tm
}

// expectClock makes every sleep return after a brief delay so Stop can interleave
func (tm *testSweeperMocks) expectClock(now time.Time) {
	tm.clock.EXPECT().Now().Return(now).AnyTimes()
	tm.clock.EXPECT().Since(now).Return(time.Second).AnyTimes()
	tm.clock.EXPECT().After(time.Minute).DoAndReturn(func(d time.Duration) <-chan time.Time {
		ch := make(chan time.Time, 1)
		go func() {
			time.Sleep(50 * time.Millisecond)
			ch <- time.Now()
		}()
		return ch
	}).AnyTimes()
}

func TestMaintenanceSweeper_Name(t *testing.T) {
	tm := setupTestSweeper(t)
	defer tm.ctrl.Finish()

	assert.Equal(t, "registry-maintenance", tm.sweeper.Name())
}

func TestMaintenanceSweeper_RunsSweepThenSync(t *testing.T) {
	tm := setupTestSweeper(t)
	defer tm.ctrl.Finish()

	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	threshold := now.Add(-30 * time.Minute)
	tm.expectClock(now)

	sweep := tm.deregistrar.EXPECT().Sweep(gomock.Any()).Return(nil)
	tm.syncer.EXPECT().SyncSince(gomock.Any(), &threshold).Return(nil).After(sweep)

	// Later cycles may or may not start before Stop lands
	tm.deregistrar.EXPECT().Sweep(gomock.Any()).Return(nil).AnyTimes()
	tm.syncer.EXPECT().SyncSince(gomock.Any(), &threshold).Return(nil).AnyTimes()

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = tm.sweeper.Stop(ctx)
	}()

	require.NoError(t, tm.sweeper.Start(ctx))
}

func TestMaintenanceSweeper_ErrorsDoNotStopTheLoop(t *testing.T) {
	tm := setupTestSweeper(t)
	defer tm.ctrl.Finish()

	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tm.expectClock(now)

	tm.deregistrar.EXPECT().Sweep(gomock.Any()).Return(errors.New("connection refused")).MinTimes(2)
	tm.syncer.EXPECT().SyncSince(gomock.Any(), gomock.Any()).Return(errors.New("invalid registry source")).MinTimes(2)

	go func() {
		time.Sleep(120 * time.Millisecond)
		_ = tm.sweeper.Stop(ctx)
	}()

	require.NoError(t, tm.sweeper.Start(ctx))
}

func TestMaintenanceSweeper_StopsOnContextCancel(t *testing.T) {
	tm := setupTestSweeper(t)
	defer tm.ctrl.Finish()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tm.clock.EXPECT().Now().Return(now).AnyTimes()
	tm.clock.EXPECT().Since(now).Return(time.Second).AnyTimes()
	tm.clock.EXPECT().After(gomock.Any()).Return((<-chan time.Time)(make(chan time.Time))).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	tm.deregistrar.EXPECT().Sweep(gomock.Any()).Return(nil)
	tm.syncer.EXPECT().SyncSince(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, threshold *time.Time) error {
		cancel()
		return nil
	})

	require.NoError(t, tm.sweeper.Start(ctx))
}

func TestMaintenanceSweeper_StartTwice(t *testing.T) {
	tm := setupTestSweeper(t)
	defer tm.ctrl.Finish()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tm.clock.EXPECT().Now().Return(now).AnyTimes()
	tm.clock.EXPECT().Since(now).Return(time.Second).AnyTimes()
	tm.clock.EXPECT().After(gomock.Any()).Return((<-chan time.Time)(make(chan time.Time))).AnyTimes()
	tm.deregistrar.EXPECT().Sweep(gomock.Any()).Return(nil).AnyTimes()
	tm.syncer.EXPECT().SyncSince(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- tm.sweeper.Start(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	assert.Error(t, tm.sweeper.Start(ctx))

	cancel()
	require.NoError(t, <-done)
}
