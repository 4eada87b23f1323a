package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-agent-registry/internal/adapter"
	"github.com/feral-file/ff-agent-registry/internal/logger"
	"github.com/feral-file/ff-agent-registry/internal/registry"
)

const (
	DEFAULT_MAINTENANCE_INTERVAL = 10 * time.Minute
	DEFAULT_SYNC_MAX_AGE         = 30 * time.Minute
)

// MaintenanceSweeperConfig holds configuration for the registry maintenance sweeper
type MaintenanceSweeperConfig struct {
	Interval   time.Duration // Time to sleep between cycles
	SyncMaxAge time.Duration // Sources not synced within this window are synced every cycle
}

// maintenanceSweeper implements the Sweeper interface for registry maintenance
type maintenanceSweeper struct {
	config      MaintenanceSweeperConfig
	deregistrar registry.Deregistrar
	syncer      registry.Syncer
	clock       adapter.Clock
	running     atomic.Bool
	stopChan    chan struct{}
	stoppedCh   chan struct{}
}

// NewMaintenanceSweeper creates a sweeper that retires burned entries and keeps sources synced
func NewMaintenanceSweeper(
	config MaintenanceSweeperConfig,
	deregistrar registry.Deregistrar,
	syncer registry.Syncer,
	clock adapter.Clock,
) Sweeper {
	if config.Interval <= 0 {
		config.Interval = DEFAULT_MAINTENANCE_INTERVAL
	}
	if config.SyncMaxAge <= 0 {
		config.SyncMaxAge = DEFAULT_SYNC_MAX_AGE
	}

	return &maintenanceSweeper{
		config:      config,
		deregistrar: deregistrar,
		syncer:      syncer,
		clock:       clock,
		stopChan:    make(chan struct{}),
		stoppedCh:   make(chan struct{}),
	}
}

// Name returns the sweeper's name
func (s *maintenanceSweeper) Name() string {
	return "registry-maintenance"
}

// Start runs a maintenance cycle, then sleeps for the interval, until stopped
func (s *maintenanceSweeper) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer func() {
		s.running.Store(false)
		close(s.stoppedCh)
	}()

	logger.InfoCtx(ctx, "Starting registry maintenance sweeper",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("sync_max_age", s.config.SyncMaxAge),
	)

	for {
		s.runCycle(ctx)

		if !s.sleep(ctx, s.config.Interval) {
			logger.InfoCtx(ctx, "Registry maintenance sweeper stopping")
			return nil
		}
	}
}

// Stop signals the loop to exit and waits for the current cycle to finish
func (s *maintenanceSweeper) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	logger.InfoCtx(ctx, "Stopping registry maintenance sweeper")
	close(s.stopChan)

	select {
	case <-s.stoppedCh:
		logger.InfoCtx(ctx, "Registry maintenance sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Registry maintenance sweeper stop interrupted by context timeout")
		return ctx.Err()
	}
}

// runCycle runs the deregistration sweep, then syncs the stale sources
func (s *maintenanceSweeper) runCycle(ctx context.Context) {
	startTime := s.clock.Now()
	logger.InfoCtx(ctx, "Starting maintenance cycle")

	if err := s.deregistrar.Sweep(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to sweep deregistered entries: %w", err))
	}

	threshold := s.clock.Now().Add(-s.config.SyncMaxAge)
	if err := s.syncer.SyncSince(ctx, &threshold); err != nil && !errors.Is(err, context.Canceled) {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to sync sources: %w", err))
	}

	logger.InfoCtx(ctx, "Maintenance cycle completed", zap.Duration("duration", s.clock.Since(startTime)))
}

// sleep returns false when interrupted by cancellation or a stop request
func (s *maintenanceSweeper) sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-s.clock.After(duration):
		return true
	case <-ctx.Done():
		return false
	case <-s.stopChan:
		return false
	}
}
