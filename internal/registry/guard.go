package registry

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/feral-file/ff-agent-registry/internal/domain"
)

// Guard lets at most one run of a maintenance operation proceed at a time
type Guard struct {
	sem         *semaphore.Weighted
	waitTimeout time.Duration
	runTimeout  time.Duration
}

// NewGuard creates a guard. A zero waitTimeout waits for the holder indefinitely
// and a zero runTimeout puts no deadline on the holder.
func NewGuard(waitTimeout, runTimeout time.Duration) *Guard {
	return &Guard{
		sem:         semaphore.NewWeighted(1),
		waitTimeout: waitTimeout,
		runTimeout:  runTimeout,
	}
}

// Do runs fn if the guard is free. Otherwise it blocks until the current holder
// releases the guard, then runs onWait (when not nil) instead of fn.
func (g *Guard) Do(ctx context.Context, fn func(ctx context.Context) error, onWait func(ctx context.Context) error) error {
	if g.sem.TryAcquire(1) {
		defer g.sem.Release(1)

		runCtx := ctx
		if g.runTimeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(ctx, g.runTimeout)
			defer cancel()
		}
		return fn(runCtx)
	}

	waitCtx := ctx
	if g.waitTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, g.waitTimeout)
		defer cancel()
	}

	if err := g.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return domain.ErrGuardWaitTimeout
	}
	g.sem.Release(1)

	if onWait == nil {
		return nil
	}
	return onWait(ctx)
}
