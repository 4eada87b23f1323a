package sweeper

import (
	"context"
)

// Sweeper is a background loop run by cmd/sweeper.
// Start blocks until ctx is done or Stop is called; Stop waits for the current cycle to drain.
type Sweeper interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Name() string
}
