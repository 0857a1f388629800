package spy

import (
	"context"
	"fmt"
	"time"
)

// Wait blocks for d or until ctx is done. An early return yields an error
// wrapping both ErrDelayInterrupted and the context's cause.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w after less than %s: %w", ErrDelayInterrupted, d, context.Cause(ctx))
	}
}
