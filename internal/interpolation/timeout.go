package interpolation

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/argcegar/internal/shutdown"
)

// RunWithTimeout runs fn on a worker goroutine and waits at most d for it.
// When d elapses first the result is ErrTimeout; fn's context is cancelled
// but fn may still be running when RunWithTimeout returns, so it must not
// share unsynchronised state with the caller. d <= 0 runs fn inline.
func RunWithTimeout(ctx context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	if d <= 0 {
		return fn(ctx)
	}

	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- fn(wctx)
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("%w after %s", ErrTimeout, d)
	case <-ctx.Done():
		return shutdown.Check(ctx)
	}
}
