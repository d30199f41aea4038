// Package shutdown implements cooperative interruption. Long-running loops
// poll the run's context and abort with ErrInterrupted once it is done.
package shutdown

import (
	"context"
	"errors"
	"fmt"
)

// ErrInterrupted reports that a loop stopped because its context was done.
// It wraps the context's own error.
var ErrInterrupted = errors.New("interrupted")

// Check returns nil while ctx is live and a wrapped ErrInterrupted after.
func Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrInterrupted, err)
	}
	return nil
}

// Poller checks a context every n calls, for loops too tight to check on
// every iteration.
type Poller struct {
	ctx   context.Context
	every int
	n     int
}

// NewPoller returns a Poller that checks ctx every n calls. n < 1 means every
// call.
func NewPoller(ctx context.Context, n int) *Poller {
	if n < 1 {
		n = 1
	}
	return &Poller{ctx: ctx, every: n}
}

// Poll counts one iteration and returns Check's result when due.
func (p *Poller) Poll() error {
	p.n++
	if p.n%p.every != 0 {
		return nil
	}
	return Check(p.ctx)
}
