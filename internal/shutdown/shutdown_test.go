package shutdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, Check(ctx))

	cancel()
	err := Check(ctx)

	assert.ErrorIs(t, err, ErrInterrupted)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPoller(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewPoller(ctx, 3)

	assert.NoError(t, p.Poll())
	assert.NoError(t, p.Poll())
	assert.ErrorIs(t, p.Poll(), ErrInterrupted)

	every := NewPoller(ctx, 0)
	assert.ErrorIs(t, every.Poll(), ErrInterrupted)
}
