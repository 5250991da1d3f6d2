package ratelimit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_AllowsWithinBurst(t *testing.T) {
	t.Parallel()

	l := New(1, 2)
	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())
}

func TestUnlimited_NeverBlocks(t *testing.T) {
	t.Parallel()

	l := NewUnlimited()
	assert.True(t, l.Allow())
	require.NoError(t, l.Wait(context.Background()))
}

func TestWait_RespectsContextCancellation(t *testing.T) {
	t.Parallel()

	l := New(0.001, 1)
	l.Allow()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.Wait(ctx)
	require.Error(t, err)
}
