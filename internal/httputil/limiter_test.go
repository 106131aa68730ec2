// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterFirstCallDoesNotBlock(t *testing.T) {
	l := NewLimiter(time.Second)
	start := time.Now()
	require.NoError(t, l.Wait(context.Background()))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestLimiterEnforcesInterval(t *testing.T) {
	l := NewLimiter(30 * time.Millisecond)
	require.NoError(t, l.Wait(context.Background()))

	start := time.Now()
	require.NoError(t, l.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)
}

func TestLimiterZeroIntervalNeverBlocks(t *testing.T) {
	l := NewLimiter(0)
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Wait(context.Background()))
	}
}

func TestLimiterCancelledContext(t *testing.T) {
	l := NewLimiter(time.Hour)
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := l.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
