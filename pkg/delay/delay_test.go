package delay

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNone(t *testing.T) {
	start := time.Now()
	err := None().Wait(context.Background())
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestNoneCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, None().Wait(ctx), context.Canceled)
}

func TestFixed(t *testing.T) {
	start := time.Now()
	err := Fixed(20 * time.Millisecond).Wait(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestFixedCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := Fixed(5 * time.Second).Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second, "cancellation must interrupt the pause")
}

func TestRandomBounds(t *testing.T) {
	policy := Random(5*time.Millisecond, 15*time.Millisecond)

	for i := 0; i < 5; i++ {
		start := time.Now()
		err := policy.Wait(context.Background())
		require.NoError(t, err)
		elapsed := time.Since(start)
		assert.GreaterOrEqual(t, elapsed, 5*time.Millisecond)
		// Generous upper bound: scheduler jitter on slow CI
		assert.Less(t, elapsed, 500*time.Millisecond)
	}
}

func TestRandomSwappedBounds(t *testing.T) {
	// min/max reversed should still behave
	err := Random(10*time.Millisecond, time.Millisecond).Wait(context.Background())
	require.NoError(t, err)
}
