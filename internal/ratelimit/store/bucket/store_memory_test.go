package bucket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllow_WithinLimit(t *testing.T) {
	store := NewInMemoryBucketStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		result, err := store.Allow(ctx, "k", 5, 15*time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 5, result.Limit)
		assert.Equal(t, 4-i, result.Remaining)
	}
}

func TestAllow_SixthBlocked(t *testing.T) {
	store := NewInMemoryBucketStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		result, err := store.Allow(ctx, "k", 5, 15*time.Minute)
		require.NoError(t, err)
		require.True(t, result.Allowed)
	}

	result, err := store.Allow(ctx, "k", 5, 15*time.Minute)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)
	assert.Greater(t, result.RetryAfter, 0)
	assert.True(t, result.ResetAt.After(time.Now()))
}

func TestAllow_WindowElapses(t *testing.T) {
	store := NewInMemoryBucketStore()
	ctx := context.Background()
	window := 50 * time.Millisecond

	for i := 0; i < 5; i++ {
		result, err := store.Allow(ctx, "k", 5, window)
		require.NoError(t, err)
		require.True(t, result.Allowed)
	}
	result, err := store.Allow(ctx, "k", 5, window)
	require.NoError(t, err)
	require.False(t, result.Allowed)

	time.Sleep(window + 10*time.Millisecond)

	for i := 0; i < 5; i++ {
		result, err = store.Allow(ctx, "k", 5, window)
		require.NoError(t, err)
		assert.True(t, result.Allowed, "request %d after window should be allowed", i+1)
	}
}

func TestAllow_KeysIndependent(t *testing.T) {
	store := NewInMemoryBucketStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.Allow(ctx, "a", 3, time.Minute)
		require.NoError(t, err)
	}
	blocked, err := store.Allow(ctx, "a", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, blocked.Allowed)

	other, err := store.Allow(ctx, "b", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestReset(t *testing.T) {
	store := NewInMemoryBucketStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.Allow(ctx, "k", 3, time.Minute)
		require.NoError(t, err)
	}
	require.NoError(t, store.Reset(ctx, "k"))

	result, err := store.Allow(ctx, "k", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 2, result.Remaining)
}

func TestGetCurrentCount(t *testing.T) {
	store := NewInMemoryBucketStore()
	ctx := context.Background()

	count, err := store.GetCurrentCount(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	for i := 0; i < 2; i++ {
		_, err := store.Allow(ctx, "k", 5, time.Minute)
		require.NoError(t, err)
	}
	count, err = store.GetCurrentCount(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestFill_BlocksImmediately(t *testing.T) {
	store := NewInMemoryBucketStore()
	ctx := context.Background()

	require.NoError(t, store.Fill(ctx, "k", 5, time.Minute))

	result, err := store.Allow(ctx, "k", 5, time.Minute)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
}

func TestSweep_RemovesElapsedBuckets(t *testing.T) {
	store := NewInMemoryBucketStore()
	ctx := context.Background()

	_, err := store.Allow(ctx, "short", 5, 10*time.Millisecond)
	require.NoError(t, err)
	_, err = store.Allow(ctx, "long", 5, time.Hour)
	require.NoError(t, err)
	require.Equal(t, 2, store.Len())

	time.Sleep(20 * time.Millisecond)

	removed, err := store.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Len())
}

func TestAllow_ConcurrentAccess(t *testing.T) {
	store := NewInMemoryBucketStore()
	ctx := context.Background()

	done := make(chan bool)
	allowed := make(chan bool, 100)
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 10; j++ {
				result, err := store.Allow(ctx, "k", 50, time.Minute)
				assert.NoError(t, err)
				allowed <- result.Allowed
			}
			done <- true
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
	close(allowed)

	allowedCount := 0
	for a := range allowed {
		if a {
			allowedCount++
		}
	}
	assert.Equal(t, 50, allowedCount)
}
