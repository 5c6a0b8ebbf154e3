package ratelimit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetgrid/assetgrid/pkg/ratelimit"
)

func newLimiter(t *testing.T, limit int, window time.Duration) *ratelimit.SlidingWindow {
	t.Helper()

	store := ratelimit.NewMemoryStore(ratelimit.WithCleanupInterval(0))
	t.Cleanup(func() { _ = store.Close() })

	limiter, err := ratelimit.NewSlidingWindow(store, limit, window)
	require.NoError(t, err)
	return limiter
}

func TestNewSlidingWindow(t *testing.T) {
	t.Parallel()

	store := ratelimit.NewMemoryStore(ratelimit.WithCleanupInterval(0))
	t.Cleanup(func() { _ = store.Close() })

	t.Run("requires store", func(t *testing.T) {
		t.Parallel()
		_, err := ratelimit.NewSlidingWindow(nil, 1, time.Second)
		assert.ErrorIs(t, err, ratelimit.ErrStoreRequired)
	})

	t.Run("requires positive limit", func(t *testing.T) {
		t.Parallel()
		_, err := ratelimit.NewSlidingWindow(store, 0, time.Second)
		assert.ErrorIs(t, err, ratelimit.ErrInvalidLimit)
	})

	t.Run("requires positive window", func(t *testing.T) {
		t.Parallel()
		_, err := ratelimit.NewSlidingWindow(store, 1, 0)
		assert.ErrorIs(t, err, ratelimit.ErrInvalidWindow)
	})
}

func TestSlidingWindow_Allow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("admits exactly limit requests in one window", func(t *testing.T) {
		t.Parallel()

		limiter := newLimiter(t, 3, time.Minute)

		for i := range 3 {
			res, err := limiter.Allow(ctx, "cred-1")
			require.NoError(t, err)
			assert.True(t, res.Allowed, "request %d should be admitted", i+1)
			assert.Equal(t, 3, res.Limit)
			assert.Equal(t, 2-i, res.Remaining)
		}

		res, err := limiter.Allow(ctx, "cred-1")
		require.NoError(t, err)
		assert.False(t, res.Allowed, "4th request inside the window must be denied")
		assert.Equal(t, 0, res.Remaining)
		assert.Positive(t, res.RetryAfter())
	})

	t.Run("admits again after the window elapses", func(t *testing.T) {
		t.Parallel()

		limiter := newLimiter(t, 2, 60*time.Millisecond)

		for range 2 {
			res, err := limiter.Allow(ctx, "cred-1")
			require.NoError(t, err)
			require.True(t, res.Allowed)
		}

		res, err := limiter.Allow(ctx, "cred-1")
		require.NoError(t, err)
		require.False(t, res.Allowed)

		time.Sleep(80 * time.Millisecond)

		res, err = limiter.Allow(ctx, "cred-1")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})

	t.Run("denied check does not consume a slot", func(t *testing.T) {
		t.Parallel()

		limiter := newLimiter(t, 1, 80*time.Millisecond)

		res, err := limiter.Allow(ctx, "cred-1")
		require.NoError(t, err)
		require.True(t, res.Allowed)
		resetAt := res.ResetAt

		// Hammering while denied must not push the reset time out.
		for range 5 {
			res, err = limiter.Allow(ctx, "cred-1")
			require.NoError(t, err)
			require.False(t, res.Allowed)
			assert.Equal(t, resetAt.Unix(), res.ResetAt.Unix())
		}
	})

	t.Run("keys are independent", func(t *testing.T) {
		t.Parallel()

		limiter := newLimiter(t, 1, time.Minute)

		res, err := limiter.Allow(ctx, "cred-1")
		require.NoError(t, err)
		require.True(t, res.Allowed)

		res, err = limiter.Allow(ctx, "cred-2")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "another key must not be affected")
	})

	t.Run("rejects empty key", func(t *testing.T) {
		t.Parallel()

		limiter := newLimiter(t, 1, time.Minute)
		_, err := limiter.Allow(ctx, "")
		assert.ErrorIs(t, err, ratelimit.ErrKeyRequired)
	})
}

func TestSlidingWindow_Status(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	limiter := newLimiter(t, 3, time.Minute)

	t.Run("fresh key has full budget and default reset", func(t *testing.T) {
		before := time.Now()
		res, err := limiter.Status(ctx, "cred-1")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 3, res.Remaining)
		assert.False(t, res.ResetAt.Before(before.Add(time.Minute)),
			"empty history defaults reset to now+window")
	})

	t.Run("status does not consume", func(t *testing.T) {
		for range 5 {
			_, err := limiter.Status(ctx, "cred-1")
			require.NoError(t, err)
		}

		res, err := limiter.Allow(ctx, "cred-1")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 2, res.Remaining)
	})
}

func TestSlidingWindow_Reset(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	limiter := newLimiter(t, 1, time.Minute)

	res, err := limiter.Allow(ctx, "cred-1")
	require.NoError(t, err)
	require.True(t, res.Allowed)

	require.NoError(t, limiter.Reset(ctx, "cred-1"))

	res, err = limiter.Allow(ctx, "cred-1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestSlidingWindow_ConcurrentBoundary(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	const limit = 50
	limiter := newLimiter(t, limit, time.Minute)

	var wg sync.WaitGroup
	admittedCount := 0
	var mu sync.Mutex

	for range limit * 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := limiter.Allow(ctx, "cred-1")
			if err == nil && res.Allowed {
				mu.Lock()
				admittedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, limit, admittedCount,
		"concurrent checks must never admit past the boundary")
}
