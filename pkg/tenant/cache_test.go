package tenant_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetgrid/assetgrid/pkg/tenant"
)

func TestInMemoryCache(t *testing.T) {
	t.Parallel()

	t.Run("set and get", func(t *testing.T) {
		t.Parallel()

		cache := tenant.NewInMemoryCache()
		defer cache.Close()

		tn := newTestTenant()
		cache.Set(context.Background(), "acme", tn, time.Minute)

		got, ok := cache.Get(context.Background(), "acme")
		require.True(t, ok)
		assert.Equal(t, tn, got)
	})

	t.Run("miss on unknown key", func(t *testing.T) {
		t.Parallel()

		cache := tenant.NewInMemoryCache()
		defer cache.Close()

		_, ok := cache.Get(context.Background(), "missing")
		assert.False(t, ok)
	})

	t.Run("expires after TTL", func(t *testing.T) {
		t.Parallel()

		cache := tenant.NewInMemoryCache()
		defer cache.Close()

		cache.Set(context.Background(), "acme", newTestTenant(), 20*time.Millisecond)
		time.Sleep(50 * time.Millisecond)

		_, ok := cache.Get(context.Background(), "acme")
		assert.False(t, ok)
	})

	t.Run("delete invalidates", func(t *testing.T) {
		t.Parallel()

		cache := tenant.NewInMemoryCache()
		defer cache.Close()

		cache.Set(context.Background(), "acme", newTestTenant(), time.Minute)
		cache.Delete(context.Background(), "acme")

		_, ok := cache.Get(context.Background(), "acme")
		assert.False(t, ok)
	})

	t.Run("evicts least recently used at capacity", func(t *testing.T) {
		t.Parallel()

		cache := tenant.NewInMemoryCacheWithSize(2)
		defer cache.Close()

		ctx := context.Background()
		cache.Set(ctx, "a", newTestTenant(), time.Minute)
		cache.Set(ctx, "b", newTestTenant(), time.Minute)

		// Touch "a" so "b" becomes the eviction candidate.
		_, ok := cache.Get(ctx, "a")
		require.True(t, ok)

		cache.Set(ctx, "c", newTestTenant(), time.Minute)

		_, ok = cache.Get(ctx, "b")
		assert.False(t, ok)
		_, ok = cache.Get(ctx, "a")
		assert.True(t, ok)
		_, ok = cache.Get(ctx, "c")
		assert.True(t, ok)
	})

	t.Run("safe under concurrent access", func(t *testing.T) {
		t.Parallel()

		cache := tenant.NewInMemoryCacheWithSize(64)
		defer cache.Close()

		ctx := context.Background()
		var wg sync.WaitGroup
		for i := range 16 {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				key := fmt.Sprintf("tenant-%d", n%8)
				for range 100 {
					cache.Set(ctx, key, newTestTenant(), time.Minute)
					cache.Get(ctx, key)
					cache.Delete(ctx, key)
				}
			}(i)
		}
		wg.Wait()
	})

	t.Run("close is idempotent", func(t *testing.T) {
		t.Parallel()

		cache := tenant.NewInMemoryCache()
		require.NoError(t, cache.Close())
		require.NoError(t, cache.Close())
	})
}

func TestNoOpCache(t *testing.T) {
	t.Parallel()

	cache := tenant.NewNoOpCache()
	cache.Set(context.Background(), "acme", newTestTenant(), time.Minute)

	_, ok := cache.Get(context.Background(), "acme")
	assert.False(t, ok)
	assert.NoError(t, cache.Close())
}
