package ratelimit_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetgrid/assetgrid/pkg/ratelimit"
)

func gatedServer(t *testing.T, limit int, window time.Duration) http.Handler {
	t.Helper()

	limiter := newLimiter(t, limit, window)
	mw := ratelimit.Middleware(limiter, ratelimit.ByHeader("X-API-Key"))
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestMiddleware_RateLimit(t *testing.T) {
	t.Parallel()

	t.Run("sets headers on admitted requests", func(t *testing.T) {
		t.Parallel()

		srv := gatedServer(t, 3, time.Minute)

		req := httptest.NewRequest(http.MethodGet, "/assets", nil)
		req.Header.Set("X-API-Key", "cred-1")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Remaining"))

		reset, err := strconv.ParseInt(rec.Header().Get("X-RateLimit-Reset"), 10, 64)
		require.NoError(t, err)
		assert.InDelta(t, time.Now().Add(time.Minute).Unix(), reset, 2)
	})

	t.Run("denies with 429 and Retry-After", func(t *testing.T) {
		t.Parallel()

		srv := gatedServer(t, 2, time.Minute)

		var rec *httptest.ResponseRecorder
		for range 3 {
			req := httptest.NewRequest(http.MethodGet, "/assets", nil)
			req.Header.Set("X-API-Key", "cred-1")
			rec = httptest.NewRecorder()
			srv.ServeHTTP(rec, req)
		}

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

		retryAfter, err := strconv.Atoi(rec.Header().Get("Retry-After"))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, retryAfter, 1)
	})

	t.Run("budgets are per credential", func(t *testing.T) {
		t.Parallel()

		srv := gatedServer(t, 1, time.Minute)

		req := httptest.NewRequest(http.MethodGet, "/assets", nil)
		req.Header.Set("X-API-Key", "cred-1")
		srv.ServeHTTP(httptest.NewRecorder(), req)

		req = httptest.NewRequest(http.MethodGet, "/assets", nil)
		req.Header.Set("X-API-Key", "cred-2")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unidentified requests are not gated", func(t *testing.T) {
		t.Parallel()

		srv := gatedServer(t, 1, time.Minute)

		for range 3 {
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
		}
	})

	t.Run("fails open on limiter errors", func(t *testing.T) {
		t.Parallel()

		mw := ratelimit.Middleware(failingLimiter{}, ratelimit.ByHeader("X-API-Key"))
		srv := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/assets", nil)
		req.Header.Set("X-API-Key", "cred-1")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("panics without key func", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			ratelimit.Middleware(failingLimiter{}, nil)
		})
	})
}

type failingLimiter struct{}

func (failingLimiter) Allow(ctx context.Context, key string) (*ratelimit.Result, error) {
	return nil, errors.New("store down")
}

func (failingLimiter) Status(ctx context.Context, key string) (*ratelimit.Result, error) {
	return nil, errors.New("store down")
}

func (failingLimiter) Reset(ctx context.Context, key string) error {
	return errors.New("store down")
}

func TestKeyFuncs(t *testing.T) {
	t.Parallel()

	t.Run("ByClientIP prefers forwarded header", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

		assert.Equal(t, "203.0.113.7", ratelimit.ByClientIP()(req))
	})

	t.Run("ByClientIP falls back to remote addr", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"

		assert.Equal(t, "10.0.0.1", ratelimit.ByClientIP()(req))
	})

	t.Run("FirstOf picks the first non-empty key", func(t *testing.T) {
		t.Parallel()

		fn := ratelimit.FirstOf(ratelimit.ByHeader("X-API-Key"), ratelimit.ByClientIP())

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		assert.Equal(t, "10.0.0.1", fn(req))

		req.Header.Set("X-API-Key", "cred-1")
		assert.Equal(t, "cred-1", fn(req))
	})

	t.Run("FirstOf hashes oversized keys", func(t *testing.T) {
		t.Parallel()

		fn := ratelimit.FirstOf(ratelimit.ByHeader("X-API-Key"))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-API-Key", string(make([]byte, 200)))

		key := fn(req)
		assert.Len(t, key, 32)
	})
}
