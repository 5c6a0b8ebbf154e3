package httpserver_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetgrid/assetgrid/pkg/httpserver"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

// startServer runs srv in the background and waits until it accepts
// connections.
func startServer(t *testing.T, srv *httpserver.Server, addr string, handler http.Handler) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx, handler) }()

	require.Eventually(t, func() bool {
		conn, err := net.DialTimeout("tcp", addr, 50*time.Millisecond)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}, 2*time.Second, 20*time.Millisecond, "server never started listening")

	return cancel, errCh
}

func TestServer_RunAndShutdown(t *testing.T) {
	t.Parallel()

	t.Run("serves requests and stops cleanly on context cancel", func(t *testing.T) {
		t.Parallel()

		addr := freeAddr(t)
		srv := httpserver.New(httpserver.WithAddr(addr))
		cancel, done := startServer(t, srv, addr, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "pong")
		}))

		resp, err := http.Get("http://" + addr + "/ping")
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "pong", string(body))

		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("server did not stop after context cancel")
		}
	})

	t.Run("second run is refused", func(t *testing.T) {
		t.Parallel()

		addr := freeAddr(t)
		srv := httpserver.New(httpserver.WithAddr(addr))
		cancel, done := startServer(t, srv, addr, nil)

		err := srv.Run(context.Background(), nil)
		require.ErrorIs(t, err, httpserver.ErrStart)

		cancel()
		require.NoError(t, <-done)
	})

	t.Run("listen failure surfaces via ErrStart", func(t *testing.T) {
		t.Parallel()

		l, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer l.Close()

		srv := httpserver.New(httpserver.WithAddr(l.Addr().String()))
		err = srv.Run(context.Background(), nil)
		require.ErrorIs(t, err, httpserver.ErrStart)
	})

	t.Run("start and stop hooks fire once each", func(t *testing.T) {
		t.Parallel()

		var started, stopped int
		addr := freeAddr(t)
		srv := httpserver.New(
			httpserver.WithAddr(addr),
			httpserver.WithStartHook(func(*slog.Logger) { started++ }),
			httpserver.WithStopHook(func(*slog.Logger) { stopped++ }),
		)
		cancel, done := startServer(t, srv, addr, nil)

		cancel()
		require.NoError(t, <-done)
		assert.Equal(t, 1, started)
		assert.Equal(t, 1, stopped)
	})

	t.Run("shutdown before run is a no-op", func(t *testing.T) {
		t.Parallel()

		srv := httpserver.New()
		assert.NoError(t, srv.Shutdown(context.Background()))
	})
}

func TestServer_WithServer(t *testing.T) {
	t.Parallel()

	addr := freeAddr(t)
	base := &http.Server{Addr: addr, ReadHeaderTimeout: time.Second}
	srv := httpserver.New(httpserver.WithServer(base))

	cancel, done := startServer(t, srv, addr, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	resp, err := http.Get("http://" + addr + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	cancel()
	require.NoError(t, <-done)
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	addr := freeAddr(t)
	srv := httpserver.NewFromConfig(httpserver.Config{
		Addr:            addr,
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		ShutdownTimeout: time.Second,
	})

	cancel, done := startServer(t, srv, addr, nil)
	cancel()
	require.NoError(t, <-done)
}

func TestOptionValidation(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { httpserver.WithAddr("") })
	assert.Panics(t, func() { httpserver.WithReadTimeout(0) })
	assert.Panics(t, func() { httpserver.WithWriteTimeout(-time.Second) })
	assert.Panics(t, func() { httpserver.WithIdleTimeout(0) })
	assert.Panics(t, func() { httpserver.WithShutdownTimeout(0) })
	assert.Panics(t, func() { httpserver.WithServer(nil) })
	assert.Panics(t, func() { httpserver.WithStartHook(nil) })
	assert.Panics(t, func() { httpserver.WithStopHook(nil) })
}

func TestHealthCheckHandler(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.DiscardHandler)
	probe := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	t.Run("liveness without checks", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		httpserver.HealthCheckHandler(context.Background(), log)(w, probe)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ALIVE", w.Body.String())
	})

	t.Run("ready when all checks pass", func(t *testing.T) {
		t.Parallel()

		ok := func(context.Context) error { return nil }
		w := httptest.NewRecorder()
		httpserver.HealthCheckHandler(context.Background(), log, ok, ok)(w, probe)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "READY", w.Body.String())
	})

	t.Run("not ready on first failing check", func(t *testing.T) {
		t.Parallel()

		ok := func(context.Context) error { return nil }
		bad := func(context.Context) error { return errors.New("db down") }
		w := httptest.NewRecorder()
		httpserver.HealthCheckHandler(context.Background(), log, ok, bad)(w, probe)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "NOT_READY", w.Body.String())
	})
}
