package httpserver

import (
	"log/slog"
	"net/http"
	"time"
)

// Option configures a Server. Options validate eagerly and panic on
// programmer error, the same way a bad flag default would fail at startup.
type Option func(*Server)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	if addr == "" {
		panic("httpserver: WithAddr: empty addr")
	}
	return func(s *Server) { s.addr = addr }
}

// WithReadTimeout bounds reading the entire request, body included.
func WithReadTimeout(d time.Duration) Option {
	mustPositive("WithReadTimeout", d)
	return func(s *Server) { s.readTimeout = d }
}

// WithWriteTimeout bounds writing the response.
func WithWriteTimeout(d time.Duration) Option {
	mustPositive("WithWriteTimeout", d)
	return func(s *Server) { s.writeTimeout = d }
}

// WithIdleTimeout bounds how long a keep-alive connection may sit idle.
func WithIdleTimeout(d time.Duration) Option {
	mustPositive("WithIdleTimeout", d)
	return func(s *Server) { s.idleTimeout = d }
}

// WithShutdownTimeout bounds graceful shutdown; in-flight requests beyond it
// are cut off.
func WithShutdownTimeout(d time.Duration) Option {
	mustPositive("WithShutdownTimeout", d)
	return func(s *Server) { s.shutdownTimeout = d }
}

// WithServer runs the provided http.Server instead of a fresh one. Its
// Handler is replaced on Run; timeout fields already set on it take
// precedence over option values.
func WithServer(srv *http.Server) Option {
	if srv == nil {
		panic("httpserver: WithServer: nil server")
	}
	return func(s *Server) { s.base = srv }
}

// WithLogger sets the logger for lifecycle messages. Nil leaves logging off.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithStartHook registers a callback invoked when the server begins
// listening.
func WithStartHook(h func(*slog.Logger)) Option {
	if h == nil {
		panic("httpserver: WithStartHook: nil hook")
	}
	return func(s *Server) { s.startHooks = append(s.startHooks, h) }
}

// WithStopHook registers a callback invoked after graceful shutdown.
func WithStopHook(h func(*slog.Logger)) Option {
	if h == nil {
		panic("httpserver: WithStopHook: nil hook")
	}
	return func(s *Server) { s.stopHooks = append(s.stopHooks, h) }
}

func mustPositive(name string, d time.Duration) {
	if d <= 0 {
		panic("httpserver: " + name + ": non-positive duration")
	}
}
