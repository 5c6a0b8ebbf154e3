package webhook

import (
	"log/slog"
	"net/http"
	"time"
)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithHTTPClient sets a custom HTTP client. The client's timeout is still
// bounded per delivery by the dispatcher timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Dispatcher) {
		if client != nil {
			d.client = client
		}
	}
}

// WithTimeout bounds each delivery attempt. A hanging receiver occupies a
// worker for at most this long. Default is 10 seconds.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithWorkers sets the delivery pool size. Default is 8.
func WithWorkers(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithQueueSize sets the pending-delivery buffer. When the buffer is full a
// new delivery is dropped rather than blocking the triggering request;
// at-most-once semantics make the drop visible only in logs. Default is 256.
func WithQueueSize(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queueSize = n
		}
	}
}

// WithLogger sets the dispatcher logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithUserAgent overrides the User-Agent header on deliveries.
func WithUserAgent(ua string) Option {
	return func(d *Dispatcher) {
		if ua != "" {
			d.userAgent = ua
		}
	}
}
