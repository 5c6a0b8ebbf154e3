package ratelimit

import (
	"context"
	"time"
)

// Result contains the outcome of one admission check.
type Result struct {
	// Allowed indicates whether the request was admitted.
	Allowed bool

	// Limit is the maximum number of requests allowed in the window.
	Limit int

	// Remaining is the number of requests left in the current window.
	Remaining int

	// ResetAt is when the oldest recorded request slides out of the window,
	// freeing one slot.
	ResetAt time.Time
}

// RetryAfter returns how long to wait before the next request is allowed.
// Returns 0 if the current request was admitted.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Limiter is the admission gate consulted before business logic runs.
type Limiter interface {
	// Allow checks and, if admitted, records a single request for the key.
	Allow(ctx context.Context, key string) (*Result, error)

	// Status reports the current window state without recording anything.
	Status(ctx context.Context, key string) (*Result, error)

	// Reset clears the recorded history for the key.
	Reset(ctx context.Context, key string) error
}

// Store holds the per-key timestamp logs. The memory implementation never
// fails; errors exist on the interface for networked backends, and callers
// are expected to fail open on them.
type Store interface {
	// RecordIfAllowed atomically evicts timestamps older than now-window,
	// denies without mutation if the remaining count has reached limit, and
	// otherwise appends now. It returns whether the request was admitted,
	// the count of timestamps in the window after the call, and the oldest
	// timestamp still in the window (zero when the window is empty).
	RecordIfAllowed(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (allowed bool, count int, oldest time.Time, err error)

	// CountInWindow reports the live count and oldest timestamp for the key
	// without recording anything.
	CountInWindow(ctx context.Context, key string, now time.Time, window time.Duration) (count int, oldest time.Time, err error)

	// Delete removes the key's history.
	Delete(ctx context.Context, key string) error
}
