package ratelimit

import (
	"context"
	"time"
)

// SlidingWindow admits requests whose key has seen fewer than limit requests
// in the trailing window. The window moves continuously with the clock; there
// are no fixed boundaries to burst across.
type SlidingWindow struct {
	store  Store
	limit  int
	window time.Duration
}

// NewSlidingWindow creates a sliding window limiter.
func NewSlidingWindow(store Store, limit int, window time.Duration) (*SlidingWindow, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	if window <= 0 {
		return nil, ErrInvalidWindow
	}

	return &SlidingWindow{
		store:  store,
		limit:  limit,
		window: window,
	}, nil
}

// Limit returns the configured per-window request budget.
func (sw *SlidingWindow) Limit() int { return sw.limit }

// Window returns the configured window duration.
func (sw *SlidingWindow) Window() time.Duration { return sw.window }

// Allow checks and, if admitted, records a single request for the key.
// A denied check does not mutate the window.
func (sw *SlidingWindow) Allow(ctx context.Context, key string) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}

	now := time.Now()
	allowed, count, oldest, err := sw.store.RecordIfAllowed(ctx, key, now, sw.window, sw.limit)
	if err != nil {
		return nil, err
	}

	return sw.result(allowed, count, oldest, now), nil
}

// Status reports the current window state without consuming a slot.
func (sw *SlidingWindow) Status(ctx context.Context, key string) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}

	now := time.Now()
	count, oldest, err := sw.store.CountInWindow(ctx, key, now, sw.window)
	if err != nil {
		return nil, err
	}

	return sw.result(count < sw.limit, count, oldest, now), nil
}

// Reset clears the recorded history for the key.
func (sw *SlidingWindow) Reset(ctx context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}
	return sw.store.Delete(ctx, key)
}

func (sw *SlidingWindow) result(allowed bool, count int, oldest time.Time, now time.Time) *Result {
	resetAt := now.Add(sw.window)
	if !oldest.IsZero() {
		resetAt = oldest.Add(sw.window)
	}

	return &Result{
		Allowed:   allowed,
		Limit:     sw.limit,
		Remaining: max(0, sw.limit-count),
		ResetAt:   resetAt,
	}
}
