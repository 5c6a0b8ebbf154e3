package ratelimit

import (
	"context"
	"sync"
	"time"
)

// window is the per-key timestamp log. Each window carries its own mutex so
// the evict-check-append sequence is atomic per key while checks for
// different keys proceed in parallel.
type window struct {
	mu         sync.Mutex
	timestamps []time.Time
}

// MemoryStore keeps sliding windows in process memory. State is ephemeral:
// a restart resets admission control cleanly.
type MemoryStore struct {
	mu      sync.RWMutex
	windows map[string]*window

	cleanupInterval time.Duration
	cleanupWindow   time.Duration
	initialCapacity int
	stopCleanup     chan struct{}
	cleanupOnce     sync.Once
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithCleanupInterval sets how often the background sweep removes keys whose
// windows have fully drained. Set to 0 to disable the sweep.
func WithCleanupInterval(interval time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) {
		s.cleanupInterval = interval
	}
}

// WithCleanupWindow sets the window duration the sweep uses to decide whether
// a key's entries have all expired. It should match the largest window any
// limiter uses against this store.
func WithCleanupWindow(window time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) {
		if window > 0 {
			s.cleanupWindow = window
		}
	}
}

// WithInitialCapacity sets the initial capacity of each timestamp log.
func WithInitialCapacity(capacity int) MemoryStoreOption {
	return func(s *MemoryStore) {
		if capacity > 0 {
			s.initialCapacity = capacity
		}
	}
}

// NewMemoryStore creates an in-memory store with a periodic cleanup sweep.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		windows:         make(map[string]*window),
		cleanupInterval: 1 * time.Minute,
		cleanupWindow:   1 * time.Minute,
		initialCapacity: 16,
		stopCleanup:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.cleanupInterval > 0 {
		go s.cleanupLoop()
	}

	return s
}

// RecordIfAllowed implements Store. The whole evict-check-append sequence
// runs under the key's own lock so two concurrent callers can never both
// observe count < limit and slip past the boundary together.
func (s *MemoryStore) RecordIfAllowed(ctx context.Context, key string, now time.Time, windowDur time.Duration, limit int) (bool, int, time.Time, error) {
	w := s.window(key)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.evict(now.Add(-windowDur))

	if len(w.timestamps) >= limit {
		return false, len(w.timestamps), w.oldest(), nil
	}

	w.timestamps = append(w.timestamps, now)
	return true, len(w.timestamps), w.oldest(), nil
}

// CountInWindow implements Store.
func (s *MemoryStore) CountInWindow(ctx context.Context, key string, now time.Time, windowDur time.Duration) (int, time.Time, error) {
	s.mu.RLock()
	w, exists := s.windows[key]
	s.mu.RUnlock()

	if !exists {
		return 0, time.Time{}, nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.evict(now.Add(-windowDur))
	return len(w.timestamps), w.oldest(), nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.windows, key)
	return nil
}

// window returns the log for key, creating it if needed.
func (s *MemoryStore) window(key string) *window {
	s.mu.RLock()
	w, exists := s.windows[key]
	s.mu.RUnlock()
	if exists {
		return w
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if w, exists = s.windows[key]; exists {
		return w
	}
	w = &window{timestamps: make([]time.Time, 0, s.initialCapacity)}
	s.windows[key] = w
	return w
}

// evict drops timestamps strictly before cutoff. Caller holds w.mu.
func (w *window) evict(cutoff time.Time) {
	kept := w.timestamps[:0]
	for _, ts := range w.timestamps {
		if !ts.Before(cutoff) {
			kept = append(kept, ts)
		}
	}
	w.timestamps = kept
}

// oldest returns the earliest retained timestamp. Caller holds w.mu.
func (w *window) oldest() time.Time {
	if len(w.timestamps) == 0 {
		return time.Time{}
	}
	return w.timestamps[0]
}

func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCleanup:
			return
		}
	}
}

// sweep removes keys whose windows have fully drained, bounding memory growth
// from identifiers that stop sending traffic.
func (s *MemoryStore) sweep() {
	cutoff := time.Now().Add(-s.cleanupWindow)

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, w := range s.windows {
		w.mu.Lock()
		w.evict(cutoff)
		empty := len(w.timestamps) == 0
		w.mu.Unlock()
		if empty {
			delete(s.windows, key)
		}
	}
}

// Len reports the number of tracked keys. Used by tests and metrics.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.windows)
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *MemoryStore) Close() error {
	s.cleanupOnce.Do(func() {
		close(s.stopCleanup)
	})
	return nil
}
