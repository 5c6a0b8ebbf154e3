// Package ratelimit provides the per-credential admission gate that runs in
// front of every business operation: a sliding-window limiter that tracks
// individual request timestamps within a trailing time interval.
//
// Admission is keyed by a credential or user identifier, never by tenant, so
// the gate protects shared downstream resources regardless of how requests
// map onto tenants.
//
// # Algorithm
//
// Each check for a key evicts timestamps older than now-window, denies if the
// remaining count has reached the limit, and otherwise records now and
// admits. Eviction, check, and append happen atomically per key; checks for
// different keys never contend on a shared lock.
//
// The limit is inclusive: with limit 3 the fourth request inside one window
// is denied with zero remaining. Once the window slides past the oldest
// recorded timestamp the key admits again.
//
// # Usage
//
//	store := ratelimit.NewMemoryStore()
//	defer store.Close()
//
//	limiter, err := ratelimit.NewSlidingWindow(store, 100, time.Minute)
//	if err != nil { ... }
//
//	router.Use(ratelimit.Middleware(limiter, func(r *http.Request) string {
//		return r.Header.Get("X-API-Key")
//	}))
//
// The middleware stamps X-RateLimit-Limit, X-RateLimit-Remaining, and
// X-RateLimit-Reset on every gated response and answers denials with 429 and
// a Retry-After header. It fails open on store errors so a storage outage
// degrades to unlimited admission rather than an outage of the API itself.
//
// # Backends
//
// MemoryStore is the default: in-process, ephemeral, reset cleanly on
// restart. Each running instance enforces its own budget; a horizontally
// scaled deployment that needs one shared budget can opt into RedisStore,
// which keeps the window in a Redis sorted set.
package ratelimit
