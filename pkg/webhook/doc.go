// Package webhook turns domain events into signed HTTP notifications
// delivered to tenant-registered endpoints, with per-endpoint health tracking
// and automatic disabling of endpoints that keep failing.
//
// # Delivery model
//
// Delivery is at-most-once: one attempt per event per endpoint, no retries,
// no backoff. A transient receiver outage can drop an event; the cost shows
// up only in the endpoint's failure count. This is a deliberate tradeoff, not
// a queue waiting to be built.
//
// Trigger never blocks on delivery. It looks up the active registrations of
// the triggering tenant that subscribe to the event and hands one job per
// endpoint to a bounded worker pool. Endpoints are fully independent: one
// unreachable receiver has no effect on its siblings or on the request that
// raised the event.
//
// # Signing
//
// Each delivery POSTs a JSON envelope and signs the exact body bytes:
//
//	X-Webhook-Signature: sha256=<base64 HMAC-SHA256(secret, body)>
//	X-Webhook-Event:     <event type>
//	X-Webhook-ID:        <registration id>
//	X-Webhook-Delivery-ID: <unique per attempt>
//
// Receivers recompute the HMAC over the raw body with their shared secret and
// reject on mismatch. Verify implements the receiver side for Go consumers.
//
// # Endpoint health
//
// A 2xx response resets the endpoint's failure count. Anything else, network
// errors included, increments it; at ten consecutive failures the endpoint is
// disabled and skipped by subsequent triggers until an administrator
// re-enables it. The transition is logged at warning level and is terminal:
// there is no cooldown.
//
// # Usage
//
//	d := webhook.NewDispatcher(registry,
//		webhook.WithTimeout(10*time.Second),
//		webhook.WithLogger(log),
//	)
//	defer d.Close()
//
//	// inside a tenanted operation:
//	d.Trigger(ctx, "asset.created", assetPayload)
package webhook
