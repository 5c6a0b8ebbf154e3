package tenant

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// contextKey is a private type to prevent collisions with other context keys.
type contextKey struct{}

// WithTenant adds a tenant to the context.
func WithTenant(ctx context.Context, t *Tenant) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

// FromContext retrieves the tenant from the context.
// Returns nil, false if no tenant is found.
func FromContext(ctx context.Context) (*Tenant, bool) {
	t, ok := ctx.Value(contextKey{}).(*Tenant)
	return t, ok
}

// IDFromContext retrieves just the tenant ID from the context.
// Returns zero UUID and false if no tenant is found.
func IDFromContext(ctx context.Context) (uuid.UUID, bool) {
	t, ok := FromContext(ctx)
	if !ok || t == nil {
		return uuid.UUID{}, false
	}
	return t.ID, true
}

// MustFromContext retrieves the tenant from the context and panics if none is
// set. Use only in handlers mounted behind RequireTenant.
func MustFromContext(ctx context.Context) *Tenant {
	t, ok := FromContext(ctx)
	if !ok || t == nil {
		panic("tenant: no tenant in context")
	}
	return t
}

// Detach captures the current tenant onto a fresh background context for
// hand-off to work that outlives the request (webhook fan-out, scheduled
// jobs). The returned context carries only the tenant: cancellation and
// deadlines of the source context deliberately do not propagate, so the
// detached unit is not torn down when the request finishes.
//
// Returns context.Background unchanged if no tenant is set, so detached work
// started from an untenanted operation fails closed at the persistence guard
// instead of inheriting a stale tenant.
func Detach(ctx context.Context) context.Context {
	t, ok := FromContext(ctx)
	if !ok || t == nil {
		return context.Background()
	}
	return WithTenant(context.Background(), t)
}

// LoggerExtractor returns a ContextExtractor for the logger that records the
// tenant id on every log line emitted within a tenanted operation.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IDFromContext(ctx); ok {
			return slog.String("tenant_id", id.String()), true
		}
		return slog.Attr{}, false
	}
}
