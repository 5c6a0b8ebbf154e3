package tenant

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Scoped is implemented by every domain record that belongs to a tenant.
// The tenant id must be set at the moment of first persistence and never
// changes afterwards.
type Scoped interface {
	GetTenantID() uuid.UUID
	SetTenantID(id uuid.UUID)
}

// Stamp applies the current operation's tenant to a record before it is
// persisted. It fails closed: writing with no tenant in context returns
// ErrNoTenantInContext instead of defaulting, and a record already stamped
// with a different tenant returns ErrTenantMismatch. Stamping an already
// correctly stamped record is a no-op.
//
// Stores call Stamp on every insert; update paths use Check to reject
// cross-tenant writes without restamping.
func Stamp(ctx context.Context, rec Scoped) error {
	id, ok := IDFromContext(ctx)
	if !ok || id == uuid.Nil {
		return ErrNoTenantInContext
	}

	current := rec.GetTenantID()
	if current == uuid.Nil {
		rec.SetTenantID(id)
		return nil
	}
	if current != id {
		return fmt.Errorf("%w: record is stamped %s, context is %s", ErrTenantMismatch, current, id)
	}
	return nil
}

// Check verifies that an already persisted record belongs to the current
// operation's tenant. Unlike Stamp it never mutates the record: a blank
// record fails, because Check runs on reads and updates where the id must
// already exist.
func Check(ctx context.Context, rec Scoped) error {
	id, ok := IDFromContext(ctx)
	if !ok || id == uuid.Nil {
		return ErrNoTenantInContext
	}
	if rec.GetTenantID() != id {
		return fmt.Errorf("%w: record is stamped %s, context is %s", ErrTenantMismatch, rec.GetTenantID(), id)
	}
	return nil
}
