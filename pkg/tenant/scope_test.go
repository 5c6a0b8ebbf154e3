package tenant_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetgrid/assetgrid/pkg/tenant"
)

// scopedRecord is a minimal tenant-owned record for guard tests.
type scopedRecord struct {
	tenantID uuid.UUID
	Name     string
}

func (r *scopedRecord) GetTenantID() uuid.UUID { return r.tenantID }
func (r *scopedRecord) SetTenantID(id uuid.UUID) { r.tenantID = id }

func TestStamp(t *testing.T) {
	t.Parallel()

	t.Run("fails closed without tenant context", func(t *testing.T) {
		t.Parallel()

		rec := &scopedRecord{Name: "laptop-042"}
		err := tenant.Stamp(context.Background(), rec)
		require.ErrorIs(t, err, tenant.ErrNoTenantInContext)
		assert.Equal(t, uuid.Nil, rec.GetTenantID())
	})

	t.Run("stamps exactly the context tenant", func(t *testing.T) {
		t.Parallel()

		tn := newTestTenant()
		ctx := tenant.WithTenant(context.Background(), tn)

		rec := &scopedRecord{Name: "laptop-042"}
		require.NoError(t, tenant.Stamp(ctx, rec))
		assert.Equal(t, tn.ID, rec.GetTenantID())
	})

	t.Run("restamping with same tenant is a no-op", func(t *testing.T) {
		t.Parallel()

		tn := newTestTenant()
		ctx := tenant.WithTenant(context.Background(), tn)

		rec := &scopedRecord{tenantID: tn.ID}
		require.NoError(t, tenant.Stamp(ctx, rec))
		assert.Equal(t, tn.ID, rec.GetTenantID())
	})

	t.Run("rejects change of tenant id", func(t *testing.T) {
		t.Parallel()

		original := uuid.New()
		rec := &scopedRecord{tenantID: original}

		ctx := tenant.WithTenant(context.Background(), newTestTenant())
		err := tenant.Stamp(ctx, rec)
		require.ErrorIs(t, err, tenant.ErrTenantMismatch)
		assert.Equal(t, original, rec.GetTenantID(), "tenant id is immutable after creation")
	})
}

func TestCheck(t *testing.T) {
	t.Parallel()

	t.Run("fails closed without tenant context", func(t *testing.T) {
		t.Parallel()

		err := tenant.Check(context.Background(), &scopedRecord{tenantID: uuid.New()})
		assert.ErrorIs(t, err, tenant.ErrNoTenantInContext)
	})

	t.Run("passes for owning tenant", func(t *testing.T) {
		t.Parallel()

		tn := newTestTenant()
		ctx := tenant.WithTenant(context.Background(), tn)
		assert.NoError(t, tenant.Check(ctx, &scopedRecord{tenantID: tn.ID}))
	})

	t.Run("rejects foreign record", func(t *testing.T) {
		t.Parallel()

		ctx := tenant.WithTenant(context.Background(), newTestTenant())
		err := tenant.Check(ctx, &scopedRecord{tenantID: uuid.New()})
		assert.ErrorIs(t, err, tenant.ErrTenantMismatch)
	})

	t.Run("never stamps a blank record", func(t *testing.T) {
		t.Parallel()

		ctx := tenant.WithTenant(context.Background(), newTestTenant())
		rec := &scopedRecord{}
		err := tenant.Check(ctx, rec)
		assert.ErrorIs(t, err, tenant.ErrTenantMismatch)
		assert.Equal(t, uuid.Nil, rec.GetTenantID())
	})
}
