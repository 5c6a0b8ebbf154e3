package tenant_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetgrid/assetgrid/pkg/tenant"
)

func newTestTenant() *tenant.Tenant {
	return &tenant.Tenant{
		ID:        uuid.New(),
		Name:      "Acme Corp",
		Subdomain: "acme",
		PlanID:    "team",
		Active:    true,
		CreatedAt: time.Now(),
	}
}

func TestContext(t *testing.T) {
	t.Parallel()

	t.Run("round trips tenant through context", func(t *testing.T) {
		t.Parallel()

		tn := newTestTenant()
		ctx := tenant.WithTenant(context.Background(), tn)

		got, ok := tenant.FromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, tn, got)

		id, ok := tenant.IDFromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, tn.ID, id)
	})

	t.Run("empty context has no tenant", func(t *testing.T) {
		t.Parallel()

		_, ok := tenant.FromContext(context.Background())
		assert.False(t, ok)

		id, ok := tenant.IDFromContext(context.Background())
		assert.False(t, ok)
		assert.Equal(t, uuid.UUID{}, id)
	})

	t.Run("MustFromContext panics without tenant", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			tenant.MustFromContext(context.Background())
		})
	})
}

func TestDetach(t *testing.T) {
	t.Parallel()

	t.Run("carries tenant onto background context", func(t *testing.T) {
		t.Parallel()

		tn := newTestTenant()
		reqCtx, cancel := context.WithCancel(tenant.WithTenant(context.Background(), tn))

		detached := tenant.Detach(reqCtx)
		cancel() // request finishes; detached work must keep running

		require.NoError(t, detached.Err())
		got, ok := tenant.FromContext(detached)
		require.True(t, ok)
		assert.Equal(t, tn.ID, got.ID)
	})

	t.Run("untenanted context detaches to nothing", func(t *testing.T) {
		t.Parallel()

		detached := tenant.Detach(context.Background())
		_, ok := tenant.FromContext(detached)
		assert.False(t, ok)
	})

	t.Run("detached tenant survives into a goroutine", func(t *testing.T) {
		t.Parallel()

		tn := newTestTenant()
		reqCtx := tenant.WithTenant(context.Background(), tn)

		idCh := make(chan uuid.UUID, 1)
		go func(ctx context.Context) {
			id, _ := tenant.IDFromContext(ctx)
			idCh <- id
		}(tenant.Detach(reqCtx))

		assert.Equal(t, tn.ID, <-idCh)
	})
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	extract := tenant.LoggerExtractor()

	tn := newTestTenant()
	attr, ok := extract(tenant.WithTenant(context.Background(), tn))
	require.True(t, ok)
	assert.Equal(t, "tenant_id", attr.Key)
	assert.Equal(t, tn.ID.String(), attr.Value.String())

	_, ok = extract(context.Background())
	assert.False(t, ok)
}
