package tenants

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/assetgrid/assetgrid/pkg/pg"
	"github.com/assetgrid/assetgrid/pkg/tenant"
)

// PGStore persists tenants in PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

var _ Store = (*PGStore)(nil)

func (s *PGStore) Create(ctx context.Context, t *tenant.Tenant) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tenants (id, name, subdomain, plan_id, max_assets, max_users, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.Name, t.Subdomain, t.PlanID, t.MaxAssets, t.MaxUsers, t.Active, t.CreatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ErrSubdomainTaken, t.Subdomain)
		}
		return fmt.Errorf("tenants: create: %w", err)
	}
	return nil
}

func (s *PGStore) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return s.get(ctx, `WHERE id = $1`, id)
}

func (s *PGStore) GetBySubdomain(ctx context.Context, subdomain string) (*tenant.Tenant, error) {
	return s.get(ctx, `WHERE subdomain = $1`, subdomain)
}

func (s *PGStore) get(ctx context.Context, where string, arg any) (*tenant.Tenant, error) {
	var t tenant.Tenant
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, subdomain, plan_id, max_assets, max_users, active, created_at
		FROM tenants `+where,
		arg).Scan(&t.ID, &t.Name, &t.Subdomain, &t.PlanID, &t.MaxAssets, &t.MaxUsers, &t.Active, &t.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("tenants: get: %w", err)
	}
	return &t, nil
}

func (s *PGStore) Update(ctx context.Context, t *tenant.Tenant) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE tenants
		SET name = $2, plan_id = $3, max_assets = $4, max_users = $5, active = $6
		WHERE id = $1`,
		t.ID, t.Name, t.PlanID, t.MaxAssets, t.MaxUsers, t.Active)
	if err != nil {
		return fmt.Errorf("tenants: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tenant.ErrTenantNotFound
	}
	return nil
}
