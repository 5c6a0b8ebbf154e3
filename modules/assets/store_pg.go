package assets

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/assetgrid/assetgrid/pkg/pg"
	"github.com/assetgrid/assetgrid/pkg/tenant"
)

// PGStore persists assets in PostgreSQL. Every query carries a tenant_id
// predicate taken from the request context, so a record outside the calling
// tenant's scope behaves exactly like a missing one.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

var _ Store = (*PGStore)(nil)

const assetColumns = `id, tenant_id, category_id, name, tag, serial, status, purchase_date, warranty_until, assigned_to, created_at, updated_at`

func (s *PGStore) Create(ctx context.Context, a *Asset) error {
	if err := tenant.Stamp(ctx, a); err != nil {
		return err
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO assets (`+assetColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		a.ID, a.TenantID, a.CategoryID, a.Name, a.Tag, a.Serial, a.Status,
		a.PurchaseDate, a.WarrantyUntil, a.AssignedTo, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ErrTagTaken, a.Tag)
		}
		return fmt.Errorf("assets: create: %w", err)
	}
	return nil
}

func (s *PGStore) Get(ctx context.Context, id uuid.UUID) (*Asset, error) {
	tenantID, ok := tenant.IDFromContext(ctx)
	if !ok {
		return nil, tenant.ErrNoTenantInContext
	}

	row := s.pool.QueryRow(ctx, `
		SELECT `+assetColumns+`
		FROM assets WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	return scanAsset(row)
}

func (s *PGStore) List(ctx context.Context, filter ListFilter) ([]*Asset, error) {
	tenantID, ok := tenant.IDFromContext(ctx)
	if !ok {
		return nil, tenant.ErrNoTenantInContext
	}

	query := `SELECT ` + assetColumns + ` FROM assets WHERE tenant_id = $1`
	args := []any{tenantID}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		query += fmt.Sprintf(" AND category_id = $%d", len(args))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		query += fmt.Sprintf(" AND assigned_to = $%d", len(args))
	}
	query += " ORDER BY created_at"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("assets: list: %w", err)
	}
	defer rows.Close()

	var out []*Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("assets: rows: %w", err)
	}
	return out, nil
}

func (s *PGStore) Update(ctx context.Context, a *Asset) error {
	if err := tenant.Check(ctx, a); err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE assets
		SET category_id = $3, name = $4, tag = $5, serial = $6, status = $7,
		    purchase_date = $8, warranty_until = $9, assigned_to = $10, updated_at = $11
		WHERE id = $1 AND tenant_id = $2`,
		a.ID, a.TenantID, a.CategoryID, a.Name, a.Tag, a.Serial, a.Status,
		a.PurchaseDate, a.WarrantyUntil, a.AssignedTo, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("assets: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAssetNotFound
	}
	return nil
}

func (s *PGStore) Delete(ctx context.Context, id uuid.UUID) error {
	tenantID, ok := tenant.IDFromContext(ctx)
	if !ok {
		return tenant.ErrNoTenantInContext
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM assets WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return fmt.Errorf("assets: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAssetNotFound
	}
	return nil
}

func scanAsset(row pgx.Row) (*Asset, error) {
	var a Asset
	err := row.Scan(&a.ID, &a.TenantID, &a.CategoryID, &a.Name, &a.Tag, &a.Serial, &a.Status,
		&a.PurchaseDate, &a.WarrantyUntil, &a.AssignedTo, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrAssetNotFound
		}
		return nil, fmt.Errorf("assets: scan: %w", err)
	}
	return &a, nil
}
