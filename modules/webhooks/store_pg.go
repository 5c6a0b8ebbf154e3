package webhooks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/assetgrid/assetgrid/pkg/pg"
	"github.com/assetgrid/assetgrid/pkg/webhook"
)

// PGStore persists webhook registrations in PostgreSQL. It implements both
// the module Store and the dispatcher's webhook.Registry, so delivery health
// survives restarts and is shared across instances.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

var _ Store = (*PGStore)(nil)

const registrationColumns = `id, tenant_id, url, events, active, secret, failure_count, last_error, last_triggered_at, created_at, updated_at`

func (s *PGStore) Create(ctx context.Context, reg *webhook.Registration) error {
	if err := webhook.ValidateURL(reg.URL); err != nil {
		return err
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO webhook_registrations (`+registrationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		reg.ID, reg.TenantID, reg.URL, reg.Events, reg.Active, reg.Secret,
		reg.FailureCount, reg.LastError, reg.LastTriggeredAt, reg.CreatedAt, reg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("webhooks: create: %w", err)
	}
	return nil
}

func (s *PGStore) Get(ctx context.Context, id uuid.UUID) (*webhook.Registration, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+registrationColumns+`
		FROM webhook_registrations WHERE id = $1`, id)
	return scanRegistration(row)
}

func (s *PGStore) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*webhook.Registration, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+registrationColumns+`
		FROM webhook_registrations
		WHERE tenant_id = $1
		ORDER BY created_at`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("webhooks: list: %w", err)
	}
	defer rows.Close()
	return collectRegistrations(rows)
}

func (s *PGStore) ListActiveByEvent(ctx context.Context, tenantID uuid.UUID, event string) ([]*webhook.Registration, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+registrationColumns+`
		FROM webhook_registrations
		WHERE tenant_id = $1 AND active AND $2 = ANY(events)
		ORDER BY created_at`, tenantID, event)
	if err != nil {
		return nil, fmt.Errorf("webhooks: list active: %w", err)
	}
	defer rows.Close()
	return collectRegistrations(rows)
}

func (s *PGStore) Update(ctx context.Context, reg *webhook.Registration) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE webhook_registrations
		SET url = $2, events = $3, updated_at = $4
		WHERE id = $1`,
		reg.ID, reg.URL, reg.Events, reg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("webhooks: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return webhook.ErrRegistrationNotFound
	}
	return nil
}

func (s *PGStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM webhook_registrations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("webhooks: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return webhook.ErrRegistrationNotFound
	}
	return nil
}

func (s *PGStore) RecordSuccess(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE webhook_registrations
		SET failure_count = 0, last_error = '', last_triggered_at = $2, updated_at = $2
		WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("webhooks: record success: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return webhook.ErrRegistrationNotFound
	}
	return nil
}

// RecordFailure increments the failure count and deactivates the endpoint in
// the same statement once the threshold is reached, so concurrent deliveries
// cannot race past it.
func (s *PGStore) RecordFailure(ctx context.Context, id uuid.UUID, at time.Time, cause string) (bool, error) {
	var count int
	var active bool
	err := s.pool.QueryRow(ctx, `
		UPDATE webhook_registrations
		SET failure_count = failure_count + 1,
		    last_error = $2,
		    last_triggered_at = $3,
		    updated_at = $3,
		    active = CASE WHEN failure_count + 1 >= $4 THEN false ELSE active END
		WHERE id = $1
		RETURNING failure_count, active`,
		id, cause, at, webhook.FailureThreshold).Scan(&count, &active)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return false, webhook.ErrRegistrationNotFound
		}
		return false, fmt.Errorf("webhooks: record failure: %w", err)
	}

	// Report the transition exactly once, on the attempt that crossed the
	// threshold.
	return !active && count == webhook.FailureThreshold, nil
}

func (s *PGStore) Reactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE webhook_registrations
		SET active = true, failure_count = 0, last_error = '', updated_at = now()
		WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("webhooks: reactivate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return webhook.ErrRegistrationNotFound
	}
	return nil
}

func scanRegistration(row pgx.Row) (*webhook.Registration, error) {
	var reg webhook.Registration
	err := row.Scan(&reg.ID, &reg.TenantID, &reg.URL, &reg.Events, &reg.Active, &reg.Secret,
		&reg.FailureCount, &reg.LastError, &reg.LastTriggeredAt, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, webhook.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("webhooks: scan: %w", err)
	}
	return &reg, nil
}

func collectRegistrations(rows pgx.Rows) ([]*webhook.Registration, error) {
	var regs []*webhook.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("webhooks: rows: %w", err)
	}
	return regs, nil
}
