package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Tenant is the request-scoped view of a customer organization. It carries
// the fields needed for scoping and admission decisions, not the full
// administrative record.
type Tenant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Subdomain string    `json:"subdomain"`
	PlanID    string    `json:"plan_id"`
	MaxAssets int       `json:"max_assets"`
	MaxUsers  int       `json:"max_users"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Provider loads tenant information from a data source.
type Provider interface {
	// GetByIdentifier retrieves a tenant using any unique identifier:
	// a tenant UUID or a subdomain. Returns ErrTenantNotFound if no
	// tenant matches.
	GetByIdentifier(ctx context.Context, identifier string) (*Tenant, error)
}
