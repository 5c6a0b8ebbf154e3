package assets

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Asset statuses.
const (
	StatusAvailable   = "available"
	StatusAssigned    = "assigned"
	StatusMaintenance = "maintenance"
	StatusRetired     = "retired"
)

// Asset is a tracked piece of IT equipment belonging to exactly one tenant.
type Asset struct {
	ID            uuid.UUID  `json:"id"`
	TenantID      uuid.UUID  `json:"tenant_id"`
	CategoryID    *uuid.UUID `json:"category_id,omitempty"`
	Name          string     `json:"name"`
	Tag           string     `json:"tag"`
	Serial        string     `json:"serial,omitempty"`
	Status        string     `json:"status"`
	PurchaseDate  *time.Time `json:"purchase_date,omitempty"`
	WarrantyUntil *time.Time `json:"warranty_until,omitempty"`
	AssignedTo    *uuid.UUID `json:"assigned_to,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// GetTenantID implements tenant.Scoped.
func (a *Asset) GetTenantID() uuid.UUID { return a.TenantID }

// SetTenantID implements tenant.Scoped.
func (a *Asset) SetTenantID(id uuid.UUID) { a.TenantID = id }

// ValidStatus reports whether s is a known asset status.
func ValidStatus(s string) bool {
	switch s {
	case StatusAvailable, StatusAssigned, StatusMaintenance, StatusRetired:
		return true
	}
	return false
}

// The collaborator interfaces below are the seams to the surrounding
// platform. Their implementations live in their own services; this module
// only depends on the behavior it needs.

// CategoryService resolves asset categories.
type CategoryService interface {
	Exists(ctx context.Context, tenantID, categoryID uuid.UUID) (bool, error)
}

// MaintenanceService schedules maintenance work for an asset.
type MaintenanceService interface {
	Schedule(ctx context.Context, assetID uuid.UUID, at time.Time, note string) error
}

// UserDirectory resolves the people assets are assigned to.
type UserDirectory interface {
	Exists(ctx context.Context, tenantID, userID uuid.UUID) (bool, error)
}

// BillingGateway answers plan-limit questions for a tenant.
type BillingGateway interface {
	AssetQuotaRemaining(ctx context.Context, tenantID uuid.UUID) (int, error)
}

// Notifier sends in-app or email notifications about asset changes.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, subject, body string) error
}

// Importer ingests assets in bulk from an external source.
type Importer interface {
	Import(ctx context.Context, tenantID uuid.UUID, source string) (int, error)
}
