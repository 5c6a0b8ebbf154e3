package tenants

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/assetgrid/assetgrid/pkg/logger"
	"github.com/assetgrid/assetgrid/pkg/tenant"
)

// Store persists tenant records.
type Store interface {
	Create(ctx context.Context, t *tenant.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*tenant.Tenant, error)
	Update(ctx context.Context, t *tenant.Tenant) error
}

// subdomainPattern matches DNS-label style slugs: lowercase alphanumerics
// with inner hyphens, 3 to 63 characters.
var subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{1,61}[a-z0-9])$`)

// Service provides administrative operations over tenants. It doubles as the
// tenant.Provider used by the resolution middleware, and invalidates the
// resolver cache on every mutation so stale records cannot outlive a change.
type Service struct {
	store Store
	cache tenant.Cache
	log   *slog.Logger
}

func NewService(store Store, cache tenant.Cache, log *slog.Logger) *Service {
	if cache == nil {
		cache = tenant.NewNoOpCache()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, cache: cache, log: log}
}

// RegisterParams describes a new tenant signup.
type RegisterParams struct {
	Name      string `json:"name"`
	Subdomain string `json:"subdomain"`
	PlanID    string `json:"plan_id"`
	MaxAssets int    `json:"max_assets"`
	MaxUsers  int    `json:"max_users"`
}

// Register creates a new active tenant. The subdomain is lowercased and must
// be a valid DNS label; uniqueness is enforced by the store.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*tenant.Tenant, error) {
	if params.Name == "" {
		return nil, ErrNameRequired
	}

	subdomain := strings.ToLower(strings.TrimSpace(params.Subdomain))
	if !subdomainPattern.MatchString(subdomain) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSubdomain, params.Subdomain)
	}

	t := &tenant.Tenant{
		ID:        uuid.New(),
		Name:      params.Name,
		Subdomain: subdomain,
		PlanID:    params.PlanID,
		MaxAssets: params.MaxAssets,
		MaxUsers:  params.MaxUsers,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "tenant registered",
		logger.TenantID(t.ID.String()), slog.String("subdomain", t.Subdomain))
	return t, nil
}

// GetByIdentifier implements tenant.Provider: the identifier is either a
// tenant UUID or a subdomain.
func (s *Service) GetByIdentifier(ctx context.Context, identifier string) (*tenant.Tenant, error) {
	if identifier == "" {
		return nil, tenant.ErrInvalidIdentifier
	}
	if id, err := uuid.Parse(identifier); err == nil {
		return s.store.GetByID(ctx, id)
	}
	return s.store.GetBySubdomain(ctx, strings.ToLower(identifier))
}

// UpdateParams carries the mutable tenant fields. Nil means keep current.
type UpdateParams struct {
	Name      *string `json:"name"`
	PlanID    *string `json:"plan_id"`
	MaxAssets *int    `json:"max_assets"`
	MaxUsers  *int    `json:"max_users"`
}

// Update applies the given changes and invalidates cached resolutions for
// the tenant.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*tenant.Tenant, error) {
	t, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		if *params.Name == "" {
			return nil, ErrNameRequired
		}
		t.Name = *params.Name
	}
	if params.PlanID != nil {
		t.PlanID = *params.PlanID
	}
	if params.MaxAssets != nil {
		t.MaxAssets = *params.MaxAssets
	}
	if params.MaxUsers != nil {
		t.MaxUsers = *params.MaxUsers
	}

	if err := s.store.Update(ctx, t); err != nil {
		return nil, err
	}

	s.invalidate(ctx, t)
	return t, nil
}

// Deactivate soft-deletes a tenant. The cache entries are dropped in the
// same call, so the next request for this tenant hits the store and sees the
// inactive record.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	t, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !t.Active {
		return nil
	}

	t.Active = false
	if err := s.store.Update(ctx, t); err != nil {
		return err
	}

	s.invalidate(ctx, t)
	s.log.InfoContext(ctx, "tenant deactivated", logger.TenantID(t.ID.String()))
	return nil
}

// invalidate drops every cache key the resolver may have stored the tenant
// under: the UUID form and the subdomain form.
func (s *Service) invalidate(ctx context.Context, t *tenant.Tenant) {
	s.cache.Delete(ctx, t.ID.String())
	if t.Subdomain != "" {
		s.cache.Delete(ctx, t.Subdomain)
	}
}
