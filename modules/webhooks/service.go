package webhooks

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/assetgrid/assetgrid/pkg/logger"
	"github.com/assetgrid/assetgrid/pkg/tenant"
	"github.com/assetgrid/assetgrid/pkg/webhook"
)

// Store persists webhook registrations. It extends the dispatcher's Registry
// view with the administrative operations.
type Store interface {
	webhook.Registry

	Create(ctx context.Context, reg *webhook.Registration) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*webhook.Registration, error)
	Update(ctx context.Context, reg *webhook.Registration) error
	Delete(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error
}

// Deliverer is the dispatcher capability the admin test-send needs.
type Deliverer interface {
	Deliver(ctx context.Context, reg *webhook.Registration, eventType string, data any) error
}

// Service manages webhook registrations for the tenant in the request
// context. Every operation on an existing registration verifies ownership,
// so one tenant can never read or mutate another tenant's endpoints.
type Service struct {
	store     Store
	deliverer Deliverer
	log       *slog.Logger
}

func NewService(store Store, deliverer Deliverer, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, deliverer: deliverer, log: log}
}

// CreateParams describes a new registration.
type CreateParams struct {
	URL    string   `json:"url"`
	Events []string `json:"events"`
}

// Create registers a new endpoint for the current tenant. The returned
// secret is shown exactly once; it is never readable through Get or List.
func (s *Service) Create(ctx context.Context, params CreateParams) (*webhook.Registration, string, error) {
	tenantID, ok := tenant.IDFromContext(ctx)
	if !ok {
		return nil, "", tenant.ErrNoTenantInContext
	}

	if err := webhook.ValidateURL(params.URL); err != nil {
		return nil, "", err
	}
	if len(params.Events) == 0 {
		return nil, "", ErrEventsRequired
	}

	secret, err := newSecret()
	if err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	reg := &webhook.Registration{
		ID:        uuid.New(),
		TenantID:  tenantID,
		URL:       params.URL,
		Events:    params.Events,
		Active:    true,
		Secret:    secret,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.Create(ctx, reg); err != nil {
		return nil, "", err
	}

	s.log.InfoContext(ctx, "webhook registered",
		logger.TenantID(tenantID.String()),
		logger.WebhookID(reg.ID.String()),
		slog.String("url", reg.URL))
	return reg, secret, nil
}

// Get returns one of the current tenant's registrations. The secret is
// redacted by the Registration's own JSON encoding.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*webhook.Registration, error) {
	return s.owned(ctx, id)
}

// List returns all registrations of the current tenant.
func (s *Service) List(ctx context.Context) ([]*webhook.Registration, error) {
	tenantID, ok := tenant.IDFromContext(ctx)
	if !ok {
		return nil, tenant.ErrNoTenantInContext
	}
	return s.store.ListByTenant(ctx, tenantID)
}

// UpdateParams carries the mutable registration fields. The secret is
// immutable by design; rotating it means creating a new registration.
type UpdateParams struct {
	URL    *string  `json:"url"`
	Events []string `json:"events"`
}

// Update changes the target URL or event subscriptions.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*webhook.Registration, error) {
	reg, err := s.owned(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.URL != nil {
		if err := webhook.ValidateURL(*params.URL); err != nil {
			return nil, err
		}
		reg.URL = *params.URL
	}
	if params.Events != nil {
		if len(params.Events) == 0 {
			return nil, ErrEventsRequired
		}
		reg.Events = params.Events
	}
	reg.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// Delete removes a registration permanently.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.owned(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// Reactivate re-enables an endpoint that was disabled after repeated
// failures, resetting its failure count. This is the only way back from the
// disabled state.
func (s *Service) Reactivate(ctx context.Context, id uuid.UUID) (*webhook.Registration, error) {
	reg, err := s.owned(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.Reactivate(ctx, id); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "webhook reactivated",
		logger.TenantID(reg.TenantID.String()),
		logger.WebhookID(id.String()))
	return s.store.Get(ctx, id)
}

// TestSend makes a synchronous delivery of a probe event to the endpoint and
// reports the outcome. It goes through the regular delivery path, so a
// failing probe counts against the endpoint's failure threshold.
func (s *Service) TestSend(ctx context.Context, id uuid.UUID) error {
	reg, err := s.owned(ctx, id)
	if err != nil {
		return err
	}

	payload := map[string]any{
		"message":    "test delivery",
		"webhook_id": reg.ID.String(),
	}
	return s.deliverer.Deliver(ctx, reg, "webhook.test", payload)
}

// owned loads a registration and verifies it belongs to the tenant in ctx.
// A foreign registration is reported as not found, not as forbidden, to
// avoid leaking registration ids across tenants.
func (s *Service) owned(ctx context.Context, id uuid.UUID) (*webhook.Registration, error) {
	tenantID, ok := tenant.IDFromContext(ctx)
	if !ok {
		return nil, tenant.ErrNoTenantInContext
	}

	reg, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if reg.TenantID != tenantID {
		return nil, webhook.ErrRegistrationNotFound
	}
	return reg, nil
}

func newSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("webhooks: generate secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
