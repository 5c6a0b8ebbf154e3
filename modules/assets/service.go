package assets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/assetgrid/assetgrid/pkg/logger"
	"github.com/assetgrid/assetgrid/pkg/tenant"
)

// Store persists assets. Every method operates within the tenant carried by
// the context and fails closed without one.
type Store interface {
	Create(ctx context.Context, a *Asset) error
	Get(ctx context.Context, id uuid.UUID) (*Asset, error)
	List(ctx context.Context, filter ListFilter) ([]*Asset, error)
	Update(ctx context.Context, a *Asset) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Triggerer fans an event out to the tenant's subscribed webhooks.
type Triggerer interface {
	Trigger(ctx context.Context, eventType string, data any) error
}

// Event types published by this module.
const (
	EventAssetCreated = "asset.created"
	EventAssetUpdated = "asset.updated"
	EventAssetDeleted = "asset.deleted"
)

// ListFilter narrows List results.
type ListFilter struct {
	Status     string
	CategoryID *uuid.UUID
	AssignedTo *uuid.UUID
}

// Service implements the asset lifecycle. Webhook events are emitted after
// each successful mutation; emission failures are logged, never surfaced, so
// a broken endpoint cannot fail an API request.
type Service struct {
	store     Store
	events    Triggerer
	billing   BillingGateway // optional quota enforcement
	directory UserDirectory  // optional assignee validation
	log       *slog.Logger
}

func NewService(store Store, events Triggerer, opts ...Option) *Service {
	s := &Service{store: store, events: events, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Option configures optional service collaborators.
type Option func(*Service)

func WithBilling(b BillingGateway) Option {
	return func(s *Service) { s.billing = b }
}

func WithUserDirectory(d UserDirectory) Option {
	return func(s *Service) { s.directory = d }
}

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// CreateParams describes a new asset.
type CreateParams struct {
	Name          string     `json:"name"`
	Tag           string     `json:"tag"`
	Serial        string     `json:"serial"`
	CategoryID    *uuid.UUID `json:"category_id"`
	PurchaseDate  *time.Time `json:"purchase_date"`
	WarrantyUntil *time.Time `json:"warranty_until"`
}

// Create adds an asset to the current tenant's inventory and emits
// asset.created.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Asset, error) {
	tenantID, ok := tenant.IDFromContext(ctx)
	if !ok {
		return nil, tenant.ErrNoTenantInContext
	}

	if params.Name == "" {
		return nil, ErrNameRequired
	}
	tag := strings.TrimSpace(params.Tag)
	if tag == "" {
		return nil, ErrTagRequired
	}

	if s.billing != nil {
		remaining, err := s.billing.AssetQuotaRemaining(ctx, tenantID)
		if err != nil {
			return nil, fmt.Errorf("assets: quota check: %w", err)
		}
		if remaining <= 0 {
			return nil, ErrQuotaExhausted
		}
	}

	now := time.Now().UTC()
	a := &Asset{
		ID:            uuid.New(),
		Name:          params.Name,
		Tag:           tag,
		Serial:        params.Serial,
		CategoryID:    params.CategoryID,
		Status:        StatusAvailable,
		PurchaseDate:  params.PurchaseDate,
		WarrantyUntil: params.WarrantyUntil,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := tenant.Stamp(ctx, a); err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, a); err != nil {
		return nil, err
	}

	s.emit(ctx, EventAssetCreated, a)
	return a, nil
}

// Get returns one of the current tenant's assets.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Asset, error) {
	return s.store.Get(ctx, id)
}

// List returns the current tenant's assets, optionally filtered.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Asset, error) {
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, filter.Status)
	}
	return s.store.List(ctx, filter)
}

// UpdateParams carries the mutable asset fields. Nil means keep current.
type UpdateParams struct {
	Name          *string    `json:"name"`
	Serial        *string    `json:"serial"`
	Status        *string    `json:"status"`
	CategoryID    *uuid.UUID `json:"category_id"`
	AssignedTo    *uuid.UUID `json:"assigned_to"`
	PurchaseDate  *time.Time `json:"purchase_date"`
	WarrantyUntil *time.Time `json:"warranty_until"`
}

// Update applies the given changes and emits asset.updated.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Asset, error) {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := tenant.Check(ctx, a); err != nil {
		return nil, err
	}

	if params.Name != nil {
		if *params.Name == "" {
			return nil, ErrNameRequired
		}
		a.Name = *params.Name
	}
	if params.Serial != nil {
		a.Serial = *params.Serial
	}
	if params.Status != nil {
		if !ValidStatus(*params.Status) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, *params.Status)
		}
		a.Status = *params.Status
	}
	if params.CategoryID != nil {
		a.CategoryID = params.CategoryID
	}
	if params.AssignedTo != nil {
		if s.directory != nil {
			known, err := s.directory.Exists(ctx, a.TenantID, *params.AssignedTo)
			if err != nil {
				return nil, fmt.Errorf("assets: assignee lookup: %w", err)
			}
			if !known {
				return nil, ErrUnknownUser
			}
		}
		a.AssignedTo = params.AssignedTo
		a.Status = StatusAssigned
	}
	if params.PurchaseDate != nil {
		a.PurchaseDate = params.PurchaseDate
	}
	if params.WarrantyUntil != nil {
		a.WarrantyUntil = params.WarrantyUntil
	}
	a.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, a); err != nil {
		return nil, err
	}

	s.emit(ctx, EventAssetUpdated, a)
	return a, nil
}

// Delete removes an asset and emits asset.deleted.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := tenant.Check(ctx, a); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.emit(ctx, EventAssetDeleted, map[string]any{
		"id":  a.ID.String(),
		"tag": a.Tag,
	})
	return nil
}

func (s *Service) emit(ctx context.Context, eventType string, data any) {
	if s.events == nil {
		return
	}
	if err := s.events.Trigger(ctx, eventType, data); err != nil {
		s.log.ErrorContext(ctx, "webhook trigger failed",
			logger.EventType(eventType), logger.Error(err))
	}
}
