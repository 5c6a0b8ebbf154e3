package webhook

import (
	"net/url"
	"slices"
	"time"

	"github.com/google/uuid"
)

// FailureThreshold is the number of consecutive failed deliveries after which
// an endpoint is disabled. The transition is terminal: only an administrative
// re-enable brings the endpoint back.
const FailureThreshold = 10

// Registration is a tenant-registered external endpoint subscribed to a set
// of event types. The dispatcher mutates its health fields on every delivery
// attempt; everything else changes only through administrative operations.
type Registration struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	URL       string    `json:"url"`
	Events    []string  `json:"events"`
	Active    bool      `json:"active"`

	// Secret signs delivery payloads. It is generated once at creation and
	// never exposed again after the create response.
	Secret string `json:"-"`

	FailureCount    int        `json:"failure_count"`
	LastError       string     `json:"last_error,omitempty"`
	LastTriggeredAt *time.Time `json:"last_triggered_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetTenantID implements tenant.Scoped.
func (r *Registration) GetTenantID() uuid.UUID { return r.TenantID }

// SetTenantID implements tenant.Scoped.
func (r *Registration) SetTenantID(id uuid.UUID) { r.TenantID = id }

// SubscribesTo reports whether the registration subscribes to the event type.
func (r *Registration) SubscribesTo(event string) bool {
	return slices.Contains(r.Events, event)
}

// ValidateURL checks that a registration target is a usable http(s) URL.
func ValidateURL(raw string) error {
	if raw == "" {
		return ErrInvalidURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidURL
	}
	if u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}
