package webhook

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry is the dispatcher's view of persisted registrations. Lookups are
// scoped to the triggering tenant; health updates are atomic per record so
// concurrent deliveries to the same endpoint cannot lose counts.
type Registry interface {
	// ListActiveByEvent returns the tenant's active registrations subscribed
	// to the event type.
	ListActiveByEvent(ctx context.Context, tenantID uuid.UUID, event string) ([]*Registration, error)

	// Get returns a registration by id.
	Get(ctx context.Context, id uuid.UUID) (*Registration, error)

	// RecordSuccess resets the failure count, clears the last error, and
	// stamps the delivery time.
	RecordSuccess(ctx context.Context, id uuid.UUID, at time.Time) error

	// RecordFailure increments the failure count, records the error text,
	// and stamps the delivery time. When the count reaches FailureThreshold
	// the registration is deactivated; disabled reports that transition so
	// the caller can log it.
	RecordFailure(ctx context.Context, id uuid.UUID, at time.Time, cause string) (disabled bool, err error)
}

// record pairs a registration with its own lock so health updates contend
// only on the endpoint being touched.
type record struct {
	mu  sync.Mutex
	reg Registration
}

// MemoryRegistry is an in-process Registry. Webhook health lives in process
// memory with it; a multi-instance deployment that needs shared health state
// should use a persistent registry instead.
type MemoryRegistry struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*record
}

// NewMemoryRegistry creates an empty in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{records: make(map[uuid.UUID]*record)}
}

// Put inserts or replaces a registration.
func (m *MemoryRegistry) Put(ctx context.Context, reg *Registration) error {
	if err := ValidateURL(reg.URL); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[reg.ID] = &record{reg: *reg}
	return nil
}

// Delete removes a registration.
func (m *MemoryRegistry) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}

// Get implements Registry. The returned registration is a copy.
func (m *MemoryRegistry) Get(ctx context.Context, id uuid.UUID) (*Registration, error) {
	rec, ok := m.record(id)
	if !ok {
		return nil, ErrRegistrationNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	return cloneRegistration(&rec.reg), nil
}

// ListActiveByEvent implements Registry. Returned registrations are copies.
func (m *MemoryRegistry) ListActiveByEvent(ctx context.Context, tenantID uuid.UUID, event string) ([]*Registration, error) {
	m.mu.RLock()
	records := make([]*record, 0, len(m.records))
	for _, rec := range m.records {
		records = append(records, rec)
	}
	m.mu.RUnlock()

	var out []*Registration
	for _, rec := range records {
		rec.mu.Lock()
		if rec.reg.Active && rec.reg.TenantID == tenantID && rec.reg.SubscribesTo(event) {
			out = append(out, cloneRegistration(&rec.reg))
		}
		rec.mu.Unlock()
	}
	return out, nil
}

// RecordSuccess implements Registry.
func (m *MemoryRegistry) RecordSuccess(ctx context.Context, id uuid.UUID, at time.Time) error {
	rec, ok := m.record(id)
	if !ok {
		return ErrRegistrationNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	rec.reg.FailureCount = 0
	rec.reg.LastError = ""
	rec.reg.LastTriggeredAt = &at
	rec.reg.UpdatedAt = at
	return nil
}

// RecordFailure implements Registry.
func (m *MemoryRegistry) RecordFailure(ctx context.Context, id uuid.UUID, at time.Time, cause string) (bool, error) {
	rec, ok := m.record(id)
	if !ok {
		return false, ErrRegistrationNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	rec.reg.FailureCount++
	rec.reg.LastError = cause
	rec.reg.LastTriggeredAt = &at
	rec.reg.UpdatedAt = at

	if rec.reg.Active && rec.reg.FailureCount >= FailureThreshold {
		rec.reg.Active = false
		return true, nil
	}
	return false, nil
}

// Reactivate re-enables a disabled endpoint and resets its failure state.
// This is the manual circuit reset; the dispatcher never calls it.
func (m *MemoryRegistry) Reactivate(ctx context.Context, id uuid.UUID) error {
	rec, ok := m.record(id)
	if !ok {
		return ErrRegistrationNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	rec.reg.Active = true
	rec.reg.FailureCount = 0
	rec.reg.LastError = ""
	rec.reg.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryRegistry) record(id uuid.UUID) (*record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	return rec, ok
}

func cloneRegistration(reg *Registration) *Registration {
	out := *reg
	out.Events = slices.Clone(reg.Events)
	if reg.LastTriggeredAt != nil {
		at := *reg.LastTriggeredAt
		out.LastTriggeredAt = &at
	}
	return &out
}
