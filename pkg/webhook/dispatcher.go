package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/assetgrid/assetgrid/pkg/tenant"
)

// DefaultUserAgent identifies assetgrid deliveries to receivers.
const DefaultUserAgent = "assetgrid-webhook/1.0"

// job is one independent delivery unit: a single endpoint, a single attempt.
// The tenant id travels with the job because the worker goroutine outlives
// the triggering request's context.
type job struct {
	tenantID uuid.UUID
	reg      *Registration
	event    string
	data     any
}

// Dispatcher fans domain events out to subscribed endpoints through a
// bounded worker pool. The zero value is not usable; use NewDispatcher.
type Dispatcher struct {
	registry  Registry
	client    *http.Client
	logger    *slog.Logger
	timeout   time.Duration
	userAgent string

	workers   int
	queueSize int
	jobs      chan job
	wg        sync.WaitGroup
	inflight  atomic.Int64

	// mu guards closed; triggers counts Trigger calls admitted past the
	// closed check, so Close can wait for them before closing the queue.
	mu       sync.Mutex
	closed   bool
	triggers sync.WaitGroup
}

// NewDispatcher creates a dispatcher and starts its delivery workers.
// Close must be called to stop them.
func NewDispatcher(registry Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger:    slog.Default(),
		timeout:   10 * time.Second,
		userAgent: DefaultUserAgent,
		workers:   8,
		queueSize: 256,
	}

	for _, opt := range opts {
		opt(d)
	}

	d.jobs = make(chan job, d.queueSize)
	for range d.workers {
		d.wg.Add(1)
		go d.worker()
	}

	return d
}

// Trigger fans the event out to the triggering tenant's active registrations
// subscribed to eventType. It returns once every delivery has been handed to
// the pool; it never waits on delivery outcomes, and one endpoint's failure
// never affects another's delivery or the caller.
//
// The tenant is read from ctx and fails closed: an untenanted operation
// cannot broadcast events.
func (d *Dispatcher) Trigger(ctx context.Context, eventType string, data any) error {
	tenantID, ok := tenant.IDFromContext(ctx)
	if !ok {
		return tenant.ErrNoTenantInContext
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDispatcherClosed
	}
	d.triggers.Add(1)
	d.mu.Unlock()
	defer d.triggers.Done()

	regs, err := d.registry.ListActiveByEvent(ctx, tenantID, eventType)
	if err != nil {
		return fmt.Errorf("webhook: list registrations: %w", err)
	}

	for _, reg := range regs {
		j := job{tenantID: tenantID, reg: reg, event: eventType, data: data}
		select {
		case d.jobs <- j:
			d.inflight.Add(1)
		default:
			// Queue saturated. Dropping is within the at-most-once contract;
			// blocking the triggering request is not.
			d.logger.Warn("webhook delivery dropped, queue full",
				slog.String("webhook_id", reg.ID.String()),
				slog.String("event_type", eventType))
		}
	}

	return nil
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for j := range d.jobs {
		// Each delivery owns its context: detached from the request, bounded
		// by the per-call timeout, carrying the captured tenant.
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := d.Deliver(ctx, j.reg, j.event, j.data); err != nil {
			d.logger.Error("webhook delivery failed",
				slog.String("tenant_id", j.tenantID.String()),
				slog.String("webhook_id", j.reg.ID.String()),
				slog.String("event_type", j.event),
				slog.Any("error", err))
		}
		cancel()
		d.inflight.Add(-1)
	}
}

// Deliver makes a single signed delivery attempt to one endpoint and records
// the outcome against it. It is the synchronous path behind the pool and is
// also used directly for administrative test-sends.
func (d *Dispatcher) Deliver(ctx context.Context, reg *Registration, eventType string, data any) error {
	if !reg.Active {
		return ErrInactiveRegistration
	}

	env := NewEnvelope(eventType, data, reg.ID)
	body, err := env.Body()
	if err != nil {
		return fmt.Errorf("webhook: encode envelope: %w", err)
	}

	err = d.post(ctx, reg, env, body)
	now := time.Now()

	if err == nil {
		if rerr := d.registry.RecordSuccess(ctx, reg.ID, now); rerr != nil {
			d.logger.Error("webhook success not recorded",
				slog.String("webhook_id", reg.ID.String()), slog.Any("error", rerr))
		}
		return nil
	}

	disabled, rerr := d.registry.RecordFailure(ctx, reg.ID, now, err.Error())
	if rerr != nil {
		d.logger.Error("webhook failure not recorded",
			slog.String("webhook_id", reg.ID.String()), slog.Any("error", rerr))
	}
	if disabled {
		d.logger.Warn("webhook auto-disabled after repeated failures",
			slog.String("webhook_id", reg.ID.String()),
			slog.String("url", reg.URL),
			slog.Int("failure_count", FailureThreshold))
	}

	return err
}

// post sends the signed envelope bytes and classifies the response.
func (d *Dispatcher) post(ctx context.Context, reg *Registration, env Envelope, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set(HeaderSignature, Sign(reg.Secret, body))
	req.Header.Set(HeaderEvent, env.Event)
	req.Header.Set(HeaderWebhookID, reg.ID.String())
	req.Header.Set(HeaderDeliveryID, env.DeliveryID.String())

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// Keep a sanitized slice of the response for the endpoint's last_error.
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.ReplaceAll(string(snippet), "\n", " ")
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	if msg != "" {
		return fmt.Errorf("%w: status %d: %s", ErrDeliveryFailed, resp.StatusCode, msg)
	}
	return fmt.Errorf("%w: status %d", ErrDeliveryFailed, resp.StatusCode)
}

// Flush blocks until the pending queue drains. Intended for tests and
// shutdown paths that want deliveries settled before asserting or exiting.
func (d *Dispatcher) Flush(ctx context.Context) error {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for {
		if d.inflight.Load() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Close stops accepting triggers, waits for in-flight deliveries to finish,
// and stops the workers. Safe to call once.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	// Triggers admitted before the flag flipped may still be enqueuing;
	// the queue must stay open until the last of them returns.
	d.triggers.Wait()
	close(d.jobs)
	d.wg.Wait()
}
