package webhook

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Envelope is the wire artifact POSTed to an endpoint. It is constructed per
// delivery attempt and never persisted. Field order is the canonical body
// layout receivers sign against.
type Envelope struct {
	Event      string    `json:"event"`
	Timestamp  time.Time `json:"timestamp"`
	Data       any       `json:"data"`
	WebhookID  uuid.UUID `json:"webhookId"`
	DeliveryID uuid.UUID `json:"deliveryId"`
}

// NewEnvelope builds an envelope for one delivery attempt with a freshly
// generated delivery id and the current timestamp.
func NewEnvelope(event string, data any, webhookID uuid.UUID) Envelope {
	return Envelope{
		Event:      event,
		Timestamp:  time.Now().UTC(),
		Data:       data,
		WebhookID:  webhookID,
		DeliveryID: uuid.New(),
	}
}

// Body serializes the envelope to its canonical byte representation. These
// exact bytes are what gets signed and POSTed.
func (e Envelope) Body() ([]byte, error) {
	return json.Marshal(e)
}
