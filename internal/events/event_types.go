package events

import (
	"time"

	"github.com/spec-kit/dispute-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventDisputeCreated       EventType = "dispute_created"
	EventDisputeStatusChanged EventType = "dispute_status_changed"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Email      string      `json:"email,omitempty"`
	SupplierID string      `json:"supplier_id,omitempty"`
	Role       domain.Role `json:"role,omitempty"`
}

// ActorFrom builds an Actor from an identity.
func ActorFrom(identity domain.Identity) Actor {
	return Actor{Email: identity.Email, SupplierID: identity.SupplierID, Role: identity.Role}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	DisputeID string      `json:"dispute_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// DisputeCreatedPayload payload.
type DisputeCreatedPayload struct {
	OrderItemID   string                 `json:"order_item_id"`
	TrackingID    string                 `json:"tracking_id"`
	SupplierName  string                 `json:"supplier_name"`
	SupplierEmail string                 `json:"supplier_email"`
	DisputeType   string                 `json:"dispute_type,omitempty"`
	Priority      domain.DisputePriority `json:"priority"`
}

// DisputeStatusChangedPayload payload.
type DisputeStatusChangedPayload struct {
	OldStatus domain.DisputeStatus `json:"old_status"`
	NewStatus domain.DisputeStatus `json:"new_status"`
}
