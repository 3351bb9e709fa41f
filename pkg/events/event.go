package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type is the wire name of a real-time event.
type Type string

const (
	TypeOrderPlaced        Type = "newOrder"
	TypeOrderStatusUpdated Type = "orderUpdate"
	TypeDisputeCreated     Type = "newDispute"
	TypeDisputeResolved    Type = "disputeUpdate"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeOrderPlaced, TypeOrderStatusUpdated, TypeDisputeCreated, TypeDisputeResolved:
		return true
	}
	return false
}

// Event is an immutable notification. Data holds the encoded payload so the
// same value can be pushed to websockets and through the redis relay.
type Event struct {
	ID         string          `json:"id"`
	Type       Type            `json:"event"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

type OrderPlacedPayload struct {
	OrderID     uuid.UUID       `json:"orderId"`
	VendorID    uuid.UUID       `json:"vendorId"`
	BuyerID     uuid.UUID       `json:"buyerId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

type OrderStatusUpdatedPayload struct {
	OrderID uuid.UUID `json:"orderId"`
	BuyerID uuid.UUID `json:"buyerId"`
	Status  string    `json:"status"`
}

type DisputeCreatedPayload struct {
	DisputeID uuid.UUID `json:"disputeId"`
	VendorID  uuid.UUID `json:"vendorId"`
	BuyerID   uuid.UUID `json:"buyerId"`
}

type DisputeResolvedPayload struct {
	DisputeID uuid.UUID `json:"disputeId"`
	BuyerID   uuid.UUID `json:"buyerId"`
	VendorID  uuid.UUID `json:"vendorId"`
}

// New encodes payload into an Event of the given type.
func New(t Type, payload any) (Event, error) {
	if !t.IsValid() {
		return Event{}, fmt.Errorf("unknown event type %q", t)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s payload: %w", t, err)
	}
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}, nil
}

func OrderPlaced(p OrderPlacedPayload) (Event, error) {
	return New(TypeOrderPlaced, p)
}

func OrderStatusUpdated(p OrderStatusUpdatedPayload) (Event, error) {
	return New(TypeOrderStatusUpdated, p)
}

func DisputeCreated(p DisputeCreatedPayload) (Event, error) {
	return New(TypeDisputeCreated, p)
}

func DisputeResolved(p DisputeResolvedPayload) (Event, error) {
	return New(TypeDisputeResolved, p)
}
