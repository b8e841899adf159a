package restaurant

import (
	"context"
	"time"
)

type EventType string

const (
	EventOrderOpened          EventType = "order.opened"
	EventOrderLineAdded       EventType = "order.line_added"
	EventOrderLineRemoved     EventType = "order.line_removed"
	EventKitchenStatusChanged EventType = "order.kitchen_status_changed"
	EventOrderDispatched      EventType = "order.dispatched"
	EventOrderResumed         EventType = "order.resumed"

	EventReservationCreated   EventType = "reservation.created"
	EventReservationUpdated   EventType = "reservation.updated"
	EventReservationCancelled EventType = "reservation.cancelled"
	EventReservationDeleted   EventType = "reservation.deleted"
	EventTableAssigned        EventType = "reservation.table_assigned"
	EventPreOrderChanged      EventType = "reservation.pre_order_changed"

	// Persisted comandas, emitted by the comandas API.
	EventComandaCreated       EventType = "comanda.created"
	EventComandaStatusChanged EventType = "comanda.status_changed"
)

// Event describes one applied state change. EntityID is the order or
// reservation id.
type Event struct {
	Type       EventType `json:"type"`
	EntityID   string    `json:"entity_id"`
	TableID    string    `json:"table_id,omitempty"`
	Status     string    `json:"status,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventSink receives events after the mutation that produced them is applied.
// A failing sink never undoes the mutation.
type EventSink interface {
	Record(ctx context.Context, ev Event) error
}
