package models

import (
	"time"

	"kitchen-flow/internal/restaurant"
)

// NotificationMessage is what the API publishes for every applied state change.
type NotificationMessage struct {
	EventType string    `json:"event_type"`
	EntityID  string    `json:"entity_id"`
	TableID   string    `json:"table_id,omitempty"`
	Status    string    `json:"status,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewNotificationMessage(ev restaurant.Event, requestID string) *NotificationMessage {
	return &NotificationMessage{
		EventType: string(ev.Type),
		EntityID:  ev.EntityID,
		TableID:   ev.TableID,
		Status:    ev.Status,
		Detail:    ev.Detail,
		RequestID: requestID,
		Timestamp: ev.OccurredAt,
	}
}

// RoutingKey is the event type, e.g. "order.dispatched".
func (m *NotificationMessage) RoutingKey() string {
	return m.EventType
}
