// Package journal is the append-only history of restaurant state changes.
// Each applied mutation becomes one Entry, queryable by the order or
// reservation it touched.
package journal

import (
	"context"
	"time"

	"kitchen-flow/internal/restaurant"
)

type Entry struct {
	ID         int64     `json:"id"`
	EntityID   string    `json:"entity_id"`
	EventType  string    `json:"event_type"`
	TableID    string    `json:"table_id,omitempty"`
	Status     string    `json:"status,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// FromEvent converts a restaurant event into a journal entry.
func FromEvent(ev restaurant.Event, requestID string) Entry {
	return Entry{
		EntityID:   ev.EntityID,
		EventType:  string(ev.Type),
		TableID:    ev.TableID,
		Status:     ev.Status,
		Detail:     ev.Detail,
		RequestID:  requestID,
		OccurredAt: ev.OccurredAt,
	}
}

// Repository persists journal entries.
type Repository interface {
	// Save appends an entry; entries are never updated.
	Save(ctx context.Context, entry *Entry) error
	// History returns the entries of one entity, oldest first.
	History(ctx context.Context, entityID string) ([]Entry, error)
}
