// Package restaurant owns the front-of-house state: open orders per table,
// kitchen progress, dispatched orders and reservations. Every mutation goes
// through Service, which serialises them behind one lock.
package restaurant

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"kitchen-flow/internal/logger"
)

// TableDirectory is told when a table becomes occupied by a new order.
type TableDirectory interface {
	MarkOccupied(ctx context.Context, tableID string) error
}

type noopTables struct{}

func (noopTables) MarkOccupied(context.Context, string) error { return nil }

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func WithTableDirectory(tables TableDirectory) Option {
	return func(s *Service) { s.tables = tables }
}

func WithSinks(sinks ...EventSink) Option {
	return func(s *Service) { s.sinks = append(s.sinks, sinks...) }
}

func WithLogger(log *logger.Logger) Option {
	return func(s *Service) { s.log = log }
}

type Service struct {
	mu sync.Mutex

	catalog Catalog
	tables  TableDirectory
	sinks   []EventSink
	log     *logger.Logger
	now     func() time.Time
	newID   func() string

	orders       *ledger
	dispatched   *archive
	reservations map[string]*Reservation
}

func NewService(catalog Catalog, opts ...Option) *Service {
	s := &Service{
		catalog:      catalog,
		tables:       noopTables{},
		log:          logger.Nop(),
		now:          time.Now,
		newID:        uuid.NewString,
		orders:       newLedger(),
		dispatched:   newArchive(),
		reservations: make(map[string]*Reservation),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// mutate runs fn under the lock and publishes its events once the lock is released.
func (s *Service) mutate(ctx context.Context, fn func() ([]Event, error)) error {
	events, err := func() ([]Event, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		return fn()
	}()
	if err != nil {
		return err
	}
	s.publish(ctx, events)
	return nil
}

func (s *Service) publish(ctx context.Context, events []Event) {
	if len(events) == 0 || len(s.sinks) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	requestID := logger.RequestIDFromContext(ctx)

	for _, ev := range events {
		for _, sink := range s.sinks {
			if err := sink.Record(ctx, ev); err != nil {
				s.log.Error("event_record_failed", "Failed to record event", requestID, err, map[string]interface{}{
					"event_type": string(ev.Type),
					"entity_id":  ev.EntityID,
				})
			}
		}
	}
}

func (s *Service) event(typ EventType, entityID, tableID, status string) Event {
	return Event{
		Type:       typ,
		EntityID:   entityID,
		TableID:    tableID,
		Status:     status,
		OccurredAt: s.now().UTC(),
	}
}

// Inventory lists catalog items of a category; "" or AllCategories lists all.
func (s *Service) Inventory(category string) []InventoryItem {
	return s.catalog.List(category)
}

func (s *Service) InventoryCategories() []string {
	return s.catalog.Categories()
}

func (s *Service) lookup(itemID string) (InventoryItem, error) {
	item, ok := s.catalog.Lookup(itemID)
	if !ok {
		return InventoryItem{}, wrapID(ErrItemNotFound, itemID)
	}
	return item, nil
}
