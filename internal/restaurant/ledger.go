package restaurant

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Order is the open tab of a table. While it sits in the ledger DispatchedAt
// is nil; the archive sets it.
type Order struct {
	ID           string          `json:"id"`
	TableID      string          `json:"table_id"`
	TableNumber  int             `json:"table_number"`
	Items        []LineItem      `json:"items"`
	Total        decimal.Decimal `json:"total"`
	Notes        string          `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	DispatchedAt *time.Time      `json:"dispatched_at,omitempty"`
}

func (o *Order) clone() Order {
	out := *o
	out.Items = cloneLines(o.Items)
	if o.DispatchedAt != nil {
		at := *o.DispatchedAt
		out.DispatchedAt = &at
	}
	return out
}

// KitchenStatus is the aggregate status of the order's food lines.
func (o *Order) KitchenStatus() (KitchenStatus, bool) {
	return AggregateStatus(o.Items)
}

func (o *Order) setLines(lines []LineItem) {
	o.Items = lines
	o.Total = sumLines(lines)
}

// OpenOrderInput is what a waiter sends when seating a table.
type OpenOrderInput struct {
	TableID     string        `json:"table_id"`
	TableNumber int           `json:"table_number"`
	Lines       []LineRequest `json:"items"`
	Notes       string        `json:"notes"`
}

// ledger binds a table id to at most one open order.
type ledger struct {
	byTable map[string]*Order
}

func newLedger() *ledger {
	return &ledger{byTable: make(map[string]*Order)}
}

func (l *ledger) get(tableID string) (*Order, bool) {
	o, ok := l.byTable[tableID]
	return o, ok
}

func (l *ledger) occupied(tableID string) bool {
	_, ok := l.byTable[tableID]
	return ok
}

func (l *ledger) insert(o *Order) error {
	if l.occupied(o.TableID) {
		return ErrTableAlreadyOccupied
	}
	l.byTable[o.TableID] = o
	return nil
}

// remove closes the table's order and hands it back to the caller.
func (l *ledger) remove(tableID string) (*Order, bool) {
	o, ok := l.byTable[tableID]
	if ok {
		delete(l.byTable, tableID)
	}
	return o, ok
}

// list returns the open orders oldest first.
func (l *ledger) list() []*Order {
	out := make([]*Order, 0, len(l.byTable))
	for _, o := range l.byTable {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].TableID < out[j].TableID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
