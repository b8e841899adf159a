package restaurant

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTables struct {
	mu       sync.Mutex
	occupied []string
	err      error
}

func (f *fakeTables) MarkOccupied(_ context.Context, tableID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.occupied = append(f.occupied, tableID)
	return nil
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *recordingSink) Record(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *recordingSink) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

// stepClock advances one minute on every reading.
type stepClock struct {
	t time.Time
}

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, money(want).Equal(got), "want %s, got %s", want, got)
}

func testItems() []InventoryItem {
	return []InventoryItem{
		{ID: "burger", Name: "Hamburguesa", Category: CategoryFood, Price: money("10.00"), Quantity: 5, Unit: "plato"},
		{ID: "soda", Name: "Gaseosa", Category: "Bebida", Price: money("5.50"), Quantity: 10, Unit: "vaso"},
		{ID: "soup", Name: "Sopa", Category: CategoryFood, Price: money("7.25"), Quantity: 0, Unit: "plato"},
		{ID: "steak", Name: "Bistec", Category: CategoryFood, Price: money("20.00"), Quantity: 3, Unit: "plato"},
	}
}

type fixture struct {
	svc    *Service
	tables *fakeTables
	sink   *recordingSink
	clock  *stepClock
}

func setup(t *testing.T) fixture {
	t.Helper()

	catalog, err := NewMemoryCatalog(testItems())
	require.NoError(t, err)

	f := fixture{
		tables: &fakeTables{},
		sink:   &recordingSink{},
		clock:  &stepClock{t: time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)},
	}
	f.svc = NewService(catalog,
		WithClock(f.clock.Now),
		WithIDGenerator(sequentialIDs()),
		WithTableDirectory(f.tables),
		WithSinks(f.sink),
	)
	return f
}
