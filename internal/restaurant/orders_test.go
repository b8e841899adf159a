package restaurant

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTable(t *testing.T, svc *Service, tableID string, lines ...LineRequest) Order {
	t.Helper()
	o, err := svc.OpenOrder(context.Background(), OpenOrderInput{TableID: tableID, TableNumber: 1, Lines: lines})
	require.NoError(t, err)
	return o
}

func TestOpenOrder(t *testing.T) {
	f := setup(t)

	o := openTable(t, f.svc, "t1",
		LineRequest{ItemID: "burger", Quantity: 2},
		LineRequest{ItemID: "soda", Quantity: 1},
	)

	assert.Equal(t, "t1", o.TableID)
	assert.Nil(t, o.DispatchedAt)
	assert.False(t, o.CreatedAt.IsZero())
	require.Len(t, o.Items, 2)
	assert.Equal(t, KitchenPending, o.Items[0].KitchenStatus)
	assert.Empty(t, o.Items[1].KitchenStatus)
	assertMoney(t, "25.50", o.Total)

	assert.Equal(t, []string{"t1"}, f.tables.occupied)
	assert.Equal(t, []EventType{EventOrderOpened}, f.sink.types())
}

func TestOpenOrder_TableAlreadyOccupied(t *testing.T) {
	f := setup(t)
	first := openTable(t, f.svc, "t1")

	_, err := f.svc.OpenOrder(context.Background(), OpenOrderInput{TableID: "t1"})
	assert.ErrorIs(t, err, ErrTableAlreadyOccupied)
	assert.ErrorIs(t, err, ErrConflict)

	active, err := f.svc.ActiveOrder("t1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, active.ID)
	assert.Len(t, f.svc.ActiveOrders(), 1)
}

func TestOpenOrder_Validation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.OpenOrder(ctx, OpenOrderInput{TableID: "  "})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.OpenOrder(ctx, OpenOrderInput{TableID: "t1", Lines: []LineRequest{{ItemID: "burger", Quantity: 0}}})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = f.svc.OpenOrder(ctx, OpenOrderInput{TableID: "t1", Lines: []LineRequest{{ItemID: "soup", Quantity: 1}}})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = f.svc.OpenOrder(ctx, OpenOrderInput{TableID: "t1", Lines: []LineRequest{{ItemID: "nope", Quantity: 1}}})
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Empty(t, f.svc.ActiveOrders())
	assert.Empty(t, f.tables.occupied)
	assert.Empty(t, f.sink.types())
}

func TestOpenOrder_TableDirectoryFailureAppliesNothing(t *testing.T) {
	f := setup(t)
	f.tables.err = errors.New("connection refused")

	_, err := f.svc.OpenOrder(context.Background(), OpenOrderInput{TableID: "t1"})
	assert.ErrorIs(t, err, ErrPersistence)

	_, err = f.svc.ActiveOrder("t1")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestAddAndRemoveOrderLines(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	openTable(t, f.svc, "t1")

	o, err := f.svc.AddOrderLine(ctx, "t1", LineRequest{ItemID: "burger", Quantity: 2})
	require.NoError(t, err)
	o, err = f.svc.AddOrderLine(ctx, "t1", LineRequest{ItemID: "soda", Quantity: 1})
	require.NoError(t, err)
	assertMoney(t, "25.50", o.Total)

	o, err = f.svc.RemoveOrderLine(ctx, "t1", o.Items[0].ID)
	require.NoError(t, err)
	require.Len(t, o.Items, 1)
	assertMoney(t, "5.50", o.Total)

	t.Run("absent line is a no-op", func(t *testing.T) {
		before := len(f.sink.types())
		same, err := f.svc.RemoveOrderLine(ctx, "t1", "missing")
		require.NoError(t, err)
		assert.Equal(t, o, same)
		assert.Len(t, f.sink.types(), before)
	})

	t.Run("no open order", func(t *testing.T) {
		_, err := f.svc.AddOrderLine(ctx, "t9", LineRequest{ItemID: "soda", Quantity: 1})
		assert.ErrorIs(t, err, ErrOrderNotFound)
		_, err = f.svc.RemoveOrderLine(ctx, "t9", "x")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestActiveOrder_ReturnsCopy(t *testing.T) {
	f := setup(t)
	openTable(t, f.svc, "t1", LineRequest{ItemID: "burger", Quantity: 1})

	o, err := f.svc.ActiveOrder("t1")
	require.NoError(t, err)
	o.Items[0].Quantity = 99

	again, err := f.svc.ActiveOrder("t1")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Items[0].Quantity)
}

func TestKitchenFlow_ReadyDispatches(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	opened := openTable(t, f.svc, "t1",
		LineRequest{ItemID: "burger", Quantity: 1},
		LineRequest{ItemID: "steak", Quantity: 1},
		LineRequest{ItemID: "soda", Quantity: 2},
	)

	o, err := f.svc.StartPreparing(ctx, "t1")
	require.NoError(t, err)
	status, _ := o.KitchenStatus()
	assert.Equal(t, KitchenPreparing, status)
	assert.Equal(t, KitchenPreparing, o.Items[0].KitchenStatus)
	assert.Equal(t, KitchenPreparing, o.Items[1].KitchenStatus)
	assert.Empty(t, o.Items[2].KitchenStatus)

	o, err = f.svc.MarkReady(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, o.DispatchedAt)
	assert.False(t, o.DispatchedAt.Before(o.CreatedAt))
	assert.Equal(t, opened.Total, o.Total)

	_, err = f.svc.ActiveOrder("t1")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	dispatched := f.svc.DispatchedOrders()
	require.Len(t, dispatched, 1)
	assert.Equal(t, opened.ID, dispatched[0].ID)

	assert.Equal(t, []EventType{
		EventOrderOpened,
		EventKitchenStatusChanged,
		EventKitchenStatusChanged,
		EventOrderDispatched,
	}, f.sink.types())

	t.Run("table stays occupied", func(t *testing.T) {
		assert.Equal(t, []string{"t1"}, f.tables.occupied)
	})
}

func TestUpdateOrderKitchenStatus_Rejects(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.UpdateOrderKitchenStatus(ctx, "t1", KitchenPreparing)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	openTable(t, f.svc, "drinks", LineRequest{ItemID: "soda", Quantity: 1})
	_, err = f.svc.StartPreparing(ctx, "drinks")
	assert.ErrorIs(t, err, ErrNoKitchenLines)

	openTable(t, f.svc, "t1", LineRequest{ItemID: "burger", Quantity: 1})
	_, err = f.svc.MarkReady(ctx, "t1")
	assert.ErrorIs(t, err, ErrInvalidKitchenTransition)

	o, err := f.svc.ActiveOrder("t1")
	require.NoError(t, err)
	assert.Equal(t, KitchenPending, o.Items[0].KitchenStatus)
}

func TestResumeOrder(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	opened := openTable(t, f.svc, "t1",
		LineRequest{ItemID: "burger", Quantity: 1},
		LineRequest{ItemID: "soda", Quantity: 1},
	)
	_, err := f.svc.StartPreparing(ctx, "t1")
	require.NoError(t, err)
	_, err = f.svc.MarkReady(ctx, "t1")
	require.NoError(t, err)

	resumed, err := f.svc.ResumeOrder(ctx, opened.ID)
	require.NoError(t, err)
	assert.Nil(t, resumed.DispatchedAt)
	assert.Equal(t, KitchenPreparing, resumed.Items[0].KitchenStatus)
	assert.Empty(t, resumed.Items[1].KitchenStatus)
	assert.Equal(t, opened.CreatedAt, resumed.CreatedAt)

	assert.Empty(t, f.svc.DispatchedOrders())
	queue := f.svc.KitchenQueue()
	require.Len(t, queue, 1)
	assert.Equal(t, opened.ID, queue[0].ID)

	_, err = f.svc.ResumeOrder(ctx, opened.ID)
	assert.ErrorIs(t, err, ErrDispatchedOrderNotFound)
}

func TestResumeOrder_TableTaken(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	first := openTable(t, f.svc, "t1", LineRequest{ItemID: "burger", Quantity: 1})
	_, err := f.svc.StartPreparing(ctx, "t1")
	require.NoError(t, err)
	_, err = f.svc.MarkReady(ctx, "t1")
	require.NoError(t, err)

	second := openTable(t, f.svc, "t1", LineRequest{ItemID: "steak", Quantity: 1})

	_, err = f.svc.ResumeOrder(ctx, first.ID)
	assert.ErrorIs(t, err, ErrTableAlreadyOccupied)

	active, err := f.svc.ActiveOrder("t1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)
	assert.Len(t, f.svc.DispatchedOrders(), 1)
}

func TestKitchenQueueAndStats(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	openTable(t, f.svc, "t1", LineRequest{ItemID: "burger", Quantity: 1})
	openTable(t, f.svc, "t2", LineRequest{ItemID: "steak", Quantity: 1})
	openTable(t, f.svc, "t3", LineRequest{ItemID: "soda", Quantity: 1})
	openTable(t, f.svc, "t4", LineRequest{ItemID: "burger", Quantity: 1})

	_, err := f.svc.StartPreparing(ctx, "t2")
	require.NoError(t, err)
	_, err = f.svc.StartPreparing(ctx, "t4")
	require.NoError(t, err)
	_, err = f.svc.MarkReady(ctx, "t4")
	require.NoError(t, err)

	queue := f.svc.KitchenQueue()
	require.Len(t, queue, 2)
	assert.Equal(t, "t1", queue[0].TableID)
	assert.Equal(t, "t2", queue[1].TableID)

	assert.Equal(t, KitchenStats{Pending: 1, Preparing: 1, Dispatched: 1, TotalOrders: 2}, f.svc.KitchenStats())
}

func TestDispatchedOrders_NewestFirst(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, table := range []string{"t1", "t2"} {
		openTable(t, f.svc, table, LineRequest{ItemID: "burger", Quantity: 1})
		_, err := f.svc.StartPreparing(ctx, table)
		require.NoError(t, err)
		_, err = f.svc.MarkReady(ctx, table)
		require.NoError(t, err)
	}

	dispatched := f.svc.DispatchedOrders()
	require.Len(t, dispatched, 2)
	assert.Equal(t, "t2", dispatched[0].TableID)
	assert.Equal(t, "t1", dispatched[1].TableID)
}

func TestSinkFailureDoesNotFailMutation(t *testing.T) {
	f := setup(t)
	f.sink.err = errors.New("journal down")

	o := openTable(t, f.svc, "t1")
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, []EventType{EventOrderOpened}, f.sink.types())
}

func TestOpenOrder_ConcurrentSameTable(t *testing.T) {
	f := setup(t)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.OpenOrder(context.Background(), OpenOrderInput{TableID: "t1"})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, ErrTableAlreadyOccupied)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Len(t, f.svc.ActiveOrders(), 1)
}
