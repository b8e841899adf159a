package restaurant

import (
	"context"
	"fmt"
	"strings"
)

func wrapID(err error, id string) error {
	return fmt.Errorf("%w %q", err, id)
}

// OpenOrder binds a new order to a table and marks the table occupied.
func (s *Service) OpenOrder(ctx context.Context, in OpenOrderInput) (Order, error) {
	tableID := strings.TrimSpace(in.TableID)
	if tableID == "" {
		return Order{}, ValidationError{Field: "table_id", Message: "table id is required"}
	}

	var out Order
	err := s.mutate(ctx, func() ([]Event, error) {
		if s.orders.occupied(tableID) {
			return nil, wrapID(ErrTableAlreadyOccupied, tableID)
		}

		lines, err := s.priceOrderLines(nil, in.Lines)
		if err != nil {
			return nil, err
		}

		if err := s.tables.MarkOccupied(ctx, tableID); err != nil {
			return nil, fmt.Errorf("%w: mark table %s occupied: %w", ErrPersistence, tableID, err)
		}

		o := &Order{
			ID:          s.newID(),
			TableID:     tableID,
			TableNumber: in.TableNumber,
			Notes:       in.Notes,
			CreatedAt:   s.now(),
		}
		o.setLines(lines)
		if err := s.orders.insert(o); err != nil {
			return nil, err
		}

		out = o.clone()
		return []Event{s.event(EventOrderOpened, o.ID, tableID, "")}, nil
	})
	return out, err
}

// priceOrderLines adds every requested line. Food lines start pending.
func (s *Service) priceOrderLines(lines []LineItem, reqs []LineRequest) ([]LineItem, error) {
	for _, req := range reqs {
		item, err := s.lookup(req.ItemID)
		if err != nil {
			return nil, err
		}
		next, _, err := addLine(lines, item, req.Quantity, s.newID())
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", item.ID, err)
		}
		if last := &next[len(next)-1]; last.IsFood() {
			last.KitchenStatus = KitchenPending
		}
		lines = next
	}
	return lines, nil
}

func (s *Service) AddOrderLine(ctx context.Context, tableID string, req LineRequest) (Order, error) {
	var out Order
	err := s.mutate(ctx, func() ([]Event, error) {
		o, ok := s.orders.get(tableID)
		if !ok {
			return nil, wrapID(ErrOrderNotFound, tableID)
		}

		lines, err := s.priceOrderLines(o.Items, []LineRequest{req})
		if err != nil {
			return nil, err
		}
		o.setLines(lines)

		out = o.clone()
		ev := s.event(EventOrderLineAdded, o.ID, tableID, "")
		ev.Detail = lines[len(lines)-1].ID
		return []Event{ev}, nil
	})
	return out, err
}

// RemoveOrderLine drops a line from the table's order. An unknown line id
// leaves the order untouched and is not an error.
func (s *Service) RemoveOrderLine(ctx context.Context, tableID, lineID string) (Order, error) {
	var out Order
	err := s.mutate(ctx, func() ([]Event, error) {
		o, ok := s.orders.get(tableID)
		if !ok {
			return nil, wrapID(ErrOrderNotFound, tableID)
		}

		lines, removed := removeLine(o.Items, lineID)
		out = o.clone()
		if !removed {
			return nil, nil
		}
		o.setLines(lines)

		out = o.clone()
		ev := s.event(EventOrderLineRemoved, o.ID, tableID, "")
		ev.Detail = lineID
		return []Event{ev}, nil
	})
	return out, err
}

func (s *Service) ActiveOrder(tableID string) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders.get(tableID)
	if !ok {
		return Order{}, wrapID(ErrOrderNotFound, tableID)
	}
	return o.clone(), nil
}

// ActiveOrders returns every open order, oldest first.
func (s *Service) ActiveOrders() []Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	open := s.orders.list()
	out := make([]Order, 0, len(open))
	for _, o := range open {
		out = append(out, o.clone())
	}
	return out
}

// UpdateOrderKitchenStatus moves every food line of the table's order to status.
// Reaching ready dispatches the order in the same step.
func (s *Service) UpdateOrderKitchenStatus(ctx context.Context, tableID string, status KitchenStatus) (Order, error) {
	var out Order
	err := s.mutate(ctx, func() ([]Event, error) {
		o, ok := s.orders.get(tableID)
		if !ok {
			return nil, wrapID(ErrOrderNotFound, tableID)
		}

		current, hasFood := o.KitchenStatus()
		if !hasFood {
			return nil, wrapID(ErrNoKitchenLines, o.ID)
		}
		if err := checkKitchenTransition(current, status); err != nil {
			return nil, err
		}

		o.Items = withKitchenStatus(o.Items, status)
		events := []Event{s.event(EventKitchenStatusChanged, o.ID, tableID, string(status))}

		if status == KitchenReady {
			dispatched := s.dispatchLocked(tableID)
			events = append(events, s.event(EventOrderDispatched, dispatched.ID, tableID, string(status)))
		}

		out = o.clone()
		return events, nil
	})
	return out, err
}

func (s *Service) StartPreparing(ctx context.Context, tableID string) (Order, error) {
	return s.UpdateOrderKitchenStatus(ctx, tableID, KitchenPreparing)
}

func (s *Service) MarkReady(ctx context.Context, tableID string) (Order, error) {
	return s.UpdateOrderKitchenStatus(ctx, tableID, KitchenReady)
}

// dispatchLocked closes the table's order and archives it. The table stays
// occupied. Caller holds s.mu and has checked the order exists.
func (s *Service) dispatchLocked(tableID string) *Order {
	o, _ := s.orders.remove(tableID)
	at := s.now()
	if at.Before(o.CreatedAt) {
		at = o.CreatedAt
	}
	o.DispatchedAt = &at
	s.dispatched.put(o)
	return o
}

// ResumeOrder puts a dispatched order back on its table with its food lines
// preparing again.
func (s *Service) ResumeOrder(ctx context.Context, orderID string) (Order, error) {
	var out Order
	err := s.mutate(ctx, func() ([]Event, error) {
		o, ok := s.dispatched.get(orderID)
		if !ok {
			return nil, wrapID(ErrDispatchedOrderNotFound, orderID)
		}
		if s.orders.occupied(o.TableID) {
			return nil, wrapID(ErrTableAlreadyOccupied, o.TableID)
		}

		s.dispatched.take(orderID)
		o.DispatchedAt = nil
		o.Items = withKitchenStatus(o.Items, KitchenPreparing)
		if err := s.orders.insert(o); err != nil {
			return nil, err
		}

		out = o.clone()
		return []Event{s.event(EventOrderResumed, o.ID, o.TableID, string(KitchenPreparing))}, nil
	})
	return out, err
}

// DispatchedOrders lists the archive, most recently dispatched first.
func (s *Service) DispatchedOrders() []Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	archived := s.dispatched.list()
	out := make([]Order, 0, len(archived))
	for _, o := range archived {
		out = append(out, o.clone())
	}
	return out
}

// KitchenQueue returns open orders that still have food to prepare, oldest first.
func (s *Service) KitchenQueue() []Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Order
	for _, o := range s.orders.list() {
		status, hasFood := o.KitchenStatus()
		if !hasFood || status == KitchenReady {
			continue
		}
		out = append(out, o.clone())
	}
	return out
}

func (s *Service) KitchenStats() KitchenStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats KitchenStats
	for _, o := range s.orders.list() {
		status, hasFood := o.KitchenStatus()
		if !hasFood {
			continue
		}
		switch status {
		case KitchenPending:
			stats.Pending++
		case KitchenPreparing:
			stats.Preparing++
		default:
			continue
		}
		stats.TotalOrders++
	}
	stats.Dispatched = s.dispatched.len()
	return stats
}
