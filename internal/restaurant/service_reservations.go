package restaurant

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

func (s *Service) CreateReservation(ctx context.Context, in ReservationInput) (Reservation, error) {
	name := strings.TrimSpace(in.CustomerName)
	if name == "" {
		return Reservation{}, ErrMissingCustomerName
	}

	partySize := in.PartySize
	if partySize == 0 {
		partySize = defaultPartySize
	}
	if err := validatePartySize(partySize); err != nil {
		return Reservation{}, err
	}

	var out Reservation
	err := s.mutate(ctx, func() ([]Event, error) {
		now := s.now()
		date := in.Date
		if date.IsZero() {
			date = now
		}

		r := &Reservation{
			ID:           s.newID(),
			CustomerName: name,
			PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
			PartySize:    partySize,
			Date:         date,
			Time:         strings.TrimSpace(in.Time),
			Notes:        in.Notes,
			Status:       ReservationPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		r.setPreOrder(nil)
		s.reservations[r.ID] = r

		out = r.clone()
		return []Event{s.event(EventReservationCreated, r.ID, "", string(r.Status))}, nil
	})
	return out, err
}

// UpdateReservation merges the non-nil fields of patch into the reservation.
func (s *Service) UpdateReservation(ctx context.Context, id string, patch ReservationPatch) (Reservation, error) {
	var out Reservation
	err := s.mutate(ctx, func() ([]Event, error) {
		r, ok := s.reservations[id]
		if !ok {
			return nil, wrapID(ErrReservationNotFound, id)
		}

		next := r.clone()
		if patch.CustomerName != nil {
			name := strings.TrimSpace(*patch.CustomerName)
			if name == "" {
				return nil, ErrMissingCustomerName
			}
			next.CustomerName = name
		}
		if patch.PhoneNumber != nil {
			next.PhoneNumber = strings.TrimSpace(*patch.PhoneNumber)
		}
		if patch.PartySize != nil {
			if err := validatePartySize(*patch.PartySize); err != nil {
				return nil, err
			}
			next.PartySize = *patch.PartySize
		}
		if patch.Date != nil {
			next.Date = *patch.Date
		}
		if patch.Time != nil {
			next.Time = strings.TrimSpace(*patch.Time)
		}
		if patch.Notes != nil {
			next.Notes = *patch.Notes
		}
		if patch.Status != nil {
			if _, err := ParseReservationStatus(string(*patch.Status)); err != nil {
				return nil, err
			}
			if !r.Status.CanTransitionTo(*patch.Status) {
				return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidReservationTransition, r.Status, *patch.Status)
			}
			next.Status = *patch.Status
		}
		if patch.TableNumber != nil {
			if *patch.TableNumber < 1 {
				return nil, ValidationError{Field: "table_number", Message: "table number must be at least 1"}
			}
			if !next.Status.Seatable() {
				return nil, fmt.Errorf("%w: %s reservation", ErrTableNotAssignable, next.Status)
			}
			n := *patch.TableNumber
			next.TableNumber = &n
		}

		next.UpdatedAt = s.now()
		*r = next

		out = r.clone()
		return []Event{s.event(EventReservationUpdated, r.ID, "", string(r.Status))}, nil
	})
	return out, err
}

// CancelReservation is idempotent for an already cancelled reservation.
func (s *Service) CancelReservation(ctx context.Context, id string) (Reservation, error) {
	var out Reservation
	err := s.mutate(ctx, func() ([]Event, error) {
		r, ok := s.reservations[id]
		if !ok {
			return nil, wrapID(ErrReservationNotFound, id)
		}
		if r.Status == ReservationCancelled {
			out = r.clone()
			return nil, nil
		}
		if !r.Status.CanTransitionTo(ReservationCancelled) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidReservationTransition, r.Status, ReservationCancelled)
		}

		r.Status = ReservationCancelled
		r.UpdatedAt = s.now()

		out = r.clone()
		return []Event{s.event(EventReservationCancelled, r.ID, "", string(r.Status))}, nil
	})
	return out, err
}

func (s *Service) DeleteReservation(ctx context.Context, id string) error {
	return s.mutate(ctx, func() ([]Event, error) {
		if _, ok := s.reservations[id]; !ok {
			return nil, wrapID(ErrReservationNotFound, id)
		}
		delete(s.reservations, id)
		return []Event{s.event(EventReservationDeleted, id, "", "")}, nil
	})
}

// AssignTable gives a reservation a table. A pending reservation becomes
// confirmed; a confirmed one is only moved to the new table.
func (s *Service) AssignTable(ctx context.Context, id string, tableNumber int) (Reservation, error) {
	if tableNumber < 1 {
		return Reservation{}, ValidationError{Field: "table_number", Message: "table number must be at least 1"}
	}

	var out Reservation
	err := s.mutate(ctx, func() ([]Event, error) {
		r, ok := s.reservations[id]
		if !ok {
			return nil, wrapID(ErrReservationNotFound, id)
		}

		switch r.Status {
		case ReservationPending:
			r.Status = ReservationConfirmed
		case ReservationConfirmed:
		default:
			return nil, fmt.Errorf("%w: cannot assign a table to a %s reservation", ErrInvalidReservationTransition, r.Status)
		}

		n := tableNumber
		r.TableNumber = &n
		r.UpdatedAt = s.now()

		out = r.clone()
		ev := s.event(EventTableAssigned, r.ID, "", string(r.Status))
		ev.Detail = fmt.Sprintf("table %d", tableNumber)
		return []Event{ev}, nil
	})
	return out, err
}

func (s *Service) AddPreOrderItem(ctx context.Context, id string, req LineRequest) (Reservation, error) {
	var out Reservation
	err := s.mutate(ctx, func() ([]Event, error) {
		r, err := s.openReservationLocked(id)
		if err != nil {
			return nil, err
		}

		item, err := s.lookup(req.ItemID)
		if err != nil {
			return nil, err
		}
		lines, line, err := addLine(r.PreOrder, item, req.Quantity, s.newID())
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", item.ID, err)
		}
		r.setPreOrder(lines)
		r.UpdatedAt = s.now()

		out = r.clone()
		ev := s.event(EventPreOrderChanged, r.ID, "", string(r.Status))
		ev.Detail = "added " + line.ID
		return []Event{ev}, nil
	})
	return out, err
}

// RemovePreOrderItem drops a pre-order line. An unknown line id is a no-op.
func (s *Service) RemovePreOrderItem(ctx context.Context, id, lineID string) (Reservation, error) {
	var out Reservation
	err := s.mutate(ctx, func() ([]Event, error) {
		r, err := s.openReservationLocked(id)
		if err != nil {
			return nil, err
		}

		lines, removed := removeLine(r.PreOrder, lineID)
		if !removed {
			out = r.clone()
			return nil, nil
		}
		r.setPreOrder(lines)
		r.UpdatedAt = s.now()

		out = r.clone()
		ev := s.event(EventPreOrderChanged, r.ID, "", string(r.Status))
		ev.Detail = "removed " + lineID
		return []Event{ev}, nil
	})
	return out, err
}

// openReservationLocked returns a reservation whose pre-order may still change.
func (s *Service) openReservationLocked(id string) (*Reservation, error) {
	r, ok := s.reservations[id]
	if !ok {
		return nil, wrapID(ErrReservationNotFound, id)
	}
	if r.Status.Terminal() {
		return nil, fmt.Errorf("%w: %s is %s", ErrReservationClosed, id, r.Status)
	}
	return r, nil
}

// PreOrderTotal sums the pre-order lines at read time.
func (s *Service) PreOrderTotal(id string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reservations[id]
	if !ok {
		return decimal.Zero, wrapID(ErrReservationNotFound, id)
	}
	return sumLines(r.PreOrder), nil
}

func (s *Service) Reservation(id string) (Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reservations[id]
	if !ok {
		return Reservation{}, wrapID(ErrReservationNotFound, id)
	}
	return r.clone(), nil
}

// Reservations lists reservations by date, then creation time.
func (s *Service) Reservations(filter ReservationFilter) []Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Reservation, 0, len(s.reservations))
	for _, r := range s.reservations {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		out = append(out, r.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Service) ReservationStats() ReservationStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats ReservationStats
	for _, r := range s.reservations {
		switch r.Status {
		case ReservationPending:
			stats.Pending++
		case ReservationConfirmed:
			stats.Confirmed++
		case ReservationSeated:
			stats.Seated++
		}
		if !r.Status.Terminal() {
			stats.Total++
		}
	}
	return stats
}
