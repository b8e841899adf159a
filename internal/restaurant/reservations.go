package restaurant

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationSeated    ReservationStatus = "seated"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
)

const defaultPartySize = 2

// reservationTransitions lists the statuses reachable from each status.
// completed and cancelled are terminal.
var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationPending:   {ReservationConfirmed, ReservationSeated, ReservationCompleted, ReservationCancelled},
	ReservationConfirmed: {ReservationSeated, ReservationCompleted, ReservationCancelled},
	ReservationSeated:    {ReservationCompleted, ReservationCancelled},
	ReservationCompleted: nil,
	ReservationCancelled: nil,
}

func ParseReservationStatus(s string) (ReservationStatus, error) {
	st := ReservationStatus(s)
	if _, ok := reservationTransitions[st]; !ok {
		return "", fmt.Errorf("%w: reservation status %q", ErrInvalidStatus, s)
	}
	return st, nil
}

func (s ReservationStatus) Terminal() bool {
	return s == ReservationCompleted || s == ReservationCancelled
}

// Seatable reports whether a table may be set directly on a reservation in s.
// A pending reservation gets its table through AssignTable, which confirms it.
func (s ReservationStatus) Seatable() bool {
	return s == ReservationConfirmed || s == ReservationSeated
}

// CanTransitionTo reports whether a reservation in s may move to next.
// Staying in the same status is always allowed.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range reservationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Reservation struct {
	ID            string            `json:"id"`
	CustomerName  string            `json:"customer_name"`
	PhoneNumber   string            `json:"phone_number"`
	PartySize     int               `json:"party_size"`
	Date          time.Time         `json:"date"`
	Time          string            `json:"time"`
	Notes         string            `json:"notes"`
	Status        ReservationStatus `json:"status"`
	TableNumber   *int              `json:"table_number,omitempty"`
	PreOrder      []LineItem        `json:"pre_order"`
	PreOrderTotal decimal.Decimal   `json:"pre_order_total"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func (r *Reservation) clone() Reservation {
	out := *r
	out.PreOrder = cloneLines(r.PreOrder)
	if r.TableNumber != nil {
		n := *r.TableNumber
		out.TableNumber = &n
	}
	return out
}

func (r *Reservation) setPreOrder(lines []LineItem) {
	r.PreOrder = lines
	r.PreOrderTotal = sumLines(lines)
}

// ReservationInput creates a reservation. Zero PartySize and Date take the defaults.
type ReservationInput struct {
	CustomerName string    `json:"customer_name"`
	PhoneNumber  string    `json:"phone_number"`
	PartySize    int       `json:"party_size"`
	Date         time.Time `json:"date"`
	Time         string    `json:"time"`
	Notes        string    `json:"notes"`
}

// ReservationPatch carries the fields an update replaces; nil fields are kept.
type ReservationPatch struct {
	CustomerName *string            `json:"customer_name,omitempty"`
	PhoneNumber  *string            `json:"phone_number,omitempty"`
	PartySize    *int               `json:"party_size,omitempty"`
	Date         *time.Time         `json:"date,omitempty"`
	Time         *string            `json:"time,omitempty"`
	Notes        *string            `json:"notes,omitempty"`
	Status       *ReservationStatus `json:"status,omitempty"`
	TableNumber  *int               `json:"table_number,omitempty"`
}

// ReservationFilter narrows Reservations. An empty Status matches everything.
type ReservationFilter struct {
	Status ReservationStatus
}

// ReservationStats are the counters of the reservations board. Total counts
// reservations that are neither completed nor cancelled.
type ReservationStats struct {
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Seated    int `json:"seated"`
	Total     int `json:"total"`
}

func validatePartySize(n int) error {
	if n < 1 {
		return ValidationError{Field: "party_size", Message: "party size must be at least 1"}
	}
	return nil
}
