package reservations

import (
	"fmt"
	"strings"
	"time"

	"kitchen-flow/internal/restaurant"
)

// dateLayout is how the reservations board sends dates. Full RFC 3339
// timestamps are accepted as well.
const dateLayout = "2006-01-02"

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, restaurant.ValidationError{
		Field:   "date",
		Message: fmt.Sprintf("%q is not a date (want YYYY-MM-DD)", raw),
	}
}

type createRequest struct {
	CustomerName string `json:"customer_name"`
	PhoneNumber  string `json:"phone_number"`
	PartySize    int    `json:"party_size"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Notes        string `json:"notes"`
}

// input converts the request. An empty date is left zero so the
// reservation defaults to today.
func (r createRequest) input() (restaurant.ReservationInput, error) {
	in := restaurant.ReservationInput{
		CustomerName: r.CustomerName,
		PhoneNumber:  r.PhoneNumber,
		PartySize:    r.PartySize,
		Time:         r.Time,
		Notes:        r.Notes,
	}
	if strings.TrimSpace(r.Date) != "" {
		date, err := parseDate(r.Date)
		if err != nil {
			return restaurant.ReservationInput{}, err
		}
		in.Date = date
	}
	return in, nil
}

type patchRequest struct {
	CustomerName *string `json:"customer_name"`
	PhoneNumber  *string `json:"phone_number"`
	PartySize    *int    `json:"party_size"`
	Date         *string `json:"date"`
	Time         *string `json:"time"`
	Notes        *string `json:"notes"`
	Status       *string `json:"status"`
	TableNumber  *int    `json:"table_number"`
}

func (r patchRequest) patch() (restaurant.ReservationPatch, error) {
	p := restaurant.ReservationPatch{
		CustomerName: r.CustomerName,
		PhoneNumber:  r.PhoneNumber,
		PartySize:    r.PartySize,
		Time:         r.Time,
		Notes:        r.Notes,
		TableNumber:  r.TableNumber,
	}
	if r.Date != nil {
		date, err := parseDate(*r.Date)
		if err != nil {
			return restaurant.ReservationPatch{}, err
		}
		p.Date = &date
	}
	if r.Status != nil {
		status, err := restaurant.ParseReservationStatus(*r.Status)
		if err != nil {
			return restaurant.ReservationPatch{}, err
		}
		p.Status = &status
	}
	return p, nil
}
