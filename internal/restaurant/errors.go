package restaurant

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by Service matches exactly one of
// them with errors.Is, which is what the HTTP layer maps to a status code.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrPersistence = errors.New("persistence failure")
)

var (
	ErrInvalidQuantity     = fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	ErrInsufficientStock   = fmt.Errorf("%w: item is out of stock", ErrValidation)
	ErrMissingCustomerName = fmt.Errorf("%w: customer name is required", ErrValidation)
	ErrInvalidStatus       = fmt.Errorf("%w: unknown status", ErrValidation)

	ErrItemNotFound            = fmt.Errorf("%w: inventory item", ErrNotFound)
	ErrOrderNotFound           = fmt.Errorf("%w: no open order for table", ErrNotFound)
	ErrDispatchedOrderNotFound = fmt.Errorf("%w: dispatched order", ErrNotFound)
	ErrReservationNotFound     = fmt.Errorf("%w: reservation", ErrNotFound)

	ErrTableAlreadyOccupied         = fmt.Errorf("%w: table already has an open order", ErrConflict)
	ErrNoKitchenLines               = fmt.Errorf("%w: order has no kitchen lines", ErrConflict)
	ErrInvalidKitchenTransition     = fmt.Errorf("%w: invalid kitchen status transition", ErrConflict)
	ErrInvalidReservationTransition = fmt.Errorf("%w: invalid reservation status transition", ErrConflict)
	ErrReservationClosed            = fmt.Errorf("%w: reservation is closed", ErrConflict)
	ErrTableNotAssignable           = fmt.Errorf("%w: table can only be set on a confirmed or seated reservation", ErrConflict)
)

// ValidationError describes a single invalid input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e ValidationError) Is(target error) bool {
	return target == ErrValidation
}
