package restaurant

import "fmt"

// KitchenStatus is the preparation state of a food line.
type KitchenStatus string

const (
	KitchenPending   KitchenStatus = "pending"
	KitchenPreparing KitchenStatus = "preparing"
	KitchenReady     KitchenStatus = "ready"
)

func ParseKitchenStatus(s string) (KitchenStatus, error) {
	switch st := KitchenStatus(s); st {
	case KitchenPending, KitchenPreparing, KitchenReady:
		return st, nil
	default:
		return "", fmt.Errorf("%w: kitchen status %q", ErrInvalidStatus, s)
	}
}

// AggregateStatus derives an order's kitchen status from its food lines.
// The second result is false when there are no food lines at all.
func AggregateStatus(lines []LineItem) (KitchenStatus, bool) {
	food, ready, preparing := 0, 0, 0
	for _, line := range lines {
		if !line.IsFood() {
			continue
		}
		food++
		switch line.KitchenStatus {
		case KitchenReady:
			ready++
		case KitchenPreparing:
			preparing++
		}
	}

	switch {
	case food == 0:
		return "", false
	case ready == food:
		return KitchenReady, true
	case preparing > 0:
		return KitchenPreparing, true
	default:
		return KitchenPending, true
	}
}

// checkKitchenTransition allows only pending -> preparing -> ready on the aggregate.
func checkKitchenTransition(from, to KitchenStatus) error {
	switch {
	case from == KitchenPending && to == KitchenPreparing:
		return nil
	case from == KitchenPreparing && to == KitchenReady:
		return nil
	default:
		return fmt.Errorf("%w: %s -> %s", ErrInvalidKitchenTransition, from, to)
	}
}

// withKitchenStatus returns a copy of lines with every food line set to status.
func withKitchenStatus(lines []LineItem, status KitchenStatus) []LineItem {
	out := cloneLines(lines)
	for i := range out {
		if out[i].IsFood() {
			out[i].KitchenStatus = status
		}
	}
	return out
}

// KitchenStats are the counters shown on the kitchen board.
type KitchenStats struct {
	Pending     int `json:"pending"`
	Preparing   int `json:"preparing"`
	Dispatched  int `json:"dispatched"`
	TotalOrders int `json:"total_orders"`
}
