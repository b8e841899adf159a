package restaurant

import (
	"github.com/shopspring/decimal"
)

// LineItem is a priced entry of an order or a pre-order. Name, category and
// unit price are copied from the inventory when the line is added, so later
// catalog changes do not affect it.
type LineItem struct {
	ID            string          `json:"id"`
	ItemID        string          `json:"item_id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Total         decimal.Decimal `json:"total"`
	KitchenStatus KitchenStatus   `json:"kitchen_status,omitempty"`
}

func (l LineItem) IsFood() bool {
	return l.Category == CategoryFood
}

// LineRequest asks for quantity units of an inventory item.
type LineRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// addLine prices a new line and appends it. The input slice is not modified.
// Kitchen status is left empty; only order lines get one.
func addLine(lines []LineItem, item InventoryItem, quantity int, lineID string) ([]LineItem, LineItem, error) {
	if quantity < 1 {
		return lines, LineItem{}, ErrInvalidQuantity
	}
	if !item.InStock() {
		return lines, LineItem{}, ErrInsufficientStock
	}

	line := LineItem{
		ID:        lineID,
		ItemID:    item.ID,
		Name:      item.Name,
		Category:  item.Category,
		Quantity:  quantity,
		UnitPrice: item.Price,
		Total:     item.Price.Mul(decimal.NewFromInt(int64(quantity))),
	}

	out := make([]LineItem, 0, len(lines)+1)
	out = append(out, lines...)
	out = append(out, line)
	return out, line, nil
}

// removeLine drops the line with the given id. Removing an absent id is a no-op.
func removeLine(lines []LineItem, lineID string) ([]LineItem, bool) {
	out := make([]LineItem, 0, len(lines))
	removed := false
	for _, line := range lines {
		if line.ID == lineID {
			removed = true
			continue
		}
		out = append(out, line)
	}
	if !removed {
		return lines, false
	}
	return out, true
}

func sumLines(lines []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Total)
	}
	return total
}

func cloneLines(lines []LineItem) []LineItem {
	if lines == nil {
		return []LineItem{}
	}
	out := make([]LineItem, len(lines))
	copy(out, lines)
	return out
}
