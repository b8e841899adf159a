package restaurant

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// CategoryFood is the only category whose lines go through the kitchen.
const CategoryFood = "Comida"

// AllCategories disables the category filter of Catalog.List.
const AllCategories = "Todos"

// InventoryItem is a sellable item. Quantity is the stock on hand; an item
// with zero stock cannot be added to an order.
type InventoryItem struct {
	ID       string          `json:"id" yaml:"id"`
	Name     string          `json:"name" yaml:"name"`
	Category string          `json:"category" yaml:"category"`
	Price    decimal.Decimal `json:"price" yaml:"price"`
	Quantity int             `json:"quantity" yaml:"quantity"`
	Unit     string          `json:"unit" yaml:"unit"`
}

func (i InventoryItem) InStock() bool {
	return i.Quantity > 0
}

// Catalog is the read-only inventory the order aggregator prices lines from.
type Catalog interface {
	Lookup(id string) (InventoryItem, bool)
	// List returns the items of one category, or every item for "" and AllCategories.
	List(category string) []InventoryItem
	Categories() []string
}

// MemoryCatalog is a Catalog held in memory, in insertion order.
type MemoryCatalog struct {
	items []InventoryItem
	byID  map[string]int
}

func NewMemoryCatalog(items []InventoryItem) (*MemoryCatalog, error) {
	c := &MemoryCatalog{
		items: make([]InventoryItem, 0, len(items)),
		byID:  make(map[string]int, len(items)),
	}
	for _, item := range items {
		if strings.TrimSpace(item.ID) == "" {
			return nil, ValidationError{Field: "id", Message: fmt.Sprintf("item %q has no id", item.Name)}
		}
		if _, dup := c.byID[item.ID]; dup {
			return nil, ValidationError{Field: "id", Message: fmt.Sprintf("duplicate item id %q", item.ID)}
		}
		if item.Price.IsNegative() {
			return nil, ValidationError{Field: "price", Message: fmt.Sprintf("item %q has a negative price", item.ID)}
		}
		if item.Quantity < 0 {
			return nil, ValidationError{Field: "quantity", Message: fmt.Sprintf("item %q has negative stock", item.ID)}
		}
		c.byID[item.ID] = len(c.items)
		c.items = append(c.items, item)
	}
	return c, nil
}

type catalogFile struct {
	Items []InventoryItem `yaml:"items"`
}

// LoadCatalog reads a YAML inventory file with a top level "items" list.
func LoadCatalog(path string) (*MemoryCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	return NewMemoryCatalog(file.Items)
}

func (c *MemoryCatalog) Lookup(id string) (InventoryItem, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return InventoryItem{}, false
	}
	return c.items[idx], true
}

func (c *MemoryCatalog) List(category string) []InventoryItem {
	out := make([]InventoryItem, 0, len(c.items))
	for _, item := range c.items {
		if category == "" || category == AllCategories || item.Category == category {
			out = append(out, item)
		}
	}
	return out
}

// Categories returns the distinct categories, sorted.
func (c *MemoryCatalog) Categories() []string {
	seen := make(map[string]struct{})
	for _, item := range c.items {
		seen[item.Category] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for category := range seen {
		out = append(out, category)
	}
	sort.Strings(out)
	return out
}
