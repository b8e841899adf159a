package restaurant

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalog_SeedFile(t *testing.T) {
	catalog, err := LoadCatalog(filepath.Join("..", "..", "inventory.yaml"))
	require.NoError(t, err)

	item, ok := catalog.Lookup("1")
	require.True(t, ok)
	assert.Equal(t, CategoryFood, item.Category)
	assert.True(t, item.Price.IsPositive())
	assert.NotEmpty(t, catalog.List(AllCategories))
}

func TestLoadCatalog_ParsesPrices(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
items:
  - id: "a"
    name: "Arroz"
    category: "Comida"
    price: "12.40"
    quantity: 3
  - id: "b"
    name: "Agua"
    category: "Bebida"
    price: 3.5
    quantity: 0
`), 0o600))

	catalog, err := LoadCatalog(path)
	require.NoError(t, err)

	a, ok := catalog.Lookup("a")
	require.True(t, ok)
	assertMoney(t, "12.40", a.Price)
	b, _ := catalog.Lookup("b")
	assertMoney(t, "3.5", b.Price)
	assert.False(t, b.InStock())
}

func TestMemoryCatalog_List(t *testing.T) {
	catalog, err := NewMemoryCatalog(testItems())
	require.NoError(t, err)

	assert.Len(t, catalog.List(""), 4)
	assert.Len(t, catalog.List(AllCategories), 4)
	assert.Len(t, catalog.List(CategoryFood), 3)
	assert.Len(t, catalog.List("Bebida"), 1)
	assert.Empty(t, catalog.List("Postre"))
	assert.Equal(t, []string{"Bebida", CategoryFood}, catalog.Categories())
}

func TestNewMemoryCatalog_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		items []InventoryItem
	}{
		{name: "missing id", items: []InventoryItem{{Name: "x"}}},
		{name: "duplicate id", items: []InventoryItem{{ID: "a"}, {ID: "a"}}},
		{name: "negative price", items: []InventoryItem{{ID: "a", Price: money("-1")}}},
		{name: "negative stock", items: []InventoryItem{{ID: "a", Quantity: -1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMemoryCatalog(tt.items)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}
