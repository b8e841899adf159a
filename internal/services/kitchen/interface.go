package kitchen

import (
	"context"

	"kitchen-flow/internal/journal"
	"kitchen-flow/internal/restaurant"
)

// Board is the part of restaurant.Service the kitchen and floor routes drive.
type Board interface {
	Inventory(category string) []restaurant.InventoryItem
	InventoryCategories() []string

	OpenOrder(ctx context.Context, in restaurant.OpenOrderInput) (restaurant.Order, error)
	AddOrderLine(ctx context.Context, tableID string, req restaurant.LineRequest) (restaurant.Order, error)
	RemoveOrderLine(ctx context.Context, tableID, lineID string) (restaurant.Order, error)
	ActiveOrder(tableID string) (restaurant.Order, error)
	UpdateOrderKitchenStatus(ctx context.Context, tableID string, status restaurant.KitchenStatus) (restaurant.Order, error)

	KitchenQueue() []restaurant.Order
	KitchenStats() restaurant.KitchenStats
	DispatchedOrders() []restaurant.Order
	ResumeOrder(ctx context.Context, orderID string) (restaurant.Order, error)
}

// HistoryRepo reads the event journal.
type HistoryRepo interface {
	History(ctx context.Context, entityID string) ([]journal.Entry, error)
}
