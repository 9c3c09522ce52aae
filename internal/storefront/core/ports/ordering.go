package ports

import (
	"context"

	"github.com/jcmexdev/cozy-cafe/internal/ordering/domain"
	"github.com/jcmexdev/cozy-cafe/internal/ordering/journal"
)

// Ordering is everything the customer and admin views can read or do.
type Ordering interface {
	Menu() []domain.MenuItem
	QuotePrice(menuItemID int, opts domain.Options) (int, error)

	Cart() []domain.CartLine
	AddToCart(ctx context.Context, menuItemID int, opts domain.Options) (domain.CartLine, error)
	DecrementLine(ctx context.Context, key domain.LineKey) error
	RemoveLine(ctx context.Context, key domain.LineKey) error

	SubmitOrder(ctx context.Context) (domain.Order, error)
	Orders() []domain.Order
	Order(id int64) (domain.Order, bool)
	ActiveOrders() []domain.Order
	AdvanceOrder(ctx context.Context, orderID int64) (domain.Order, bool, error)
	History(ctx context.Context, orderID int64) ([]journal.Entry, error)

	Inventory() []domain.InventoryEntry
	AdjustStock(ctx context.Context, menuItemID, delta int) (domain.InventoryEntry, error)
	Stats() domain.Stats
}
