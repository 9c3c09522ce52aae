package domain

import "math"

// InventoryEntry is the remaining stock of one menu item. Stock is never negative.
type InventoryEntry struct {
	MenuItemID int
	Stock      int
}

// StockLevel is the badge shown next to a stock count.
type StockLevel string

const (
	StockNormal  StockLevel = "정상"
	StockLow     StockLevel = "주의"
	StockSoldOut StockLevel = "품절"
)

// Level classifies the entry against the low-stock threshold.
func (e InventoryEntry) Level(lowThreshold int) StockLevel {
	switch {
	case e.Stock <= 0:
		return StockSoldOut
	case e.Stock < lowThreshold:
		return StockLow
	default:
		return StockNormal
	}
}

// AdjustStock applies delta to the item's stock, clamping at zero. Orders are not blocked by
// low stock; a decrement past zero simply leaves the item at zero.
func AdjustStock(s State, menuItemID, delta int) (State, error) {
	if s.inventoryIndex(menuItemID) < 0 {
		return s, NewError(CodeNotFound, ErrUnknownMenuItem, MsgUnknownMenu)
	}
	return adjustStock(s.clone(), menuItemID, delta), nil
}

// StockOf returns the stock of an item and whether the item is tracked.
func StockOf(s State, menuItemID int) (int, bool) {
	i := s.inventoryIndex(menuItemID)
	if i < 0 {
		return 0, false
	}
	return s.Inventory[i].Stock, true
}

// adjustStock mutates next in place; callers pass a state they already own.
// Restocks saturate at math.MaxInt and decrements clamp at zero.
func adjustStock(next State, menuItemID, delta int) State {
	i := next.inventoryIndex(menuItemID)
	if i < 0 {
		return next
	}
	stock := next.Inventory[i].Stock
	if delta > 0 && stock > math.MaxInt-delta {
		next.Inventory[i].Stock = math.MaxInt
		return next
	}
	next.Inventory[i].Stock = max(0, stock+delta)
	return next
}

func (s State) inventoryIndex(menuItemID int) int {
	for i, e := range s.Inventory {
		if e.MenuItemID == menuItemID {
			return i
		}
	}
	return -1
}
