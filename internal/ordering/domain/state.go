package domain

// State is the whole café ordering state. Reducers take a State by value and return a new one;
// the input is never modified.
type State struct {
	Cart      []CartLine
	Orders    []Order // newest first
	Inventory []InventoryEntry
	// LastOrderID is the most recently issued order id.
	LastOrderID int64
}

// NewState seeds the inventory for every menu item, in menu order. Items missing from stock
// start at zero.
func NewState(menu []MenuItem, stock map[int]int) State {
	inv := make([]InventoryEntry, 0, len(menu))
	for _, item := range menu {
		inv = append(inv, InventoryEntry{MenuItemID: item.ID, Stock: max(0, stock[item.ID])})
	}
	return State{Inventory: inv}
}

// clone copies every slice so the returned State shares no backing arrays with s.
// Order lines are never mutated after submit and are shared.
func (s State) clone() State {
	next := State{LastOrderID: s.LastOrderID}
	if s.Cart != nil {
		next.Cart = append(make([]CartLine, 0, len(s.Cart)), s.Cart...)
	}
	if s.Orders != nil {
		next.Orders = append(make([]Order, 0, len(s.Orders)), s.Orders...)
	}
	if s.Inventory != nil {
		next.Inventory = append(make([]InventoryEntry, 0, len(s.Inventory)), s.Inventory...)
	}
	return next
}

// Snapshot returns a deep copy of s that is safe to hand to a reader.
func (s State) Snapshot() State {
	next := s.clone()
	for i := range next.Orders {
		next.Orders[i] = next.Orders[i].copy()
	}
	return next
}
