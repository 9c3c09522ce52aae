package domain

import (
	"fmt"
	"strings"
)

// LineKey identifies a (menu item, options) combination in the cart.
type LineKey string

// KeyFor derives the line key for item with opts. Keys of different menu items never collide.
func KeyFor(itemID int, opts Options) LineKey {
	var shot, syrup string
	if opts.Shot {
		shot = "shot"
	}
	if opts.Syrup {
		syrup = "syrup"
	}
	return LineKey(fmt.Sprintf("%d-%s-%s", itemID, shot, syrup))
}

// CartLine is one merged cart entry. Quantity is always at least 1.
type CartLine struct {
	Key      LineKey
	MenuItem MenuItem
	Options  Options
	Quantity int
}

// DisplayName renders the line the way the cart panel shows it,
// e.g. "아메리카노(ICE) (샷 추가) X 2".
func (l CartLine) DisplayName() string {
	name := l.MenuItem.Name
	if labels := l.Options.Labels(); len(labels) > 0 {
		name += " (" + strings.Join(labels, ", ") + ")"
	}
	return fmt.Sprintf("%s X %d", name, l.Quantity)
}

// AddToCart merges item/opts into the cart: an existing line with the same key gains one unit,
// otherwise a new line with quantity 1 is appended. Line order is insertion order.
func AddToCart(s State, item MenuItem, opts Options) State {
	next := s.clone()
	key := KeyFor(item.ID, opts)
	if i := next.lineIndex(key); i >= 0 {
		next.Cart[i].Quantity++
		return next
	}
	next.Cart = append(next.Cart, CartLine{
		Key:      key,
		MenuItem: item,
		Options:  opts,
		Quantity: 1,
	})
	return next
}

// DecrementLine removes one unit from the line; a line reaching zero is dropped.
func DecrementLine(s State, key LineKey) (State, error) {
	i := s.lineIndex(key)
	if i < 0 {
		return s, NewError(CodeNotFound, ErrLineNotFound, MsgLineNotFound)
	}
	next := s.clone()
	if next.Cart[i].Quantity <= 1 {
		next.Cart = append(next.Cart[:i], next.Cart[i+1:]...)
		return next, nil
	}
	next.Cart[i].Quantity--
	return next, nil
}

// RemoveLine drops the whole line regardless of quantity.
func RemoveLine(s State, key LineKey) (State, error) {
	i := s.lineIndex(key)
	if i < 0 {
		return s, NewError(CodeNotFound, ErrLineNotFound, MsgLineNotFound)
	}
	next := s.clone()
	next.Cart = append(next.Cart[:i], next.Cart[i+1:]...)
	return next, nil
}

// ClearCart empties the cart.
func ClearCart(s State) State {
	next := s.clone()
	next.Cart = nil
	return next
}

func (s State) lineIndex(key LineKey) int {
	for i, l := range s.Cart {
		if l.Key == key {
			return i
		}
	}
	return -1
}
