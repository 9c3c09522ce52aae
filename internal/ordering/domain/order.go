package domain

import (
	"fmt"
	"time"
)

// Order is the immutable record of a submitted cart. Only Status changes after creation.
type Order struct {
	ID         int64
	CreatedAt  string
	PlacedAt   time.Time
	Lines      []OrderLine
	TotalPrice int
	Status     OrderStatus
}

// OrderLine is a cart line frozen at submit time.
type OrderLine struct {
	MenuItem  MenuItem
	Options   Options
	Quantity  int
	LineTotal int
}

// DisplayName renders the line like the cart panel did.
func (l OrderLine) DisplayName() string {
	return CartLine{MenuItem: l.MenuItem, Options: l.Options, Quantity: l.Quantity}.DisplayName()
}

func (o Order) copy() Order {
	o.Lines = append([]OrderLine(nil), o.Lines...)
	return o
}

// FormatCreatedAt renders t as "<month>월 <day>일 <HH>:<MM>" with a 24-hour clock.
func FormatCreatedAt(t time.Time) string {
	return fmt.Sprintf("%d월 %d일 %02d:%02d", int(t.Month()), t.Day(), t.Hour(), t.Minute())
}

// nextOrderID derives an id from the submit time in milliseconds, bumped past the last issued
// id so that ids stay strictly increasing even when the clock repeats or steps back.
func nextOrderID(last int64, now time.Time) int64 {
	id := now.UnixMilli()
	if id <= last {
		id = last + 1
	}
	return id
}

// SubmitOrder turns the cart into a pending order placed at now (already in the café's local
// time zone). The order is prepended to the order list, stock is decremented for every menu
// item in the cart and the cart is cleared. An empty cart is rejected with ErrEmptyCart and the
// state is returned untouched.
func SubmitOrder(s State, now time.Time) (State, Order, error) {
	if len(s.Cart) == 0 {
		return s, Order{}, NewError(CodeFailedPrecondition, ErrEmptyCart, MsgEmptyCart)
	}

	lines := make([]OrderLine, 0, len(s.Cart))
	for _, l := range s.Cart {
		lines = append(lines, OrderLine{
			MenuItem:  l.MenuItem,
			Options:   l.Options,
			Quantity:  l.Quantity,
			LineTotal: LineTotal(l),
		})
	}

	next := s.clone()
	order := Order{
		ID:         nextOrderID(s.LastOrderID, now),
		CreatedAt:  FormatCreatedAt(now),
		PlacedAt:   now,
		Lines:      lines,
		TotalPrice: CartTotal(s.Cart),
		Status:     StatusPending,
	}
	next.LastOrderID = order.ID
	next.Orders = append([]Order{order}, next.Orders...)

	for _, l := range s.Cart {
		next = adjustStock(next, l.MenuItem.ID, -l.Quantity)
	}
	next = ClearCart(next)

	return next, order.copy(), nil
}

// FindOrder returns the order with id.
func FindOrder(s State, id int64) (Order, bool) {
	for _, o := range s.Orders {
		if o.ID == id {
			return o.copy(), true
		}
	}
	return Order{}, false
}
