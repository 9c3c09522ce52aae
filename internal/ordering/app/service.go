// Package app owns the live café state and runs every operation against it.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/cozy-cafe/internal/menu"
	"github.com/jcmexdev/cozy-cafe/internal/ordering/domain"
	"github.com/jcmexdev/cozy-cafe/internal/ordering/journal"
)

// ErrJournalDisabled is returned by History when no journal is configured.
var ErrJournalDisabled = errors.New("order journal is disabled")

// Service is the single owner of the café state. Each operation runs one reducer and swaps the
// state under the lock, so concurrent requests observe whole operations only. Readers get
// copies.
type Service struct {
	mu    sync.RWMutex
	state domain.State

	catalog *menu.Catalog
	journal journal.Repository // nil-safe: journaling skipped if nil
	now     func() time.Time
	loc     *time.Location
	tracer  trace.Tracer
}

type Option func(*Service)

// WithJournal records committed changes to repo.
func WithJournal(repo journal.Repository) Option {
	return func(s *Service) { s.journal = repo }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the time zone order timestamps are displayed in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// NewService seeds the state from catalog: every menu item starts at its opening stock.
func NewService(catalog *menu.Catalog, opts ...Option) *Service {
	s := &Service{
		state:   domain.NewState(catalog.Items(), catalog.OpeningStock()),
		catalog: catalog,
		now:     time.Now,
		loc:     time.Local,
		tracer:  otel.Tracer("cafe/ordering"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Menu returns the menu in display order.
func (s *Service) Menu() []domain.MenuItem {
	return s.catalog.Items()
}

// QuotePrice is the unit price of a menu item with opts, as shown on the menu card.
func (s *Service) QuotePrice(menuItemID int, opts domain.Options) (int, error) {
	item, err := s.menuItem(menuItemID)
	if err != nil {
		return 0, err
	}
	return domain.LineUnitPrice(item, opts), nil
}

// Cart returns the current cart lines.
func (s *Service) Cart() []domain.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Snapshot().Cart
}

// AddToCart adds one unit of the menu item with opts and returns the affected line.
func (s *Service) AddToCart(ctx context.Context, menuItemID int, opts domain.Options) (domain.CartLine, error) {
	item, err := s.menuItem(menuItemID)
	if err != nil {
		return domain.CartLine{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = domain.AddToCart(s.state, item, opts)
	key := domain.KeyFor(item.ID, opts)
	var line domain.CartLine
	for _, l := range s.state.Cart {
		if l.Key == key {
			line = l
		}
	}

	slog.DebugContext(ctx, "cart line added", "line_key", key, "quantity", line.Quantity)
	return line, nil
}

// DecrementLine removes one unit from the line, dropping it at zero.
func (s *Service) DecrementLine(ctx context.Context, key domain.LineKey) error {
	return s.updateCart(ctx, "cart line decremented", key, domain.DecrementLine)
}

// RemoveLine drops the line.
func (s *Service) RemoveLine(ctx context.Context, key domain.LineKey) error {
	return s.updateCart(ctx, "cart line removed", key, domain.RemoveLine)
}

func (s *Service) updateCart(ctx context.Context, msg string, key domain.LineKey, reduce func(domain.State, domain.LineKey) (domain.State, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := reduce(s.state, key)
	if err != nil {
		return err
	}
	s.state = next
	slog.DebugContext(ctx, msg, "line_key", key)
	return nil
}

// SubmitOrder places the cart as a new pending order. An empty cart yields a domain error
// carrying the user notice and changes nothing.
func (s *Service) SubmitOrder(ctx context.Context) (domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "ordering.SubmitOrder")
	defer span.End()

	s.mu.Lock()
	next, order, err := domain.SubmitOrder(s.state, s.now().In(s.loc))
	if err == nil {
		s.state = next
	}
	s.mu.Unlock()

	if err != nil {
		span.SetStatus(otelcodes.Error, err.Error())
		slog.InfoContext(ctx, "order rejected", "reason", err.Error())
		return domain.Order{}, err
	}

	span.SetAttributes(
		attribute.Int64("order.id", order.ID),
		attribute.Int("order.total", order.TotalPrice),
		attribute.Int("order.lines", len(order.Lines)),
	)
	slog.InfoContext(ctx, "order submitted", "order_id", order.ID, "total", order.TotalPrice, "lines", len(order.Lines))

	s.recordSubmit(ctx, order)
	return order, nil
}

// Orders returns every order, newest first.
func (s *Service) Orders() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Snapshot().Orders
}

// Order returns one order by id.
func (s *Service) Order(id int64) (domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.FindOrder(s.state, id)
}

// ActiveOrders returns the orders still in progress, newest first.
func (s *Service) ActiveOrders() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.ActiveOrders(s.state)
}

// AdvanceOrder moves an order to its next status. advanced is false when the order was
// already completed.
func (s *Service) AdvanceOrder(ctx context.Context, orderID int64) (domain.Order, bool, error) {
	ctx, span := s.tracer.Start(ctx, "ordering.AdvanceOrder", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	s.mu.Lock()
	next, order, advanced, err := domain.AdvanceOrder(s.state, orderID)
	if err == nil {
		s.state = next
	}
	s.mu.Unlock()

	if err != nil {
		span.SetStatus(otelcodes.Error, err.Error())
		return domain.Order{}, false, err
	}
	span.SetAttributes(attribute.String("order.status", order.Status.String()), attribute.Bool("order.advanced", advanced))
	if !advanced {
		slog.InfoContext(ctx, "order already completed", "order_id", orderID)
		return order, false, nil
	}

	slog.InfoContext(ctx, "order advanced", "order_id", orderID, "status", order.Status)

	entry := journal.NewEntry(ctx, journal.KindOrderAdvanced)
	entry.OrderID = order.ID
	entry.Status = order.Status.String()
	s.record(ctx, entry)

	return order, true, nil
}

// AdjustStock changes the stock of a menu item by delta, clamping at zero.
func (s *Service) AdjustStock(ctx context.Context, menuItemID, delta int) (domain.InventoryEntry, error) {
	ctx, span := s.tracer.Start(ctx, "ordering.AdjustStock", trace.WithAttributes(
		attribute.Int("menu_item.id", menuItemID),
		attribute.Int("stock.delta", delta),
	))
	defer span.End()

	s.mu.Lock()
	next, err := domain.AdjustStock(s.state, menuItemID, delta)
	if err == nil {
		s.state = next
	}
	stock, _ := domain.StockOf(s.state, menuItemID)
	s.mu.Unlock()

	if err != nil {
		span.SetStatus(otelcodes.Error, err.Error())
		return domain.InventoryEntry{}, err
	}

	slog.InfoContext(ctx, "stock adjusted", "menu_item_id", menuItemID, "delta", delta, "stock", stock)

	entry := journal.NewEntry(ctx, journal.KindStockAdjusted)
	entry.MenuItemID = menuItemID
	entry.Delta = delta
	s.record(ctx, entry)

	return domain.InventoryEntry{MenuItemID: menuItemID, Stock: stock}, nil
}

// Inventory returns stock per menu item, in menu order.
func (s *Service) Inventory() []domain.InventoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Snapshot().Inventory
}

// Stats returns the dashboard counters.
func (s *Service) Stats() domain.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.ComputeStats(s.state)
}

// History returns the journal entries of one order in insertion order. Entries are written
// after the state lock is released, so concurrent operations may be journaled in a different
// order than they were committed.
func (s *Service) History(ctx context.Context, orderID int64) ([]journal.Entry, error) {
	if s.journal == nil {
		return nil, ErrJournalDisabled
	}
	return s.journal.History(ctx, orderID)
}

func (s *Service) menuItem(id int) (domain.MenuItem, error) {
	item, ok := s.catalog.Item(id)
	if !ok {
		return domain.MenuItem{}, domain.NewError(domain.CodeNotFound, domain.ErrUnknownMenuItem, domain.MsgUnknownMenu)
	}
	return item, nil
}

type orderPayload struct {
	ID         int64              `json:"id"`
	CreatedAt  string             `json:"created_at"`
	TotalPrice int                `json:"total_price"`
	Lines      []orderLinePayload `json:"lines"`
}

type orderLinePayload struct {
	MenuItemID int    `json:"menu_item_id"`
	Name       string `json:"name"`
	Shot       bool   `json:"shot"`
	Syrup      bool   `json:"syrup"`
	Quantity   int    `json:"quantity"`
	LineTotal  int    `json:"line_total"`
}

// recordSubmit journals the order snapshot and one stock decrement per menu item.
func (s *Service) recordSubmit(ctx context.Context, order domain.Order) {
	if s.journal == nil {
		return
	}

	payload := orderPayload{ID: order.ID, CreatedAt: order.CreatedAt, TotalPrice: order.TotalPrice}
	decrements := make(map[int]int)
	var itemOrder []int
	for _, l := range order.Lines {
		payload.Lines = append(payload.Lines, orderLinePayload{
			MenuItemID: l.MenuItem.ID,
			Name:       l.MenuItem.Name,
			Shot:       l.Options.Shot,
			Syrup:      l.Options.Syrup,
			Quantity:   l.Quantity,
			LineTotal:  l.LineTotal,
		})
		if _, seen := decrements[l.MenuItem.ID]; !seen {
			itemOrder = append(itemOrder, l.MenuItem.ID)
		}
		decrements[l.MenuItem.ID] += l.Quantity
	}

	entry := journal.NewEntry(ctx, journal.KindOrderSubmitted)
	entry.OrderID = order.ID
	entry.Status = order.Status.String()
	b, err := json.Marshal(payload)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode order journal payload", "order_id", order.ID, "error", err)
	}
	entry.Payload = string(b)
	s.record(ctx, entry)

	for _, id := range itemOrder {
		e := journal.NewEntry(ctx, journal.KindStockAdjusted)
		e.OrderID = order.ID
		e.MenuItemID = id
		e.Delta = -decrements[id]
		s.record(ctx, e)
	}
}

// record saves entry; a failure is logged and never undoes the committed change.
func (s *Service) record(ctx context.Context, entry *journal.Entry) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Save(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "failed to write order journal", "kind", entry.Kind, "order_id", entry.OrderID, "error", err)
	}
}
