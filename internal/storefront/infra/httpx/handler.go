package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/cozy-cafe/internal/ordering/app"
	"github.com/jcmexdev/cozy-cafe/internal/ordering/domain"
	"github.com/jcmexdev/cozy-cafe/internal/pkg/cache"
	"github.com/jcmexdev/cozy-cafe/internal/pkg/won"
	"github.com/jcmexdev/cozy-cafe/internal/storefront/core/ports"
	"github.com/jcmexdev/cozy-cafe/internal/storefront/infra/httpx/middlewares"
)

const (
	submitOrderOperation = "submit_order"
	idempotencyPending   = "pending"
	idempotencyWait      = 5 * time.Second
	idempotencyPoll      = 20 * time.Millisecond
)

// Handler serves the customer and admin views over JSON.
type Handler struct {
	ordering       ports.Ordering
	idempotency    cache.Cache // nil-safe: idempotency keys ignored if nil
	idempotencyTTL time.Duration
	lowStock       int
}

// NewHandler wires the views to the ordering service. idem may be nil.
func NewHandler(ordering ports.Ordering, idem cache.Cache, idemTTL time.Duration, lowStockThreshold int) *Handler {
	return &Handler{
		ordering:       ordering,
		idempotency:    idem,
		idempotencyTTL: idemTTL,
		lowStock:       lowStockThreshold,
	}
}

// GetMenu lists the menu with the stock of each item.
func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	stock := make(map[int]int)
	for _, e := range h.ordering.Inventory() {
		stock[e.MenuItemID] = e.Stock
	}

	items := h.ordering.Menu()
	out := make([]MenuItemResponse, len(items))
	for i, it := range items {
		out[i] = MenuItemResponse{
			ID:          it.ID,
			Name:        it.Name,
			Price:       it.BasePrice,
			PriceText:   won.Format(it.BasePrice),
			Description: it.Description,
			Image:       it.ImageRef,
			Stock:       stock[it.ID],
			SoldOut:     stock[it.ID] == 0,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// QuotePrice previews the unit price of a menu item for ?shot=&syrup=.
func (h *Handler) QuotePrice(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	opts, err := optionsFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_options", err.Error())
		return
	}

	price, err := h.ordering.QuotePrice(id, opts)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PriceQuoteResponse{
		MenuItemID:    id,
		Options:       OptionsDTO{Shot: opts.Shot, Syrup: opts.Syrup},
		UnitPrice:     price,
		UnitPriceText: won.Format(price),
	})
}

// GetCart returns the cart with its total.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, mapCart(h.ordering.Cart()))
}

// AddToCart adds one unit of a menu item with options.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req AddToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.MenuItemID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "menu_item_id is required")
		return
	}

	opts := domain.Options{Shot: req.Options.Shot, Syrup: req.Options.Syrup}
	if _, err := h.ordering.AddToCart(r.Context(), req.MenuItemID, opts); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(h.ordering.Cart()))
}

// DecrementLine removes one unit from a cart line.
func (h *Handler) DecrementLine(w http.ResponseWriter, r *http.Request) {
	key := domain.LineKey(chi.URLParam(r, "key"))
	if err := h.ordering.DecrementLine(r.Context(), key); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(h.ordering.Cart()))
}

// RemoveLine drops a cart line.
func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	key := domain.LineKey(chi.URLParam(r, "key"))
	if err := h.ordering.RemoveLine(r.Context(), key); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(h.ordering.Cart()))
}

// SubmitOrder places the cart. The X-Idempotency-Key is reserved before the order is placed;
// a request that finds the key taken waits for the first request's order and returns it
// instead of placing a new one.
func (h *Handler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var cacheKey string
	if idemKey := middlewares.IdempotencyKey(ctx); h.idempotency != nil && idemKey != "" {
		cacheKey = h.idempotency.GenerateKey(submitOrderOperation, idemKey)
		reserved, err := h.idempotency.SetNX(ctx, cacheKey, idempotencyPending, h.idempotencyTTL)
		switch {
		case err != nil:
			slog.WarnContext(ctx, "idempotency reserve failed", "error", err)
			cacheKey = ""
		case !reserved:
			h.replayOrder(w, r, cacheKey)
			return
		}
	}

	order, err := h.ordering.SubmitOrder(ctx)
	if err != nil {
		if cacheKey != "" {
			if delErr := h.idempotency.Delete(ctx, cacheKey); delErr != nil {
				slog.WarnContext(ctx, "idempotency release failed", "error", delErr)
			}
		}
		writeDomainError(w, r, err)
		return
	}

	if cacheKey != "" {
		if err := h.idempotency.Set(ctx, cacheKey, strconv.FormatInt(order.ID, 10), h.idempotencyTTL); err != nil {
			slog.WarnContext(ctx, "idempotency store failed", "order_id", order.ID, "error", err)
		}
	}

	writeJSON(w, http.StatusCreated, SubmitOrderResponse{Message: domain.MsgOrderPlaced, Order: mapOrder(order)})
}

// replayOrder answers a request whose idempotency key is already taken with the order placed
// under that key, polling while the first request is still in flight.
func (h *Handler) replayOrder(w http.ResponseWriter, r *http.Request, cacheKey string) {
	ctx, cancel := context.WithTimeout(r.Context(), idempotencyWait)
	defer cancel()

	ticker := time.NewTicker(idempotencyPoll)
	defer ticker.Stop()

	for {
		cached, err := h.idempotency.Get(ctx, cacheKey)
		if err != nil {
			slog.WarnContext(ctx, "idempotency lookup failed", "error", err)
		}
		if cached == "" && err == nil {
			writeError(w, http.StatusConflict, "idempotency_conflict", "previous request with this idempotency key failed")
			return
		}
		if id, convErr := strconv.ParseInt(cached, 10, 64); convErr == nil {
			order, ok := h.ordering.Order(id)
			if !ok {
				writeError(w, http.StatusConflict, "idempotency_conflict", "order for this idempotency key no longer exists")
				return
			}
			slog.InfoContext(ctx, "replaying idempotent order", "order_id", id)
			writeJSON(w, http.StatusOK, SubmitOrderResponse{Message: domain.MsgOrderPlaced, Order: mapOrder(order)})
			return
		}

		select {
		case <-ctx.Done():
			writeError(w, http.StatusConflict, "idempotency_conflict", "request with this idempotency key is still in progress")
			return
		case <-ticker.C:
		}
	}
}

// ListOrders returns every order, newest first.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, mapOrders(h.ordering.Orders()))
}

// GetOrderByID returns a single order.
func (h *Handler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(w, r, "id")
	if !ok {
		return
	}
	order, found := h.ordering.Order(id)
	if !found {
		writeError(w, http.StatusNotFound, "order_not_found", domain.MsgOrderNotFound)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(order))
}

// ListActiveOrders returns the orders the admin still has to work on.
func (h *Handler) ListActiveOrders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, mapOrders(h.ordering.ActiveOrders()))
}

// AdvanceOrder moves an order to its next status.
func (h *Handler) AdvanceOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(w, r, "id")
	if !ok {
		return
	}
	order, advanced, err := h.ordering.AdvanceOrder(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AdvanceOrderResponse{Advanced: advanced, Order: mapOrder(order)})
}

// OrderHistory returns the journal entries of an order.
func (h *Handler) OrderHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(w, r, "id")
	if !ok {
		return
	}
	if _, found := h.ordering.Order(id); !found {
		writeError(w, http.StatusNotFound, "order_not_found", domain.MsgOrderNotFound)
		return
	}

	entries, err := h.ordering.History(r.Context(), id)
	if errors.Is(err, app.ErrJournalDisabled) {
		writeError(w, http.StatusNotImplemented, "journal_disabled", err.Error())
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to read order history", "order_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "journal_error", "")
		return
	}

	out := make([]JournalEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = JournalEntryResponse{
			ID:         e.ID,
			Kind:       string(e.Kind),
			Status:     e.Status,
			MenuItemID: e.MenuItemID,
			Delta:      e.Delta,
			TraceID:    e.TraceID,
			RecordedAt: e.RecordedAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// GetInventory lists stock with its level badge.
func (h *Handler) GetInventory(w http.ResponseWriter, r *http.Request) {
	names := make(map[int]string)
	for _, it := range h.ordering.Menu() {
		names[it.ID] = it.Name
	}

	inv := h.ordering.Inventory()
	out := make([]InventoryItemResponse, len(inv))
	for i, e := range inv {
		out[i] = h.mapInventory(e, names[e.MenuItemID])
	}
	writeJSON(w, http.StatusOK, out)
}

// AdjustStock applies a manual +/- change to one item's stock.
func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	var req AdjustStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.Delta == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "delta must be non-zero")
		return
	}

	entry, err := h.ordering.AdjustStock(r.Context(), id, req.Delta)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var name string
	for _, it := range h.ordering.Menu() {
		if it.ID == id {
			name = it.Name
		}
	}
	writeJSON(w, http.StatusOK, h.mapInventory(entry, name))
}

// GetStats returns the dashboard counters.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	st := h.ordering.Stats()
	writeJSON(w, http.StatusOK, StatsResponse{
		Total:     st.Total,
		Pending:   st.Pending,
		Received:  st.Received,
		Making:    st.Making,
		Completed: st.Completed,
	})
}

func (h *Handler) mapInventory(e domain.InventoryEntry, name string) InventoryItemResponse {
	return InventoryItemResponse{
		MenuItemID: e.MenuItemID,
		Name:       name,
		Stock:      e.Stock,
		Level:      string(e.Level(h.lowStock)),
	}
}

func mapCart(lines []domain.CartLine) CartResponse {
	out := CartResponse{Lines: make([]CartLineResponse, len(lines))}
	for i, l := range lines {
		total := domain.LineTotal(l)
		out.Lines[i] = CartLineResponse{
			Key:           string(l.Key),
			MenuItemID:    l.MenuItem.ID,
			Name:          l.MenuItem.Name,
			DisplayName:   l.DisplayName(),
			Options:       OptionsDTO{Shot: l.Options.Shot, Syrup: l.Options.Syrup},
			Quantity:      l.Quantity,
			UnitPrice:     domain.LineUnitPrice(l.MenuItem, l.Options),
			LineTotal:     total,
			LineTotalText: won.Format(total),
		}
	}
	out.Total = domain.CartTotal(lines)
	out.TotalText = won.Format(out.Total)
	return out
}

func mapOrders(orders []domain.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = mapOrder(o)
	}
	return out
}

func mapOrder(o domain.Order) OrderResponse {
	lines := make([]OrderLineResponse, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = OrderLineResponse{
			MenuItemID:    l.MenuItem.ID,
			Name:          l.MenuItem.Name,
			DisplayName:   l.DisplayName(),
			Options:       OptionsDTO{Shot: l.Options.Shot, Syrup: l.Options.Syrup},
			Quantity:      l.Quantity,
			LineTotal:     l.LineTotal,
			LineTotalText: won.Format(l.LineTotal),
		}
	}
	return OrderResponse{
		ID:             o.ID,
		CreatedAt:      o.CreatedAt,
		Status:         o.Status.String(),
		StatusLabel:    o.Status.Label(),
		NextAction:     o.Status.ActionLabel(),
		TotalPrice:     o.TotalPrice,
		TotalPriceText: won.Format(o.TotalPrice),
		Lines:          lines,
	}
}

func optionsFromQuery(r *http.Request) (domain.Options, error) {
	var opts domain.Options
	q := r.URL.Query()
	for name, dst := range map[string]*bool{"shot": &opts.Shot, "syrup": &opts.Syrup} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return domain.Options{}, errors.New(name + " must be true or false")
		}
		*dst = b
	}
	return opts, nil
}

func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_"+name, name+" must be an integer")
		return 0, false
	}
	return v, true
}

func int64Param(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_"+name, name+" must be an integer")
		return 0, false
	}
	return v, true
}

func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch domain.CodeOf(err) {
	case domain.CodeNotFound:
		writeError(w, http.StatusNotFound, string(domain.CodeNotFound), err.Error())
	case domain.CodeFailedPrecondition:
		writeError(w, http.StatusUnprocessableEntity, string(domain.CodeFailedPrecondition), err.Error())
	case domain.CodeInvalidArgument:
		writeError(w, http.StatusBadRequest, string(domain.CodeInvalidArgument), err.Error())
	default:
		slog.ErrorContext(r.Context(), "unexpected error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
