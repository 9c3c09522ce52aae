package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/cozy-cafe/internal/storefront/infra/httpx/middlewares"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.AttachRequestMetadata)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/menu", handler.GetMenu)
	r.Get("/menu/{id}/price", handler.QuotePrice)

	r.Get("/cart", handler.GetCart)
	r.Post("/cart/lines", handler.AddToCart)
	r.Post("/cart/lines/{key}/decrement", handler.DecrementLine)
	r.Delete("/cart/lines/{key}", handler.RemoveLine)

	r.Post("/orders", handler.SubmitOrder)
	r.Get("/orders", handler.ListOrders)
	r.Get("/orders/{id}", handler.GetOrderByID)

	r.Route("/admin", func(r chi.Router) {
		r.Get("/orders", handler.ListActiveOrders)
		r.Post("/orders/{id}/advance", handler.AdvanceOrder)
		r.Get("/orders/{id}/history", handler.OrderHistory)
		r.Get("/inventory", handler.GetInventory)
		r.Post("/inventory/{id}/adjust", handler.AdjustStock)
		r.Get("/stats", handler.GetStats)
	})
	return r
}
