package handler

import (
	"net/http"
	"strconv"

	"casahogar-storefront-api/internal/session"
	"casahogar-storefront-api/internal/stock"
	"casahogar-storefront-api/pkg/apierror"
	"casahogar-storefront-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// CatalogHandler serves the product read paths and the per-product stock
// watch lifecycle.
type CatalogHandler struct {
	session *session.CatalogSession
	stocks  *stock.Manager
}

// NewCatalogHandler creates a catalog handler.
func NewCatalogHandler(s *session.CatalogSession, stocks *stock.Manager) *CatalogHandler {
	return &CatalogHandler{session: s, stocks: stocks}
}

// List handles GET /api/v1/products
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]interface{}{
		"products": h.session.Products(),
		"hasMore":  h.session.HasMore(),
		"loading":  h.session.Loading(),
	})
}

// LoadMore handles POST /api/v1/products/more
func (h *CatalogHandler) LoadMore(w http.ResponseWriter, r *http.Request) {
	products := h.session.LoadMore(r.Context())
	response.OK(w, map[string]interface{}{
		"products": products,
		"hasMore":  h.session.HasMore(),
	})
}

// ByCategory handles GET /api/v1/products/category/{category}
func (h *CatalogHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	if category == "" {
		response.Error(w, apierror.BadRequest("category is required"))
		return
	}

	response.OK(w, map[string]interface{}{
		"category": category,
		"products": h.session.ProductsByCategory(r.Context(), category),
	})
}

// WatchStock handles POST /api/v1/products/{id}/watch, the view-mounted
// side of the stock subscription lifecycle.
func (h *CatalogHandler) WatchStock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.Error(w, apierror.BadRequest("product id is required"))
		return
	}

	initial := stock.Reading{HasStockControl: true}
	for _, p := range h.session.Products() {
		if p.ID == id {
			initial = stock.Reading{Stock: p.Stock, HasStockControl: p.HasStockControl}
			break
		}
	}

	watcher, err := h.stocks.Start(r.Context(), id, initial)
	if err != nil {
		response.Error(w, apierror.ServiceUnavailable("could not open stock subscription"))
		return
	}

	reading := watcher.Reading()
	response.OK(w, map[string]interface{}{
		"productId":       id,
		"stock":           reading.Stock,
		"hasStockControl": reading.HasStockControl,
		"loading":         watcher.Loading(),
	})
}

// UnwatchStock handles DELETE /api/v1/products/{id}/watch, the teardown
// side of the lifecycle.
func (h *CatalogHandler) UnwatchStock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.Error(w, apierror.BadRequest("product id is required"))
		return
	}
	h.stocks.Stop(id)
	response.NoContent(w)
}

// Availability handles GET /api/v1/products/{id}/availability?quantity=N
func (h *CatalogHandler) Availability(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	quantity, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil || quantity < 1 {
		response.Error(w, apierror.BadRequest("quantity must be a positive integer"))
		return
	}

	reading, ok := h.stocks.Reading(id)
	if !ok {
		response.Error(w, apierror.NotFound("no live stock subscription for product"))
		return
	}

	if !reading.Available(quantity) {
		response.Error(w, apierror.StockLimited((&stock.LimitError{Available: reading.Stock}).Error()))
		return
	}
	response.OK(w, map[string]interface{}{
		"productId": id,
		"quantity":  quantity,
		"available": true,
	})
}
