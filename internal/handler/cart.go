package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"casahogar-storefront-api/internal/model"
	"casahogar-storefront-api/internal/session"
	"casahogar-storefront-api/internal/stock"
	"casahogar-storefront-api/pkg/apierror"
	"casahogar-storefront-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// CartHandler serves the identity-scoped cart operations.
type CartHandler struct {
	session *session.CatalogSession
}

// NewCartHandler creates a cart handler.
func NewCartHandler(s *session.CatalogSession) *CartHandler {
	return &CartHandler{session: s}
}

func (h *CartHandler) cartPayload() map[string]interface{} {
	cart := h.session.Cart()
	return map[string]interface{}{
		"identity": cart.Identity(),
		"lines":    cart.Lines(),
		"total":    cart.Total(),
	}
}

// Get handles GET /api/v1/cart
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.cartPayload())
}

// Add handles POST /api/v1/cart/items
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Product  model.Product `json:"product"`
		Quantity int           `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if req.Product.ID == "" {
		response.Error(w, apierror.BadRequest("product.id is required"))
		return
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	h.session.Cart().AddToCart(r.Context(), req.Product, req.Quantity)
	response.OK(w, h.cartPayload())
}

// Update handles PATCH /api/v1/cart/items/{id}
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Op       string `json:"op"` // increment, decrement or set
		Quantity int    `json:"quantity,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}

	cart := h.session.Cart()
	switch req.Op {
	case "increment":
		if err := cart.IncrementQuantity(r.Context(), id); err != nil {
			var limitErr *stock.LimitError
			if errors.As(err, &limitErr) {
				response.Error(w, apierror.StockLimited(limitErr.Error()))
				return
			}
			response.Error(w, err)
			return
		}
	case "decrement":
		cart.DecrementQuantity(r.Context(), id)
	case "set":
		if req.Quantity < 1 {
			response.Error(w, apierror.BadRequest("quantity must be a positive integer"))
			return
		}
		cart.SetQuantityForItem(r.Context(), id, req.Quantity)
	default:
		response.Error(w, apierror.BadRequest("op must be increment, decrement or set"))
		return
	}

	response.OK(w, h.cartPayload())
}

// Delete handles DELETE /api/v1/cart/items/{id}
func (h *CartHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.session.Cart().DeleteFromCart(r.Context(), chi.URLParam(r, "id"))
	response.OK(w, h.cartPayload())
}
