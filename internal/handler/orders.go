package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"casahogar-storefront-api/internal/cart"
	"casahogar-storefront-api/internal/checkout"
	"casahogar-storefront-api/internal/model"
	"casahogar-storefront-api/internal/session"
	"casahogar-storefront-api/pkg/apierror"
	"casahogar-storefront-api/pkg/response"
)

// OrderHandler serves the order list and checkout.
type OrderHandler struct {
	session  *session.CatalogSession
	checkout *checkout.Service
}

// NewOrderHandler creates an order handler.
func NewOrderHandler(s *session.CatalogSession, c *checkout.Service) *OrderHandler {
	return &OrderHandler{session: s, checkout: c}
}

// List handles GET /api/v1/orders; ?refresh=true forces a refetch.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("refresh") == "true"
	response.OK(w, map[string]interface{}{
		"orders": h.session.Orders(r.Context(), force),
	})
}

// Create handles POST /api/v1/orders (checkout).
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email   string        `json:"email"`
		Address model.Address `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if req.Email == "" {
		response.Error(w, apierror.BadRequest("email is required"))
		return
	}

	order, err := h.checkout.PlaceOrder(r.Context(), req.Email, req.Address)
	if err != nil {
		if errors.Is(err, cart.ErrEmptyCart) {
			response.Error(w, apierror.BadRequest("cart is empty"))
			return
		}
		response.Error(w, apierror.ServiceUnavailable("could not place the order"))
		return
	}

	response.Created(w, order)
}
