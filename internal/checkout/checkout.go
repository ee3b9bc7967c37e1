package checkout

import (
	"context"
	"fmt"
	"log"
	"time"

	"casahogar-storefront-api/internal/cart"
	"casahogar-storefront-api/internal/catalog"
	"casahogar-storefront-api/internal/docstore"
	"casahogar-storefront-api/internal/model"
	"casahogar-storefront-api/internal/notify"
	"casahogar-storefront-api/pkg/uid"
)

// Service turns the current cart into an order. The order carries a single
// canonical uid identity field, written exactly once here; legacy multi-field
// variants exist only on the read path.
type Service struct {
	store    docstore.Store
	cart     *cart.Store
	orders   *catalog.OrderCache
	notifier notify.Notifier
}

// NewService creates a checkout service.
func NewService(store docstore.Store, cartStore *cart.Store, orders *catalog.OrderCache, notifier notify.Notifier) *Service {
	return &Service{store: store, cart: cartStore, orders: orders, notifier: notifier}
}

// PlaceOrder creates an order from the current identity's cart, clears the
// cart, and forces the order cache to refresh so it cannot serve a
// pre-write state.
func (s *Service) PlaceOrder(ctx context.Context, email string, address model.Address) (*model.Order, error) {
	lines := s.cart.Lines()
	if len(lines) == 0 {
		return nil, cart.ErrEmptyCart
	}

	identity := s.cart.Identity()
	now := time.Now().UTC()

	order := model.Order{
		ID:        uid.New(),
		UID:       string(identity),
		Email:     email,
		Status:    model.OrderStatusPending,
		Total:     s.cart.Total(),
		Address:   address,
		CreatedAt: docstore.TimestampOf(now).ISO8601(),
	}

	items := make([]any, 0, len(lines))
	for _, line := range lines {
		order.Lines = append(order.Lines, model.OrderLine{
			ProductID: line.Product.ID,
			Title:     line.Product.Title,
			Price:     line.Product.Price,
			Quantity:  line.Quantity,
		})
		items = append(items, map[string]any{
			"productId": line.Product.ID,
			"title":     line.Product.Title,
			"price":     line.Product.Price,
			"quantity":  line.Quantity,
		})
	}

	doc := docstore.Document{
		ID: order.ID,
		Fields: map[string]any{
			"uid":    order.UID,
			"email":  order.Email,
			"status": order.Status,
			"total":  order.Total,
			"address": map[string]any{
				"name":   address.Name,
				"phone":  address.Phone,
				"street": address.Street,
				"city":   address.City,
			},
			"items":     items,
			"createdAt": docstore.TimestampOf(now),
		},
	}

	if err := s.store.Insert(ctx, docstore.CollectionOrders, doc); err != nil {
		s.notifier.Error("could not place the order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.cart.Clear(ctx)
	s.orders.RefreshAfterCreation(ctx)
	s.notifier.Success("order placed")
	log.Printf("[Checkout] order %s created for %s (%d lines)", order.ID, identity, len(order.Lines))
	return &order, nil
}
