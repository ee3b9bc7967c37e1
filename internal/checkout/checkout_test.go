package checkout

import (
	"context"
	"errors"
	"testing"

	"casahogar-storefront-api/internal/cart"
	"casahogar-storefront-api/internal/catalog"
	"casahogar-storefront-api/internal/docstore"
	"casahogar-storefront-api/internal/localstore"
	"casahogar-storefront-api/internal/model"
	"casahogar-storefront-api/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingInserts wraps a MemoryStore whose Insert always fails.
type failingInserts struct {
	*docstore.MemoryStore
}

func (s *failingInserts) Insert(ctx context.Context, collection string, doc docstore.Document) error {
	return errors.New("backend down")
}

func newTestCheckout(t *testing.T, store docstore.Store) (*Service, *cart.Store, *catalog.OrderCache) {
	t.Helper()
	cartStore := cart.NewStore(context.Background(), localstore.NewMemoryStore(), nil, notify.LogNotifier{})
	orders := catalog.NewOrderCache(store)
	return NewService(store, cartStore, orders, notify.LogNotifier{}), cartStore, orders
}

func testAddress() model.Address {
	return model.Address{Name: "Ana", Phone: "700-12345", Street: "Calle 21", City: "La Paz"}
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	svc, _, _ := newTestCheckout(t, docstore.NewMemoryStore())

	_, err := svc.PlaceOrder(context.Background(), "ana@example.com", testAddress())
	assert.ErrorIs(t, err, cart.ErrEmptyCart)
}

func TestPlaceOrderWritesAndClears(t *testing.T) {
	store := docstore.NewMemoryStore()
	svc, cartStore, orders := newTestCheckout(t, store)
	ctx := context.Background()

	cartStore.AddToCart(ctx, model.Product{ID: "p1", Title: "Jarra", Price: 30, Stock: model.StockUnlimited}, 2)
	cartStore.AddToCart(ctx, model.Product{ID: "p2", Title: "Vaso", Price: 10, Stock: model.StockUnlimited}, 1)

	order, err := svc.PlaceOrder(ctx, "ana@example.com", testAddress())
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, string(model.Guest), order.UID)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, 70.0, order.Total)
	assert.Len(t, order.Lines, 2)
	assert.NotEmpty(t, order.CreatedAt)

	assert.Empty(t, cartStore.Lines(), "checkout clears the cart")

	// The order cache was refreshed past the write.
	cached := orders.All(ctx, false)
	require.Len(t, cached, 1)
	assert.Equal(t, order.ID, cached[0].ID)
	assert.Equal(t, string(model.Guest), cached[0].UID)
	assert.Equal(t, "ana@example.com", cached[0].Email)
	assert.Equal(t, "La Paz", cached[0].Address.City)
}

func TestPlaceOrderWritesCanonicalIdentityField(t *testing.T) {
	store := docstore.NewMemoryStore()
	svc, cartStore, _ := newTestCheckout(t, store)
	ctx := context.Background()

	cartStore.SwitchIdentity(ctx, "user-1")
	cartStore.AddToCart(ctx, model.Product{ID: "p1", Price: 5, Stock: model.StockUnlimited}, 1)

	order, err := svc.PlaceOrder(ctx, "ana@example.com", testAddress())
	require.NoError(t, err)

	docs, err := store.QueryByField(ctx, docstore.CollectionOrders, "uid", "user-1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, order.ID, docs[0].ID)

	// Only uid carries identity on new records.
	_, hasLegacy := docs[0].Fields["userId"]
	assert.False(t, hasLegacy)

	// createdAt is stored as a tagged timestamp, not a raw map.
	_, ok := docs[0].Fields["createdAt"].(docstore.Timestamp)
	assert.True(t, ok)
}

func TestPlaceOrderInsertFailureKeepsCart(t *testing.T) {
	store := &failingInserts{MemoryStore: docstore.NewMemoryStore()}
	svc, cartStore, _ := newTestCheckout(t, store)
	ctx := context.Background()

	cartStore.AddToCart(ctx, model.Product{ID: "p1", Price: 5, Stock: model.StockUnlimited}, 1)

	_, err := svc.PlaceOrder(ctx, "ana@example.com", testAddress())
	require.Error(t, err)
	assert.Len(t, cartStore.Lines(), 1, "a failed checkout keeps the cart")
}
