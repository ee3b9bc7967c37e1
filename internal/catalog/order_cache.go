package catalog

import (
	"context"
	"log"
	"sync"

	"casahogar-storefront-api/internal/docstore"
	"casahogar-storefront-api/internal/model"
)

// OrderCache keeps the full order list in memory. A non-empty cache is
// served as-is unless a refresh is forced; a forced read always refetches.
// Concurrent forced fetches are allowed and last-writer-wins on the cache
// slot, which is acceptable for read-mostly, eventually consistent data.
type OrderCache struct {
	store docstore.Store

	mu     sync.RWMutex
	orders []model.Order
}

// NewOrderCache creates an order cache over the given backend.
func NewOrderCache(store docstore.Store) *OrderCache {
	return &OrderCache{store: store}
}

// All returns the cached order list, refetching when the cache is empty or
// forceRefresh is set. Every record is normalized before it is cached; a
// fetch failure serves the stale cache (or an empty list) instead.
func (o *OrderCache) All(ctx context.Context, forceRefresh bool) []model.Order {
	if !forceRefresh {
		o.mu.RLock()
		if len(o.orders) > 0 {
			cached := o.snapshot()
			o.mu.RUnlock()
			return cached
		}
		o.mu.RUnlock()
	}

	docs, err := o.store.OrderedQuery(ctx, docstore.CollectionOrders, createdAtField, 0, nil)
	if err != nil {
		log.Printf("[OrderCache] fetch failed, serving cached orders: %v", err)
		o.mu.RLock()
		defer o.mu.RUnlock()
		return o.snapshot()
	}

	orders := make([]model.Order, 0, len(docs))
	for _, doc := range docs {
		orders = append(orders, orderFromDoc(doc))
	}

	o.mu.Lock()
	o.orders = orders
	o.mu.Unlock()
	return append([]model.Order(nil), orders...)
}

// RefreshAfterCreation forces a refetch; called right after an order is
// created so the cache can never serve a pre-write state.
func (o *OrderCache) RefreshAfterCreation(ctx context.Context) []model.Order {
	return o.All(ctx, true)
}

// snapshot copies the cached slice. Callers hold at least the read lock.
func (o *OrderCache) snapshot() []model.Order {
	out := make([]model.Order, len(o.orders))
	copy(out, o.orders)
	return out
}
