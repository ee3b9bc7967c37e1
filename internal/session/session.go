package session

import (
	"context"
	"log"
	"sync"

	"casahogar-storefront-api/internal/auth"
	"casahogar-storefront-api/internal/cart"
	"casahogar-storefront-api/internal/catalog"
	"casahogar-storefront-api/internal/localstore"
	"casahogar-storefront-api/internal/model"
)

// CatalogSession owns the storefront's client-side state: the product and
// order caches, the pagination cursor and the identity-scoped cart. There is
// no ambient singleton; whoever needs read access gets the session by
// reference. Outside of the explicit cache contracts it never refetches
// behind the caller's back.
type CatalogSession struct {
	products *catalog.ProductCache
	orders   *catalog.OrderCache
	cart     *cart.Store
	provider auth.Provider
	local    localstore.Store

	mu         sync.RWMutex
	identity   model.Identity
	cancelAuth func()
	started    bool
}

// New wires a session from its collaborators.
func New(products *catalog.ProductCache, orders *catalog.OrderCache, cartStore *cart.Store, provider auth.Provider, local localstore.Store) *CatalogSession {
	return &CatalogSession{
		products: products,
		orders:   orders,
		cart:     cartStore,
		provider: provider,
		local:    local,
		identity: model.Guest,
	}
}

// Start resolves the initial identity, subscribes once to the identity
// feed, and performs the one startup catalog page fetch.
func (s *CatalogSession) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	s.applyIdentity(ctx, s.provider.Current())
	cancel := s.provider.Subscribe(func(identity model.Identity) {
		s.applyIdentity(context.Background(), identity)
	})
	s.mu.Lock()
	s.cancelAuth = cancel
	s.mu.Unlock()

	s.products.FirstPage(ctx)
	log.Printf("[CatalogSession] started as %s", s.Identity())
}

// Close drops the identity subscription.
func (s *CatalogSession) Close() {
	s.mu.Lock()
	cancel := s.cancelAuth
	s.cancelAuth = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (s *CatalogSession) applyIdentity(ctx context.Context, identity model.Identity) {
	if identity.IsGuest() {
		identity = model.Guest
	}

	// Snapshot the raw identity even when it is unchanged, so the startup
	// resolution always leaves one behind.
	if err := s.local.Set(ctx, localstore.UsersKey, string(identity)); err != nil {
		log.Printf("[CatalogSession] failed to snapshot identity: %v", err)
	}

	s.mu.Lock()
	if identity == s.identity && s.cart.Identity() == identity {
		s.mu.Unlock()
		return
	}
	s.identity = identity
	s.mu.Unlock()

	s.cart.SwitchIdentity(ctx, identity)
	log.Printf("[CatalogSession] identity resolved to %s", identity)
}

// Identity returns the currently resolved identity.
func (s *CatalogSession) Identity() model.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// Cart returns the identity-scoped cart store.
func (s *CatalogSession) Cart() *cart.Store { return s.cart }

// Products returns the accumulated paged catalog.
func (s *CatalogSession) Products() []model.Product {
	return s.products.Products()
}

// ProductsByCategory serves the per-category read path.
func (s *CatalogSession) ProductsByCategory(ctx context.Context, category string) []model.Product {
	return s.products.ByCategory(ctx, category)
}

// LoadMore advances catalog pagination.
func (s *CatalogSession) LoadMore(ctx context.Context) []model.Product {
	return s.products.LoadMore(ctx)
}

// HasMore reports whether another catalog page may exist.
func (s *CatalogSession) HasMore() bool { return s.products.HasMore() }

// Loading reports whether a catalog fetch is in flight.
func (s *CatalogSession) Loading() bool { return s.products.Loading() }

// Orders serves the order list read path.
func (s *CatalogSession) Orders(ctx context.Context, forceRefresh bool) []model.Order {
	return s.orders.All(ctx, forceRefresh)
}

// RefreshOrders forces an order refetch.
func (s *CatalogSession) RefreshOrders(ctx context.Context) []model.Order {
	return s.orders.RefreshAfterCreation(ctx)
}
