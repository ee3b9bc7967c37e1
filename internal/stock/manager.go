package stock

import (
	"context"
	"sync"

	"casahogar-storefront-api/internal/docstore"
)

// Manager owns the live watchers for currently viewed products: exactly one
// watcher per product id, torn down when the view goes away.
type Manager struct {
	store    docstore.Store
	registry *Registry

	mu       sync.Mutex
	watchers map[string]*Watcher
}

// NewManager creates a watcher manager publishing into the given registry.
func NewManager(store docstore.Store, registry *Registry) *Manager {
	return &Manager{
		store:    store,
		registry: registry,
		watchers: make(map[string]*Watcher),
	}
}

// Registry returns the reading registry the watchers publish into.
func (m *Manager) Registry() *Registry { return m.registry }

// Start opens a watcher for the product unless one is already live.
func (m *Manager) Start(ctx context.Context, productID string, initial Reading) (*Watcher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if w, ok := m.watchers[productID]; ok {
		return w, nil
	}
	w, err := Watch(ctx, m.store, productID, initial, m.registry)
	if err != nil {
		return nil, err
	}
	m.watchers[productID] = w
	return w, nil
}

// Reading returns the live reading for the product, if it is being watched.
func (m *Manager) Reading(productID string) (Reading, bool) {
	m.mu.Lock()
	w, ok := m.watchers[productID]
	m.mu.Unlock()
	if !ok {
		return Reading{}, false
	}
	return w.Reading(), true
}

// Stop tears down the product's watcher; no-op when none is live.
func (m *Manager) Stop(productID string) {
	m.mu.Lock()
	w, ok := m.watchers[productID]
	delete(m.watchers, productID)
	m.mu.Unlock()
	if ok {
		w.Stop()
	}
}

// StopAll tears down every live watcher.
func (m *Manager) StopAll() {
	m.mu.Lock()
	watchers := m.watchers
	m.watchers = make(map[string]*Watcher)
	m.mu.Unlock()

	for _, w := range watchers {
		w.Stop()
	}
}
