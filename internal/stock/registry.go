package stock

import "sync"

// Registry collects the latest reading of every live watcher so other
// components (the cart above all) can read the freshest value at the instant
// of a mutation. It implements Reader.
type Registry struct {
	mu       sync.RWMutex
	readings map[string]Reading
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{readings: make(map[string]Reading)}
}

// Current returns the latest reading for the product, if a watcher is live.
func (r *Registry) Current(productID string) (Reading, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reading, ok := r.readings[productID]
	return reading, ok
}

func (r *Registry) set(productID string, reading Reading) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readings[productID] = reading
}

func (r *Registry) remove(productID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.readings, productID)
}
