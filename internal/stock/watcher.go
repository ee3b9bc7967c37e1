package stock

import (
	"context"
	"fmt"
	"log"
	"sync"

	"casahogar-storefront-api/internal/docstore"
	"casahogar-storefront-api/internal/model"
)

// Reading is the latest known authoritative stock state for a product.
type Reading struct {
	Stock           int
	HasStockControl bool
}

// Available reports whether quantity units can be taken at this reading.
func (r Reading) Available(quantity int) bool {
	if !r.HasStockControl {
		return true
	}
	return quantity <= r.Stock
}

// Reader reports the freshest stock reading for a product, when a live
// watcher holds one. Cart mutations consult it at mutation time so a stale
// snapshot never approves an over-quantity change.
type Reader interface {
	Current(productID string) (Reading, bool)
}

// LimitError is the recoverable stock-insufficient rejection.
type LimitError struct {
	Available int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("only %d units available", e.Available)
}

// Watcher holds one live subscription to a product's authoritative record
// and exposes the latest reading. Exactly one subscription is open per
// watcher; Stop tears it down deterministically and is safe to call twice.
type Watcher struct {
	productID string
	sub       docstore.Subscription
	registry  *Registry

	mu      sync.RWMutex
	reading Reading
	loading bool
	err     error

	stopOnce sync.Once
	done     chan struct{}
}

// Watch subscribes to the product's record, seeded with the reading known at
// mount time (usually the catalog snapshot).
func Watch(ctx context.Context, store docstore.Store, productID string, initial Reading, registry *Registry) (*Watcher, error) {
	sub, err := store.Watch(ctx, docstore.CollectionProducts, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to watch product %s: %w", productID, err)
	}

	w := &Watcher{
		productID: productID,
		sub:       sub,
		registry:  registry,
		reading:   initial,
		loading:   true,
		done:      make(chan struct{}),
	}
	if registry != nil {
		registry.set(productID, initial)
	}

	go w.consume()
	return w, nil
}

// ProductID returns the watched product id.
func (w *Watcher) ProductID() string { return w.productID }

// Reading returns the latest known stock reading.
func (w *Watcher) Reading() Reading {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.reading
}

// Loading reports whether the first server push is still pending.
func (w *Watcher) Loading() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.loading
}

// Err returns the last subscription error, if any. Errors never reset the
// reading; the watcher keeps serving the last known state.
func (w *Watcher) Err() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.err
}

// CheckAvailability reports whether quantity units can be taken. On
// rejection it returns a LimitError carrying the available count for the
// user-facing "only N units available" message.
func (w *Watcher) CheckAvailability(quantity int) error {
	r := w.Reading()
	if r.Available(quantity) {
		return nil
	}
	return &LimitError{Available: r.Stock}
}

// Stop releases the subscription. Idempotent.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.sub.Stop()
		if w.registry != nil {
			w.registry.remove(w.productID)
		}
		close(w.done)
	})
}

// Done is closed once the watcher has been stopped.
func (w *Watcher) Done() <-chan struct{} { return w.done }

func (w *Watcher) consume() {
	for snap := range w.sub.Updates() {
		if snap.Err != nil {
			w.mu.Lock()
			w.err = snap.Err
			w.loading = false
			w.mu.Unlock()
			log.Printf("[StockWatcher] %s: subscription error: %v", w.productID, snap.Err)
			continue
		}
		reading := ReadingFromSnapshot(snap)
		w.mu.Lock()
		w.reading = reading
		w.loading = false
		w.err = nil
		w.mu.Unlock()
		if w.registry != nil {
			w.registry.set(w.productID, reading)
		}
	}
}

// ReadingFromSnapshot derives a stock reading from a document push. A
// missing record reads as sold out with control forced on; a record without
// an explicit hasStockControl flag falls back to the sentinel convention.
func ReadingFromSnapshot(snap docstore.Snapshot) Reading {
	if !snap.Exists {
		return Reading{Stock: 0, HasStockControl: true}
	}
	stock := snap.Doc.Int("stock")
	control, present := snap.Doc.Bool("hasStockControl")
	if !present {
		control = stock != model.StockUnlimited
	}
	return Reading{Stock: stock, HasStockControl: control}
}
