package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"

	"casahogar-storefront-api/internal/localstore"
	"casahogar-storefront-api/internal/model"
	"casahogar-storefront-api/internal/notify"
	"casahogar-storefront-api/internal/stock"
)

// ErrEmptyCart is returned when checkout is attempted on an empty cart.
var ErrEmptyCart = fmt.Errorf("cart is empty")

// Store holds the cart of exactly one identity at a time. Guest and
// per-user carts are disjoint: switching identity loads the new identity's
// persisted cart and never merges. Every mutation persists the full cart to
// durable local storage under cart_<identity>.
type Store struct {
	local    localstore.Store
	stocks   stock.Reader // may be nil; falls back to line snapshots
	notifier notify.Notifier

	mu       sync.Mutex
	identity model.Identity
	lines    map[string]*model.CartLine
}

// NewStore creates a cart store resolved to the guest identity, restoring
// the guest cart from local storage.
func NewStore(ctx context.Context, local localstore.Store, stocks stock.Reader, notifier notify.Notifier) *Store {
	s := &Store{
		local:    local,
		stocks:   stocks,
		notifier: notifier,
		identity: model.Guest,
	}
	s.lines = s.load(ctx, model.Guest)
	return s
}

// Identity returns the identity the cart is currently scoped to.
func (s *Store) Identity() model.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// SwitchIdentity re-points the store at the given identity's persisted
// cart. The previous identity's cart stays persisted untouched.
func (s *Store) SwitchIdentity(ctx context.Context, identity model.Identity) {
	if identity.IsGuest() {
		identity = model.Guest
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if identity == s.identity {
		return
	}
	s.identity = identity
	s.lines = s.load(ctx, identity)
	log.Printf("[CartStore] switched to identity %s (%d lines)", identity, len(s.lines))
}

// Lines returns the cart lines ordered by product id.
func (s *Store) Lines() []model.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.CartLine, 0, len(s.lines))
	for _, line := range s.lines {
		out = append(out, *line)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Product.ID < out[j].Product.ID })
	return out
}

// Total returns the sum of line subtotals.
func (s *Store) Total() float64 {
	var total float64
	for _, line := range s.Lines() {
		total += line.Subtotal()
	}
	return total
}

// AddToCart creates a line with the given quantity, snapshotting the
// product's current stock state, or overwrites the quantity when the line
// already exists. A re-add refreshes the line's product snapshot. The
// quantity is clamped to available stock; a clamp is reported through the
// notifier, not as an error. A sold-out controlled product is rejected
// outright and never produces a line.
func (s *Store) AddToCart(ctx context.Context, p model.Product, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	line := &model.CartLine{Product: p}
	quantity, ok := s.clamp(line, quantity)
	if !ok {
		return
	}
	line.Quantity = quantity
	s.lines[p.ID] = line
	s.persist(ctx)
}

// IncrementQuantity raises the line's quantity by one, capped at current
// stock when the product is stock-controlled. At the cap the call reports
// the limit and leaves the line unchanged.
func (s *Store) IncrementQuantity(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, ok := s.lines[productID]
	if !ok {
		return nil
	}

	reading := s.readingFor(line)
	if reading.HasStockControl && line.Quantity+1 > reading.Stock {
		err := &stock.LimitError{Available: reading.Stock}
		s.notifier.Error(err.Error())
		return err
	}
	line.Quantity++
	s.persist(ctx)
	return nil
}

// DecrementQuantity lowers the line's quantity by one. Going below one
// removes the line entirely; a quantity of zero never exists.
func (s *Store) DecrementQuantity(ctx context.Context, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, ok := s.lines[productID]
	if !ok {
		return
	}
	if line.Quantity <= 1 {
		delete(s.lines, productID)
	} else {
		line.Quantity--
	}
	s.persist(ctx)
}

// SetQuantityForItem overwrites the line's quantity, clamped to
// [1, current stock] when the product is stock-controlled.
func (s *Store) SetQuantityForItem(ctx context.Context, productID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, ok := s.lines[productID]
	if !ok {
		return
	}
	if quantity < 1 {
		quantity = 1
	}
	quantity, ok = s.clamp(line, quantity)
	if !ok {
		return
	}
	line.Quantity = quantity
	s.persist(ctx)
}

// DeleteFromCart removes the line for the product; no-op when absent.
func (s *Store) DeleteFromCart(ctx context.Context, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lines[productID]; !ok {
		return
	}
	delete(s.lines, productID)
	s.persist(ctx)
}

// Clear empties the cart, e.g. after a successful checkout.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = make(map[string]*model.CartLine)
	s.persist(ctx)
}

// readingFor returns the freshest stock state for a line: the live watcher
// reading when one exists, otherwise the snapshot taken at add time.
func (s *Store) readingFor(line *model.CartLine) stock.Reading {
	if s.stocks != nil {
		if reading, ok := s.stocks.Current(line.Product.ID); ok {
			return reading
		}
	}
	return stock.Reading{
		Stock:           line.Product.Stock,
		HasStockControl: line.Product.HasStockControl,
	}
}

// clamp caps quantity at current stock for controlled products, reporting
// the cap when it bites. Uncontrolled products are never capped. ok is
// false when the product is controlled and sold out; the mutation must be
// dropped entirely, since a line may never exceed known stock.
func (s *Store) clamp(line *model.CartLine, quantity int) (int, bool) {
	reading := s.readingFor(line)
	if !reading.HasStockControl || quantity <= reading.Stock {
		return quantity, true
	}
	s.notifier.Error((&stock.LimitError{Available: reading.Stock}).Error())
	if reading.Stock < 1 {
		return 0, false
	}
	return reading.Stock, true
}

// persist writes the full cart for the current identity. Callers hold the
// lock. Persistence failures are logged and degrade to in-memory state.
func (s *Store) persist(ctx context.Context) {
	data, err := json.Marshal(s.lines)
	if err != nil {
		log.Printf("[CartStore] failed to encode cart for %s: %v", s.identity, err)
		return
	}
	if err := s.local.Set(ctx, s.identity.CartKey(), string(data)); err != nil {
		log.Printf("[CartStore] failed to persist cart for %s: %v", s.identity, err)
	}
}

// load restores the persisted cart for an identity. Corrupt persisted JSON
// reads as an absent cart.
func (s *Store) load(ctx context.Context, identity model.Identity) map[string]*model.CartLine {
	lines := make(map[string]*model.CartLine)

	raw, ok, err := s.local.Get(ctx, identity.CartKey())
	if err != nil {
		log.Printf("[CartStore] failed to read cart for %s: %v", identity, err)
		return lines
	}
	if !ok || raw == "" {
		return lines
	}
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		log.Printf("[CartStore] corrupt cart for %s, starting empty: %v", identity, err)
		return make(map[string]*model.CartLine)
	}
	for id, line := range lines {
		if line == nil || line.Quantity < 1 {
			delete(lines, id)
		}
	}
	return lines
}
