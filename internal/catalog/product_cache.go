package catalog

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"casahogar-storefront-api/internal/cache"
	"casahogar-storefront-api/internal/docstore"
	"casahogar-storefront-api/internal/model"
)

const (
	// CategoryTTL bounds how long a per-category result is served without a
	// backend fetch.
	CategoryTTL = 5 * time.Minute

	// PageSize is the fixed catalog page length.
	PageSize = 20

	categoryKeyPrefix = "products:category:"
	createdAtField    = "createdAt"
)

// ProductCache serves the catalog read paths: time-bounded per-category
// lookups through the shared cache, and cursor-based pages of the full
// catalog ordered newest first. Fetch failures are logged and degrade to an
// empty or unchanged result; they never reach the caller as an error.
type ProductCache struct {
	store docstore.Store
	cache cache.Cache

	mu       sync.Mutex
	products []model.Product
	cursor   *docstore.Cursor
	hasMore  bool
	loaded   bool
	loading  bool
}

// NewProductCache creates a product cache over the given backend and shared
// cache tier.
func NewProductCache(store docstore.Store, c cache.Cache) *ProductCache {
	return &ProductCache{store: store, cache: c}
}

// ByCategory returns every product in the category. Within the TTL window
// repeated calls are served from the cache entry with no backend access.
func (p *ProductCache) ByCategory(ctx context.Context, category string) []model.Product {
	category = model.NormalizeCategory(category)
	key := categoryKeyPrefix + category

	if data, err := p.cache.Get(ctx, key); err == nil {
		var products []model.Product
		if err := json.Unmarshal(data, &products); err == nil {
			return products
		}
		log.Printf("[ProductCache] corrupt cache entry for %s, refetching: %v", category, err)
	}

	docs, err := p.store.QueryByField(ctx, docstore.CollectionProducts, "category", category)
	if err != nil {
		log.Printf("[ProductCache] failed to fetch category %s: %v", category, err)
		return []model.Product{}
	}

	products := make([]model.Product, 0, len(docs))
	for _, doc := range docs {
		products = append(products, productFromDoc(doc))
	}

	if data, err := json.Marshal(products); err == nil {
		if err := p.cache.Set(ctx, key, data, CategoryTTL); err != nil {
			log.Printf("[ProductCache] failed to cache category %s: %v", category, err)
		}
	}
	return products
}

// FirstPage fetches the first catalog page once; later calls return the
// accumulated list unchanged.
func (p *ProductCache) FirstPage(ctx context.Context) []model.Product {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loaded {
		return p.snapshot()
	}
	p.loaded = true
	return p.fetchPage(ctx)
}

// LoadMore fetches the next catalog page and appends it. Once the backend
// runs out (a short page), hasMore latches false and further calls return
// the accumulated list unchanged.
func (p *ProductCache) LoadMore(ctx context.Context) []model.Product {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.hasMore || p.cursor == nil {
		return p.snapshot()
	}
	return p.fetchPage(ctx)
}

// Products returns the accumulated paged catalog.
func (p *ProductCache) Products() []model.Product {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot()
}

// HasMore reports whether another page may exist.
func (p *ProductCache) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

// Loading reports whether a page fetch is in flight.
func (p *ProductCache) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// fetchPage runs one ordered page query. Callers hold the lock.
func (p *ProductCache) fetchPage(ctx context.Context) []model.Product {
	p.loading = true
	docs, err := p.store.OrderedQuery(ctx, docstore.CollectionProducts, createdAtField, PageSize, p.cursor)
	p.loading = false
	if err != nil {
		log.Printf("[ProductCache] page fetch failed: %v", err)
		return p.snapshot()
	}

	for _, doc := range docs {
		p.products = append(p.products, productFromDoc(doc))
	}
	if len(docs) > 0 {
		p.cursor = &docstore.Cursor{Last: docs[len(docs)-1]}
	}
	p.hasMore = len(docs) == PageSize
	return p.snapshot()
}

func (p *ProductCache) snapshot() []model.Product {
	out := make([]model.Product, len(p.products))
	copy(out, p.products)
	return out
}
