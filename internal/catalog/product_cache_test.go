package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"casahogar-storefront-api/internal/cache"
	"casahogar-storefront-api/internal/docstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore wraps a MemoryStore and counts backend reads so tests can
// assert which calls actually hit the backend.
type countingStore struct {
	*docstore.MemoryStore
	queryCalls   int
	orderedCalls int
	failQueries  bool
}

func (s *countingStore) QueryByField(ctx context.Context, collection, field string, value any) ([]docstore.Document, error) {
	s.queryCalls++
	if s.failQueries {
		return nil, errors.New("backend down")
	}
	return s.MemoryStore.QueryByField(ctx, collection, field, value)
}

func (s *countingStore) OrderedQuery(ctx context.Context, collection, orderBy string, limit int, after *docstore.Cursor) ([]docstore.Document, error) {
	s.orderedCalls++
	if s.failQueries {
		return nil, errors.New("backend down")
	}
	return s.MemoryStore.OrderedQuery(ctx, collection, orderBy, limit, after)
}

func newCountingStore() *countingStore {
	return &countingStore{MemoryStore: docstore.NewMemoryStore()}
}

func seedCatalog(s *countingStore, n int, category string) {
	for i := 0; i < n; i++ {
		s.Put(docstore.CollectionProducts, docstore.Document{
			ID: fmt.Sprintf("p%03d", i),
			Fields: map[string]any{
				"title":     fmt.Sprintf("Producto %d", i),
				"price":     float64(10 + i),
				"category":  category,
				"stock":     5,
				"createdAt": docstore.Timestamp{Seconds: int64(1700000000 + i)},
			},
		})
	}
}

func newTestProductCache(t *testing.T, store *countingStore) *ProductCache {
	t.Helper()
	c := cache.NewMemoryCache()
	t.Cleanup(func() { c.Close() })
	return NewProductCache(store, c)
}

func TestByCategoryCachesWithinTTL(t *testing.T) {
	store := newCountingStore()
	seedCatalog(store, 3, "COCINA")
	p := newTestProductCache(t, store)
	ctx := context.Background()

	first := p.ByCategory(ctx, "COCINA")
	require.Len(t, first, 3)
	assert.Equal(t, 1, store.queryCalls)

	second := p.ByCategory(ctx, "COCINA")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.queryCalls, "second read must be served from cache")
}

func TestByCategoryNormalizesCase(t *testing.T) {
	store := newCountingStore()
	seedCatalog(store, 2, "COCINA")
	p := newTestProductCache(t, store)
	ctx := context.Background()

	p.ByCategory(ctx, "cocina")
	p.ByCategory(ctx, "  Cocina ")
	p.ByCategory(ctx, "COCINA")

	assert.Equal(t, 1, store.queryCalls, "case variants share one cache entry")
}

func TestByCategoryFetchFailureReadsEmpty(t *testing.T) {
	store := newCountingStore()
	store.failQueries = true
	p := newTestProductCache(t, store)

	products := p.ByCategory(context.Background(), "COCINA")
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestFirstPageFetchesOnce(t *testing.T) {
	store := newCountingStore()
	seedCatalog(store, 25, "COCINA")
	p := newTestProductCache(t, store)
	ctx := context.Background()

	first := p.FirstPage(ctx)
	require.Len(t, first, PageSize)
	assert.Equal(t, 1, store.orderedCalls)
	assert.True(t, p.HasMore())

	again := p.FirstPage(ctx)
	assert.Equal(t, first, again)
	assert.Equal(t, 1, store.orderedCalls, "repeat first-page reads must not refetch")
}

func TestLoadMoreAppendsNextPage(t *testing.T) {
	store := newCountingStore()
	seedCatalog(store, 25, "COCINA")
	p := newTestProductCache(t, store)
	ctx := context.Background()

	p.FirstPage(ctx)
	all := p.LoadMore(ctx)

	require.Len(t, all, 25)
	assert.False(t, p.HasMore(), "short page exhausts the catalog")

	// Newest first across the page boundary.
	assert.Equal(t, "p024", all[0].ID)
	assert.Equal(t, "p000", all[24].ID)
}

func TestShortPageLatchesHasMoreFalse(t *testing.T) {
	store := newCountingStore()
	seedCatalog(store, 15, "COCINA")
	p := newTestProductCache(t, store)
	ctx := context.Background()

	products := p.FirstPage(ctx)
	require.Len(t, products, 15)
	assert.False(t, p.HasMore())

	// Even after new records appear, exhausted pagination stays exhausted.
	seedCatalog(store, 30, "COCINA")
	after := p.LoadMore(ctx)
	assert.Len(t, after, 15)
	assert.Equal(t, 1, store.orderedCalls, "LoadMore after exhaustion is a no-op")
}

func TestLoadMoreBeforeFirstPageIsNoOp(t *testing.T) {
	store := newCountingStore()
	seedCatalog(store, 5, "COCINA")
	p := newTestProductCache(t, store)

	products := p.LoadMore(context.Background())
	assert.Empty(t, products)
	assert.Equal(t, 0, store.orderedCalls)
}

func TestPageFetchFailureKeepsAccumulated(t *testing.T) {
	store := newCountingStore()
	seedCatalog(store, 25, "COCINA")
	p := newTestProductCache(t, store)
	ctx := context.Background()

	first := p.FirstPage(ctx)
	require.Len(t, first, PageSize)

	store.failQueries = true
	after := p.LoadMore(ctx)
	assert.Equal(t, first, after, "a failed page leaves the list unchanged")
	assert.True(t, p.HasMore())
}
