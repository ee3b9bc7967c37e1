package stock

import (
	"context"
	"testing"
	"time"

	"casahogar-storefront-api/internal/docstore"
	"casahogar-storefront-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadingAvailable(t *testing.T) {
	controlled := Reading{Stock: 3, HasStockControl: true}
	assert.True(t, controlled.Available(3))
	assert.False(t, controlled.Available(4))

	uncontrolled := Reading{Stock: 0, HasStockControl: false}
	assert.True(t, uncontrolled.Available(1000))
}

func TestReadingFromSnapshotMissingDoc(t *testing.T) {
	reading := ReadingFromSnapshot(docstore.Snapshot{Exists: false})
	assert.Equal(t, Reading{Stock: 0, HasStockControl: true}, reading)
	assert.False(t, reading.Available(1))
}

func TestReadingFromSnapshotSentinelFallback(t *testing.T) {
	// No explicit flag and the sentinel stock value: uncontrolled.
	reading := ReadingFromSnapshot(docstore.Snapshot{
		Exists: true,
		Doc:    docstore.Document{ID: "p1", Fields: map[string]any{"stock": model.StockUnlimited}},
	})
	assert.False(t, reading.HasStockControl)

	// No explicit flag and a real stock count: controlled.
	reading = ReadingFromSnapshot(docstore.Snapshot{
		Exists: true,
		Doc:    docstore.Document{ID: "p1", Fields: map[string]any{"stock": 7}},
	})
	assert.True(t, reading.HasStockControl)
	assert.Equal(t, 7, reading.Stock)

	// An explicit flag wins over the sentinel convention.
	reading = ReadingFromSnapshot(docstore.Snapshot{
		Exists: true,
		Doc: docstore.Document{ID: "p1", Fields: map[string]any{
			"stock":           model.StockUnlimited,
			"hasStockControl": true,
		}},
	})
	assert.True(t, reading.HasStockControl)
}

func TestWatcherTracksServerPushes(t *testing.T) {
	store := docstore.NewMemoryStore()
	store.Put(docstore.CollectionProducts, docstore.Document{
		ID:     "p1",
		Fields: map[string]any{"stock": 5, "hasStockControl": true},
	})

	registry := NewRegistry()
	w, err := Watch(context.Background(), store, "p1", Reading{Stock: 2, HasStockControl: true}, registry)
	require.NoError(t, err)
	defer w.Stop()

	// The subscription's initial state replaces the seed reading.
	require.Eventually(t, func() bool {
		return w.Reading().Stock == 5
	}, time.Second, 5*time.Millisecond)

	store.Put(docstore.CollectionProducts, docstore.Document{
		ID:     "p1",
		Fields: map[string]any{"stock": 1, "hasStockControl": true},
	})
	require.Eventually(t, func() bool {
		return w.Reading().Stock == 1
	}, time.Second, 5*time.Millisecond)

	reading, ok := registry.Current("p1")
	require.True(t, ok)
	assert.Equal(t, 1, reading.Stock)
}

func TestWatcherCheckAvailability(t *testing.T) {
	store := docstore.NewMemoryStore()
	store.Put(docstore.CollectionProducts, docstore.Document{
		ID:     "p1",
		Fields: map[string]any{"stock": 2, "hasStockControl": true},
	})

	w, err := Watch(context.Background(), store, "p1", Reading{}, nil)
	require.NoError(t, err)
	defer w.Stop()

	require.Eventually(t, func() bool {
		return w.Reading().Stock == 2
	}, time.Second, 5*time.Millisecond)

	assert.NoError(t, w.CheckAvailability(2))

	err = w.CheckAvailability(3)
	require.Error(t, err)
	limitErr, ok := err.(*LimitError)
	require.True(t, ok)
	assert.Equal(t, 2, limitErr.Available)
	assert.Equal(t, "only 2 units available", limitErr.Error())
}

func TestWatcherDeletedDocReadsSoldOut(t *testing.T) {
	store := docstore.NewMemoryStore()
	store.Put(docstore.CollectionProducts, docstore.Document{
		ID:     "p1",
		Fields: map[string]any{"stock": 5, "hasStockControl": true},
	})

	w, err := Watch(context.Background(), store, "p1", Reading{}, nil)
	require.NoError(t, err)
	defer w.Stop()

	store.Remove(docstore.CollectionProducts, "p1")
	require.Eventually(t, func() bool {
		r := w.Reading()
		return r.Stock == 0 && r.HasStockControl
	}, time.Second, 5*time.Millisecond)

	assert.Error(t, w.CheckAvailability(1))
}

func TestWatcherStopRemovesRegistryEntry(t *testing.T) {
	store := docstore.NewMemoryStore()
	registry := NewRegistry()

	w, err := Watch(context.Background(), store, "p1", Reading{Stock: 3, HasStockControl: true}, registry)
	require.NoError(t, err)

	_, ok := registry.Current("p1")
	require.True(t, ok)

	w.Stop()
	w.Stop() // idempotent

	_, ok = registry.Current("p1")
	assert.False(t, ok)

	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("watcher not stopped")
	}
}

func TestManagerDeduplicatesWatchers(t *testing.T) {
	store := docstore.NewMemoryStore()
	m := NewManager(store, NewRegistry())
	ctx := context.Background()

	w1, err := m.Start(ctx, "p1", Reading{Stock: 4, HasStockControl: true})
	require.NoError(t, err)
	w2, err := m.Start(ctx, "p1", Reading{Stock: 9, HasStockControl: true})
	require.NoError(t, err)

	assert.Same(t, w1, w2, "one watcher per product")

	reading, ok := m.Reading("p1")
	require.True(t, ok)
	assert.True(t, reading.HasStockControl)

	m.Stop("p1")
	_, ok = m.Reading("p1")
	assert.False(t, ok)
}

func TestManagerStopAll(t *testing.T) {
	store := docstore.NewMemoryStore()
	registry := NewRegistry()
	m := NewManager(store, registry)
	ctx := context.Background()

	_, err := m.Start(ctx, "p1", Reading{Stock: 1, HasStockControl: true})
	require.NoError(t, err)
	_, err = m.Start(ctx, "p2", Reading{Stock: 2, HasStockControl: true})
	require.NoError(t, err)

	m.StopAll()

	_, ok := registry.Current("p1")
	assert.False(t, ok)
	_, ok = registry.Current("p2")
	assert.False(t, ok)
}
