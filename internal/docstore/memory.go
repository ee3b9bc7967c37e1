package docstore

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store for development and tests. Put and
// Remove are the seeding side; they also feed live subscriptions, which
// makes the store a stand-in for backend pushes.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
	watchers    map[string][]*memorySubscription // keyed by collection/id
	nextWatch   int
}

// NewMemoryStore creates an empty in-memory document store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]Document),
		watchers:    make(map[string][]*memorySubscription),
	}
}

func watchKey(collection, id string) string {
	return collection + "/" + id
}

// Put inserts or replaces a document and notifies its watchers.
func (s *MemoryStore) Put(collection string, doc Document) {
	s.mu.Lock()
	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]Document)
		s.collections[collection] = coll
	}
	coll[doc.ID] = doc
	subs := append([]*memorySubscription(nil), s.watchers[watchKey(collection, doc.ID)]...)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.push(Snapshot{Doc: doc, Exists: true})
	}
}

// Remove deletes a document and notifies its watchers with Exists=false.
func (s *MemoryStore) Remove(collection, id string) {
	s.mu.Lock()
	if coll, ok := s.collections[collection]; ok {
		delete(coll, id)
	}
	subs := append([]*memorySubscription(nil), s.watchers[watchKey(collection, id)]...)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.push(Snapshot{Doc: Document{ID: id}, Exists: false})
	}
}

// QueryByField returns every document whose field equals value.
func (s *MemoryStore) QueryByField(ctx context.Context, collection, field string, value any) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Document
	for _, doc := range s.collections[collection] {
		if doc.Fields[field] == value {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// OrderedQuery returns up to limit documents ordered by orderBy descending,
// starting after the cursor when one is given.
func (s *MemoryStore) OrderedQuery(ctx context.Context, collection, orderBy string, limit int, after *Cursor) ([]Document, error) {
	s.mu.RLock()
	docs := make([]Document, 0, len(s.collections[collection]))
	for _, doc := range s.collections[collection] {
		docs = append(docs, doc)
	}
	s.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		a, b := sortValue(docs[i], orderBy), sortValue(docs[j], orderBy)
		if a == b {
			return docs[i].ID > docs[j].ID
		}
		return a > b
	})

	start := 0
	if after != nil {
		for i, doc := range docs {
			if doc.ID == after.Last.ID {
				start = i + 1
				break
			}
		}
	}
	if start >= len(docs) {
		return nil, nil
	}
	docs = docs[start:]
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

// sortValue flattens a field into a comparable float for descending order.
func sortValue(doc Document, field string) float64 {
	switch v := doc.Fields[field].(type) {
	case Timestamp:
		return float64(v.Seconds)*1e9 + float64(v.Nanoseconds)
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// Watch opens a live subscription to a single document. The current state is
// delivered immediately.
func (s *MemoryStore) Watch(ctx context.Context, collection, id string) (Subscription, error) {
	sub := &memorySubscription{
		store:   s,
		key:     watchKey(collection, id),
		updates: make(chan Snapshot, 16),
	}

	s.mu.Lock()
	s.watchers[sub.key] = append(s.watchers[sub.key], sub)
	doc, exists := s.collections[collection][id]
	if !exists {
		doc = Document{ID: id}
	}
	s.mu.Unlock()

	sub.push(Snapshot{Doc: doc, Exists: exists})
	return sub, nil
}

// Insert writes a new document, notifying watchers like any other write.
func (s *MemoryStore) Insert(ctx context.Context, collection string, doc Document) error {
	s.Put(collection, doc)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

type memorySubscription struct {
	store   *MemoryStore
	key     string
	updates chan Snapshot

	mu      sync.Mutex
	stopped bool
}

func (m *memorySubscription) Updates() <-chan Snapshot { return m.updates }

func (m *memorySubscription) push(snap Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	// Drop the oldest pending push rather than block the writer.
	select {
	case m.updates <- snap:
	default:
		select {
		case <-m.updates:
		default:
		}
		m.updates <- snap
	}
}

func (m *memorySubscription) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	close(m.updates)
	m.mu.Unlock()

	m.store.mu.Lock()
	subs := m.store.watchers[m.key]
	for i, sub := range subs {
		if sub == m {
			m.store.watchers[m.key] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	m.store.mu.Unlock()
}
