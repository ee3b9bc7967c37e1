package docstore

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore implements Store using Cloud Firestore, the hosted backend
// the storefront runs against in production.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore connects to the Firestore project. credentialsFile may
// be empty, in which case application default credentials are used.
func NewFirestoreStore(ctx context.Context, projectID, credentialsFile string) (*FirestoreStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	log.Printf("[FirestoreStore] Connected to project %s", projectID)
	return &FirestoreStore{client: client}, nil
}

// QueryByField returns every document whose field equals value.
func (s *FirestoreStore) QueryByField(ctx context.Context, collection, field string, value any) ([]Document, error) {
	iter := s.client.Collection(collection).Where(field, "==", value).Documents(ctx)
	defer iter.Stop()
	return collectFirestoreDocs(iter)
}

// OrderedQuery returns up to limit documents ordered by orderBy descending,
// continuing after the cursor's last record when one is given.
func (s *FirestoreStore) OrderedQuery(ctx context.Context, collection, orderBy string, limit int, after *Cursor) ([]Document, error) {
	// The document id is a second sort key so a cursor can continue past
	// records sharing the same orderBy value.
	q := s.client.Collection(collection).
		OrderBy(orderBy, firestore.Desc).
		OrderBy(firestore.DocumentID, firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if after != nil {
		if last, ok := after.Last.Fields[orderBy]; ok {
			q = q.StartAfter(toFirestoreValue(last), after.Last.ID)
		}
	}

	iter := q.Documents(ctx)
	defer iter.Stop()
	return collectFirestoreDocs(iter)
}

// Watch opens a snapshot listener on a single document.
func (s *FirestoreStore) Watch(ctx context.Context, collection, id string) (Subscription, error) {
	streamCtx, cancel := context.WithCancel(context.Background())
	snaps := s.client.Collection(collection).Doc(id).Snapshots(streamCtx)

	sub := &firestoreSubscription{
		cancel:  cancel,
		updates: make(chan Snapshot, 16),
	}

	go func() {
		defer close(sub.updates)
		defer snaps.Stop()

		for {
			snap, err := snaps.Next()
			if err != nil {
				if streamCtx.Err() != nil || status.Code(err) == codes.Canceled {
					return
				}
				sub.send(Snapshot{Doc: Document{ID: id}, Err: err})
				return
			}
			if !snap.Exists() {
				sub.send(Snapshot{Doc: Document{ID: id}, Exists: false})
				continue
			}
			sub.send(Snapshot{Doc: fromFirestoreDoc(snap.Ref.ID, snap.Data()), Exists: true})
		}
	}()

	return sub, nil
}

// Insert writes a new document with the document id as the Firestore doc id.
func (s *FirestoreStore) Insert(ctx context.Context, collection string, doc Document) error {
	fields := make(map[string]any, len(doc.Fields))
	for k, v := range doc.Fields {
		fields[k] = toFirestoreValue(v)
	}
	if _, err := s.client.Collection(collection).Doc(doc.ID).Create(ctx, fields); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", collection, err)
	}
	return nil
}

// Close releases the Firestore client.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func collectFirestoreDocs(iter *firestore.DocumentIterator) ([]Document, error) {
	var docs []Document
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate documents: %w", err)
		}
		docs = append(docs, fromFirestoreDoc(snap.Ref.ID, snap.Data()))
	}
}

// fromFirestoreDoc converts snapshot data, tagging native timestamps.
func fromFirestoreDoc(id string, data map[string]any) Document {
	doc := Document{ID: id, Fields: make(map[string]any, len(data))}
	for k, v := range data {
		doc.Fields[k] = fromFirestoreValue(v)
	}
	return doc
}

func fromFirestoreValue(v any) any {
	switch val := v.(type) {
	case time.Time:
		return TimestampOf(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = fromFirestoreValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = fromFirestoreValue(item)
		}
		return out
	default:
		return v
	}
}

func toFirestoreValue(v any) any {
	switch val := v.(type) {
	case Timestamp:
		return val.Time()
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = toFirestoreValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = toFirestoreValue(item)
		}
		return out
	default:
		return v
	}
}

type firestoreSubscription struct {
	cancel  context.CancelFunc
	updates chan Snapshot

	mu      sync.Mutex
	stopped bool
}

func (f *firestoreSubscription) Updates() <-chan Snapshot { return f.updates }

func (f *firestoreSubscription) send(snap Snapshot) {
	select {
	case f.updates <- snap:
	default:
		select {
		case <-f.updates:
		default:
		}
		f.updates <- snap
	}
}

func (f *firestoreSubscription) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stopped {
		return
	}
	f.stopped = true
	f.cancel()
}
