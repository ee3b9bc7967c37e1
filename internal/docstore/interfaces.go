package docstore

import "context"

// Store defines the document-store access primitives. Everything the
// storefront reads goes through exactly these query shapes; Insert exists
// for order creation at checkout.
//
// This abstraction allows swapping between the hosted Firestore backend,
// MongoDB and the in-memory store (development/testing) without changing
// business logic.
type Store interface {
	// QueryByField returns every document in the collection whose field
	// equals value. Order is backend-defined.
	QueryByField(ctx context.Context, collection, field string, value any) ([]Document, error)

	// OrderedQuery returns up to limit documents ordered by the given field
	// descending, starting after the cursor when one is given. limit <= 0
	// means no limit.
	OrderedQuery(ctx context.Context, collection, orderBy string, limit int, after *Cursor) ([]Document, error)

	// Watch opens a live subscription to a single document. The current
	// state is delivered first, then every server push.
	Watch(ctx context.Context, collection, id string) (Subscription, error)

	// Insert writes a new document to the collection.
	Insert(ctx context.Context, collection string, doc Document) error

	// Close releases the backend connection.
	Close() error
}

// Cursor marks the last record seen by an ordered query. It is opaque to
// callers; adapters derive their own continuation from it.
type Cursor struct {
	Last Document
}

// Snapshot is one push from a document subscription. Exists is false when
// the document is missing or was deleted.
type Snapshot struct {
	Doc    Document
	Exists bool
	Err    error
}

// Subscription is a live per-document feed. Stop is idempotent and tears the
// feed down deterministically; Updates is closed afterwards.
type Subscription interface {
	Updates() <-chan Snapshot
	Stop()
}
