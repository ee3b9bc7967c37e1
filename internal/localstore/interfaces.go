package localstore

import "context"

// Store is durable local key-value storage: per-identity carts live under
// cart_<identity>, the raw current-identity snapshot under the users key.
// Reads and writes are synchronous; a reload restores exact state without a
// backend round trip.
type Store interface {
	// Get retrieves the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes the key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error

	// Close releases the underlying storage.
	Close() error
}

// UsersKey holds the raw snapshot of the currently resolved identity.
const UsersKey = "users"
