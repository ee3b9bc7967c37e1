package localstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStoreRoundTrip(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "cart_guest", `{"p1":{"quantity":2}}`))

	value, ok, err := s.Get(ctx, "cart_guest")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"p1":{"quantity":2}}`, value)

	// Overwrite.
	require.NoError(t, s.Set(ctx, "cart_guest", `{}`))
	value, _, err = s.Get(ctx, "cart_guest")
	require.NoError(t, err)
	assert.Equal(t, `{}`, value)

	require.NoError(t, s.Delete(ctx, "cart_guest"))
	_, ok, err = s.Get(ctx, "cart_guest")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	testStoreRoundTrip(t, s)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	testStoreRoundTrip(t, s)
}

func TestSQLiteStorePersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "users", "user-1"))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	value, ok, err := s.Get(ctx, "users")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "user-1", value)
}
