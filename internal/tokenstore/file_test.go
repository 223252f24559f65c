package tokenstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/harxxhilgg/univent/internal/tokenstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		store := tokenstore.NewFileStore(t.TempDir())

		require.NoError(t, store.Set(ctx, tokenstore.TokenKey, "h.p.s"))
		got, err := store.Get(ctx, tokenstore.TokenKey)
		assert.NoError(t, err)
		assert.Equal(t, "h.p.s", got)
	})

	t.Run("missing key", func(t *testing.T) {
		store := tokenstore.NewFileStore(t.TempDir())

		_, err := store.Get(ctx, tokenstore.TokenKey)
		assert.ErrorIs(t, err, tokenstore.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		store := tokenstore.NewFileStore(t.TempDir())

		require.NoError(t, store.Set(ctx, tokenstore.TokenKey, "h.p.s"))
		require.NoError(t, store.Delete(ctx, tokenstore.TokenKey))

		_, err := store.Get(ctx, tokenstore.TokenKey)
		assert.ErrorIs(t, err, tokenstore.ErrNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		store := tokenstore.NewFileStore(t.TempDir())
		assert.NoError(t, store.Delete(ctx, tokenstore.TokenKey))
	})

	t.Run("token file is private", func(t *testing.T) {
		dir := t.TempDir()
		store := tokenstore.NewFileStore(dir)

		require.NoError(t, store.Set(ctx, tokenstore.TokenKey, "h.p.s"))
		info, err := os.Stat(filepath.Join(dir, tokenstore.TokenKey))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("overwrite replaces value", func(t *testing.T) {
		store := tokenstore.NewFileStore(t.TempDir())

		require.NoError(t, store.Set(ctx, tokenstore.TokenKey, "first"))
		require.NoError(t, store.Set(ctx, tokenstore.TokenKey, "second"))

		got, err := store.Get(ctx, tokenstore.TokenKey)
		assert.NoError(t, err)
		assert.Equal(t, "second", got)
	})
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := tokenstore.NewMemoryStore()

	_, err := store.Get(ctx, tokenstore.TokenKey)
	assert.ErrorIs(t, err, tokenstore.ErrNotFound)

	require.NoError(t, store.Set(ctx, tokenstore.TokenKey, "tok"))
	got, err := store.Get(ctx, tokenstore.TokenKey)
	assert.NoError(t, err)
	assert.Equal(t, "tok", got)

	require.NoError(t, store.Delete(ctx, tokenstore.TokenKey))
	_, err = store.Get(ctx, tokenstore.TokenKey)
	assert.ErrorIs(t, err, tokenstore.ErrNotFound)
}
