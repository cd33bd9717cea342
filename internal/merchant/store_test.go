package merchant

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "merchants.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStoreCRUD(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	cfg := &Config{
		Name:    "Cafe Test",
		BaseURL: "http://127.0.0.1:3000",
		Selectors: map[string]string{
			"item.latte": "#item-latte",
			"button.add": "#add",
		},
	}

	created, err := store.Create(ctx, cfg)
	require.NoError(t, err)
	assert.True(t, len(created.ID) > len("mch_"))
	assert.Equal(t, "Cafe Test", created.Name)

	fetched, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "#item-latte", fetched.Selectors["item.latte"])

	fetched.Name = "Cafe Renamed"
	fetched.Selectors["button.checkout"] = "#checkout"
	updated, err := store.Update(ctx, fetched)
	require.NoError(t, err)
	assert.Equal(t, "Cafe Renamed", updated.Name)

	reread, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cafe Renamed", reread.Name)
	assert.Equal(t, "#checkout", reread.Selectors["button.checkout"])

	configs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, configs, 1)

	require.NoError(t, store.Delete(ctx, created.ID))
	_, err = store.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStorePreservesCallerID(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, &Config{ID: "mch_custom", Name: "Cafe Test"})
	require.NoError(t, err)
	assert.Equal(t, "mch_custom", created.ID)
}

func TestSQLiteStoreListOrdersByName(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"Zelda Deli", "Acme Cafe", "Mimi Bakes"} {
		_, err := store.Create(ctx, &Config{Name: name})
		require.NoError(t, err)
	}

	configs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, configs, 3)
	assert.Equal(t, "Acme Cafe", configs[0].Name)
	assert.Equal(t, "Mimi Bakes", configs[1].Name)
	assert.Equal(t, "Zelda Deli", configs[2].Name)
}

func TestSQLiteStoreNotFound(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "mch_missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Update(ctx, &Config{ID: "mch_missing", Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.Delete(ctx, "mch_missing"), ErrNotFound)
}

func TestSQLiteStoreValidation(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, nil)
	assert.Error(t, err)

	_, err = store.Create(ctx, &Config{})
	assert.Error(t, err)

	_, err = store.Get(ctx, "  ")
	assert.Error(t, err)
}
