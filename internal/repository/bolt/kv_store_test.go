package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dafibh/budgetbook/budgetbook-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*KeyValueStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "test.db")
	store, err := Open(path)
	require.NoError(t, err)
	return store, path
}

func TestKeyValueStore_SetGetRemove(t *testing.T) {
	store, _ := openTestStore(t)
	defer store.Close()
	ctx := context.Background()

	_, err := store.Get(ctx, domain.KeyTransactions)
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, domain.KeyTransactions, []byte(`[]`)))
	value, err := store.Get(ctx, domain.KeyTransactions)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(value))

	require.NoError(t, store.Set(ctx, domain.KeyTransactions, []byte(`[{"id":"1"}]`)))
	value, err = store.Get(ctx, domain.KeyTransactions)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, string(value))

	require.NoError(t, store.Remove(ctx, domain.KeyTransactions))
	_, err = store.Get(ctx, domain.KeyTransactions)
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestKeyValueStore_RemoveMissingKeyIsNoop(t *testing.T) {
	store, _ := openTestStore(t)
	defer store.Close()

	assert.NoError(t, store.Remove(context.Background(), "missing"))
}

func TestKeyValueStore_PersistsAcrossReopen(t *testing.T) {
	store, path := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, domain.KeyFirstLaunch, []byte(`true`)))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	value, err := reopened.Get(ctx, domain.KeyFirstLaunch)
	require.NoError(t, err)
	assert.Equal(t, `true`, string(value))
}
