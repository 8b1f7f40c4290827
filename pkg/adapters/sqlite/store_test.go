package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/flowstudio/pkg/adapters/sqlite"
	"github.com/aretw0/flowstudio/pkg/ports/tests"
)

func TestSQLiteStore_Contract(t *testing.T) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer store.Close()

	tests.RunVersionedStoreContract(t, store)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configs.db")
	ctx := context.Background()

	store, err := sqlite.New(path)
	require.NoError(t, err)
	_, err = store.SaveVersion(ctx, "bot", tests.SampleConfig("kept"), "first")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = sqlite.New(path)
	require.NoError(t, err)
	defer store.Close()

	cfg, err := store.Load(ctx, "bot")
	require.NoError(t, err)
	assert.Equal(t, "kept", cfg.DisplayName)

	versions, err := store.Versions(ctx, "bot")
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, "first", versions[0].Message)
	assert.False(t, versions[0].CreatedAt.IsZero())
}

func TestSQLiteStore_Closed(t *testing.T) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close(), "closing twice is fine")

	_, err = store.Load(context.Background(), "bot")
	assert.ErrorIs(t, err, sqlite.ErrStoreClosed)
}
