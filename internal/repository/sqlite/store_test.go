package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"taskList/internal/repository"
	"taskList/internal/repository/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorage_InMemory(t *testing.T) {
	ctx := context.Background()
	storage, err := sqlite.New(ctx, ":memory:")
	require.NoError(t, err)
	defer storage.Close()

	require.NoError(t, storage.HealthCheck(ctx))

	_, err = storage.Get(ctx, repository.KeyTasks)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, storage.SetBatch(ctx, map[string][]byte{repository.KeyTasks: []byte(`[1]`)}))
	require.NoError(t, storage.SetBatch(ctx, map[string][]byte{repository.KeyTasks: []byte(`[1,2]`)}))

	value, err := storage.Get(ctx, repository.KeyTasks)
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(value))
}

func TestStorage_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db", "tasks.db")

	storage, err := sqlite.New(ctx, path)
	require.NoError(t, err)

	err = storage.SetBatch(ctx, map[string][]byte{
		repository.KeyTasks:            []byte(`[{"id":1}]`),
		repository.KeyCompletedHistory: []byte(`[{"id":2}]`),
	})
	require.NoError(t, err)
	require.NoError(t, storage.Close())

	reopened, err := sqlite.New(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	history, err := reopened.Get(ctx, repository.KeyCompletedHistory)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":2}]`, string(history))
}
