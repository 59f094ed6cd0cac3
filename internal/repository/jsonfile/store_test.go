package jsonfile_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"taskList/internal/repository"
	"taskList/internal/repository/jsonfile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "data")

	storage, err := jsonfile.New(dir)
	require.NoError(t, err)
	require.NoError(t, storage.HealthCheck(ctx))

	_, err = storage.Get(ctx, repository.KeyTasks)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = storage.SetBatch(ctx, map[string][]byte{
		repository.KeyTasks:            []byte(`[{"id":1}]`),
		repository.KeyCompletedHistory: []byte(`[]`),
	})
	require.NoError(t, err)

	// новый экземпляр видит те же данные
	reopened, err := jsonfile.New(dir)
	require.NoError(t, err)

	tasks, err := reopened.Get(ctx, repository.KeyTasks)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, string(tasks))

	history, err := reopened.Get(ctx, repository.KeyCompletedHistory)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(history))
}

// TestStorage_SingleDocument - оба ключа лежат в одном файле и меняются одной заменой
func TestStorage_SingleDocument(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	storage, err := jsonfile.New(dir)
	require.NoError(t, err)
	require.NoError(t, storage.SetBatch(ctx, map[string][]byte{
		repository.KeyTasks:            []byte(`[{"id":1}]`),
		repository.KeyCompletedHistory: []byte(`[]`),
	}))
	require.NoError(t, storage.SetBatch(ctx, map[string][]byte{
		repository.KeyTasks:            []byte(`[]`),
		repository.KeyCompletedHistory: []byte(`[{"id":1}]`),
	}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "временные файлы не должны оставаться")
	assert.Equal(t, "store.json", entries[0].Name())

	data, err := os.ReadFile(filepath.Join(dir, "store.json"))
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.JSONEq(t, `[]`, string(doc[repository.KeyTasks]))
	assert.JSONEq(t, `[{"id":1}]`, string(doc[repository.KeyCompletedHistory]))
}

func TestStorage_SetBatchKeepsOtherKeys(t *testing.T) {
	ctx := context.Background()
	storage, err := jsonfile.New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, storage.SetBatch(ctx, map[string][]byte{repository.KeyTasks: []byte(`[1]`)}))
	require.NoError(t, storage.SetBatch(ctx, map[string][]byte{repository.KeyCompletedHistory: []byte(`[2]`)}))

	tasks, err := storage.Get(ctx, repository.KeyTasks)
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(tasks))
}

func TestStorage_RejectsNonJSON(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	storage, err := jsonfile.New(dir)
	require.NoError(t, err)

	err = storage.SetBatch(ctx, map[string][]byte{
		repository.KeyTasks:            []byte(`[]`),
		repository.KeyCompletedHistory: []byte(`not json`),
	})
	require.Error(t, err)

	// ничего не записано, даже валидный ключ
	_, err = storage.Get(ctx, repository.KeyTasks)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestStorage_CorruptFile - повреждённый файл читается как пустой и заменяется записью
func TestStorage_CorruptFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "store.json"), []byte(`{"tasks": [`), 0o644))

	storage, err := jsonfile.New(dir)
	require.NoError(t, err)

	_, err = storage.Get(ctx, repository.KeyTasks)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, storage.SetBatch(ctx, map[string][]byte{repository.KeyTasks: []byte(`[]`)}))
	tasks, err := storage.Get(ctx, repository.KeyTasks)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(tasks))
}

func TestStorage_HealthCheckMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gone")
	storage, err := jsonfile.New(dir)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(dir))

	assert.Error(t, storage.HealthCheck(context.Background()))
}
