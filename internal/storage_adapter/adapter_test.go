package storage_adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/annel0/isomap/internal/config"
	si "github.com/annel0/isomap/internal/storage_interface"
	"github.com/annel0/isomap/internal/vec"
	"github.com/annel0/isomap/internal/world"
	"github.com/annel0/isomap/internal/world/tile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot(t *testing.T) *world.Snapshot {
	t.Helper()
	m, err := world.NewMap(world.Options{Columns: 4, Rows: 3, Seed: 3})
	require.NoError(t, err)
	for x := 0; x < 4; x++ {
		for y := 0; y < 3; y++ {
			require.NoError(t, m.SetTile(tile.Grass, vec.Vec2{X: x, Y: y}))
		}
	}
	require.NoError(t, m.SetTile(tile.RoadDirt, vec.Vec2{X: 1, Y: 1}))
	return m.Snapshot()
}

func TestFileMapStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewMapStore(config.StorageConfig{Backend: "file", Path: dir, Compression: true})
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	snap := testSnapshot(t)

	require.NoError(t, store.Save(ctx, "town", snap))
	assert.FileExists(t, filepath.Join(dir, "town.isomap"))
	assert.FileExists(t, filepath.Join(dir, "town.meta.json"))

	loaded, err := store.Load(ctx, "town")
	require.NoError(t, err)
	assert.Equal(t, snap, loaded)

	slots, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "town", slots[0].Name)
	assert.Equal(t, 4, slots[0].Columns)
	assert.Equal(t, 3, slots[0].Rows)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "Временные файлы не должны оставаться")

	require.NoError(t, store.Delete(ctx, "town"))
	assert.NoFileExists(t, filepath.Join(dir, "town.isomap"))
	assert.NoFileExists(t, filepath.Join(dir, "town.meta.json"))
	assert.ErrorIs(t, store.Delete(ctx, "town"), si.ErrNotFound)

	_, err = store.Load(ctx, "town")
	assert.ErrorIs(t, err, si.ErrNotFound)
}

func TestFileMapStore_ListWithoutMeta(t *testing.T) {
	dir := t.TempDir()
	store, err := NewMapStore(config.StorageConfig{Backend: "file", Path: dir})
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "bare", testSnapshot(t)))
	require.NoError(t, os.Remove(filepath.Join(dir, "bare.meta.json")))

	slots, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, slots, 1, "Слот описывается по самому снимку")
	assert.Equal(t, 4, slots[0].Columns)
	assert.False(t, slots[0].SavedAt.IsZero())
}

func TestFileMapStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewMapStore(config.StorageConfig{Backend: "file", Path: dir})
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.isomap"), []byte("{oops"), 0644))
	_, err = store.Load(context.Background(), "broken")
	assert.ErrorIs(t, err, world.ErrCorrupt)
}

func TestNewMapStore_Backends(t *testing.T) {
	store, err := NewMapStore(config.StorageConfig{Backend: "memory"})
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), "m", testSnapshot(t)))
	assert.NoError(t, store.Close())

	store, err = NewMapStore(config.StorageConfig{Backend: "badger", Path: t.TempDir()})
	require.NoError(t, err)
	assert.NoError(t, store.Close())

	_, err = NewMapStore(config.StorageConfig{Backend: "floppy"})
	assert.Error(t, err, "Неизвестное хранилище должно отклоняться")
}
