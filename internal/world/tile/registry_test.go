package tile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(Descriptor{ID: "a", Kind: KindRoad}))
	assert.Error(t, r.Register(Descriptor{}), "Пустой ID недопустим")

	desc, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, Size{Width: 1, Height: 1}, desc.Footprint, "Основание по умолчанию 1x1")
	assert.False(t, desc.IsMultiCell())
	assert.True(t, r.Has("a"))
	assert.False(t, r.Has("b"))
	assert.Equal(t, 1, r.Len())
}

func TestDefaultSet(t *testing.T) {
	r := DefaultSet()

	office, ok := r.Get(Office)
	require.True(t, ok)
	assert.True(t, office.IsMultiCell())
	assert.Equal(t, 4, office.Footprint.Area())

	oak, _ := r.Get(Oak)
	assert.True(t, oak.IsFlora())

	for _, id := range []ID{Water, RoadAsphalt, RoadDirt, Pipe, PipePlan} {
		desc, ok := r.Get(id)
		require.True(t, ok, "Тайл %s должен быть в наборе", id)
		assert.True(t, desc.AutoTile, "Тайл %s стыкуется с соседями", id)
	}

	ids := r.IDs()
	assert.Len(t, ids, r.Len())
	assert.IsIncreasing(t, ids)
}

func TestRegistry_LoadDir(t *testing.T) {
	dir := t.TempDir()
	data := `[
		{"id": "road_gravel", "title": "Gravel road", "category": "Roads", "type": "road", "autotile": true},
		{"id": "stadium", "title": "Stadium", "category": "Leisure", "footprint": {"width": 3, "height": 2}}
	]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tiles.json"), []byte(data), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("не JSON"), 0o644))

	r := NewRegistry()
	require.NoError(t, r.LoadDir(dir))
	assert.Equal(t, 2, r.Len())

	road, ok := r.Get("road_gravel")
	require.True(t, ok)
	assert.Equal(t, KindRoad, road.Kind)
	assert.True(t, road.AutoTile)

	stadium, ok := r.Get("stadium")
	require.True(t, ok)
	assert.Equal(t, KindDefault, stadium.Kind)
	assert.Equal(t, 6, stadium.Footprint.Area())
}

func TestRegistry_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id": "x", "type": "lava"}]`), 0o644))

	r := NewRegistry()
	assert.Error(t, r.LoadFile(path), "Неизвестный вид тайла")
	assert.Error(t, r.LoadFile(filepath.Join(dir, "missing.json")))
	assert.Error(t, r.LoadDir(filepath.Join(dir, "missing")))
}

func TestKind_Text(t *testing.T) {
	for kind := KindDefault; kind <= KindBlueprint; kind++ {
		text, err := kind.MarshalText()
		require.NoError(t, err)

		var parsed Kind
		require.NoError(t, parsed.UnmarshalText(text))
		assert.Equal(t, kind, parsed)
	}
	assert.Equal(t, "unknown", Kind(200).String())
}
