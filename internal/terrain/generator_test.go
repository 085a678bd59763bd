package terrain

import (
	"testing"

	"github.com/annel0/isomap/internal/vec"
	"github.com/annel0/isomap/internal/world"
	"github.com/annel0/isomap/internal/world/tile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMap(t *testing.T, size int, opts ...func(*world.Options)) *world.Map {
	t.Helper()
	o := world.Options{Columns: size, Rows: size, MaxHeight: 12, Seed: 99}
	for _, fn := range opts {
		fn(&o)
	}
	m, err := world.NewMap(o)
	require.NoError(t, err)
	return m
}

func TestNoise_Range(t *testing.T) {
	n := NewNoise(2, 2, 3, 0.1, 5)
	for x := 0; x < 50; x++ {
		for y := 0; y < 50; y++ {
			v := n.At(x, y)
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
	assert.Equal(t, n.At(7, 3), NewNoise(2, 2, 3, 0.1, 5).At(7, 3), "Шум детерминирован по сиду")
}

func TestGenerate_Deterministic(t *testing.T) {
	p := DefaultParams(42)
	p.FloraRatio = 0.2

	a := newMap(t, 24)
	b := newMap(t, 24)
	require.NoError(t, NewGenerator(p).Generate(a))
	require.NoError(t, NewGenerator(p).Generate(b))

	assert.Equal(t, a.Snapshot(), b.Snapshot(), "Одинаковые параметры дают одинаковую карту")
}

func TestGenerate_TerrainInvariants(t *testing.T) {
	p := DefaultParams(7)
	p.Scale = 0.15
	p.FloraRatio = 0.3
	m := newMap(t, 20)
	g := NewGenerator(p)
	require.NoError(t, g.Generate(m))

	var water, flora int
	for _, n := range m.DrawingOrder() {
		assert.Equal(t, tile.Grass, n.TileID(world.LayerTerrain), "Грунт лежит везде")
		if n.IsOccupied(world.LayerWater) {
			water++
			assert.LessOrEqual(t, g.Height(n.Pos(), m.MaxHeight()), p.WaterLevel, "Вода только в низинах %v", n.Pos())
			assert.False(t, n.IsOccupied(world.LayerBuildings), "Растительность не растёт в воде")
		}
		if n.IsOccupied(world.LayerBuildings) {
			flora++
			assert.Contains(t, p.Flora, n.TileID(world.LayerBuildings))
		}

		for _, nb := range m.Neighbors(n.Pos(), false) {
			diff := n.Height() - nb.Node.Height()
			assert.LessOrEqual(t, diff, 1, "Перепад высот между %v и %v", n.Pos(), nb.Node.Pos())
			assert.GreaterOrEqual(t, diff, -1)
		}
	}
	assert.Positive(t, flora, "Растительность должна появиться при доле 0.3")
	t.Logf("вода: %d, растительность: %d", water, flora)
}

func TestGenerate_AllWater(t *testing.T) {
	p := DefaultParams(1)
	p.WaterLevel = 12
	m := newMap(t, 6)
	require.NoError(t, NewGenerator(p).Generate(m))

	for _, n := range m.DrawingOrder() {
		assert.Equal(t, tile.Water, n.TileID(world.LayerWater))
	}
}

func TestGenerate_NoFlora(t *testing.T) {
	p := DefaultParams(3)
	p.FloraRatio = 0
	m := newMap(t, 10)
	require.NoError(t, NewGenerator(p).Generate(m))

	for _, n := range m.DrawingOrder() {
		assert.False(t, n.IsOccupied(world.LayerBuildings))
	}
}

func TestGenerate_MissingTiles(t *testing.T) {
	m := newMap(t, 4, func(o *world.Options) { o.Registry = tile.NewRegistry() })
	err := NewGenerator(DefaultParams(1)).Generate(m)
	assert.ErrorIs(t, err, world.ErrMissingDescriptor)
}

func TestGenerator_HeightBounds(t *testing.T) {
	g := NewGenerator(DefaultParams(11))
	for x := 0; x < 30; x++ {
		h := g.Height(vec.Vec2{X: x, Y: x * 2}, 8)
		assert.GreaterOrEqual(t, h, 0)
		assert.LessOrEqual(t, h, 8)
	}
}
