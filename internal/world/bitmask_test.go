package world

import (
	"testing"

	"github.com/annel0/isomap/internal/vec"
	"github.com/annel0/isomap/internal/world/tile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElevationMask(t *testing.T) {
	m := newTestMap(t, 3, 3)
	heights := map[vec.Vec2]int{
		{X: 1, Y: 1}: 1,
		{X: 1, Y: 2}: 2, // TOP
		{X: 0, Y: 0}: 2, // BOTTOM_LEFT
		{X: 2, Y: 1}: 1, // RIGHT, такой же высоты
	}
	for pos, h := range heights {
		n, _ := m.NodeAt(pos)
		n.pos.Height = h
	}

	n, _ := m.NodeAt(vec.Vec2{X: 1, Y: 1})
	mask := ElevationMask(n, m.Neighbors(n.Pos(), false))
	assert.Equal(t, Mask(DirTop, DirBottomLeft), mask, "Учитываются только строго более высокие соседи")
}

func TestAutoTileMasks_Shoreline(t *testing.T) {
	m := newTestMap(t, 3, 3)
	fillGrass(t, m)

	require.NoError(t, m.SetTile(tile.Water, vec.Vec2{X: 1, Y: 1}))

	below, _ := m.NodeAt(vec.Vec2{X: 1, Y: 0})
	assert.Equal(t, Mask(DirTop), below.AutoTileMask(LayerTerrain), "Берег смотрит на воду")

	corner, _ := m.NodeAt(vec.Vec2{X: 2, Y: 2})
	assert.Equal(t, Mask(DirBottomLeft), corner.AutoTileMask(LayerTerrain))

	water, _ := m.NodeAt(vec.Vec2{X: 1, Y: 1})
	assert.Zero(t, water.AutoTileMask(LayerWater), "Одиночная вода ни с чем не стыкуется")

	require.NoError(t, m.SetTile(tile.Water, vec.Vec2{X: 1, Y: 2}))
	assert.Equal(t, Mask(DirTop), water.AutoTileMask(LayerWater))
}

func TestAutoTileMasks_Roads(t *testing.T) {
	m := newTestMap(t, 4, 3)
	fillGrass(t, m)

	require.NoError(t, m.SetTile(tile.RoadAsphalt, vec.Vec2{X: 1, Y: 1}))
	require.NoError(t, m.SetTile(tile.RoadDirt, vec.Vec2{X: 2, Y: 1}))
	require.NoError(t, m.SetTile(tile.RoadAsphalt, vec.Vec2{X: 1, Y: 2}))

	asphalt, _ := m.NodeAt(vec.Vec2{X: 1, Y: 1})
	dirt, _ := m.NodeAt(vec.Vec2{X: 2, Y: 1})

	assert.Equal(t, Mask(DirTop, DirRight), asphalt.AutoTileMask(LayerRoad), "Дороги разных типов соединяются")
	assert.Equal(t, Mask(DirLeft, DirTopLeft), dirt.AutoTileMask(LayerRoad))
	assert.Zero(t, asphalt.AutoTileMask(LayerTerrain), "Без воды у грунта нет стыков")
}

func TestAutoTileMasks_SameIDOnly(t *testing.T) {
	m := newTestMap(t, 3, 3)

	require.NoError(t, m.SetTile(tile.Pipe, vec.Vec2{X: 1, Y: 1}))
	require.NoError(t, m.SetTile(tile.Pipe, vec.Vec2{X: 2, Y: 1}))
	require.NoError(t, m.SetTile(tile.PipePlan, vec.Vec2{X: 1, Y: 2}))

	pipe, _ := m.NodeAt(vec.Vec2{X: 1, Y: 1})
	assert.Equal(t, Mask(DirRight), pipe.AutoTileMask(LayerUnderground))
	assert.Zero(t, pipe.AutoTileMask(LayerBlueprint), "Пустой слой даёт нулевую маску")

	masks := AutoTileMasks(pipe, m.Neighbors(pipe.Pos(), false))
	assert.Equal(t, Mask(DirRight), masks[LayerUnderground])
}
