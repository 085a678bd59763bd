package world

import (
	"testing"

	"github.com/annel0/isomap/internal/vec"
	"github.com/annel0/isomap/internal/world/tile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemolish_WholeFootprint(t *testing.T) {
	for _, cell := range officeCells() {
		m := newTestMap(t, 5, 5)
		fillGrass(t, m)
		require.NoError(t, m.SetTile(tile.Office, vec.Vec2{X: 2, Y: 1}))

		var demolished []vec.Vec2
		m.OnNodeDemolished(func(n *MapNode) { demolished = append(demolished, n.Pos()) })

		m.Demolish([]vec.Vec2{cell}, true, LayerBuildings)

		assert.ElementsMatch(t, officeCells(), demolished, "Снос клетки %v сносит весь офис", cell)
		for _, c := range officeCells() {
			n, _ := m.NodeAt(c)
			assert.False(t, n.IsOccupied(LayerBuildings))
			assert.True(t, n.IsOccupied(LayerTerrain), "Грунт не трогается")
		}
		assert.Equal(t, uint64(4), m.Stats().Demolitions)
	}
}

func TestDemolish_AllLayers(t *testing.T) {
	m := newTestMap(t, 4, 4)
	fillGrass(t, m)
	pos := vec.Vec2{X: 1, Y: 1}
	require.NoError(t, m.SetTile(tile.Residential, pos))
	require.NoError(t, m.SetTile(tile.Warehouse, pos))
	require.NoError(t, m.SetTile(tile.Pipe, pos))

	var events []NodeEvent
	m.Subscribe(func(ev NodeEvent) { events = append(events, ev) })

	m.Demolish([]vec.Vec2{pos, {X: -1, Y: 7}}, false, LayerNone)

	n, _ := m.NodeAt(pos)
	for _, l := range demolishable {
		assert.False(t, n.IsOccupied(l), "Слой %s должен быть очищен", l)
	}
	assert.True(t, n.IsOccupied(LayerTerrain))

	require.Len(t, events, 1, "Одно уведомление на узел")
	assert.Equal(t, EventNodeDemolished, events[0].Type)
	assert.Equal(t, LayerNone, events[0].Layer)
}

func TestDemolish_EmptyLayerIsNoop(t *testing.T) {
	m := newTestMap(t, 3, 3)

	called := false
	m.OnNodeDemolished(func(*MapNode) { called = true })
	m.Demolish([]vec.Vec2{{X: 1, Y: 1}}, true, LayerRoad)

	assert.False(t, called)
	assert.Zero(t, m.Stats().Demolitions)
	assert.Zero(t, m.Stats().PropagationPasses)
}

func TestDemolish_UpdatesNeighborMasks(t *testing.T) {
	m := newTestMap(t, 4, 3)
	require.NoError(t, m.SetTile(tile.RoadAsphalt, vec.Vec2{X: 1, Y: 1}))
	require.NoError(t, m.SetTile(tile.RoadAsphalt, vec.Vec2{X: 2, Y: 1}))

	left, _ := m.NodeAt(vec.Vec2{X: 1, Y: 1})
	require.Equal(t, Mask(DirRight), left.AutoTileMask(LayerRoad))

	m.Demolish([]vec.Vec2{{X: 2, Y: 1}}, true, LayerRoad)
	assert.Zero(t, left.AutoTileMask(LayerRoad), "Сосед теряет стык после сноса")
}

func TestFootprintCells(t *testing.T) {
	desc := &tile.Descriptor{ID: "x", Footprint: tile.Size{Width: 2, Height: 3}}
	cells := footprintCells(vec.Vec2{X: 5, Y: 5}, desc)

	assert.Len(t, cells, 6)
	assert.Equal(t, vec.Vec2{X: 5, Y: 5}, cells[0], "Опорная клетка идёт первой")
	assert.Contains(t, cells, vec.Vec2{X: 4, Y: 7})
	assert.NotContains(t, cells, vec.Vec2{X: 6, Y: 5})

	assert.Equal(t, []vec.Vec2{{X: 1, Y: 1}}, footprintCells(vec.Vec2{X: 1, Y: 1}, nil))
}
