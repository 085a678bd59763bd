package world

import (
	"image"
	"testing"

	"github.com/annel0/isomap/internal/vec"
	"github.com/annel0/isomap/internal/world/iso"
	"github.com/annel0/isomap/internal/world/tile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// diamondAtlas спрайты-ромбы размером с тайл
func diamondAtlas(ids ...tile.ID) *iso.MaskAtlas {
	atlas := iso.NewMaskAtlas()
	for _, id := range ids {
		atlas.Add(id, iso.DiamondMask(64, 32))
	}
	return atlas
}

// centerOf возвращает экранный центр ромба узла нулевой высоты
func centerOf(m *Map, pos vec.Vec2) image.Point {
	s := m.Projection().ToScreen(pos, 0)
	return s.Add(image.Pt(32, 16))
}

func TestPick_Hit(t *testing.T) {
	m := newTestMap(t, 8, 8)
	fillGrass(t, m)
	atlas := diamondAtlas(tile.Grass)

	target := vec.Vec2{X: 3, Y: 3}
	pos, ok := m.Pick(centerOf(m, target), LayerNone, atlas)
	require.True(t, ok, "Под центром ромба должен быть узел")
	assert.Equal(t, target, pos)

	pos, ok = m.Pick(centerOf(m, target), LayerTerrain, atlas)
	require.True(t, ok)
	assert.Equal(t, target, pos)
}

func TestPick_EveryNode(t *testing.T) {
	m := newTestMap(t, 6, 6)
	fillGrass(t, m)
	atlas := diamondAtlas(tile.Grass)

	for _, n := range m.DrawingOrder() {
		pos, ok := m.Pick(centerOf(m, n.Pos()), LayerNone, atlas)
		require.True(t, ok)
		assert.Equal(t, n.Pos(), pos)
	}
}

func TestPick_TransparentMiss(t *testing.T) {
	m := newTestMap(t, 8, 8)
	fillGrass(t, m)

	atlas := iso.NewMaskAtlas()
	atlas.Add(tile.Grass, iso.NewAlphaMask(64, 32))

	pos, ok := m.Pick(centerOf(m, vec.Vec2{X: 3, Y: 3}), LayerNone, atlas)
	assert.False(t, ok, "Прозрачные пиксели не попадают")
	assert.Equal(t, NoNode, pos)
}

func TestPick_EmptyLayersAndOffMap(t *testing.T) {
	m := newTestMap(t, 8, 8)
	atlas := diamondAtlas(tile.Grass)

	_, ok := m.Pick(centerOf(m, vec.Vec2{X: 3, Y: 3}), LayerNone, atlas)
	assert.False(t, ok, "На пустой карте попадать не во что")

	fillGrass(t, m)
	_, ok = m.Pick(centerOf(m, vec.Vec2{X: 3, Y: 3}), LayerWater, atlas)
	assert.False(t, ok, "На слое воды ничего нет")

	_, ok = m.Pick(image.Pt(-2000, -2000), LayerNone, atlas)
	assert.False(t, ok)
}

func TestPick_InactiveLayer(t *testing.T) {
	m := newTestMap(t, 8, 8)
	atlas := diamondAtlas(tile.Pipe)
	target := vec.Vec2{X: 3, Y: 3}
	require.NoError(t, m.SetTile(tile.Pipe, target))

	_, ok := m.Pick(centerOf(m, target), LayerUnderground, atlas)
	assert.False(t, ok, "Скрытый слой не проверяется")

	m.SetLayerActive(LayerUnderground, true)
	pos, ok := m.Pick(centerOf(m, target), LayerUnderground, atlas)
	require.True(t, ok)
	assert.Equal(t, target, pos)
}

func TestPick_RaisedNodeCoversFlatOne(t *testing.T) {
	m := newTestMap(t, 8, 8)
	fillGrass(t, m)
	atlas := diamondAtlas(tile.Grass)

	// узел (4,3) стоит перед (3,3) и, поднявшись на единицу, перекрывает
	// правую часть его ромба
	front := vec.Vec2{X: 4, Y: 3}
	_, err := m.ChangeHeight(front, true)
	require.NoError(t, err)

	pt := centerOf(m, vec.Vec2{X: 3, Y: 3}).Add(image.Pt(16, -2))
	pos, ok := m.Pick(pt, LayerNone, atlas)
	require.True(t, ok)
	assert.Equal(t, front, pos)
}
