package world

import (
	"errors"
	"testing"

	"github.com/annel0/isomap/internal/vec"
	"github.com/annel0/isomap/internal/world/tile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMap(t *testing.T, columns, rows int) *Map {
	t.Helper()
	m, err := NewMap(Options{Columns: columns, Rows: rows, Seed: 7})
	require.NoError(t, err, "Карта должна создаваться")
	return m
}

// fillGrass покрывает всю карту травой
func fillGrass(t *testing.T, m *Map) {
	t.Helper()
	for _, n := range m.DrawingOrder() {
		require.NoError(t, m.SetTile(tile.Grass, n.Pos()))
	}
}

// assertGeometry проверяет непрерывность высот, маски высот и стыковки,
// а также ссылки клеток многоклеточных объектов на опорную клетку
func assertGeometry(t *testing.T, m *Map) {
	t.Helper()
	for _, n := range m.DrawingOrder() {
		neighbors := m.Neighbors(n.Pos(), false)
		for _, nb := range neighbors {
			diff := n.Height() - nb.Node.Height()
			if diff > 1 || diff < -1 {
				t.Fatalf("Перепад %d между %v и %v", diff, n.Pos(), nb.Node.Pos())
			}
		}
		assert.Equal(t, ElevationMask(n, neighbors), n.ElevationMask(), "Маска высот узла %v устарела", n.Pos())

		masks := AutoTileMasks(n, neighbors)
		for l := Layer(0); int(l) < MaxLayers; l++ {
			assert.Equal(t, masks[l], n.AutoTileMask(l), "Маска стыковки слоя %s узла %v устарела", l, n.Pos())

			st := n.Layer(l)
			if !st.Occupied() {
				continue
			}
			if st.Origin == n.Pos() {
				assert.True(t, st.Visible, "Опорная клетка %v слоя %s должна рисоваться", n.Pos(), l)
				continue
			}
			require.True(t, st.multiCell(), "Одноклеточный тайл %s в %v ссылается на %v", st.TileID, n.Pos(), st.Origin)
			assert.False(t, st.Visible, "Неосновная клетка %v слоя %s не рисуется", n.Pos(), l)
			origin, err := m.NodeAt(st.Origin)
			require.NoError(t, err, "Опорная клетка %v вне карты", st.Origin)
			assert.Equal(t, st.TileID, origin.TileID(l), "Клетка %v ссылается на опору %v с другим тайлом", n.Pos(), st.Origin)
		}
	}
}

func TestNewMap(t *testing.T) {
	m := newTestMap(t, 4, 3)

	assert.Equal(t, 4, m.Columns())
	assert.Equal(t, 3, m.Rows())
	assert.Equal(t, DefaultMaxHeight, m.MaxHeight())
	assert.Len(t, m.DrawingOrder(), 12)

	_, err := NewMap(Options{Columns: 0, Rows: 3})
	assert.Error(t, err, "Пустая карта не создаётся")
}

func TestNodeAt(t *testing.T) {
	m := newTestMap(t, 4, 3)

	n, err := m.NodeAt(vec.Vec2{X: 3, Y: 2})
	require.NoError(t, err)
	assert.Equal(t, vec.Vec2{X: 3, Y: 2}, n.Pos())

	for _, pos := range []vec.Vec2{{X: -1, Y: 0}, {X: 4, Y: 0}, {X: 0, Y: 3}, {X: 0, Y: -1}} {
		_, err := m.NodeAt(pos)
		assert.True(t, errors.Is(err, ErrOutOfBounds), "Позиция %v должна быть вне карты", pos)
	}
}

func TestDrawingOrder(t *testing.T) {
	m := newTestMap(t, 3, 3)
	order := m.DrawingOrder()

	// первым рисуется дальний узел, последним ближний
	assert.Equal(t, vec.Vec2{X: 0, Y: 2}, order[0].Pos())
	assert.Equal(t, vec.Vec2{X: 2, Y: 0}, order[len(order)-1].Pos())

	for i, n := range order {
		assert.Equal(t, i, n.Position().Z, "Глубина должна совпадать с индексом отрисовки")
	}
}

func TestNeighbors(t *testing.T) {
	m := newTestMap(t, 3, 3)

	corner := m.Neighbors(vec.Vec2{X: 0, Y: 0}, false)
	require.Len(t, corner, 3, "У угла три соседа")
	assert.Equal(t, DirTop, corner[0].Dir)
	assert.Equal(t, DirRight, corner[1].Dir)
	assert.Equal(t, DirTopRight, corner[2].Dir)

	center := m.Neighbors(vec.Vec2{X: 1, Y: 1}, true)
	require.Len(t, center, 9)
	assert.Equal(t, DirCenter, center[4].Dir)
	assert.Equal(t, vec.Vec2{X: 1, Y: 1}, center[4].Node.Pos())
}

func TestLayerActivation(t *testing.T) {
	m := newTestMap(t, 2, 2)

	assert.True(t, m.IsLayerActive(LayerTerrain))
	assert.False(t, m.IsLayerActive(LayerUnderground), "Подземный слой по умолчанию скрыт")
	assert.False(t, m.IsLayerActive(LayerBlueprint), "Чертежи по умолчанию скрыты")

	m.TakeRefresh()
	m.SetLayerActive(LayerUnderground, true)
	assert.True(t, m.IsLayerActive(LayerUnderground))
	assert.Equal(t, 4, m.PendingRefresh(), "Переключение слоя обновляет все текстуры")

	refreshed := m.TakeRefresh()
	require.Len(t, refreshed, 4)
	for i := 1; i < len(refreshed); i++ {
		assert.Less(t, refreshed[i-1].Position().Z, refreshed[i].Position().Z, "Очередь выдаётся в порядке отрисовки")
	}
	assert.Zero(t, m.PendingRefresh())
}
