package world

import (
	"math/rand"
	"testing"

	"github.com/annel0/isomap/internal/vec"
	"github.com/annel0/isomap/internal/world/tile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeHeight_Pyramid(t *testing.T) {
	m := newTestMap(t, 5, 5)
	center := vec.Vec2{X: 2, Y: 2}

	for i := 0; i < 3; i++ {
		changed, err := m.ChangeHeight(center, true)
		require.NoError(t, err)
		require.True(t, changed)
	}

	// каждое кольцо ровно на единицу ниже внутреннего
	for _, n := range m.DrawingOrder() {
		ring := n.Pos().ChebyshevTo(center)
		assert.Equal(t, 3-ring, n.Height(), "Высота узла %v в кольце %d", n.Pos(), ring)
	}
	assertGeometry(t, m)

	stats := m.Stats()
	assert.Equal(t, uint64(3), stats.PropagationPasses)
	assert.Equal(t, uint64(3+8*2+16), stats.HeightChanges)
	assert.Zero(t, stats.NodesElevated, "В пирамиде нет зажатых узлов")
}

func TestChangeHeight_Bounds(t *testing.T) {
	m, err := NewMap(Options{Columns: 3, Rows: 3, MaxHeight: 2})
	require.NoError(t, err)
	pos := vec.Vec2{X: 0, Y: 0}

	changed, err := m.ChangeHeight(pos, false)
	require.NoError(t, err)
	assert.False(t, changed, "Ниже нуля опуститься нельзя")

	for i := 0; i < 2; i++ {
		changed, err = m.ChangeHeight(pos, true)
		require.NoError(t, err)
		assert.True(t, changed)
	}
	changed, err = m.ChangeHeight(pos, true)
	require.NoError(t, err)
	assert.False(t, changed, "Выше максимума подняться нельзя")

	_, err = m.ChangeHeight(vec.Vec2{X: 3, Y: 0}, true)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestChangeHeight_PinchedNodeRises(t *testing.T) {
	m := newTestMap(t, 3, 3)
	center := vec.Vec2{X: 1, Y: 1}

	_, err := m.ChangeHeight(vec.Vec2{X: 1, Y: 2}, true)
	require.NoError(t, err)
	n, _ := m.NodeAt(center)
	assert.Equal(t, 0, n.Height())
	assert.Equal(t, Mask(DirTop), n.ElevationMask())

	// соседи сверху и снизу выше: узел зажат и поднимается сам
	_, err = m.ChangeHeight(vec.Vec2{X: 1, Y: 0}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n.Height(), "Зажатый узел должен подняться")
	assert.Equal(t, DirectionMask(0), n.ElevationMask())
	assert.Equal(t, uint64(1), m.Stats().NodesElevated)
	assertGeometry(t, m)
}

func TestChangeHeight_LoweringPitIsRejectedByGeometry(t *testing.T) {
	m := newTestMap(t, 3, 3)
	m.ApplyHeightmap(func(vec.Vec2) int { return 1 })

	// одиночная яма зажата со всех сторон и выравнивается обратно
	changed, err := m.ChangeHeight(vec.Vec2{X: 1, Y: 1}, false)
	require.NoError(t, err)
	assert.True(t, changed)

	n, _ := m.NodeAt(vec.Vec2{X: 1, Y: 1})
	assert.Equal(t, 1, n.Height())
	assertGeometry(t, m)
}

func TestChangeHeight_RandomEdits(t *testing.T) {
	m := newTestMap(t, 12, 12)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 300; i++ {
		pos := vec.Vec2{X: rng.Intn(12), Y: rng.Intn(12)}
		_, err := m.ChangeHeight(pos, rng.Intn(3) != 0)
		require.NoError(t, err)
	}
	assertGeometry(t, m)
}

func TestMap_RandomMixedEdits(t *testing.T) {
	layers := []Layer{LayerNone, LayerZone, LayerBuildings, LayerRoad, LayerWater, LayerGroundDecoration}

	for _, seed := range []int64{1, 7, 42, 2024} {
		m := newTestMap(t, 10, 10)
		fillGrass(t, m)
		ids := m.registry.IDs()
		rng := rand.New(rand.NewSource(seed))

		for i := 0; i < 400; i++ {
			pos := vec.Vec2{X: rng.Intn(10), Y: rng.Intn(10)}
			switch rng.Intn(3) {
			case 0:
				_, err := m.ChangeHeight(pos, rng.Intn(3) != 0)
				require.NoError(t, err)
			case 1:
				err := m.SetTile(ids[rng.Intn(len(ids))], pos)
				if err != nil {
					require.ErrorIs(t, err, ErrPlacementRejected, "сид %d, шаг %d", seed, i)
				}
			case 2:
				area := []vec.Vec2{pos, {X: pos.X + 1, Y: pos.Y}, {X: pos.X, Y: pos.Y + 1}}
				m.Demolish(area, true, layers[rng.Intn(len(layers))])
			}
			assertGeometry(t, m)
			if t.Failed() {
				t.Fatalf("Инварианты нарушены: сид %d, шаг %d", seed, i)
			}
		}
	}
}

func TestChangeHeight_DemolishesZone(t *testing.T) {
	m := newTestMap(t, 5, 5)
	fillGrass(t, m)
	pos := vec.Vec2{X: 2, Y: 2}
	require.NoError(t, m.SetTile(tile.Residential, pos))
	require.NoError(t, m.SetTile(tile.Residential, vec.Vec2{X: 2, Y: 3}))

	var demolished []vec.Vec2
	m.OnNodeDemolished(func(n *MapNode) { demolished = append(demolished, n.Pos()) })

	_, err := m.ChangeHeight(pos, true)
	require.NoError(t, err)

	n, _ := m.NodeAt(pos)
	assert.False(t, n.IsOccupied(LayerZone), "Зона не переживает изменения высоты")

	// соседняя зона стала склоном и тоже снесена
	top, _ := m.NodeAt(vec.Vec2{X: 2, Y: 3})
	assert.True(t, top.IsSlope())
	assert.False(t, top.IsOccupied(LayerZone))
	assert.Contains(t, demolished, pos)
	assert.Contains(t, demolished, vec.Vec2{X: 2, Y: 3})

	assert.True(t, n.IsOccupied(LayerTerrain), "Грунт остаётся на месте")
}

func TestLevelHeight(t *testing.T) {
	m := newTestMap(t, 7, 7)
	center := vec.Vec2{X: 3, Y: 3}
	for i := 0; i < 3; i++ {
		_, err := m.ChangeHeight(center, true)
		require.NoError(t, err)
	}

	area := make([]vec.Vec2, 0, 9)
	for x := 2; x <= 4; x++ {
		for y := 2; y <= 4; y++ {
			area = append(area, vec.Vec2{X: x, Y: y})
		}
	}
	area = append(area, vec.Vec2{X: 100, Y: 100})

	require.NoError(t, m.LevelHeight(vec.Vec2{X: 0, Y: 0}, area))

	for _, pos := range area[:9] {
		n, _ := m.NodeAt(pos)
		assert.Equal(t, 0, n.Height(), "Узел %v должен быть выровнен", pos)
	}
	assertGeometry(t, m)

	assert.ErrorIs(t, m.LevelHeight(vec.Vec2{X: -1, Y: 0}, area), ErrOutOfBounds)
}

func TestApplyHeightmap_RestoresContinuity(t *testing.T) {
	m, err := NewMap(Options{Columns: 10, Rows: 10, MaxHeight: 8})
	require.NoError(t, err)

	// крутой уклон и выбросы за пределы диапазона
	m.ApplyHeightmap(func(pos vec.Vec2) int {
		if pos.X == 5 && pos.Y == 5 {
			return -4
		}
		return pos.X * 3
	})

	for _, n := range m.DrawingOrder() {
		assert.GreaterOrEqual(t, n.Height(), 0)
		assert.LessOrEqual(t, n.Height(), 8)
	}
	assertGeometry(t, m)
}

func TestRefresh_MarksVisitedNodes(t *testing.T) {
	m := newTestMap(t, 5, 5)
	m.TakeRefresh()

	_, err := m.ChangeHeight(vec.Vec2{X: 0, Y: 0}, true)
	require.NoError(t, err)

	refreshed := m.TakeRefresh()
	positions := make([]vec.Vec2, 0, len(refreshed))
	for _, n := range refreshed {
		positions = append(positions, n.Pos())
	}
	assert.ElementsMatch(t, []vec.Vec2{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 0}, {X: 1, Y: 1}}, positions)
}
