package world

import (
	"image"
	"testing"

	"github.com/annel0/isomap/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func positions(nodes []*MapNode) []vec.Vec2 {
	result := make([]vec.Vec2, len(nodes))
	for i, n := range nodes {
		result[i] = n.Pos()
	}
	return result
}

func TestUpdateVisible_WholeMap(t *testing.T) {
	m := newTestMap(t, 10, 10)

	visible := m.UpdateVisible(image.Rect(-100, -300, 800, 400))
	assert.Len(t, visible, 100, "Экран накрывает всю карту")
	assert.Equal(t, 100, m.Stats().VisibleNodes)
}

func TestUpdateVisible_Bounds(t *testing.T) {
	m := newTestMap(t, 10, 10)
	view := image.Rect(200, -40, 360, 40)

	bounds := m.VisibleBoundsFor(view)
	visible := m.UpdateVisible(view)
	require.NotEmpty(t, visible)
	assert.Less(t, len(visible), 100)

	for i, n := range visible {
		u, w := n.Pos().Rotated()
		assert.True(t, bounds.Contains(u, w), "Узел %v вне границ %+v", n.Pos(), bounds)
		if i > 0 {
			assert.Less(t, visible[i-1].Position().Z, n.Position().Z, "Порядок отрисовки сохраняется")
		}
	}

	assert.Contains(t, positions(visible), vec.Vec2{X: 3, Y: 4})
	assert.NotContains(t, positions(visible), vec.Vec2{X: 0, Y: 0})
	assert.NotContains(t, positions(visible), vec.Vec2{X: 9, Y: 9})
}

func TestUpdateVisible_Deterministic(t *testing.T) {
	m := newTestMap(t, 16, 16)
	view := image.Rect(100, -60, 420, 120)

	first := positions(m.UpdateVisible(view))
	second := positions(m.UpdateVisible(view))
	assert.Equal(t, first, second)
	assert.Equal(t, first, positions(m.VisibleNodes()))
}

func TestVisibleBoundsFor_RelaxedByHeight(t *testing.T) {
	m := newTestMap(t, 10, 10)
	view := image.Rect(200, -40, 360, 40)

	b := m.VisibleBoundsFor(view)
	_, bottomW := vec.Vec2{X: 6, Y: 4}.Rotated()
	assert.Equal(t, bottomW-visibleMargin-m.Projection().RowsForHeight(m.MaxHeight()), b.Bottom)
}
