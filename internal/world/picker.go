package world

import (
	"image"
	"sort"

	"github.com/annel0/isomap/internal/vec"
	"github.com/annel0/isomap/internal/world/tile"
)

// pickReach радиус ромба кандидатов вокруг каждой точки поиска
const pickReach = 2

// NoNode возвращается пикером, когда под точкой нет узла
var NoNode = vec.Vec2{X: -1, Y: -1}

// SpriteSource даёт пикеру размеры спрайтов и их прозрачность.
// Реализуется атласом текстур (см. iso.MaskAtlas).
type SpriteSource interface {
	SpriteSize(id tile.ID) (w, h int, ok bool)
	Opaque(id tile.ID, x, y int) bool
}

// pickGuess возвращает узел под точкой без учёта высоты. Если строка
// выходит за карту, позиция сдвигается по диагонали с тем же x+y.
func (m *Map) pickGuess(pt image.Point) vec.Vec2 {
	g := m.projection.ToGrid(pt)
	if g.Y >= m.rows {
		diff := g.Y - (m.rows - 1)
		g.X += diff
		g.Y = m.rows - 1
	}
	if g.Y < 0 {
		g.X += g.Y
		g.Y = 0
	}
	return g
}

// pickCandidates собирает узлы, спрайт которых может накрывать точку.
// Поднятые узлы смещаются на экране вверх, поэтому поиск идёт от догадки
// вперёд (столбец +1, строка -1) на всю максимальную высоту.
func (m *Map) pickCandidates(guess vec.Vec2) []*MapNode {
	steps := (m.projection.RowsForHeight(m.maxHeight) + 1) / 2

	seen := make(map[*MapNode]bool)
	result := make([]*MapNode, 0, (steps+1)*(2*pickReach+1)*(2*pickReach+1)/2)
	for s := 0; s <= steps; s++ {
		c := vec.Vec2{X: guess.X + s, Y: guess.Y - s}
		for dx := -pickReach; dx <= pickReach; dx++ {
			span := pickReach - abs(dx)
			for dy := -span; dy <= span; dy++ {
				n := m.node(vec.Vec2{X: c.X + dx, Y: c.Y + dy})
				if n != nil && !seen[n] {
					seen[n] = true
					result = append(result, n)
				}
			}
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].pos.Z > result[j].pos.Z })
	return result
}

// Pick возвращает узел, непрозрачный пиксель которого лежит под точкой
// экрана. Узлы проверяются от ближнего к дальнему. Если layer равен
// LayerNone, слои проверяются по приоритету TERRAIN, WATER, UNDERGROUND,
// BLUEPRINT; выключенные слои пропускаются.
func (m *Map) Pick(pt image.Point, layer Layer, src SpriteSource) (vec.Vec2, bool) {
	layers := pickPriority
	if layer != LayerNone {
		layers = []Layer{layer}
	}

	for _, n := range m.pickCandidates(m.pickGuess(pt)) {
		for _, l := range layers {
			if m.hitTest(n, l, pt, src) {
				return n.pos.Vec2, true
			}
		}
	}
	return NoNode, false
}

func (m *Map) hitTest(n *MapNode, l Layer, pt image.Point, src SpriteSource) bool {
	if int(l) >= MaxLayers || !m.active.has(l) {
		return false
	}
	st := n.layers[l]
	if !st.Occupied() || !st.Visible {
		return false
	}

	w, h, ok := src.SpriteSize(st.TileID)
	if !ok {
		return false
	}
	rect := m.projection.SpriteRect(n.pos.Vec2, n.pos.Height, w, h)
	if !pt.In(rect) {
		return false
	}
	x, y := m.projection.SourcePixel(rect, pt)
	return src.Opaque(st.TileID, x, y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
