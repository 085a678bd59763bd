package world

import (
	"github.com/annel0/isomap/internal/vec"
	"github.com/annel0/isomap/internal/world/tile"
)

// footprintCells возвращает клетки основания тайла. Опорная клетка
// самая передняя, остальные лежат левее по столбцам и выше по строкам.
func footprintCells(origin vec.Vec2, desc *tile.Descriptor) []vec.Vec2 {
	size := tile.Size{Width: 1, Height: 1}
	if desc != nil && desc.Footprint.Area() > 0 {
		size = desc.Footprint
	}

	cells := make([]vec.Vec2, 0, size.Area())
	for dx := 0; dx < size.Width; dx++ {
		for dy := 0; dy < size.Height; dy++ {
			cells = append(cells, vec.Vec2{X: origin.X - dx, Y: origin.Y + dy})
		}
	}
	return cells
}

// expandFootprints переводит позиции в узлы, раскрывая многоклеточные
// постройки до всего основания. Позиции вне карты пропускаются.
func (m *Map) expandFootprints(positions []vec.Vec2) []*MapNode {
	seen := make(map[*MapNode]bool, len(positions))
	result := make([]*MapNode, 0, len(positions))
	add := func(n *MapNode) {
		if n != nil && !seen[n] {
			seen[n] = true
			result = append(result, n)
		}
	}

	for _, pos := range positions {
		n := m.node(pos)
		if n == nil {
			continue
		}
		b := n.layers[LayerBuildings]
		if !b.multiCell() {
			add(n)
			continue
		}
		for _, cell := range footprintCells(b.Origin, b.Tile) {
			c := m.node(cell)
			// клетка могла быть уже перезаписана другой постройкой
			if c != nil && c.layers[LayerBuildings].Origin == b.Origin && c.layers[LayerBuildings].TileID == b.TileID {
				add(c)
			}
		}
		add(n)
	}
	return result
}

// demolishLayers очищает слои узла. Если что-то было снесено, подписчики
// получают уведомление, а узел встаёт в очередь на обновление текстуры.
func (m *Map) demolishLayers(n *MapNode, layers ...Layer) bool {
	cleared := false
	for _, l := range layers {
		if n.clearLayer(l) {
			n.layers[l].Origin = n.pos.Vec2
			cleared = true
		}
	}
	if !cleared {
		return false
	}

	evLayer := LayerNone
	if len(layers) == 1 {
		evLayer = layers[0]
	}

	m.stats.Demolitions++
	m.markRefresh(n)
	m.observers.emit(NodeEvent{Type: EventNodeDemolished, Node: n, Layer: evLayer})
	return true
}

// Demolish сносит тайлы слоя layer (LayerNone: все слои, кроме грунта)
// в заданных позициях. Многоклеточная постройка сносится целиком, даже
// если задана одна её клетка. Позиции вне карты пропускаются.
//
// С updateNeighbors затронутые узлы проходят через распространение высот
// и маски пересчитываются у них и у соседей. Без него соседи не
// трогаются: так удобно, когда сразу следом идёт размещение.
func (m *Map) Demolish(positions []vec.Vec2, updateNeighbors bool, layer Layer) {
	layers := demolishable
	if layer != LayerNone {
		if int(layer) >= MaxLayers {
			return
		}
		layers = []Layer{layer}
	}

	affected := make([]*MapNode, 0, len(positions))
	for _, n := range m.expandFootprints(positions) {
		if m.demolishLayers(n, layers...) {
			affected = append(affected, n)
		}
	}
	if len(affected) == 0 {
		return
	}

	if updateNeighbors {
		m.updateNodeNeighbors(affected)
	} else {
		for _, n := range affected {
			m.updateAutoTile(n, m.Neighbors(n.pos.Vec2, false))
		}
	}
	m.log.Debug("Снесено %d узлов на слое %s", len(affected), layer)
}
