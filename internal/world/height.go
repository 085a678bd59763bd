package world

import (
	"github.com/annel0/isomap/internal/vec"
)

// setHeight поднимает или опускает узел на единицу в пределах [0, maxHeight].
// Зона на узле не переживает изменения рельефа и сносится.
func (m *Map) setHeight(n *MapNode, higher bool) bool {
	switch {
	case higher && n.pos.Height < m.maxHeight:
		n.pos.Height++
	case !higher && n.pos.Height > 0:
		n.pos.Height--
	default:
		return false
	}

	m.stats.HeightChanges++
	if n.layers[LayerZone].Occupied() {
		m.demolishLayers(n, LayerZone)
	}
	return true
}

// ChangeHeight поднимает или опускает узел на единицу и восстанавливает
// непрерывность высот вокруг него. Возвращает false, если высота упёрлась
// в границу.
func (m *Map) ChangeHeight(pos vec.Vec2, higher bool) (bool, error) {
	n, err := m.NodeAt(pos)
	if err != nil {
		return false, err
	}
	if !m.setHeight(n, higher) {
		return false, nil
	}

	m.updateNodeNeighbors([]*MapNode{n})
	m.log.Trace("Высота узла %v изменена до %d", pos, n.pos.Height)
	return true, nil
}

// LevelHeight выравнивает область по высоте узла origin.
// Позиции вне карты пропускаются. Область сдвигается к цели по одной
// единице за проход, чтобы соседи подтягивались к ней, а не наоборот.
func (m *Map) LevelHeight(origin vec.Vec2, area []vec.Vec2) error {
	o, err := m.NodeAt(origin)
	if err != nil {
		return err
	}
	target := o.pos.Height

	nodes := make([]*MapNode, 0, len(area))
	for _, pos := range area {
		if n := m.node(pos); n != nil {
			nodes = append(nodes, n)
		}
	}

	changed := make([]*MapNode, 0, len(nodes))
	for round := 0; round <= m.maxHeight; round++ {
		changed = changed[:0]
		for _, n := range nodes {
			if n.pos.Height != target && m.setHeight(n, n.pos.Height < target) {
				changed = append(changed, n)
			}
		}
		if len(changed) == 0 {
			break
		}
		m.updateNodeNeighbors(changed)
	}
	return nil
}

// ApplyHeightmap задаёт высоты всех узлов функцией heightAt и
// пересчитывает карту целиком. Значения ограничиваются диапазоном, а
// перепады больше единицы срезаются сверху.
func (m *Map) ApplyHeightmap(heightAt func(pos vec.Vec2) int) {
	for i := range m.nodes {
		n := &m.nodes[i]
		h := heightAt(n.pos.Vec2)
		if h < 0 {
			h = 0
		}
		if h > m.maxHeight {
			h = m.maxHeight
		}
		n.pos.Height = h
	}
	m.smoothHeights()
	m.RefreshAll()
}

// smoothHeights опускает узлы так, чтобы соседи отличались не больше чем
// на единицу: h(n) <= h(сосед)+1. Два прохода по растру дают точную
// нижнюю огибающую для 8-связности.
func (m *Map) smoothHeights() {
	relax := func(n *MapNode, x, y int) {
		if nb := m.node(vec.Vec2{X: x, Y: y}); nb != nil && n.pos.Height > nb.pos.Height+1 {
			n.pos.Height = nb.pos.Height + 1
		}
	}

	for x := 0; x < m.columns; x++ {
		for y := 0; y < m.rows; y++ {
			n := &m.nodes[m.index(x, y)]
			relax(n, x-1, y-1)
			relax(n, x-1, y)
			relax(n, x-1, y+1)
			relax(n, x, y-1)
		}
	}
	for x := m.columns - 1; x >= 0; x-- {
		for y := m.rows - 1; y >= 0; y-- {
			n := &m.nodes[m.index(x, y)]
			relax(n, x+1, y+1)
			relax(n, x+1, y)
			relax(n, x+1, y-1)
			relax(n, x, y+1)
		}
	}
}

// RefreshAll прогоняет распространение высот и пересчёт масок по всем узлам
func (m *Map) RefreshAll() {
	seeds := make([]*MapNode, 0, len(m.nodes))
	for _, n := range m.drawOrder {
		seeds = append(seeds, n)
	}
	m.updateNodeNeighbors(seeds)
}
