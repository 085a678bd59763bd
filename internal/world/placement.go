package world

import (
	"fmt"

	"github.com/annel0/isomap/internal/vec"
	"github.com/annel0/isomap/internal/world/tile"
)

// canHold проверяет, можно ли поставить тайл слоя l на узел
func (n *MapNode) canHold(l Layer) error {
	switch l {
	case LayerZone:
		switch {
		case n.hasBuilding():
			return fmt.Errorf("%w: зона на постройке %v", ErrPlacementRejected, n.pos.Vec2)
		case n.layers[LayerWater].Occupied():
			return fmt.Errorf("%w: зона на воде %v", ErrPlacementRejected, n.pos.Vec2)
		case n.layers[LayerRoad].Occupied():
			return fmt.Errorf("%w: зона на дороге %v", ErrPlacementRejected, n.pos.Vec2)
		case n.IsSlope():
			return fmt.Errorf("%w: зона на склоне %v", ErrPlacementRejected, n.pos.Vec2)
		}
	case LayerWater:
		if n.hasBuilding() {
			return fmt.Errorf("%w: вода на постройке %v", ErrPlacementRejected, n.pos.Vec2)
		}
	}
	return nil
}

// placementTargets возвращает узлы основания или ошибку, если хотя бы
// одна клетка недоступна
func (m *Map) placementTargets(desc *tile.Descriptor, layer Layer, origin vec.Vec2) ([]*MapNode, error) {
	cells := footprintCells(origin, desc)
	targets := make([]*MapNode, 0, len(cells))
	for _, cell := range cells {
		n := m.node(cell)
		if n == nil {
			return nil, fmt.Errorf("%w: клетка %v вне карты", ErrPlacementRejected, cell)
		}
		if err := n.canHold(layer); err != nil {
			return nil, err
		}
		targets = append(targets, n)
	}
	return targets, nil
}

// CanPlace проверяет, удастся ли поставить тайл, ничего не меняя
func (m *Map) CanPlace(id tile.ID, origin vec.Vec2) bool {
	desc, ok := m.registry.Get(id)
	if !ok {
		return false
	}
	_, err := m.placementTargets(desc, LayerForKind(desc.Kind), origin)
	return err == nil
}

// SetTile ставит тайл id с опорной клеткой origin.
//
// Размещение атомарно: если хоть одна клетка основания лежит вне карты или
// не проходит проверку слоя, карта не меняется и возвращается
// ErrPlacementRejected. Для неизвестного тайла ErrMissingDescriptor.
func (m *Map) SetTile(id tile.ID, origin vec.Vec2) error {
	desc, ok := m.registry.Get(id)
	if !ok {
		m.stats.PlacementsRejected++
		return fmt.Errorf("%w: %q", ErrMissingDescriptor, id)
	}

	layer := LayerForKind(desc.Kind)
	targets, err := m.placementTargets(desc, layer, origin)
	if err != nil {
		m.stats.PlacementsRejected++
		m.log.Debug("Размещение %s в %v отклонено: %v", id, origin, err)
		return err
	}

	if layer == LayerBuildings {
		m.clearBuildingSite(desc, targets)
	}

	deco, decoDesc := m.chooseDecoration(desc)

	for _, n := range targets {
		if layer == LayerWater && n.hasFlora() {
			m.demolishLayers(n, LayerBuildings)
		}

		n.setLayer(layer, NodeLayerState{
			TileID:  id,
			Tile:    desc,
			Visible: n.pos.Vec2 == origin,
			Origin:  origin,
		})

		if decoDesc != nil && layer != LayerGroundDecoration {
			n.setLayer(LayerGroundDecoration, NodeLayerState{
				TileID:  deco,
				Tile:    decoDesc,
				Visible: true,
				Origin:  n.pos.Vec2,
			})
		}
	}

	m.refreshArea(targets)
	m.stats.Placements++
	m.notifyPlaced(id, layer, targets)

	m.log.Debug("Тайл %s поставлен в %v на слой %s (%d клеток)", id, origin, layer, len(targets))
	return nil
}

// clearBuildingSite сносит прежние постройки под новым основанием.
// Постройка 1x1 на свободную или одноклеточную клетку просто заменяет её.
func (m *Map) clearBuildingSite(desc *tile.Descriptor, targets []*MapNode) {
	occupied := desc.IsMultiCell()
	for _, n := range targets {
		if n.layers[LayerBuildings].multiCell() {
			occupied = true
			break
		}
	}
	if !occupied {
		return
	}

	positions := make([]vec.Vec2, len(targets))
	for i, n := range targets {
		positions[i] = n.pos.Vec2
	}
	m.Demolish(positions, false, LayerBuildings)
}

// chooseDecoration выбирает вариант декора генератором карты
func (m *Map) chooseDecoration(desc *tile.Descriptor) (tile.ID, *tile.Descriptor) {
	if len(desc.GroundDecoration) == 0 {
		return "", nil
	}
	id := desc.GroundDecoration[m.rng.Intn(len(desc.GroundDecoration))]
	decoDesc, ok := m.registry.Get(id)
	if !ok {
		m.log.Warn("Декор %s тайла %s не найден в реестре", id, desc.ID)
		return "", nil
	}
	return id, decoDesc
}

// refreshArea пересчитывает маски стыковки узлов и их соседей
func (m *Map) refreshArea(nodes []*MapNode) {
	seen := make(map[*MapNode]bool, len(nodes)*4)
	for _, n := range nodes {
		for _, nb := range m.Neighbors(n.pos.Vec2, true) {
			if seen[nb.Node] {
				continue
			}
			seen[nb.Node] = true
			m.updateAutoTile(nb.Node, m.Neighbors(nb.Node.pos.Vec2, false))
			m.markRefresh(nb.Node)
		}
	}
}

func (m *Map) notifyPlaced(id tile.ID, layer Layer, targets []*MapNode) {
	switch layer {
	case LayerZone:
		for _, n := range targets {
			m.observers.emit(NodeEvent{Type: EventZonePlaced, Node: n, Layer: layer, TileID: id})
		}
	case LayerBuildings:
		// сообщается каждая клетка основания, где постройка легла на зону
		for _, n := range targets {
			if n.layers[LayerZone].Occupied() && n.hasBuilding() {
				m.observers.emit(NodeEvent{Type: EventBuildingPlaced, Node: n, Layer: layer, TileID: id})
			}
		}
	}
}
