package world

import "github.com/annel0/isomap/internal/world/tile"

// ElevationMask возвращает направления, в которых сосед строго выше узла.
// neighbors не должен содержать центр.
func ElevationMask(n *MapNode, neighbors []NeighborNode) DirectionMask {
	var mask DirectionMask
	for _, nb := range neighbors {
		if nb.Dir != DirCenter && nb.Node.pos.Height > n.pos.Height {
			mask = mask.With(nb.Dir)
		}
	}
	return mask
}

// AutoTileMasks считает маски стыковки для каждого слоя узла.
//
// Для грунта бит ставится, если у соседа на слое воды лежит вода: по маске
// выбирается вариант берега. Для тайлов с автотайлингом бит ставится, если
// у соседа на том же слое тот же тайл, либо оба тайла дороги. Дороги
// разных типов соединяются между собой.
func AutoTileMasks(n *MapNode, neighbors []NeighborNode) [MaxLayers]DirectionMask {
	var masks [MaxLayers]DirectionMask

	for _, l := range DrawOrder {
		state := n.layers[l]
		if !state.Occupied() || state.Tile == nil {
			continue
		}

		var mask DirectionMask
		if state.Tile.Kind == tile.KindTerrain {
			for _, nb := range neighbors {
				water := nb.Node.layers[LayerWater]
				if nb.Dir != DirCenter && water.Tile != nil && water.Tile.Kind == tile.KindWater {
					mask = mask.With(nb.Dir)
				}
			}
		}

		if state.Tile.AutoTile {
			isRoad := state.Tile.Kind == tile.KindRoad
			for _, nb := range neighbors {
				if nb.Dir == DirCenter {
					continue
				}
				other := nb.Node.layers[l]
				if !other.Occupied() {
					continue
				}
				if other.TileID == state.TileID || (isRoad && other.Tile != nil && other.Tile.Kind == tile.KindRoad) {
					mask = mask.With(nb.Dir)
				}
			}
		}

		masks[l] = mask
	}

	return masks
}

// updateAutoTile пересчитывает и сохраняет маски стыковки узла
func (m *Map) updateAutoTile(n *MapNode, neighbors []NeighborNode) {
	masks := AutoTileMasks(n, neighbors)
	for l := range n.layers {
		n.layers[l].AutoTileMask = masks[l]
	}
}
