package world

import (
	"github.com/annel0/isomap/internal/vec"
	"github.com/annel0/isomap/internal/world/tile"
)

// GridPosition координаты узла, его высота и глубина отрисовки
type GridPosition struct {
	vec.Vec2
	Height int // высота в [0, maxHeight]
	Z      int // индекс узла в порядке отрисовки
}

// NodeLayerState состояние одного слоя узла
type NodeLayerState struct {
	TileID       tile.ID          // Пусто, если слой свободен
	Tile         *tile.Descriptor // Описание тайла из реестра
	Visible      bool             // false для неосновных клеток многоклеточного объекта
	AutoTileMask DirectionMask    // Соседи, с которыми тайл стыкуется
	Origin       vec.Vec2         // Опорная клетка основания
}

// Occupied возвращает true, если на слое есть тайл
func (s NodeLayerState) Occupied() bool {
	return s.TileID != ""
}

// multiCell возвращает true, если тайл слоя занимает больше одной клетки
func (s NodeLayerState) multiCell() bool {
	return s.Tile != nil && s.Tile.IsMultiCell()
}

// MapNode одна клетка карты со всеми слоями.
// Изменяется только через методы Map.
type MapNode struct {
	pos       GridPosition
	layers    [MaxLayers]NodeLayerState
	elevation DirectionMask
	queued    bool // уже стоит в очереди на обновление текстуры
}

// Position возвращает координаты, высоту и глубину узла
func (n *MapNode) Position() GridPosition {
	return n.pos
}

// Pos возвращает столбец и строку узла
func (n *MapNode) Pos() vec.Vec2 {
	return n.pos.Vec2
}

// Height возвращает текущую высоту узла
func (n *MapNode) Height() int {
	return n.pos.Height
}

// Layer возвращает копию состояния слоя
func (n *MapNode) Layer(l Layer) NodeLayerState {
	if int(l) >= MaxLayers {
		return NodeLayerState{}
	}
	return n.layers[l]
}

// TileID возвращает идентификатор тайла на слое
func (n *MapNode) TileID(l Layer) tile.ID {
	return n.Layer(l).TileID
}

// IsOccupied проверяет, занят ли слой
func (n *MapNode) IsOccupied(l Layer) bool {
	return n.Layer(l).Occupied()
}

// ElevationMask возвращает направления, в которых соседи выше узла
func (n *MapNode) ElevationMask() DirectionMask {
	return n.elevation
}

// IsSlope возвращает true, если узел рисуется склоном или обрывом
func (n *MapNode) IsSlope() bool {
	return n.elevation != 0
}

// AutoTileMask возвращает маску стыковки слоя
func (n *MapNode) AutoTileMask(l Layer) DirectionMask {
	return n.Layer(l).AutoTileMask
}

// hasBuilding проверяет наличие постройки, не являющейся флорой
func (n *MapNode) hasBuilding() bool {
	s := n.layers[LayerBuildings]
	return s.Occupied() && (s.Tile == nil || !s.Tile.IsFlora())
}

// hasFlora проверяет, что на слое построек стоит растительность
func (n *MapNode) hasFlora() bool {
	s := n.layers[LayerBuildings]
	return s.Occupied() && s.Tile != nil && s.Tile.IsFlora()
}

func (n *MapNode) setLayer(l Layer, state NodeLayerState) {
	n.layers[l] = state
}

// clearLayer очищает слой и сообщает, было ли что очищать
func (n *MapNode) clearLayer(l Layer) bool {
	if !n.layers[l].Occupied() {
		return false
	}
	n.layers[l] = NodeLayerState{}
	return true
}
