package world

import (
	"fmt"

	"github.com/annel0/isomap/internal/world/tile"
)

// Layer определяет независимую плоскость тайлов внутри узла.
// Порядок констант совпадает с порядком отрисовки.
//
// LayerNone служебное значение "все слои" для сноса и "без фильтра"
// для пикера. Сам по себе данных не хранит.
type Layer uint8

const (
	LayerTerrain Layer = iota
	LayerWater
	LayerUnderground
	LayerGroundDecoration
	LayerZone
	LayerRoad
	LayerBuildings
	LayerBlueprint
	LayerNone

	MaxLayers = int(LayerNone) // количество слоёв с данными
)

var layerNames = [...]string{
	LayerTerrain:          "TERRAIN",
	LayerWater:            "WATER",
	LayerUnderground:      "UNDERGROUND",
	LayerGroundDecoration: "GROUND_DECORATION",
	LayerZone:             "ZONE",
	LayerRoad:             "ROAD",
	LayerBuildings:        "BUILDINGS",
	LayerBlueprint:        "BLUEPRINT",
	LayerNone:             "NONE",
}

// String возвращает имя слоя
func (l Layer) String() string {
	if int(l) < len(layerNames) {
		return layerNames[l]
	}
	return "UNKNOWN"
}

// ParseLayer разбирает имя слоя; регистр имеет значение
func ParseLayer(name string) (Layer, bool) {
	for i, n := range layerNames {
		if n == name {
			return Layer(i), true
		}
	}
	return LayerNone, false
}

// MarshalText сохраняет слой по имени
func (l Layer) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText разбирает имя слоя
func (l *Layer) UnmarshalText(text []byte) error {
	parsed, ok := ParseLayer(string(text))
	if !ok {
		return fmt.Errorf("неизвестный слой %q", text)
	}
	*l = parsed
	return nil
}

// DrawOrder слои в порядке отрисовки (снизу вверх)
var DrawOrder = [MaxLayers]Layer{
	LayerTerrain,
	LayerWater,
	LayerUnderground,
	LayerGroundDecoration,
	LayerZone,
	LayerRoad,
	LayerBuildings,
	LayerBlueprint,
}

// pickPriority слои, которые проверяет пикер, если слой не задан явно
var pickPriority = []Layer{LayerTerrain, LayerWater, LayerUnderground, LayerBlueprint}

// demolishable слои, очищаемые сносом с LayerNone. Грунт не сносится.
var demolishable = []Layer{
	LayerWater,
	LayerUnderground,
	LayerGroundDecoration,
	LayerZone,
	LayerRoad,
	LayerBuildings,
	LayerBlueprint,
}

// LayerForKind возвращает слой, на который ставится тайл данного вида
func LayerForKind(kind tile.Kind) Layer {
	switch kind {
	case tile.KindTerrain:
		return LayerTerrain
	case tile.KindWater:
		return LayerWater
	case tile.KindRoad:
		return LayerRoad
	case tile.KindZone:
		return LayerZone
	case tile.KindUnderground:
		return LayerUnderground
	case tile.KindGroundDecoration:
		return LayerGroundDecoration
	case tile.KindBlueprint:
		return LayerBlueprint
	default:
		return LayerBuildings
	}
}

// layerSet набор активных (включённых для отображения) слоёв
type layerSet uint16

func (s layerSet) has(l Layer) bool {
	return s&(1<<l) != 0
}

func (s *layerSet) set(l Layer, on bool) {
	if on {
		*s |= 1 << l
	} else {
		*s &^= 1 << l
	}
}

// defaultActiveLayers всё, кроме подземного слоя и чертежей
func defaultActiveLayers() layerSet {
	var s layerSet
	for _, l := range DrawOrder {
		if l != LayerUnderground && l != LayerBlueprint {
			s.set(l, true)
		}
	}
	return s
}
