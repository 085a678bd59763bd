package world

import (
	"github.com/annel0/isomap/internal/world/tile"
)

// EventType определяет тип уведомления о структурном изменении
type EventType uint8

const (
	EventBuildingPlaced EventType = iota // Постройка поставлена в зону
	EventZonePlaced                      // Клетка отведена под зону
	EventNodeDemolished                  // Со слоя (или слоёв) узла что-то снесено
)

func (t EventType) String() string {
	switch t {
	case EventBuildingPlaced:
		return "BuildingPlaced"
	case EventZonePlaced:
		return "ZonePlaced"
	case EventNodeDemolished:
		return "NodeDemolished"
	default:
		return "Unknown"
	}
}

// NodeEvent уведомление, отправляемое подписчикам во время вызова,
// который его породил.
type NodeEvent struct {
	Type   EventType
	Node   *MapNode
	Layer  Layer   // Слой размещения или сноса; LayerNone: все слои
	TileID tile.ID // Поставленный тайл; для сноса пусто
}

// Observer получает уведомления карты. Обработчик не должен изменять
// узел, о котором пришло уведомление.
type Observer func(ev NodeEvent)

type observerEntry struct {
	id int
	fn Observer
}

// observers подписчики в порядке регистрации
type observers struct {
	entries []observerEntry
	nextID  int
}

func (o *observers) add(fn Observer) int {
	id := o.nextID
	o.nextID++
	o.entries = append(o.entries, observerEntry{id: id, fn: fn})
	return id
}

func (o *observers) remove(id int) {
	for i, e := range o.entries {
		if e.id == id {
			o.entries = append(o.entries[:i], o.entries[i+1:]...)
			return
		}
	}
}

// emit вызывает подписчиков по снимку списка: обработчик может отписаться
func (o *observers) emit(ev NodeEvent) {
	entries := append([]observerEntry(nil), o.entries...)
	for _, e := range entries {
		e.fn(ev)
	}
}
