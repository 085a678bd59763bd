package eventbus

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/annel0/isomap/internal/logging"
	"github.com/annel0/isomap/internal/world"
	"github.com/annel0/isomap/internal/world/tile"
	"github.com/google/uuid"
)

const (
	// MapEventSource источник событий карты в Envelope.Source
	MapEventSource = "isomap"
	// MapEventVersion версия схемы MapEvent
	MapEventVersion = 1
)

// MapEvent полезная нагрузка событий карты
type MapEvent struct {
	MapID  string      `json:"map_id"`
	X      int         `json:"x"`
	Y      int         `json:"y"`
	Height int         `json:"height"`
	Layer  world.Layer `json:"layer"`
	TileID tile.ID     `json:"tile,omitempty"`
}

// MapForwarder публикует уведомления карты в шину событий.
// Уведомления приходят синхронно внутри операции карты, поэтому
// полезная нагрузка снимается сразу, до возврата из наблюдателя.
type MapForwarder struct {
	bus         EventBus
	ctx         context.Context
	mapID       string
	unsubscribe func()
	failed      uint64
	log         *logging.Logger
}

// NewMapForwarder подписывается на уведомления карты m
func NewMapForwarder(ctx context.Context, bus EventBus, m *world.Map) *MapForwarder {
	f := &MapForwarder{
		bus:   bus,
		ctx:   ctx,
		mapID: m.ID().String(),
		log:   logging.GetEventLogger(),
	}
	f.unsubscribe = m.Subscribe(f.forward)
	return f
}

func (f *MapForwarder) forward(ev world.NodeEvent) {
	pos := ev.Node.Position()
	payload, err := json.Marshal(MapEvent{
		MapID:  f.mapID,
		X:      pos.X,
		Y:      pos.Y,
		Height: pos.Height,
		Layer:  ev.Layer,
		TileID: ev.TileID,
	})
	if err != nil {
		atomic.AddUint64(&f.failed, 1)
		f.log.Error("Не удалось сериализовать событие %s: %v", ev.Type, err)
		return
	}

	env := &Envelope{
		ID:            uuid.NewString(),
		Timestamp:     time.Now().UTC(),
		Source:        MapEventSource,
		EventType:     ev.Type.String(),
		Version:       MapEventVersion,
		CorrelationID: f.mapID,
		Priority:      highPriority,
		Payload:       payload,
	}
	if err := f.bus.Publish(f.ctx, env); err != nil {
		atomic.AddUint64(&f.failed, 1)
		f.log.Warn("Событие %s для %v не опубликовано: %v", env.EventType, pos.Vec2, err)
	}
}

// Failed возвращает число событий, которые не удалось опубликовать
func (f *MapForwarder) Failed() uint64 {
	return atomic.LoadUint64(&f.failed)
}

// Close отписывается от карты
func (f *MapForwarder) Close() {
	f.unsubscribe()
}

// DecodeMapEvent разбирает полезную нагрузку события карты
func DecodeMapEvent(ev *Envelope) (MapEvent, error) {
	var me MapEvent
	err := json.Unmarshal(ev.Payload, &me)
	return me, err
}
