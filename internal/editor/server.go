// Package editor открывает карту для правки по websocket: клиенты
// присылают команды, а события карты рассылаются всем подключённым.
package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"net/http"
	"sync"

	"github.com/annel0/isomap/internal/eventbus"
	"github.com/annel0/isomap/internal/logging"
	"github.com/annel0/isomap/internal/metrics"
	"github.com/annel0/isomap/internal/vec"
	"github.com/annel0/isomap/internal/world"
	"github.com/annel0/isomap/internal/world/iso"
	"github.com/gorilla/websocket"
)

// Options зависимости сервера редактора
type Options struct {
	Map      *world.Map
	Bus      eventbus.EventBus
	Exporter *metrics.Exporter // nil: без метрик
	// Save сохраняет карту по команде save; nil: команда недоступна
	Save func(ctx context.Context, m *world.Map) error
	// Sprites для pick; nil: ромбы размером с тайл проекции
	Sprites world.SpriteSource
}

// Server выполняет команды клиентов над одной картой. Карта не
// потокобезопасна, поэтому все команды идут под mu.
type Server struct {
	mu       sync.Mutex
	m        *world.Map
	save     func(ctx context.Context, m *world.Map) error
	sprites  world.SpriteSource
	exporter *metrics.Exporter

	sub      eventbus.Subscription
	hub      *hub
	upgrader websocket.Upgrader
	log      *logging.Logger
}

// NewServer подписывается на события карты в шине и готовит сервер
func NewServer(ctx context.Context, opts Options) (*Server, error) {
	if opts.Map == nil || opts.Bus == nil {
		return nil, fmt.Errorf("редактору нужны карта и шина событий")
	}

	s := &Server{
		m:        opts.Map,
		save:     opts.Save,
		sprites:  opts.Sprites,
		exporter: opts.Exporter,
		hub:      newHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: logging.GetComponentLogger("editor"),
	}
	if s.sprites == nil {
		p := opts.Map.Projection()
		atlas := iso.NewMaskAtlas()
		mask := iso.DiamondMask(p.TileWidth, p.TileHeight)
		for _, id := range opts.Map.Registry().IDs() {
			atlas.Add(id, mask)
		}
		s.sprites = atlas
	}

	filter := eventbus.Filter{Sources: []string{eventbus.MapEventSource}}
	sub, err := opts.Bus.Subscribe(ctx, filter, s.broadcastEvent)
	if err != nil {
		return nil, fmt.Errorf("подписка на события карты: %w", err)
	}
	s.sub = sub
	return s, nil
}

func (s *Server) broadcastEvent(_ context.Context, ev *eventbus.Envelope) {
	payload, err := json.Marshal(ev)
	if err != nil {
		s.log.Warn("Событие %s не сериализовано: %v", ev.EventType, err)
		return
	}
	if err := s.hub.broadcast(Message{Type: MsgEvent, Payload: payload}); err != nil {
		s.log.Warn("Рассылка события %s: %v", ev.EventType, err)
	}
}

// Clients возвращает число подключённых клиентов
func (s *Server) Clients() int {
	return s.hub.count()
}

// ServeHTTP переводит запрос в websocket и обслуживает клиента до отключения
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Не удалось открыть websocket: %v", err)
		return
	}

	c := newConnection(ws)
	s.hub.add(c)
	s.log.Info("Клиент %s подключён (%s)", c.id, r.RemoteAddr)
	go c.writePump()

	err = c.readPump(func(data []byte) {
		var msg Message
		reply := errorReply("", CodeBadRequest, "сообщение не разбирается")
		if json.Unmarshal(data, &msg) == nil {
			reply = s.Handle(r.Context(), msg)
		}
		if err := s.hub.send(c.id, reply); err != nil {
			s.log.Error("Ответ клиенту %s не сериализован: %v", c.id, err)
		}
	})
	if err != nil {
		s.log.Warn("Клиент %s отключился с ошибкой: %v", c.id, err)
	}

	s.hub.remove(c.id)
	s.log.Info("Клиент %s отключён", c.id)
}

// Handle выполняет одну команду и возвращает ответ
func (s *Server) Handle(ctx context.Context, msg Message) Message {
	var req EditRequest
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return errorReply(msg.ID, CodeBadRequest, err.Error())
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var result any
	err := s.track(string(msg.Type), func() (err error) {
		result, err = s.execute(ctx, msg.Type, req)
		return err
	})
	if err != nil {
		s.log.Debug("Команда %s отклонена: %v", msg.Type, err)
		return errorReply(msg.ID, errorCode(err), err.Error())
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return errorReply(msg.ID, CodeInternal, err.Error())
	}
	return Message{Type: MsgResult, ID: msg.ID, Payload: payload}
}

func (s *Server) track(op string, fn func() error) error {
	if s.exporter == nil {
		return fn()
	}
	return s.exporter.Track(op, s.m, fn)
}

var errUnknownCommand = errors.New("неизвестная команда")

func (s *Server) execute(ctx context.Context, typ MessageType, req EditRequest) (any, error) {
	pos := vec.Vec2{X: req.X, Y: req.Y}

	switch typ {
	case MsgInfo:
		return MapInfo{
			ID:        s.m.ID().String(),
			Columns:   s.m.Columns(),
			Rows:      s.m.Rows(),
			MaxHeight: s.m.MaxHeight(),
			Stats:     s.m.Stats(),
		}, nil

	case MsgNode:
		return s.node(pos)

	case MsgRaise, MsgLower:
		times := max(req.Times, 1)
		for i := 0; i < times; i++ {
			changed, err := s.m.ChangeHeight(pos, typ == MsgRaise)
			if err != nil {
				return nil, err
			}
			if !changed {
				break
			}
		}
		return s.node(pos)

	case MsgLevel:
		area := make([]vec.Vec2, 0, (2*req.Radius+1)*(2*req.Radius+1))
		for dx := -req.Radius; dx <= req.Radius; dx++ {
			for dy := -req.Radius; dy <= req.Radius; dy++ {
				area = append(area, pos.Add(vec.Vec2{X: dx, Y: dy}))
			}
		}
		if err := s.m.LevelHeight(pos, area); err != nil {
			return nil, err
		}
		return s.node(pos)

	case MsgPlace:
		if req.Tile == "" {
			return nil, fmt.Errorf("%w: не задан tile", errBadRequest)
		}
		if err := s.m.SetTile(req.Tile, pos); err != nil {
			return nil, err
		}
		return s.node(pos)

	case MsgDemolish:
		layer, err := parseLayer(req.Layer)
		if err != nil {
			return nil, err
		}
		w, h := max(req.Width, 1), max(req.Height, 1)
		positions := make([]vec.Vec2, 0, w*h)
		for dx := 0; dx < w; dx++ {
			for dy := 0; dy < h; dy++ {
				positions = append(positions, pos.Add(vec.Vec2{X: dx, Y: dy}))
			}
		}
		neighbors := req.Neighbors == nil || *req.Neighbors

		before := s.m.Stats().Demolitions
		s.m.Demolish(positions, neighbors, layer)
		return DemolishResult{Demolished: s.m.Stats().Demolitions - before}, nil

	case MsgPick:
		layer, err := parseLayer(req.Layer)
		if err != nil {
			return nil, err
		}
		found, ok := s.m.Pick(image.Pt(req.ScreenX, req.ScreenY), layer, s.sprites)
		if !ok {
			return PickResult{}, nil
		}
		info, err := s.node(found)
		if err != nil {
			return nil, err
		}
		return PickResult{Found: true, Node: info}, nil

	case MsgSave:
		if s.save == nil {
			return nil, fmt.Errorf("%w: сохранение не настроено", errBadRequest)
		}
		if err := s.save(ctx, s.m); err != nil {
			return nil, err
		}
		return struct{}{}, nil
	}
	return nil, fmt.Errorf("%w: %w %q", errBadRequest, errUnknownCommand, typ)
}

func (s *Server) node(pos vec.Vec2) (*NodeInfo, error) {
	n, err := s.m.NodeAt(pos)
	if err != nil {
		return nil, err
	}
	return nodeInfo(n), nil
}

// Close отписывается от шины и отключает клиентов
func (s *Server) Close() {
	s.sub.Unsubscribe()
	s.hub.closeAll()
}

var errBadRequest = errors.New("некорректный запрос")

func parseLayer(name string) (world.Layer, error) {
	if name == "" {
		return world.LayerNone, nil
	}
	l, ok := world.ParseLayer(name)
	if !ok {
		return world.LayerNone, fmt.Errorf("%w: неизвестный слой %q", errBadRequest, name)
	}
	return l, nil
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, errBadRequest):
		return CodeBadRequest
	case errors.Is(err, world.ErrOutOfBounds):
		return CodeOutOfBounds
	case errors.Is(err, world.ErrPlacementRejected):
		return CodeRejected
	case errors.Is(err, world.ErrMissingDescriptor):
		return CodeMissingTile
	default:
		return CodeInternal
	}
}

func errorReply(id, code, message string) Message {
	payload, _ := json.Marshal(ErrorPayload{Code: code, Message: message})
	return Message{Type: MsgError, ID: id, Payload: payload}
}
