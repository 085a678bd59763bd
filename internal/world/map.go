package world

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/annel0/isomap/internal/logging"
	"github.com/annel0/isomap/internal/vec"
	"github.com/annel0/isomap/internal/world/iso"
	"github.com/annel0/isomap/internal/world/tile"
	"github.com/google/uuid"
)

// DefaultMaxHeight максимальная высота узла по умолчанию
const DefaultMaxHeight = 32

// Options задаёт параметры создания карты
type Options struct {
	Columns    int
	Rows       int
	MaxHeight  int            // 0: DefaultMaxHeight
	Seed       int64          // Сид генератора вариантов декора
	Registry   *tile.Registry // nil: tile.DefaultSet()
	Projection iso.Projection // нулевое значение: iso.DefaultProjection()
}

// Stats счётчики операций карты. Экспортируются в Prometheus.
type Stats struct {
	HeightChanges      uint64
	PropagationPasses  uint64
	NodesVisited       uint64
	NodesElevated      uint64
	Placements         uint64
	PlacementsRejected uint64
	Demolitions        uint64
	VisibleNodes       int
}

// Map владеет всеми узлами карты.
//
// Карта однопоточная и нереентерабельная: каждая операция изменения
// выполняется до конца, прежде чем может начаться следующая. Доступ
// синхронизирует владелец карты.
type Map struct {
	id        uuid.UUID
	columns   int
	rows      int
	maxHeight int
	seed      int64

	nodes     []MapNode
	drawOrder []*MapNode // сзади наперёд
	visible   []*MapNode // переиспользуется между проходами отсечения
	refresh   []*MapNode // узлы, ждущие обновления текстуры

	registry   *tile.Registry
	projection iso.Projection
	rng        *rand.Rand
	active     layerSet
	observers  observers
	stats      Stats
	log        *logging.Logger
}

// NewMap создаёт карту columns x rows с пустыми слоями и нулевой высотой
func NewMap(opts Options) (*Map, error) {
	if opts.Columns <= 0 || opts.Rows <= 0 {
		return nil, fmt.Errorf("некорректный размер карты %dx%d", opts.Columns, opts.Rows)
	}
	if opts.MaxHeight <= 0 {
		opts.MaxHeight = DefaultMaxHeight
	}
	if opts.Registry == nil {
		opts.Registry = tile.DefaultSet()
	}
	if opts.Projection.TileWidth == 0 || opts.Projection.TileHeight == 0 {
		opts.Projection = iso.DefaultProjection()
	}

	m := &Map{
		id:         uuid.New(),
		columns:    opts.Columns,
		rows:       opts.Rows,
		maxHeight:  opts.MaxHeight,
		seed:       opts.Seed,
		nodes:      make([]MapNode, opts.Columns*opts.Rows),
		registry:   opts.Registry,
		projection: opts.Projection,
		rng:        rand.New(rand.NewSource(opts.Seed)),
		active:     defaultActiveLayers(),
		log:        logging.GetWorldLogger(),
	}
	m.visible = make([]*MapNode, 0, len(m.nodes))
	m.refresh = make([]*MapNode, 0, len(m.nodes))

	for x := 0; x < m.columns; x++ {
		for y := 0; y < m.rows; y++ {
			n := &m.nodes[m.index(x, y)]
			n.pos = GridPosition{Vec2: vec.Vec2{X: x, Y: y}}
			for l := range n.layers {
				n.layers[l].Origin = n.pos.Vec2
			}
		}
	}
	m.rebuildDrawOrder()

	m.log.Debug("Создана карта %s: %dx%d, максимальная высота %d", m.id, m.columns, m.rows, m.maxHeight)
	return m, nil
}

// ID возвращает идентификатор сессии карты
func (m *Map) ID() uuid.UUID { return m.id }

// Columns возвращает число столбцов
func (m *Map) Columns() int { return m.columns }

// Rows возвращает число строк
func (m *Map) Rows() int { return m.rows }

// MaxHeight возвращает максимальную высоту узла
func (m *Map) MaxHeight() int { return m.maxHeight }

// Registry возвращает реестр тайлов карты
func (m *Map) Registry() *tile.Registry { return m.registry }

// Projection возвращает проекцию карты
func (m *Map) Projection() iso.Projection { return m.projection }

// SetProjection меняет проекцию (камера, масштаб). Видимый набор нужно
// пересчитать вызовом UpdateVisible.
func (m *Map) SetProjection(p iso.Projection) { m.projection = p }

// Stats возвращает копию счётчиков
func (m *Map) Stats() Stats { return m.stats }

// index узлы хранятся по столбцам
func (m *Map) index(x, y int) int {
	return x*m.rows + y
}

// InBounds проверяет, что позиция лежит на карте
func (m *Map) InBounds(pos vec.Vec2) bool {
	return pos.X >= 0 && pos.X < m.columns && pos.Y >= 0 && pos.Y < m.rows
}

// NodeAt возвращает узел по позиции
func (m *Map) NodeAt(pos vec.Vec2) (*MapNode, error) {
	if !m.InBounds(pos) {
		return nil, fmt.Errorf("%w: %v", ErrOutOfBounds, pos)
	}
	return &m.nodes[m.index(pos.X, pos.Y)], nil
}

// node NodeAt без ошибки для внутренних вызовов
func (m *Map) node(pos vec.Vec2) *MapNode {
	if !m.InBounds(pos) {
		return nil
	}
	return &m.nodes[m.index(pos.X, pos.Y)]
}

// NeighborNode сосед узла и направление на него
type NeighborNode struct {
	Node *MapNode
	Dir  Direction
}

// Neighbors возвращает соседей позиции, лежащих на карте, в фиксированном
// порядке направлений. Центр включается по запросу.
func (m *Map) Neighbors(pos vec.Vec2, includeCenter bool) []NeighborNode {
	result := make([]NeighborNode, 0, 9)
	for _, np := range NeighborPositions(pos, includeCenter) {
		if n := m.node(np.Pos); n != nil {
			result = append(result, NeighborNode{Node: n, Dir: np.Dir})
		}
	}
	return result
}

// DrawingOrder возвращает все узлы сзади наперёд
func (m *Map) DrawingOrder() []*MapNode {
	return m.drawOrder
}

// rebuildDrawOrder: столбцы по возрастанию, строки по убыванию. Последним
// рисуется узел с наибольшим столбцом и наименьшей строкой.
func (m *Map) rebuildDrawOrder() {
	if cap(m.drawOrder) < len(m.nodes) {
		m.drawOrder = make([]*MapNode, 0, len(m.nodes))
	}
	m.drawOrder = m.drawOrder[:0]
	for x := 0; x < m.columns; x++ {
		for y := m.rows - 1; y >= 0; y-- {
			n := &m.nodes[m.index(x, y)]
			n.pos.Z = len(m.drawOrder)
			m.drawOrder = append(m.drawOrder, n)
		}
	}
}

// Subscribe регистрирует наблюдателя и возвращает функцию отписки
func (m *Map) Subscribe(fn Observer) func() {
	id := m.observers.add(fn)
	return func() { m.observers.remove(id) }
}

// OnBuildingPlaced подписывает обработчик только на установку построек
func (m *Map) OnBuildingPlaced(fn func(n *MapNode)) func() {
	return m.Subscribe(func(ev NodeEvent) {
		if ev.Type == EventBuildingPlaced {
			fn(ev.Node)
		}
	})
}

// OnZonePlaced подписывает обработчик только на размещение зон
func (m *Map) OnZonePlaced(fn func(n *MapNode)) func() {
	return m.Subscribe(func(ev NodeEvent) {
		if ev.Type == EventZonePlaced {
			fn(ev.Node)
		}
	})
}

// OnNodeDemolished подписывает обработчик только на снос
func (m *Map) OnNodeDemolished(fn func(n *MapNode)) func() {
	return m.Subscribe(func(ev NodeEvent) {
		if ev.Type == EventNodeDemolished {
			fn(ev.Node)
		}
	})
}

// SetLayerActive включает или выключает отображение слоя.
// Все узлы помечаются на обновление текстуры.
func (m *Map) SetLayerActive(l Layer, on bool) {
	if int(l) >= MaxLayers || m.active.has(l) == on {
		return
	}
	m.active.set(l, on)
	for _, n := range m.drawOrder {
		m.markRefresh(n)
	}
}

// IsLayerActive проверяет, включён ли слой
func (m *Map) IsLayerActive(l Layer) bool {
	return int(l) < MaxLayers && m.active.has(l)
}

// markRefresh ставит узел в очередь на обновление текстуры
func (m *Map) markRefresh(n *MapNode) {
	if n.queued {
		return
	}
	n.queued = true
	m.refresh = append(m.refresh, n)
}

// TakeRefresh возвращает узлы, которым нужно обновить текстуру, в порядке
// отрисовки и очищает очередь.
func (m *Map) TakeRefresh() []*MapNode {
	if len(m.refresh) == 0 {
		return nil
	}
	result := make([]*MapNode, len(m.refresh))
	copy(result, m.refresh)
	sort.Slice(result, func(i, j int) bool { return result[i].pos.Z < result[j].pos.Z })
	for _, n := range result {
		n.queued = false
	}
	m.refresh = m.refresh[:0]
	return result
}

// PendingRefresh возвращает размер очереди обновления текстур
func (m *Map) PendingRefresh() int {
	return len(m.refresh)
}
