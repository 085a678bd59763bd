package world

import (
	"fmt"

	"github.com/annel0/isomap/internal/vec"
	"github.com/annel0/isomap/internal/world/tile"
)

const (
	// SnapshotFormat метка формата снимка
	SnapshotFormat = "isomap"
	// SnapshotVersion единственная поддерживаемая версия снимка
	SnapshotVersion = 1
)

// Snapshot сериализуемое состояние карты. Маски не сохраняются и
// пересчитываются при загрузке.
type Snapshot struct {
	Format    string       `json:"format"`
	Version   int          `json:"version"`
	Columns   int          `json:"columns"`
	Rows      int          `json:"rows"`
	MaxHeight int          `json:"max_height"`
	Seed      int64        `json:"seed"`
	Nodes     []NodeRecord `json:"nodes"`
}

// NodeRecord позиция, высота и занятые слои узла
type NodeRecord struct {
	X      int           `json:"x"`
	Y      int           `json:"y"`
	Height int           `json:"h"`
	Layers []LayerRecord `json:"layers,omitempty"`
}

// LayerRecord тайл слоя и опорная клетка его основания
type LayerRecord struct {
	Layer   Layer   `json:"layer"`
	TileID  tile.ID `json:"tile"`
	OriginX int     `json:"ox"`
	OriginY int     `json:"oy"`
}

// Snapshot снимает состояние карты
func (m *Map) Snapshot() *Snapshot {
	s := &Snapshot{
		Format:    SnapshotFormat,
		Version:   SnapshotVersion,
		Columns:   m.columns,
		Rows:      m.rows,
		MaxHeight: m.maxHeight,
		Seed:      m.seed,
		Nodes:     make([]NodeRecord, 0, len(m.nodes)),
	}

	for i := range m.nodes {
		n := &m.nodes[i]
		rec := NodeRecord{X: n.pos.X, Y: n.pos.Y, Height: n.pos.Height}
		for _, l := range DrawOrder {
			st := n.layers[l]
			if !st.Occupied() {
				continue
			}
			rec.Layers = append(rec.Layers, LayerRecord{
				Layer:   l,
				TileID:  st.TileID,
				OriginX: st.Origin.X,
				OriginY: st.Origin.Y,
			})
		}
		s.Nodes = append(s.Nodes, rec)
	}
	return s
}

// FromSnapshot восстанавливает карту из снимка. Размеры, максимальная
// высота и сид берутся из снимка, реестр и проекция из opts.
// При любой ошибке карта не возвращается.
func FromSnapshot(s *Snapshot, opts Options) (*Map, error) {
	if s == nil || s.Format != SnapshotFormat {
		return nil, fmt.Errorf("%w: неизвестный формат", ErrCorrupt)
	}
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: %d, ожидается %d", ErrVersionMismatch, s.Version, SnapshotVersion)
	}
	if s.Columns <= 0 || s.Rows <= 0 {
		return nil, fmt.Errorf("%w: размер %dx%d", ErrCorrupt, s.Columns, s.Rows)
	}

	opts.Columns = s.Columns
	opts.Rows = s.Rows
	opts.MaxHeight = s.MaxHeight
	opts.Seed = s.Seed

	m, err := NewMap(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	for _, rec := range s.Nodes {
		n := m.node(vec.Vec2{X: rec.X, Y: rec.Y})
		if n == nil {
			return nil, fmt.Errorf("%w: узел (%d,%d) вне карты", ErrCorrupt, rec.X, rec.Y)
		}
		n.pos.Height = min(max(rec.Height, 0), m.maxHeight)

		for _, lr := range rec.Layers {
			if int(lr.Layer) >= MaxLayers {
				return nil, fmt.Errorf("%w: слой %d", ErrCorrupt, lr.Layer)
			}
			desc, ok := m.registry.Get(lr.TileID)
			if !ok {
				return nil, fmt.Errorf("%w: %w: %q в узле (%d,%d)", ErrCorrupt, ErrMissingDescriptor, lr.TileID, rec.X, rec.Y)
			}
			origin := vec.Vec2{X: lr.OriginX, Y: lr.OriginY}
			n.setLayer(lr.Layer, NodeLayerState{
				TileID:  lr.TileID,
				Tile:    desc,
				Visible: origin == n.pos.Vec2,
				Origin:  origin,
			})
		}
	}

	m.smoothHeights()
	// маски высот восстанавливаются заранее, чтобы общий пересчёт не принял
	// сохранённые склоны за новые и не снёс с них декор
	for i := range m.nodes {
		n := &m.nodes[i]
		n.elevation = ElevationMask(n, m.Neighbors(n.pos.Vec2, false))
	}
	m.RefreshAll()
	m.stats = Stats{}

	m.log.Info("Карта %dx%d восстановлена из снимка", m.columns, m.rows)
	return m, nil
}
