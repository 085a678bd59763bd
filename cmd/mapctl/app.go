package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/annel0/isomap/internal/config"
	"github.com/annel0/isomap/internal/eventbus"
	"github.com/annel0/isomap/internal/logging"
	"github.com/annel0/isomap/internal/metrics"
	"github.com/annel0/isomap/internal/storage_adapter"
	si "github.com/annel0/isomap/internal/storage_interface"
	"github.com/annel0/isomap/internal/world"
	"github.com/annel0/isomap/internal/world/iso"
	"github.com/annel0/isomap/internal/world/tile"
)

// session держит зависимости одного запуска mapctl
type session struct {
	cfg        *config.Config
	out        io.Writer
	store      si.MapStore
	bus        eventbus.EventBus
	listener   eventbus.Subscription
	exporter   *metrics.Exporter
	busMetrics *eventbus.MetricsExporter
	registry   *tile.Registry
	log        *logging.Logger
}

// newSession создаёт хранилище, шину событий и метрики по конфигурации
func newSession(cfg *config.Config, out io.Writer) (*session, error) {
	s := &session{
		cfg:      cfg,
		out:      out,
		exporter: metrics.NewExporter(),
		registry: tile.DefaultSet(),
		log:      logging.GetComponentLogger("mapctl"),
	}

	if cfg.Map.TilesPath != "" {
		reg := tile.NewRegistry()
		if err := reg.LoadDir(cfg.Map.TilesPath); err != nil {
			return nil, err
		}
		s.registry = reg
	}

	store, err := storage_adapter.NewMapStore(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("хранилище %s: %w", cfg.Storage.Backend, err)
	}
	s.store = store

	if cfg.EventBus.URL != "" {
		retention := time.Duration(cfg.EventBus.Retention) * time.Hour
		bus, err := eventbus.NewJetStreamBus(cfg.EventBus.URL, cfg.EventBus.Stream, retention)
		if err != nil {
			store.Close()
			return nil, err
		}
		s.bus = bus
	} else {
		s.bus = eventbus.NewMemoryBus(1024)
	}

	if s.listener, err = eventbus.StartLoggingListener(s.bus); err != nil {
		s.Close()
		return nil, err
	}
	if s.busMetrics, err = eventbus.NewMetricsExporter(s.bus, s.exporter.Registry()); err != nil {
		s.Close()
		return nil, err
	}

	if cfg.Metrics.Enabled {
		s.exporter.StartHTTP(cfg.Metrics.GetMetricsPort())
	}
	return s, nil
}

// Close закрывает шину и хранилище. Ошибки только логируются.
func (s *session) Close() {
	if s.listener != nil {
		s.listener.Unsubscribe()
	}
	if s.bus != nil {
		if err := s.bus.Close(); err != nil {
			s.log.Warn("Ошибка закрытия шины событий: %v", err)
		}
	}
	if s.busMetrics != nil {
		s.busMetrics.Update()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.log.Warn("Ошибка закрытия хранилища: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.exporter.Shutdown(ctx); err != nil {
		s.log.Warn("Ошибка остановки сервера метрик: %v", err)
	}
}

func (s *session) mapOptions() world.Options {
	p := s.cfg.Projection
	return world.Options{
		Columns:   s.cfg.Map.Columns,
		Rows:      s.cfg.Map.Rows,
		MaxHeight: s.cfg.Map.MaxHeight,
		Seed:      s.cfg.Map.Seed,
		Registry:  s.registry,
		Projection: iso.Projection{
			TileWidth:    p.TileWidth,
			TileHeight:   p.TileHeight,
			HeightOffset: p.HeightOffset,
			Zoom:         p.Zoom,
		},
	}
}

// openMap загружает карту из слота и подключает к ней шину событий
func (s *session) openMap(ctx context.Context, slot string) (*world.Map, *eventbus.MapForwarder, error) {
	snap, err := s.store.Load(ctx, slot)
	if err != nil {
		return nil, nil, fmt.Errorf("загрузка %q: %w", slot, err)
	}
	m, err := world.FromSnapshot(snap, s.mapOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("восстановление %q: %w", slot, err)
	}
	return m, eventbus.NewMapForwarder(ctx, s.bus, m), nil
}

func (s *session) saveMap(ctx context.Context, slot string, m *world.Map) error {
	if err := s.store.Save(ctx, slot, m.Snapshot()); err != nil {
		return fmt.Errorf("сохранение %q: %w", slot, err)
	}
	s.log.Debug("Карта %s сохранена в слот %s", m.ID(), slot)
	return nil
}

// mutate загружает карту, выполняет op и сохраняет результат
func (s *session) mutate(ctx context.Context, slot, op string, fn func(m *world.Map) error) error {
	m, fwd, err := s.openMap(ctx, slot)
	if err != nil {
		return err
	}
	defer fwd.Close()

	if err := s.exporter.Track(op, m, func() error { return fn(m) }); err != nil {
		return err
	}
	if n := fwd.Failed(); n > 0 {
		s.log.Warn("%d событий карты не опубликовано", n)
	}
	return s.saveMap(ctx, slot, m)
}
