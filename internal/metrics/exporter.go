package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/annel0/isomap/internal/logging"
	"github.com/annel0/isomap/internal/world"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter переносит счётчики карты в Prometheus и отдаёт /metrics.
//
// Карта однопоточная, поэтому экспортер её не опрашивает: владелец карты
// сам передаёт Stats после операций через Observe.
//
// Метрики:
// * isomap_map_height_changes_total и другие счётчики world.Stats: counter
// * isomap_map_visible_nodes: gauge
// * isomap_map_operation_duration_seconds{op}: histogram
type Exporter struct {
	registry *prometheus.Registry
	prev     world.Stats
	server   *http.Server

	heightChanges      prometheus.Counter
	propagationPasses  prometheus.Counter
	nodesVisited       prometheus.Counter
	nodesElevated      prometheus.Counter
	placements         prometheus.Counter
	placementsRejected prometheus.Counter
	demolitions        prometheus.Counter
	visibleNodes       prometheus.Gauge
	opDuration         *prometheus.HistogramVec
}

func counter(name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "isomap",
		Subsystem: "map",
		Name:      name,
		Help:      help,
	})
}

// NewExporter создаёт экспортер с собственным реестром
func NewExporter() *Exporter {
	e := &Exporter{
		registry:           prometheus.NewRegistry(),
		heightChanges:      counter("height_changes_total", "Изменения высоты узлов на единицу."),
		propagationPasses:  counter("propagation_passes_total", "Проходы распространения высот."),
		nodesVisited:       counter("nodes_visited_total", "Узлы, обработанные распространением."),
		nodesElevated:      counter("nodes_elevated_total", "Узлы, поднятые правилом защемления."),
		placements:         counter("placements_total", "Успешные размещения тайлов."),
		placementsRejected: counter("placements_rejected_total", "Отклонённые размещения."),
		demolitions:        counter("demolitions_total", "Снесённые узлы."),
		visibleNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "isomap",
			Subsystem: "map",
			Name:      "visible_nodes",
			Help:      "Узлы в последнем видимом наборе.",
		}),
		opDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "isomap",
			Subsystem: "map",
			Name:      "operation_duration_seconds",
			Help:      "Длительность операций карты.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"op"}),
	}

	e.registry.MustRegister(
		e.heightChanges, e.propagationPasses, e.nodesVisited, e.nodesElevated,
		e.placements, e.placementsRejected, e.demolitions, e.visibleNodes, e.opDuration,
	)
	return e
}

// Registry возвращает реестр экспортера для дополнительных метрик
// (например, шины событий).
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Observe переносит приращения счётчиков карты с прошлого вызова.
// Если счётчики уменьшились (карта загружена заново), отсчёт начинается
// с нуля.
func (e *Exporter) Observe(s world.Stats) {
	add := func(c prometheus.Counter, cur, prev uint64) {
		if cur < prev {
			prev = 0
		}
		if d := cur - prev; d > 0 {
			c.Add(float64(d))
		}
	}

	add(e.heightChanges, s.HeightChanges, e.prev.HeightChanges)
	add(e.propagationPasses, s.PropagationPasses, e.prev.PropagationPasses)
	add(e.nodesVisited, s.NodesVisited, e.prev.NodesVisited)
	add(e.nodesElevated, s.NodesElevated, e.prev.NodesElevated)
	add(e.placements, s.Placements, e.prev.Placements)
	add(e.placementsRejected, s.PlacementsRejected, e.prev.PlacementsRejected)
	add(e.demolitions, s.Demolitions, e.prev.Demolitions)
	e.visibleNodes.Set(float64(s.VisibleNodes))

	e.prev = s
}

// Track замеряет операцию op и затем переносит счётчики карты
func (e *Exporter) Track(op string, m *world.Map, fn func() error) error {
	start := time.Now()
	err := fn()
	e.opDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	e.Observe(m.Stats())
	return err
}

// Handler возвращает HTTP-обработчик /metrics
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// StartHTTP запускает HTTP-сервер метрик на порту port.
// Метод неблокирующий: сервер работает в отдельной горутине.
func (e *Exporter) StartHTTP(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", e.Handler())
	e.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log := logging.GetComponentLogger("metrics")
	go func() {
		log.Info("Prometheus /metrics доступен на порту %d", port)
		if err := e.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Ошибка HTTP сервера метрик: %v", err)
		}
	}()
}

// Shutdown останавливает HTTP-сервер, если он запущен
func (e *Exporter) Shutdown(ctx context.Context) error {
	if e.server == nil {
		return nil
	}
	return e.server.Shutdown(ctx)
}
