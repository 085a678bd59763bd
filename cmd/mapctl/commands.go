package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"math"
	"text/tabwriter"
	"time"

	"github.com/annel0/isomap/internal/preview"
	"github.com/annel0/isomap/internal/terrain"
	"github.com/annel0/isomap/internal/vec"
	"github.com/annel0/isomap/internal/world"
	"github.com/annel0/isomap/internal/world/iso"
	"github.com/annel0/isomap/internal/world/tile"
)

const defaultSlot = "default"

// command выполняет одну подкоманду над открытой сессией
type command struct {
	usage string
	run   func(ctx context.Context, s *session, args []string) error
}

var commands = map[string]command{
	"generate": {"сгенерировать новую карту", cmdGenerate},
	"info":     {"показать сведения о карте", cmdInfo},
	"raise":    {"поднять узел", cmdHeight(true)},
	"lower":    {"опустить узел", cmdHeight(false)},
	"level":    {"выровнять область по высоте узла", cmdLevel},
	"place":    {"поставить тайл", cmdPlace},
	"demolish": {"снести область", cmdDemolish},
	"pick":     {"найти узел под точкой экрана", cmdPick},
	"render":   {"сохранить PNG-превью карты", cmdRender},
	"list":     {"список сохранённых карт", cmdList},
	"delete":   {"удалить сохранённую карту", cmdDelete},
	"serve":    {"открыть карту для правки по websocket", cmdServe},
}

func (s *session) flagSet(name string) *flag.FlagSet {
	fset := flag.NewFlagSet(name, flag.ContinueOnError)
	fset.SetOutput(s.out)
	return fset
}

// posFlags регистрирует -slot, -x и -y
func posFlags(fset *flag.FlagSet) (slot *string, x, y *int) {
	slot = fset.String("slot", defaultSlot, "Слот сохранения")
	x = fset.Int("x", 0, "Столбец узла")
	y = fset.Int("y", 0, "Строка узла")
	return
}

func cmdGenerate(ctx context.Context, s *session, args []string) error {
	fset := s.flagSet("generate")
	slot := fset.String("slot", defaultSlot, "Слот сохранения")
	cols := fset.Int("cols", s.cfg.Map.Columns, "Число столбцов")
	rows := fset.Int("rows", s.cfg.Map.Rows, "Число строк")
	seed := fset.Int64("seed", s.cfg.Map.Seed, "Сид генерации")
	flat := fset.Bool("flat", false, "Плоская карта из травы без шума")
	if err := fset.Parse(args); err != nil {
		return err
	}

	opts := s.mapOptions()
	opts.Columns, opts.Rows, opts.Seed = *cols, *rows, *seed
	m, err := world.NewMap(opts)
	if err != nil {
		return err
	}

	tc := s.cfg.Terrain
	params := terrain.DefaultParams(*seed)
	params.Alpha, params.Beta, params.Octaves, params.Scale = tc.Alpha, tc.Beta, tc.Octaves, tc.Scale
	params.WaterLevel, params.FloraRatio = tc.WaterLevel, tc.FloraRatio
	if *flat {
		params.WaterLevel, params.FloraRatio = -1, 0
	}

	err = s.exporter.Track("generate", m, func() error {
		if err := terrain.NewGenerator(params).Generate(m); err != nil {
			return err
		}
		if *flat {
			m.ApplyHeightmap(func(vec.Vec2) int { return 0 })
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := s.saveMap(ctx, *slot, m); err != nil {
		return err
	}

	fmt.Fprintf(s.out, "Карта %s %dx%d сохранена в слот %s\n", m.ID(), m.Columns(), m.Rows(), *slot)
	return nil
}

func cmdInfo(ctx context.Context, s *session, args []string) error {
	fset := s.flagSet("info")
	slot := fset.String("slot", defaultSlot, "Слот сохранения")
	if err := fset.Parse(args); err != nil {
		return err
	}

	m, fwd, err := s.openMap(ctx, *slot)
	if err != nil {
		return err
	}
	fwd.Close()

	var counts [world.MaxLayers]int
	minH, maxH, slopes := math.MaxInt, 0, 0
	for _, n := range m.DrawingOrder() {
		for l := 0; l < world.MaxLayers; l++ {
			if n.IsOccupied(world.Layer(l)) {
				counts[l]++
			}
		}
		minH = min(minH, n.Height())
		maxH = max(maxH, n.Height())
		if n.IsSlope() {
			slopes++
		}
	}

	w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Размер\t%dx%d\n", m.Columns(), m.Rows())
	fmt.Fprintf(w, "Высоты\t%d..%d из %d\n", minH, maxH, m.MaxHeight())
	fmt.Fprintf(w, "Склоны\t%d\n", slopes)
	for _, l := range world.DrawOrder {
		state := ""
		if !m.IsLayerActive(l) {
			state = " (выключен)"
		}
		fmt.Fprintf(w, "%s\t%d%s\n", l, counts[l], state)
	}
	return w.Flush()
}

func cmdHeight(higher bool) func(context.Context, *session, []string) error {
	name := "lower"
	if higher {
		name = "raise"
	}
	return func(ctx context.Context, s *session, args []string) error {
		fset := s.flagSet(name)
		slot, x, y := posFlags(fset)
		times := fset.Int("n", 1, "Сколько раз повторить")
		if err := fset.Parse(args); err != nil {
			return err
		}

		pos := vec.Vec2{X: *x, Y: *y}
		changed := 0
		var height int
		err := s.mutate(ctx, *slot, name, func(m *world.Map) error {
			for i := 0; i < *times; i++ {
				ok, err := m.ChangeHeight(pos, higher)
				if err != nil {
					return err
				}
				if !ok {
					break
				}
				changed++
			}
			n, err := m.NodeAt(pos)
			if err != nil {
				return err
			}
			height = n.Height()
			return nil
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(s.out, "Узел %v: высота %d, изменений %d\n", pos, height, changed)
		return nil
	}
}

func cmdLevel(ctx context.Context, s *session, args []string) error {
	fset := s.flagSet("level")
	slot, x, y := posFlags(fset)
	radius := fset.Int("r", 1, "Радиус квадратной области")
	if err := fset.Parse(args); err != nil {
		return err
	}

	origin := vec.Vec2{X: *x, Y: *y}
	area := make([]vec.Vec2, 0, (2**radius+1)*(2**radius+1))
	for dx := -*radius; dx <= *radius; dx++ {
		for dy := -*radius; dy <= *radius; dy++ {
			area = append(area, vec.Vec2{X: origin.X + dx, Y: origin.Y + dy})
		}
	}

	err := s.mutate(ctx, *slot, "level", func(m *world.Map) error {
		return m.LevelHeight(origin, area)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Область радиуса %d выровнена по узлу %v\n", *radius, origin)
	return nil
}

func cmdPlace(ctx context.Context, s *session, args []string) error {
	fset := s.flagSet("place")
	slot, x, y := posFlags(fset)
	id := fset.String("tile", "", "Идентификатор тайла")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("не задан -tile")
	}

	pos := vec.Vec2{X: *x, Y: *y}
	err := s.mutate(ctx, *slot, "place", func(m *world.Map) error {
		return m.SetTile(tile.ID(*id), pos)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Тайл %s поставлен в %v\n", *id, pos)
	return nil
}

func cmdDemolish(ctx context.Context, s *session, args []string) error {
	fset := s.flagSet("demolish")
	slot, x, y := posFlags(fset)
	width := fset.Int("w", 1, "Ширина области")
	height := fset.Int("h", 1, "Высота области")
	layerName := fset.String("layer", world.LayerNone.String(), "Слой сноса")
	neighbors := fset.Bool("neighbors", true, "Обновить соседей")
	if err := fset.Parse(args); err != nil {
		return err
	}

	layer, ok := world.ParseLayer(*layerName)
	if !ok {
		return fmt.Errorf("неизвестный слой %q", *layerName)
	}

	positions := make([]vec.Vec2, 0, *width**height)
	for dx := 0; dx < *width; dx++ {
		for dy := 0; dy < *height; dy++ {
			positions = append(positions, vec.Vec2{X: *x + dx, Y: *y + dy})
		}
	}

	var demolished uint64
	err := s.mutate(ctx, *slot, "demolish", func(m *world.Map) error {
		before := m.Stats().Demolitions
		m.Demolish(positions, *neighbors, layer)
		demolished = m.Stats().Demolitions - before
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Снесено узлов: %d (слой %s)\n", demolished, layer)
	return nil
}

func cmdPick(ctx context.Context, s *session, args []string) error {
	fset := s.flagSet("pick")
	slot := fset.String("slot", defaultSlot, "Слот сохранения")
	sx := fset.Int("sx", 0, "Экранная координата X")
	sy := fset.Int("sy", 0, "Экранная координата Y")
	layerName := fset.String("layer", world.LayerNone.String(), "Слой поиска")
	if err := fset.Parse(args); err != nil {
		return err
	}

	layer, ok := world.ParseLayer(*layerName)
	if !ok {
		return fmt.Errorf("неизвестный слой %q", *layerName)
	}

	m, fwd, err := s.openMap(ctx, *slot)
	if err != nil {
		return err
	}
	fwd.Close()

	p := m.Projection()
	atlas := iso.NewMaskAtlas()
	mask := iso.DiamondMask(p.TileWidth, p.TileHeight)
	for _, id := range m.Registry().IDs() {
		atlas.Add(id, mask)
	}

	pos, found := m.Pick(image.Pt(*sx, *sy), layer, atlas)
	if !found {
		fmt.Fprintln(s.out, "Под точкой нет узла")
		return nil
	}
	n, err := m.NodeAt(pos)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Узел %v, высота %d\n", pos, n.Height())
	return nil
}

func cmdRender(ctx context.Context, s *session, args []string) error {
	fset := s.flagSet("render")
	slot := fset.String("slot", defaultSlot, "Слот сохранения")
	out := fset.String("out", "map.png", "Файл PNG")
	blueprint := fset.Bool("blueprint", false, "Показать слой BLUEPRINT")
	if err := fset.Parse(args); err != nil {
		return err
	}

	m, fwd, err := s.openMap(ctx, *slot)
	if err != nil {
		return err
	}
	fwd.Close()

	m.SetLayerActive(world.LayerBlueprint, *blueprint)
	err = s.exporter.Track("render", m, func() error {
		return preview.NewRenderer(nil).SavePNG(m, *out)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Превью сохранено в %s\n", *out)
	return nil
}

func cmdList(ctx context.Context, s *session, args []string) error {
	fset := s.flagSet("list")
	if err := fset.Parse(args); err != nil {
		return err
	}

	slots, err := s.store.List(ctx)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		fmt.Fprintln(s.out, "Сохранённых карт нет")
		return nil
	}

	w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "СЛОТ\tРАЗМЕР\tБАЙТ\tСОХРАНЕНА")
	for _, slot := range slots {
		fmt.Fprintf(w, "%s\t%dx%d\t%d\t%s\n", slot.Name, slot.Columns, slot.Rows, slot.Bytes,
			slot.SavedAt.Local().Format(time.DateTime))
	}
	return w.Flush()
}

func cmdDelete(ctx context.Context, s *session, args []string) error {
	fset := s.flagSet("delete")
	slot := fset.String("slot", "", "Слот сохранения")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if *slot == "" {
		return fmt.Errorf("не задан -slot")
	}

	if err := s.store.Delete(ctx, *slot); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Слот %s удалён\n", *slot)
	return nil
}
