package terrain

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/annel0/isomap/internal/logging"
	"github.com/annel0/isomap/internal/vec"
	"github.com/annel0/isomap/internal/world"
	"github.com/annel0/isomap/internal/world/tile"
)

// Params задаёт параметры генерации рельефа
type Params struct {
	Seed       int64
	Alpha      float64 // Сглаживание шума
	Beta       float64 // Частота шума
	Octaves    int32
	Scale      float64 // Масштаб координат клеток для шума
	WaterLevel int     // Клетки на этой высоте и ниже заливаются водой
	FloraRatio float64 // Доля сухих клеток с растительностью

	Ground tile.ID
	Water  tile.ID
	Flora  []tile.ID
}

// DefaultParams возвращает параметры по умолчанию для стандартного набора тайлов
func DefaultParams(seed int64) Params {
	return Params{
		Seed:       seed,
		Alpha:      2,
		Beta:       2,
		Octaves:    3,
		Scale:      0.05,
		WaterLevel: 2,
		FloraRatio: 0.05,
		Ground:     tile.Grass,
		Water:      tile.Water,
		Flora:      []tile.ID{tile.Oak, tile.Pine},
	}
}

// Generator заполняет карту рельефом по шуму Перлина
type Generator struct {
	params Params
	noise  *Noise
	log    *logging.Logger
}

// NewGenerator создаёт генератор. Одинаковые параметры дают одинаковую карту.
func NewGenerator(p Params) *Generator {
	if p.Ground == "" {
		p.Ground = tile.Grass
	}
	if p.Water == "" {
		p.Water = tile.Water
	}
	return &Generator{
		params: p,
		noise:  NewNoise(p.Alpha, p.Beta, p.Octaves, p.Scale, p.Seed),
		log:    logging.GetTerrainLogger(),
	}
}

// Height возвращает высоту клетки до сглаживания, от 0 до maxHeight
func (g *Generator) Height(pos vec.Vec2, maxHeight int) int {
	return int(math.Round(g.noise.At(pos.X, pos.Y) * float64(maxHeight)))
}

// Generate покрывает карту грунтом, заливает низины водой, рассаживает
// растительность и в конце один раз пересчитывает всю карту.
func (g *Generator) Generate(m *world.Map) error {
	cols, rows := m.Columns(), m.Rows()
	heights := make([]int, cols*rows)
	for x := 0; x < cols; x++ {
		for y := 0; y < rows; y++ {
			heights[x*rows+y] = g.Height(vec.Vec2{X: x, Y: y}, m.MaxHeight())
		}
	}

	rng := rand.New(rand.NewSource(g.params.Seed))
	var water, flora int
	for x := 0; x < cols; x++ {
		for y := 0; y < rows; y++ {
			pos := vec.Vec2{X: x, Y: y}
			if err := m.SetTile(g.params.Ground, pos); err != nil {
				return fmt.Errorf("грунт в %v: %w", pos, err)
			}

			switch {
			case heights[x*rows+y] <= g.params.WaterLevel:
				if err := m.SetTile(g.params.Water, pos); err != nil {
					return fmt.Errorf("вода в %v: %w", pos, err)
				}
				water++
			case len(g.params.Flora) > 0 && rng.Float64() < g.params.FloraRatio:
				id := g.params.Flora[rng.Intn(len(g.params.Flora))]
				if err := m.SetTile(id, pos); err != nil {
					return fmt.Errorf("растительность в %v: %w", pos, err)
				}
				flora++
			}
		}
	}

	m.ApplyHeightmap(func(pos vec.Vec2) int { return heights[pos.X*rows+pos.Y] })

	g.log.Info("Сгенерирован рельеф %dx%d: вода %d, растительность %d (сид %d)",
		cols, rows, water, flora, g.params.Seed)
	return nil
}
