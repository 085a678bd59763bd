package iso

import (
	"image"
	"testing"

	"github.com/annel0/isomap/internal/vec"
	"github.com/stretchr/testify/assert"
)

func TestProjection_RoundTrip(t *testing.T) {
	projections := map[string]Projection{
		"default": DefaultProjection(),
		"camera": {
			TileWidth: 64, TileHeight: 32, HeightOffset: 24, Zoom: 1,
			Camera: image.Pt(-300, 120),
		},
		"zoom": {TileWidth: 64, TileHeight: 32, HeightOffset: 24, Zoom: 2},
	}

	for name, p := range projections {
		t.Run(name, func(t *testing.T) {
			z := p.zoom()
			half := image.Pt(int(float64(p.TileWidth)/2*z), int(float64(p.TileHeight)/2*z))
			for x := 0; x < 10; x++ {
				for y := 0; y < 10; y++ {
					pos := vec.Vec2{X: x, Y: y}
					center := p.ToScreen(pos, 0).Add(half)
					assert.Equal(t, pos, p.ToGrid(center), "Центр ромба узла %v", pos)
				}
			}
		})
	}
}

func TestProjection_ToScreen(t *testing.T) {
	p := DefaultProjection()

	assert.Equal(t, image.Pt(0, 0), p.ToScreen(vec.Vec2{}, 0))
	assert.Equal(t, image.Pt(32, 16), p.ToScreen(vec.Vec2{X: 1, Y: 0}, 0), "Следующий столбец ниже и правее")
	assert.Equal(t, image.Pt(32, -16), p.ToScreen(vec.Vec2{X: 0, Y: 1}, 0), "Следующая строка выше и правее")
	assert.Equal(t, image.Pt(0, -48), p.ToScreen(vec.Vec2{}, 2), "Высота поднимает узел")
}

func TestProjection_RowsForHeight(t *testing.T) {
	p := DefaultProjection()

	assert.Equal(t, 0, p.RowsForHeight(0))
	assert.Equal(t, 2, p.RowsForHeight(1))
	assert.Equal(t, 3, p.RowsForHeight(2))
	assert.Equal(t, 48, p.RowsForHeight(32))
}

func TestProjection_SpriteRect(t *testing.T) {
	p := DefaultProjection()

	rect := p.SpriteRect(vec.Vec2{}, 0, 64, 96)
	assert.Equal(t, image.Rect(0, -64, 64, 32), rect, "Спрайт стоит на нижней вершине ромба")

	narrow := p.SpriteRect(vec.Vec2{}, 0, 32, 32)
	assert.Equal(t, image.Rect(16, 0, 48, 32), narrow, "Узкий спрайт выравнивается по центру")

	x, y := p.SourcePixel(rect, image.Pt(10, 0))
	assert.Equal(t, 10, x)
	assert.Equal(t, 64, y)
}
