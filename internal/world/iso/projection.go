package iso

import (
	"image"
	"math"

	"github.com/annel0/isomap/internal/vec"
)

// Projection переводит координаты сетки в экранные и обратно.
//
// Узел (x, y) высоты h рисуется ромбом, левый верхний угол описанного
// прямоугольника которого находится в
//
//	sx = (x+y) * W/2
//	sy = (x-y) * H/2 - h*HeightOffset
//
// с учётом масштаба и смещения камеры. Узел с наибольшим столбцом и
// наименьшей строкой оказывается ниже всех на экране.
type Projection struct {
	TileWidth    int         // Ширина ромба в пикселях
	TileHeight   int         // Высота ромба в пикселях
	HeightOffset int         // Подъём спрайта на единицу высоты
	Zoom         float64     // Масштаб, 0 трактуется как 1
	Camera       image.Point // Смещение камеры
}

// DefaultProjection возвращает проекцию для тайлов 64x32
func DefaultProjection() Projection {
	return Projection{
		TileWidth:    64,
		TileHeight:   32,
		HeightOffset: 24,
		Zoom:         1,
	}
}

func (p Projection) zoom() float64 {
	if p.Zoom <= 0 {
		return 1
	}
	return p.Zoom
}

// ToScreen возвращает левый верхний угол прямоугольника ромба узла
func (p Projection) ToScreen(pos vec.Vec2, height int) image.Point {
	z := p.zoom()
	x := float64(pos.X+pos.Y) * float64(p.TileWidth) / 2 * z
	y := float64(pos.X-pos.Y)*float64(p.TileHeight)/2*z - float64(height*p.HeightOffset)*z
	return image.Pt(int(math.Round(x))-p.Camera.X, int(math.Round(y))-p.Camera.Y)
}

// ToGrid возвращает узел нулевой высоты, ромб которого содержит точку.
// Результат может лежать вне карты.
func (p Projection) ToGrid(pt image.Point) vec.Vec2 {
	z := p.zoom()
	hw := float64(p.TileWidth) / 2 * z
	hh := float64(p.TileHeight) / 2 * z

	sum := (float64(pt.X+p.Camera.X) - hw) / hw  // x+y
	diff := (float64(pt.Y+p.Camera.Y) - hh) / hh // x-y

	return vec.Vec2{
		X: int(math.Floor((sum+diff)/2 + 0.5)),
		Y: int(math.Floor((sum-diff)/2 + 0.5)),
	}
}

// RowsForHeight возвращает, на сколько единиц повёрнутой координаты y-x
// смещается на экране узел заданной высоты (с округлением вверх).
func (p Projection) RowsForHeight(height int) int {
	if p.TileHeight <= 0 {
		return 0
	}
	num := height * p.HeightOffset * 2
	return (num + p.TileHeight - 1) / p.TileHeight
}

// SpriteRect возвращает экранный прямоугольник спрайта размером w x h
// пикселей исходной текстуры. Спрайт выравнивается по центру ромба и
// нижней его вершине.
func (p Projection) SpriteRect(pos vec.Vec2, height, w, h int) image.Rectangle {
	z := p.zoom()
	s := p.ToScreen(pos, height)
	sw := int(math.Round(float64(w) * z))
	sh := int(math.Round(float64(h) * z))
	tw := int(math.Round(float64(p.TileWidth) * z))
	th := int(math.Round(float64(p.TileHeight) * z))

	left := s.X + (tw-sw)/2
	bottom := s.Y + th
	return image.Rect(left, bottom-sh, left+sw, bottom)
}

// SourcePixel переводит экранную точку внутри rect в пиксель текстуры
func (p Projection) SourcePixel(rect image.Rectangle, pt image.Point) (int, int) {
	z := p.zoom()
	return int(float64(pt.X-rect.Min.X) / z), int(float64(pt.Y-rect.Min.Y) / z)
}
