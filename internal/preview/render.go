// Package preview рисует карту в растровое изображение: ромбы узлов с
// боковыми гранями по высоте и коробки построек. Используется для
// быстрого просмотра сгенерированных и сохранённых карт без клиента.
package preview

import (
	"image"
	"image/color"

	"github.com/annel0/isomap/internal/world"
	"github.com/annel0/isomap/internal/world/tile"
	"github.com/fogleman/gg"
	"golang.org/x/image/colornames"
)

// Scheme задаёт цвета тайлов
type Scheme struct {
	Background color.Color
	Outline    color.Color
	Kinds      map[tile.Kind]color.Color
	Tiles      map[tile.ID]color.Color // переопределения для отдельных тайлов
	Flora      color.Color
}

// DefaultScheme возвращает разумную схему для стандартного набора тайлов
func DefaultScheme() *Scheme {
	return &Scheme{
		Background: colornames.Black,
		Outline:    color.RGBA{0, 0, 0, 60},
		Kinds: map[tile.Kind]color.Color{
			tile.KindTerrain:          colornames.Yellowgreen,
			tile.KindWater:            colornames.Steelblue,
			tile.KindUnderground:      colornames.Sienna,
			tile.KindGroundDecoration: colornames.Wheat,
			tile.KindZone:             colornames.Lightgreen,
			tile.KindRoad:             colornames.Dimgray,
			tile.KindDefault:          colornames.Firebrick,
			tile.KindBlueprint:        colornames.Lightblue,
		},
		Tiles: map[tile.ID]color.Color{
			tile.Industrial: colornames.Khaki,
			tile.RoadDirt:   colornames.Peru,
			tile.Office:     colornames.Royalblue,
		},
		Flora: colornames.Forestgreen,
	}
}

// Color возвращает цвет тайла
func (s *Scheme) Color(desc *tile.Descriptor) color.Color {
	if c, ok := s.Tiles[desc.ID]; ok {
		return c
	}
	if desc.IsFlora() && s.Flora != nil {
		return s.Flora
	}
	if c, ok := s.Kinds[desc.Kind]; ok {
		return c
	}
	return colornames.Magenta
}

// surfaceLayers слои, закрашивающие ромб; берётся верхний занятый
var surfaceLayers = []world.Layer{
	world.LayerBlueprint,
	world.LayerRoad,
	world.LayerZone,
	world.LayerGroundDecoration,
	world.LayerWater,
	world.LayerUnderground,
	world.LayerTerrain,
}

// Renderer рисует карту по проекции
type Renderer struct {
	scheme *Scheme
}

// NewRenderer создаёт рендерер; nil: DefaultScheme()
func NewRenderer(scheme *Scheme) *Renderer {
	if scheme == nil {
		scheme = DefaultScheme()
	}
	return &Renderer{scheme: scheme}
}

// FitView возвращает прямоугольник экрана, в который помещается вся карта
// при текущей проекции
func FitView(m *world.Map) image.Rectangle {
	p := m.Projection()
	z := zoom(p.Zoom)
	tw := int(float64(p.TileWidth) * z)
	th := int(float64(p.TileHeight) * z)

	var r image.Rectangle
	for i, n := range m.DrawingOrder() {
		s := p.ToScreen(n.Pos(), n.Height())
		base := p.ToScreen(n.Pos(), 0)
		nr := image.Rect(s.X, s.Y, s.X+tw, base.Y+th)
		if i == 0 {
			r = nr
		} else {
			r = r.Union(nr)
		}
	}
	return r
}

// Render рисует видимую часть карты в прямоугольнике view.
// Пересчитывает видимый набор карты.
func (r *Renderer) Render(m *world.Map, view image.Rectangle) image.Image {
	dc := gg.NewContext(view.Dx(), view.Dy())
	dc.SetColor(r.scheme.Background)
	dc.Clear()

	for _, n := range m.UpdateVisible(view) {
		r.drawNode(dc, m, n, view.Min)
	}
	return dc.Image()
}

// SavePNG рисует всю карту и сохраняет PNG
func (r *Renderer) SavePNG(m *world.Map, path string) error {
	img := r.Render(m, FitView(m))
	return gg.NewContextForImage(img).SavePNG(path)
}

func (r *Renderer) drawNode(dc *gg.Context, m *world.Map, n *world.MapNode, origin image.Point) {
	p := m.Projection()
	z := zoom(p.Zoom)
	s := p.ToScreen(n.Pos(), n.Height()).Sub(origin)
	w := float64(p.TileWidth) * z
	h := float64(p.TileHeight) * z
	x, y := float64(s.X), float64(s.Y)

	fill := r.surfaceColor(m, n)
	if fill == nil {
		return
	}

	// Боковые грани до нулевой высоты
	if depth := float64(n.Height()*p.HeightOffset) * z; depth > 0 {
		dc.MoveTo(x, y+h/2)
		dc.LineTo(x+w/2, y+h)
		dc.LineTo(x+w, y+h/2)
		dc.LineTo(x+w, y+h/2+depth)
		dc.LineTo(x+w/2, y+h+depth)
		dc.LineTo(x, y+h/2+depth)
		dc.ClosePath()
		dc.SetColor(shade(fill, 0.55))
		dc.Fill()
	}

	if n.IsSlope() {
		fill = shade(fill, 0.8)
	}
	diamond(dc, x, y, w, h)
	dc.SetColor(fill)
	dc.FillPreserve()
	dc.SetColor(r.scheme.Outline)
	dc.SetLineWidth(1)
	dc.Stroke()

	r.drawBuilding(dc, m, n, x, y, w, h)
}

// drawBuilding рисует коробку постройки над опорной клеткой основания
func (r *Renderer) drawBuilding(dc *gg.Context, m *world.Map, n *world.MapNode, x, y, w, h float64) {
	if !m.IsLayerActive(world.LayerBuildings) {
		return
	}
	state := n.Layer(world.LayerBuildings)
	if !state.Visible || state.Tile == nil {
		return
	}

	fp := state.Tile.Footprint
	cells := float64(max(fp.Width, fp.Height, 1))
	bw := w * 0.6 * cells
	bh := h * 0.8 * cells
	if state.Tile.IsFlora() {
		bw, bh = w*0.3, h*1.2
	}

	dc.DrawRectangle(x+(w-bw)/2, y+h/2-bh, bw, bh)
	dc.SetColor(r.scheme.Color(state.Tile))
	dc.FillPreserve()
	dc.SetColor(r.scheme.Outline)
	dc.Stroke()
}

func (r *Renderer) surfaceColor(m *world.Map, n *world.MapNode) color.Color {
	for _, l := range surfaceLayers {
		if !m.IsLayerActive(l) {
			continue
		}
		if st := n.Layer(l); st.Occupied() && st.Tile != nil {
			return r.scheme.Color(st.Tile)
		}
	}
	return nil
}

func diamond(dc *gg.Context, x, y, w, h float64) {
	dc.MoveTo(x+w/2, y)
	dc.LineTo(x+w, y+h/2)
	dc.LineTo(x+w/2, y+h)
	dc.LineTo(x, y+h/2)
	dc.ClosePath()
}

func shade(c color.Color, k float64) color.Color {
	cr, cg, cb, ca := c.RGBA()
	return color.RGBA64{
		R: uint16(float64(cr) * k),
		G: uint16(float64(cg) * k),
		B: uint16(float64(cb) * k),
		A: uint16(ca),
	}
}

func zoom(z float64) float64 {
	if z <= 0 {
		return 1
	}
	return z
}
