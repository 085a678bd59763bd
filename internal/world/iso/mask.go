package iso

import (
	"image"
	"math"

	"github.com/annel0/isomap/internal/world/tile"
	"github.com/boljen/go-bitmap"
)

// AlphaMask побитовая карта непрозрачности спрайта.
// Бит установлен, если пиксель текстуры не прозрачен.
type AlphaMask struct {
	width  int
	height int
	bits   bitmap.Bitmap
}

// NewAlphaMask создаёт полностью прозрачную маску
func NewAlphaMask(width, height int) *AlphaMask {
	return &AlphaMask{
		width:  width,
		height: height,
		bits:   bitmap.New(width * height),
	}
}

// AlphaMaskFromImage строит маску по альфа-каналу изображения
func AlphaMaskFromImage(img image.Image) *AlphaMask {
	b := img.Bounds()
	m := NewAlphaMask(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a > 0 {
				m.Set(x-b.Min.X, y-b.Min.Y, true)
			}
		}
	}
	return m
}

// DiamondMask возвращает маску, непрозрачную строго внутри ромба,
// вписанного в прямоугольник width x height.
func DiamondMask(width, height int) *AlphaMask {
	m := NewAlphaMask(width, height)
	cx := float64(width) / 2
	cy := float64(height) / 2
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx := math.Abs(float64(x) + 0.5 - cx)
			dy := math.Abs(float64(y) + 0.5 - cy)
			if dx/cx+dy/cy < 1.0 {
				m.Set(x, y, true)
			}
		}
	}
	return m
}

// Size возвращает размер маски в пикселях
func (m *AlphaMask) Size() (int, int) {
	return m.width, m.height
}

// Set помечает пиксель непрозрачным или прозрачным
func (m *AlphaMask) Set(x, y int, opaque bool) {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return
	}
	m.bits.Set(y*m.width+x, opaque)
}

// Opaque возвращает true для непрозрачного пикселя. Вне маски всегда false.
func (m *AlphaMask) Opaque(x, y int) bool {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return false
	}
	return m.bits.Get(y*m.width + x)
}

// MaskAtlas хранит маски спрайтов по идентификатору тайла и служит
// источником прозрачности для пикера карты.
type MaskAtlas struct {
	masks map[tile.ID]*AlphaMask
}

// NewMaskAtlas создаёт пустой атлас
func NewMaskAtlas() *MaskAtlas {
	return &MaskAtlas{masks: make(map[tile.ID]*AlphaMask)}
}

// Add регистрирует маску спрайта тайла
func (a *MaskAtlas) Add(id tile.ID, mask *AlphaMask) {
	a.masks[id] = mask
}

// SpriteSize возвращает размер спрайта тайла
func (a *MaskAtlas) SpriteSize(id tile.ID) (int, int, bool) {
	m, ok := a.masks[id]
	if !ok {
		return 0, 0, false
	}
	w, h := m.Size()
	return w, h, true
}

// Opaque проверяет пиксель спрайта тайла
func (a *MaskAtlas) Opaque(id tile.ID, x, y int) bool {
	m, ok := a.masks[id]
	if !ok {
		return false
	}
	return m.Opaque(x, y)
}
