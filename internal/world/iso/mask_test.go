package iso

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiamondMask(t *testing.T) {
	m := DiamondMask(64, 32)

	w, h := m.Size()
	assert.Equal(t, 64, w)
	assert.Equal(t, 32, h)

	assert.True(t, m.Opaque(32, 16), "Центр ромба непрозрачен")
	assert.True(t, m.Opaque(2, 16), "Левая вершина")
	assert.False(t, m.Opaque(0, 0), "Углы прямоугольника прозрачны")
	assert.False(t, m.Opaque(63, 31))
	assert.False(t, m.Opaque(-1, 16), "Вне маски всё прозрачно")
	assert.False(t, m.Opaque(64, 16))
}

func TestAlphaMaskFromImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 2, color.NRGBA{R: 255, A: 255})
	img.Set(3, 0, color.NRGBA{A: 1})

	m := AlphaMaskFromImage(img)
	assert.True(t, m.Opaque(1, 2))
	assert.True(t, m.Opaque(3, 0), "Любая ненулевая альфа непрозрачна")
	assert.False(t, m.Opaque(0, 0))

	m.Set(1, 2, false)
	assert.False(t, m.Opaque(1, 2))
}

func TestMaskAtlas(t *testing.T) {
	atlas := NewMaskAtlas()
	atlas.Add("grass", DiamondMask(64, 32))

	w, h, ok := atlas.SpriteSize("grass")
	assert.True(t, ok)
	assert.Equal(t, 64, w)
	assert.Equal(t, 32, h)
	assert.True(t, atlas.Opaque("grass", 32, 16))

	_, _, ok = atlas.SpriteSize("missing")
	assert.False(t, ok)
	assert.False(t, atlas.Opaque("missing", 0, 0))
}
