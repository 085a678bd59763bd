package terrain

import (
	"github.com/aquilax/go-perlin"
)

// Noise двумерный шум Перлина, приведённый к диапазону [0, 1]
type Noise struct {
	perlin *perlin.Perlin
	scale  float64
}

// NewNoise создаёт генератор шума.
// alpha задаёт сглаживание, beta частоту, octaves число октав.
func NewNoise(alpha, beta float64, octaves int32, scale float64, seed int64) *Noise {
	return &Noise{
		perlin: perlin.NewPerlin(alpha, beta, octaves, seed),
		scale:  scale,
	}
}

// At возвращает значение шума в клетке (x, y), от 0 до 1
func (n *Noise) At(x, y int) float64 {
	v := n.perlin.Noise2D(float64(x)*n.scale, float64(y)*n.scale)

	// Шум лежит примерно в [-1, 1]; края срезаем
	v = (v + 1.0) / 2.0
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
