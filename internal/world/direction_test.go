package world

import (
	"testing"

	"github.com/annel0/isomap/internal/vec"
	"github.com/stretchr/testify/assert"
)

func TestDirectionCycle(t *testing.T) {
	expected := []Direction{
		DirLeft, DirTopLeft, DirBottom, DirTop,
		DirBottomRight, DirRight, DirTopRight, DirBottomLeft,
	}

	d := DirBottomLeft
	for _, next := range expected {
		d = d.Next()
		assert.Equal(t, next, d)
	}
	assert.Equal(t, DirBottomLeft, DirCenter.Next(), "После центра цикл начинается заново")
}

func TestDirectionOpposite(t *testing.T) {
	tests := []struct {
		dir      Direction
		opposite Direction
	}{
		{DirTop, DirBottom},
		{DirLeft, DirRight},
		{DirTopLeft, DirBottomRight},
		{DirTopRight, DirBottomLeft},
		{DirCenter, DirCenter},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.opposite, tt.dir.Opposite(), "Противоположное к %s", tt.dir)
		assert.Equal(t, tt.dir, tt.opposite.Opposite(), "Противоположное к %s", tt.opposite)
	}
}

func TestDirectionOf(t *testing.T) {
	origin := vec.Vec2{X: 5, Y: 5}

	for _, dir := range cycle {
		assert.Equal(t, dir, DirectionOf(origin, origin.Add(dir.Offset())))
	}
	assert.Equal(t, DirCenter, DirectionOf(origin, origin))
	assert.Equal(t, DirCenter, DirectionOf(origin, vec.Vec2{X: 7, Y: 5}), "Несоседняя позиция")
}

func TestNeighborPositions(t *testing.T) {
	pos := vec.Vec2{X: 0, Y: 0}

	without := NeighborPositions(pos, false)
	assert.Len(t, without, 8)
	assert.Equal(t, vec.Vec2{X: -1, Y: -1}, without[0].Pos)
	assert.Equal(t, DirTop, without[4].Dir)

	with := NeighborPositions(pos, true)
	assert.Len(t, with, 9)
	assert.Equal(t, DirCenter, with[4].Dir)
	assert.Equal(t, DirTop, with[5].Dir)
}

func TestDirectionMask(t *testing.T) {
	m := Mask(DirTop, DirBottom, DirLeft)

	assert.True(t, m.Has(DirTop))
	assert.False(t, m.Has(DirRight))
	assert.False(t, m.Has(DirCenter), "Центр не входит в маску")
	assert.Equal(t, 3, m.Count())
	assert.True(t, m.Contains(Mask(DirTop, DirBottom)))
	assert.False(t, m.Contains(Mask(DirTop, DirRight)))
	assert.Equal(t, "LEFT|BOTTOM|TOP", m.String())
	assert.Equal(t, "NONE", DirectionMask(0).String())
}
