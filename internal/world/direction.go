package world

import (
	"strings"

	"github.com/annel0/isomap/internal/vec"
)

// Direction положение соседа относительно узла. Каждое направление,
// кроме центра, занимает свой бит маски.
//
// Циклический порядок: BOTTOM_LEFT, LEFT, TOP_LEFT, BOTTOM, (CENTER), TOP,
// BOTTOM_RIGHT, RIGHT, TOP_RIGHT, затем снова BOTTOM_LEFT. Порядок бит
// совпадает с этим порядком, менять его нельзя: маски сохраняются и
// используются для выбора спрайтов.
type Direction uint8

const (
	DirCenter      Direction = 0
	DirBottomLeft  Direction = 1 << 0
	DirLeft        Direction = 1 << 1
	DirTopLeft     Direction = 1 << 2
	DirBottom      Direction = 1 << 3
	DirTop         Direction = 1 << 4
	DirBottomRight Direction = 1 << 5
	DirRight       Direction = 1 << 6
	DirTopRight    Direction = 1 << 7
)

// cycle направления в циклическом порядке, центр исключён
var cycle = [8]Direction{
	DirBottomLeft, DirLeft, DirTopLeft, DirBottom,
	DirTop, DirBottomRight, DirRight, DirTopRight,
}

// offsets смещение (столбец, строка) для каждого направления
var offsets = map[Direction]vec.Vec2{
	DirBottomLeft:  {X: -1, Y: -1},
	DirLeft:        {X: -1, Y: 0},
	DirTopLeft:     {X: -1, Y: 1},
	DirBottom:      {X: 0, Y: -1},
	DirCenter:      {X: 0, Y: 0},
	DirTop:         {X: 0, Y: 1},
	DirBottomRight: {X: 1, Y: -1},
	DirRight:       {X: 1, Y: 0},
	DirTopRight:    {X: 1, Y: 1},
}

var directionNames = map[Direction]string{
	DirCenter:      "CENTER",
	DirBottomLeft:  "BOTTOM_LEFT",
	DirLeft:        "LEFT",
	DirTopLeft:     "TOP_LEFT",
	DirBottom:      "BOTTOM",
	DirTop:         "TOP",
	DirBottomRight: "BOTTOM_RIGHT",
	DirRight:       "RIGHT",
	DirTopRight:    "TOP_RIGHT",
}

func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return "INVALID"
}

// Offset возвращает смещение соседа в этом направлении
func (d Direction) Offset() vec.Vec2 {
	return offsets[d]
}

// Next возвращает следующее направление по циклу. Для центра возвращает BOTTOM_LEFT.
func (d Direction) Next() Direction {
	for i, c := range cycle {
		if c == d {
			return cycle[(i+1)%len(cycle)]
		}
	}
	return cycle[0]
}

// Opposite возвращает противоположное направление
func (d Direction) Opposite() Direction {
	off := d.Offset()
	return DirectionOf(vec.Vec2{}, vec.Vec2{X: -off.X, Y: -off.Y})
}

// DirectionOf возвращает направление, в котором other лежит относительно
// origin. Для несоседних позиций и самой origin возвращает DirCenter.
func DirectionOf(origin, other vec.Vec2) Direction {
	d := other.Sub(origin)
	if d.X < -1 || d.X > 1 || d.Y < -1 || d.Y > 1 {
		return DirCenter
	}
	for dir, off := range offsets {
		if off == d {
			return dir
		}
	}
	return DirCenter
}

// NeighborPosition позиция соседа и направление на него
type NeighborPosition struct {
	Pos vec.Vec2
	Dir Direction
}

// NeighborPositions возвращает позиции 8 соседей (и центра, если нужно)
// в фиксированном порядке. Границы сетки не проверяются.
func NeighborPositions(pos vec.Vec2, includeCenter bool) []NeighborPosition {
	result := make([]NeighborPosition, 0, 9)
	for i, dir := range cycle {
		if includeCenter && i == 4 {
			result = append(result, NeighborPosition{Pos: pos, Dir: DirCenter})
		}
		result = append(result, NeighborPosition{Pos: pos.Add(dir.Offset()), Dir: dir})
	}
	return result
}

// DirectionMask набор направлений, по биту на каждое из 8 соседей
type DirectionMask uint8

// Has проверяет, входит ли направление в маску
func (m DirectionMask) Has(d Direction) bool {
	return d != DirCenter && m&DirectionMask(d) != 0
}

// With возвращает маску с добавленным направлением
func (m DirectionMask) With(d Direction) DirectionMask {
	return m | DirectionMask(d)
}

// Contains проверяет, что все направления other входят в маску
func (m DirectionMask) Contains(other DirectionMask) bool {
	return m&other == other
}

// Count возвращает число установленных направлений
func (m DirectionMask) Count() int {
	n := 0
	for _, d := range cycle {
		if m.Has(d) {
			n++
		}
	}
	return n
}

// Directions возвращает установленные направления в циклическом порядке
func (m DirectionMask) Directions() []Direction {
	dirs := make([]Direction, 0, 8)
	for _, d := range cycle {
		if m.Has(d) {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

func (m DirectionMask) String() string {
	if m == 0 {
		return "NONE"
	}
	names := make([]string, 0, 8)
	for _, d := range m.Directions() {
		names = append(names, d.String())
	}
	return strings.Join(names, "|")
}

// Mask собирает маску из направлений
func Mask(dirs ...Direction) DirectionMask {
	var m DirectionMask
	for _, d := range dirs {
		m = m.With(d)
	}
	return m
}
