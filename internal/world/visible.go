package world

import "image"

// visibleMargin запас в клетках вокруг экрана для частично видимых узлов
const visibleMargin = 2

// VisibleBounds границы видимой области в повёрнутых координатах
// u = x+y (растёт вправо по экрану) и w = y-x (растёт вверх по экрану).
type VisibleBounds struct {
	Left   int // минимальное u
	Right  int // максимальное u
	Top    int // максимальное w
	Bottom int // минимальное w, с запасом на высоту
}

// Contains проверяет повёрнутые координаты узла
func (b VisibleBounds) Contains(u, w int) bool {
	return u >= b.Left && u <= b.Right && w >= b.Bottom && w <= b.Top
}

// VisibleBoundsFor переводит прямоугольник экрана в границы сетки.
// Нижняя граница сдвигается на максимальную высоту: высокий узел ниже края
// экрана может подняться в кадр.
func (m *Map) VisibleBoundsFor(view image.Rectangle) VisibleBounds {
	tl := m.projection.ToGrid(view.Min)
	br := m.projection.ToGrid(view.Max)

	tlU, tlW := tl.Rotated()
	brU, brW := br.Rotated()

	return VisibleBounds{
		Left:   min(tlU, brU) - visibleMargin,
		Right:  max(tlU, brU) + visibleMargin,
		Top:    max(tlW, brW) + visibleMargin,
		Bottom: min(tlW, brW) - visibleMargin - m.projection.RowsForHeight(m.maxHeight),
	}
}

// UpdateVisible пересчитывает видимые узлы для прямоугольника экрана.
// Результат идёт в порядке отрисовки и действителен до следующего вызова.
func (m *Map) UpdateVisible(view image.Rectangle) []*MapNode {
	b := m.VisibleBoundsFor(view)

	m.visible = m.visible[:0]
	for _, n := range m.drawOrder {
		if b.Contains(n.pos.Rotated()) {
			m.visible = append(m.visible, n)
		}
	}
	m.stats.VisibleNodes = len(m.visible)
	return m.visible
}

// VisibleNodes возвращает результат последнего UpdateVisible
func (m *Map) VisibleNodes() []*MapNode {
	return m.visible
}
