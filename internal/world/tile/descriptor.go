package tile

// ID идентифицирует тип тайла. Пустая строка означает отсутствие тайла.
type ID string

// CategoryFlora категория растительности. Флора не считается
// постройкой при проверке правил размещения.
const CategoryFlora = "Flora"

// Size описывает площадь основания в клетках
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area возвращает число клеток основания
func (s Size) Area() int {
	return s.Width * s.Height
}

// Descriptor описывает тип тайла. Для ядра карты он доступен только на чтение.
type Descriptor struct {
	ID               ID       `json:"id"`
	Title            string   `json:"title"`
	Category         string   `json:"category"`
	Kind             Kind     `json:"type"`
	AutoTile         bool     `json:"autotile"`
	Footprint        Size     `json:"footprint"`
	GroundDecoration []ID     `json:"groundDecoration,omitempty"`
	Zones            []string `json:"zones,omitempty"`
}

// IsFlora возвращает true для деревьев и прочей растительности
func (d *Descriptor) IsFlora() bool {
	return d.Category == CategoryFlora
}

// IsMultiCell возвращает true, если основание больше одной клетки
func (d *Descriptor) IsMultiCell() bool {
	return d.Footprint.Area() > 1
}

// normalize приводит основание к минимальному 1x1
func (d *Descriptor) normalize() {
	if d.Footprint.Width < 1 {
		d.Footprint.Width = 1
	}
	if d.Footprint.Height < 1 {
		d.Footprint.Height = 1
	}
}
