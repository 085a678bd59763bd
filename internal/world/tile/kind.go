package tile

import "fmt"

// Kind классифицирует тайл: от неё зависит слой размещения и правила
// стыковки с соседями.
type Kind uint8

const (
	KindDefault          Kind = iota // Здания и прочие объекты (слой BUILDINGS)
	KindTerrain                      // Грунт
	KindWater                        // Вода
	KindRoad                         // Дороги
	KindZone                         // Зоны застройки
	KindUnderground                  // Подземные коммуникации
	KindGroundDecoration             // Декор поверх грунта
	KindBlueprint                    // Слой чертежей
)

var kindNames = map[Kind]string{
	KindDefault:          "default",
	KindTerrain:          "terrain",
	KindWater:            "water",
	KindRoad:             "road",
	KindZone:             "zone",
	KindUnderground:      "underground",
	KindGroundDecoration: "grounddecoration",
	KindBlueprint:        "blueprint",
}

// String возвращает строковое представление вида тайла
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// MarshalText позволяет хранить вид тайла в JSON строкой
func (k Kind) MarshalText() ([]byte, error) {
	name, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("неизвестный вид тайла: %d", k)
	}
	return []byte(name), nil
}

// UnmarshalText разбирает вид тайла из строки
func (k *Kind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("неизвестный вид тайла: %q", text)
}
