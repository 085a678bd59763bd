package tile

// Идентификаторы встроенного набора тайлов
const (
	Grass       ID = "terrain_grass"
	Water       ID = "water"
	RoadAsphalt ID = "road_asphalt"
	RoadDirt    ID = "road_dirt"
	Residential ID = "zone_residential"
	Industrial  ID = "zone_industrial"
	House       ID = "building_house"
	Office      ID = "building_office"    // 2x2
	Warehouse   ID = "building_warehouse" // 1x1 с гравием вокруг
	Oak         ID = "flora_oak"
	Pine        ID = "flora_pine"
	Pipe        ID = "underground_pipe"
	Gravel      ID = "decoration_gravel"
	Flowers     ID = "decoration_flowers"
	PipePlan    ID = "blueprint_pipe"
)

// DefaultSet возвращает реестр со встроенным набором тайлов.
// Используется генератором и утилитой mapctl, когда каталог с описаниями не задан.
func DefaultSet() *Registry {
	r := NewRegistry()
	for _, desc := range []Descriptor{
		{ID: Grass, Title: "Grass", Category: "Terrain", Kind: KindTerrain},
		{ID: Water, Title: "Water", Category: "Water", Kind: KindWater, AutoTile: true},
		{ID: RoadAsphalt, Title: "Asphalt road", Category: "Roads", Kind: KindRoad, AutoTile: true},
		{ID: RoadDirt, Title: "Dirt road", Category: "Roads", Kind: KindRoad, AutoTile: true},
		{ID: Residential, Title: "Residential zone", Category: "Zones", Kind: KindZone, Zones: []string{"residential"}},
		{ID: Industrial, Title: "Industrial zone", Category: "Zones", Kind: KindZone, Zones: []string{"industrial"}},
		{ID: House, Title: "House", Category: "Residential", Kind: KindDefault, Zones: []string{"residential"}},
		{ID: Office, Title: "Office", Category: "Commercial", Kind: KindDefault, Footprint: Size{Width: 2, Height: 2}},
		{ID: Warehouse, Title: "Warehouse", Category: "Industrial", Kind: KindDefault,
			GroundDecoration: []ID{Gravel, Flowers}, Zones: []string{"industrial"}},
		{ID: Oak, Title: "Oak", Category: CategoryFlora, Kind: KindDefault},
		{ID: Pine, Title: "Pine", Category: CategoryFlora, Kind: KindDefault},
		{ID: Pipe, Title: "Water pipe", Category: "Underground", Kind: KindUnderground, AutoTile: true},
		{ID: Gravel, Title: "Gravel", Category: "Decoration", Kind: KindGroundDecoration},
		{ID: Flowers, Title: "Flowers", Category: "Decoration", Kind: KindGroundDecoration},
		{ID: PipePlan, Title: "Pipe blueprint", Category: "Blueprint", Kind: KindBlueprint, AutoTile: true},
	} {
		// встроенный набор заведомо корректен
		_ = r.Register(desc)
	}
	return r
}
