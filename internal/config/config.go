package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации. Пустые поля файла остаются
// со значениями Default().
type Config struct {
	Map        MapConfig        `yaml:"map"`
	Projection ProjectionConfig `yaml:"projection"`
	Terrain    TerrainConfig    `yaml:"terrain"`
	Storage    StorageConfig    `yaml:"storage"`
	EventBus   EventBusConfig   `yaml:"eventbus"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type MapConfig struct {
	Columns   int    `yaml:"columns"`
	Rows      int    `yaml:"rows"`
	MaxHeight int    `yaml:"max_height"`
	Seed      int64  `yaml:"seed"`
	TilesPath string `yaml:"tiles_path"` // каталог JSON-описаний тайлов; пусто: встроенный набор
}

type ProjectionConfig struct {
	TileWidth    int     `yaml:"tile_width"`
	TileHeight   int     `yaml:"tile_height"`
	HeightOffset int     `yaml:"height_offset"`
	Zoom         float64 `yaml:"zoom"`
}

type TerrainConfig struct {
	Alpha      float64 `yaml:"alpha"`
	Beta       float64 `yaml:"beta"`
	Octaves    int32   `yaml:"octaves"`
	Scale      float64 `yaml:"scale"`
	WaterLevel int     `yaml:"water_level"`
	FloraRatio float64 `yaml:"flora_ratio"`
}

type StorageConfig struct {
	Backend     string         `yaml:"backend"` // memory | file | badger | redis | mysql | postgres | mongo
	Path        string         `yaml:"path"`    // каталог для file и badger
	Compression bool           `yaml:"compression"`
	Redis       RedisConfig    `yaml:"redis"`
	MySQL       MySQLConfig    `yaml:"mysql"`
	Postgres    PostgresConfig `yaml:"postgres"`
	Mongo       MongoConfig    `yaml:"mongo"`
}

type MySQLConfig struct {
	DSN string `yaml:"dsn"` // user:pass@tcp(host:port)/dbname
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"` // host=localhost user=isomap dbname=isomap sslmode=disable
}

type MongoConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

type RedisConfig struct {
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	KeyPrefix string        `yaml:"key_prefix"`
	Timeout   time.Duration `yaml:"timeout"`
}

type EventBusConfig struct {
	URL       string `yaml:"url"` // пусто: шина в памяти
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// Default возвращает полную конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Map: MapConfig{
			Columns:   64,
			Rows:      64,
			MaxHeight: 32,
			Seed:      1,
		},
		Projection: ProjectionConfig{
			TileWidth:    64,
			TileHeight:   32,
			HeightOffset: 24,
			Zoom:         1,
		},
		Terrain: TerrainConfig{
			Alpha:      2,
			Beta:       2,
			Octaves:    3,
			Scale:      0.05,
			WaterLevel: 2,
			FloraRatio: 0.08,
		},
		Storage: StorageConfig{
			Backend:     "file",
			Path:        "maps",
			Compression: true,
			Redis: RedisConfig{
				Addr:      "localhost:6379",
				KeyPrefix: "isomap:",
				Timeout:   5 * time.Second,
			},
			Mongo: MongoConfig{
				URI:        "mongodb://localhost:27017",
				Database:   "isomap",
				Collection: "maps",
			},
		},
		EventBus: EventBusConfig{
			Stream:    "ISOMAP_EVENTS",
			Retention: 24,
		},
		Metrics: MetricsConfig{},
		Logging: LoggingConfig{Level: "info"},
	}
}

// GetMetricsPort возвращает порт Prometheus метрик с поддержкой fallback значений
func (m *MetricsConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(m.Port, "ISOMAP_METRICS_PORT", 2112)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	// Используем дефолтное значение
	return defaultPort
}

// Validate проверяет значения, без которых карту не построить
func (c *Config) Validate() error {
	if c.Map.Columns <= 0 || c.Map.Rows <= 0 {
		return fmt.Errorf("некорректный размер карты %dx%d", c.Map.Columns, c.Map.Rows)
	}
	if c.Map.MaxHeight <= 0 {
		return fmt.Errorf("некорректная максимальная высота %d", c.Map.MaxHeight)
	}
	switch c.Storage.Backend {
	case "memory", "file", "badger", "redis", "mysql", "postgres", "mongo":
	default:
		return fmt.Errorf("неизвестное хранилище %q", c.Storage.Backend)
	}
	return nil
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", берётся ENV ISOMAP_CONFIG; если не задан и он,
// возвращается Default().
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("ISOMAP_CONFIG")
		if path == "" {
			return cfg, nil // конфиг не задан, используем дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения конфигурации %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
