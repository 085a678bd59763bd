package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ISOMAP_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_OverlaysFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "isomap.yaml")
	data := `
map:
  columns: 128
  seed: 42
storage:
  backend: badger
  path: /tmp/maps
  redis:
    timeout: 2s
eventbus:
  url: nats://localhost:4222
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	t.Setenv("ISOMAP_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 128, cfg.Map.Columns)
	assert.Equal(t, 64, cfg.Map.Rows, "Незаданные поля остаются по умолчанию")
	assert.Equal(t, int64(42), cfg.Map.Seed)
	assert.Equal(t, "badger", cfg.Storage.Backend)
	assert.Equal(t, 2*time.Second, cfg.Storage.Redis.Timeout)
	assert.Equal(t, "localhost:6379", cfg.Storage.Redis.Addr)
	assert.Equal(t, "nats://localhost:4222", cfg.EventBus.URL)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("storage:\n  backend: tape\n"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err, "Неизвестное хранилище")
}

func TestGetMetricsPort(t *testing.T) {
	m := MetricsConfig{}

	t.Setenv("ISOMAP_METRICS_PORT", "")
	assert.Equal(t, 2112, m.GetMetricsPort())

	t.Setenv("ISOMAP_METRICS_PORT", "9100")
	assert.Equal(t, 9100, m.GetMetricsPort())

	m.Port = 9200
	assert.Equal(t, 9200, m.GetMetricsPort())
}
