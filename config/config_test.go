package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "database:\n  dsn: \"file::memory:\"\n  driver: sqlite\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10.0, cfg.Server.RateLimitPerSec)
	assert.Equal(t, 5, cfg.Server.RateLimitBurst)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "warn", cfg.Database.LogLevel)
	assert.Equal(t, 3.41, cfg.Placement.WattsToBTU)
	assert.Equal(t, 12000.0, cfg.Placement.BTUPerTon)
	assert.Equal(t, 42, cfg.Placement.DefaultRUHeight)
	assert.Equal(t, 52, cfg.Placement.MaxRUHeight)
	assert.Equal(t, 30*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_KeepsExplicitValues(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
placement:
  watts_to_btu: 3.412
  default_ru_height: 48
catalog:
  source: ./devices.json
  timeout_seconds: 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 3.412, cfg.Placement.WattsToBTU)
	assert.Equal(t, 48, cfg.Placement.DefaultRUHeight)
	assert.Equal(t, "./devices.json", cfg.Catalog.Source)
	assert.Equal(t, 5*time.Second, cfg.Catalog.Timeout)
}

func TestLoad_DefaultHeightAboveMaxIsReset(t *testing.T) {
	path := writeConfig(t, "placement:\n  default_ru_height: 60\n  max_ru_height: 52\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.Placement.DefaultRUHeight)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "server: [not, a, map"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 42, cfg.Placement.DefaultRUHeight)
}
