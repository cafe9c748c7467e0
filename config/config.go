package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"racksum-backend/internal/logger"
)

// Config represents the overall application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Placement PlacementConfig `yaml:"placement"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port              int     `yaml:"port"`
	RateLimitPerSec   float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst    int     `yaml:"rate_limit_burst"`
	LimiterTTLMinutes int     `yaml:"limiter_ttl_minutes"`
	ShutdownSeconds   int     `yaml:"shutdown_seconds"`
	GinMode           string  `yaml:"gin_mode"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // postgres or sqlite
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogLevel               string `yaml:"log_level"` // silent, error, warn, info
	EnableRangeConstraints bool   `yaml:"enable_range_constraints"`
}

// PlacementConfig holds the constants used by placement checks and resource
// totals.
type PlacementConfig struct {
	WattsToBTU      float64 `yaml:"watts_to_btu"`
	BTUPerTon       float64 `yaml:"btu_per_ton"`
	DefaultRUHeight int     `yaml:"default_ru_height"`
	MaxRUHeight     int     `yaml:"max_ru_height"`
}

// CatalogConfig describes where device templates are imported from.
type CatalogConfig struct {
	Source         string        `yaml:"source"` // file path or http(s) URL
	HTTPProxy      string        `yaml:"http_proxy"`
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	Timeout        time.Duration `yaml:"-"`
	SyncOnStart    bool          `yaml:"sync_on_start"`
}

// LogConfig holds the logging configuration.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration with every default applied, backed by a
// local sqlite file.
func Default() *Config {
	cfg := &Config{Database: DatabaseConfig{Driver: "sqlite", DSN: "racksum.db"}}
	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.LimiterTTLMinutes <= 0 {
		cfg.Server.LimiterTTLMinutes = 10
	}
	if cfg.Server.ShutdownSeconds <= 0 {
		cfg.Server.ShutdownSeconds = 5
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}

	if cfg.Placement.WattsToBTU <= 0 {
		cfg.Placement.WattsToBTU = 3.41
	}
	if cfg.Placement.BTUPerTon <= 0 {
		cfg.Placement.BTUPerTon = 12000
	}
	if cfg.Placement.MaxRUHeight <= 0 {
		cfg.Placement.MaxRUHeight = 52
	}
	if cfg.Placement.DefaultRUHeight <= 0 || cfg.Placement.DefaultRUHeight > cfg.Placement.MaxRUHeight {
		logger.Warn().Int("default_ru_height", cfg.Placement.DefaultRUHeight).
			Msg("placement.default_ru_height is not set or invalid; defaulting to 42")
		cfg.Placement.DefaultRUHeight = 42
	}

	if cfg.Catalog.TimeoutSeconds <= 0 {
		cfg.Catalog.TimeoutSeconds = 30
	}
	cfg.Catalog.Timeout = time.Duration(cfg.Catalog.TimeoutSeconds) * time.Second

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
