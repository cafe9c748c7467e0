package main

import (
	"errors"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"racksum-backend/config"
	"racksum-backend/internal/db"
	"racksum-backend/internal/logger"
	"racksum-backend/internal/resource"
	"racksum-backend/internal/store"
	"racksum-backend/internal/tools"
)

const defaultConfigPath = "./config/config.yaml"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "racksumd",
	Short: "Datacenter rack planning backend",
	Long: `racksumd serves the rack planning API: sites, racks, device templates,
placements with RU validation, power and cooling providers, and resource
totals. Without a subcommand it starts the HTTP server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	defPath := os.Getenv("CONFIG_PATH")
	if defPath == "" {
		defPath = defaultConfigPath
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defPath, "Path to the YAML configuration file (or set CONFIG_PATH)")

	rootCmd.AddCommand(serveCmd, migrateCmd, importDevicesCmd, toolCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the configuration file. A missing file at the default
// path falls back to built-in defaults so the CLI works out of the box.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if errors.Is(err, os.ErrNotExist) && configPath == defaultConfigPath {
		logger.Warn().Str("path", configPath).Msg("configuration file not found, using defaults")
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return nil, err
	}

	logger.SetLevel(cfg.Log.Level)
	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}
	logger.Info().Str("path", configPath).Msg("configuration loaded")
	return cfg, nil
}

// app bundles the components every command builds from the configuration.
type app struct {
	cfg   *config.Config
	db    *gorm.DB
	store store.Store
	agg   *resource.Aggregator
	tools *tools.Registry
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		return nil, err
	}

	s := store.NewGormStore(gormDB, store.WithMaxRUHeight(cfg.Placement.MaxRUHeight))
	agg := resource.New(cfg.Placement.WattsToBTU, cfg.Placement.BTUPerTon)

	return &app{
		cfg:   cfg,
		db:    gormDB,
		store: s,
		agg:   agg,
		tools: tools.NewRegistry(s, agg, cfg.Placement.DefaultRUHeight),
	}, nil
}

func (a *app) close() {
	sqlDB, err := a.db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn().Err(err).Msg("failed to close database")
	}
}
