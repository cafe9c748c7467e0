package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"racksum-backend/internal/metrics"
	"racksum-backend/internal/model"
	"racksum-backend/internal/placement"
)

// Store defines the interface for all database operations.
type Store interface {
	Ping(ctx context.Context) error

	ListSites(ctx context.Context) ([]model.Site, error)
	GetSite(ctx context.Context, id int64) (*model.Site, error)
	FindSiteByName(ctx context.Context, name string) (*model.Site, error)
	CreateSite(ctx context.Context, site *model.Site) error
	UpdateSite(ctx context.Context, site *model.Site) error
	DeleteSite(ctx context.Context, id int64) error
	LoadSiteUsage(ctx context.Context, id int64) (*model.Site, error)
	LoadAllSites(ctx context.Context) ([]model.Site, error)

	ListDeviceTemplates(ctx context.Context, filter DeviceFilter) ([]model.DeviceTemplate, error)
	CountDeviceTemplates(ctx context.Context, category string) (int64, error)
	GetDeviceTemplate(ctx context.Context, id int64) (*model.DeviceTemplate, error)
	FindDeviceTemplate(ctx context.Context, deviceID string) (*model.DeviceTemplate, error)
	CreateDeviceTemplate(ctx context.Context, d *model.DeviceTemplate) error
	UpdateDeviceTemplate(ctx context.Context, d *model.DeviceTemplate) error
	DeleteDeviceTemplate(ctx context.Context, id int64) error
	UpsertDeviceTemplates(ctx context.Context, items []model.DeviceTemplate) (int, error)

	ListRacks(ctx context.Context, siteID int64) ([]model.Rack, error)
	GetRack(ctx context.Context, id int64) (*model.Rack, error)
	FindRackByName(ctx context.Context, siteID int64, name string) (*model.Rack, error)
	CreateRack(ctx context.Context, r *model.Rack) error
	UpdateRack(ctx context.Context, r *model.Rack) error
	DeleteRack(ctx context.Context, id int64) error

	CheckSpace(ctx context.Context, rackID int64, c placement.Candidate) error
	PlaceDevice(ctx context.Context, rackID int64, req PlacementRequest) (*model.RackDevice, error)
	MovePlacement(ctx context.Context, rackID, placementID int64, req PlacementRequest) (*model.RackDevice, error)
	RemovePlacement(ctx context.Context, rackID, placementID int64) error

	ListProviders(ctx context.Context, siteID int64) ([]model.Provider, error)
	GetProvider(ctx context.Context, id int64) (*model.Provider, error)
	CreateProvider(ctx context.Context, p *model.Provider) error
	UpdateProvider(ctx context.Context, p *model.Provider) error
	DeleteProvider(ctx context.Context, id int64) error

	ListConfigurations(ctx context.Context, siteID int64) ([]model.RackConfiguration, error)
	GetConfiguration(ctx context.Context, siteID int64, name string) (*model.RackConfiguration, error)
	SaveConfiguration(ctx context.Context, c *model.RackConfiguration) (bool, error)
	DeleteConfiguration(ctx context.Context, id int64) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db          *gorm.DB
	maxRUHeight int
}

// Option configures a gormStore.
type Option func(*gormStore)

// WithMaxRUHeight caps the height of racks created or resized through the
// store. It cannot raise the cap above model.MaxRUSize.
func WithMaxRUHeight(n int) Option {
	return func(s *gormStore) {
		if n > 0 && n <= model.MaxRUSize {
			s.maxRUHeight = n
		}
	}
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB, opts ...Option) Store {
	s := &gormStore{db: db, maxRUHeight: model.MaxRUSize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// lockRack loads a rack under a row lock together with everything occupying
// its space. sqlite ignores the lock clause and serialises writers instead.
func lockRack(tx *gorm.DB, rackID int64) (*model.Rack, []placement.Occupant, error) {
	var rack model.Rack
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&rack, rackID).Error; err != nil {
		return nil, nil, notFound(err, "rack %d not found", rackID)
	}
	occupants, err := loadOccupants(tx, rackID)
	if err != nil {
		return nil, nil, err
	}
	return &rack, occupants, nil
}

func loadOccupants(tx *gorm.DB, rackID int64) ([]placement.Occupant, error) {
	var devices []model.RackDevice
	if err := tx.Preload("Device").Where("rack_id = ?", rackID).Find(&devices).Error; err != nil {
		return nil, fmt.Errorf("failed to load placements of rack %d: %w", rackID, err)
	}
	var providers []model.Provider
	if err := tx.Where("rack_id = ?", rackID).Find(&providers).Error; err != nil {
		return nil, fmt.Errorf("failed to load providers of rack %d: %w", rackID, err)
	}
	return Occupants(devices, providers), nil
}

// Occupants converts placements and providers into the validator's view of
// rack space. Unracked providers are skipped.
func Occupants(devices []model.RackDevice, providers []model.Provider) []placement.Occupant {
	occupants := make([]placement.Occupant, 0, len(devices)+len(providers))
	for _, d := range devices {
		occupants = append(occupants, placement.Occupant{
			Kind:     placement.KindDevice,
			ID:       d.ID,
			Name:     d.DisplayName(),
			Position: d.Position,
			Size:     d.Device.RUSize,
		})
	}
	for _, p := range providers {
		if !p.Racked() {
			continue
		}
		occupants = append(occupants, placement.Occupant{
			Kind:     placement.KindProvider,
			ID:       p.ID,
			Name:     p.Name,
			Position: *p.Position,
			Size:     p.RUSize,
		})
	}
	return occupants
}

// validate runs the placement validator and records the verdict.
func validate(rack *model.Rack, occupants []placement.Occupant, c placement.Candidate) error {
	err := placement.Validate(rack.RUHeight, occupants, c)
	result := "ok"
	if err != nil {
		result = string(kindOf(err))
	}
	metrics.PlacementChecksTotal.WithLabelValues(string(c.Kind), result).Inc()
	return err
}
