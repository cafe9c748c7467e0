package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"racksum-backend/internal/model"
)

func (s *gormStore) ListSites(ctx context.Context) ([]model.Site, error) {
	var sites []model.Site
	if err := s.db.WithContext(ctx).Order("name").Find(&sites).Error; err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	return sites, nil
}

func (s *gormStore) GetSite(ctx context.Context, id int64) (*model.Site, error) {
	var site model.Site
	if err := s.db.WithContext(ctx).First(&site, id).Error; err != nil {
		return nil, notFound(err, "site %d not found", id)
	}
	return &site, nil
}

// FindSiteByName looks a site up by name, ignoring case.
func (s *gormStore) FindSiteByName(ctx context.Context, name string) (*model.Site, error) {
	var site model.Site
	if err := s.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&site).Error; err != nil {
		return nil, notFound(err, "site %q not found", name)
	}
	return &site, nil
}

func (s *gormStore) CreateSite(ctx context.Context, site *model.Site) error {
	if err := site.Normalize(); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(site).Error; err != nil {
		return translateWriteError(err, "site %q", site.Name)
	}
	return nil
}

func (s *gormStore) UpdateSite(ctx context.Context, site *model.Site) error {
	if err := site.Normalize(); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Omit(clause.Associations).Save(site)
	if res.Error != nil {
		return translateWriteError(res.Error, "site %q", site.Name)
	}
	return nil
}

// DeleteSite removes a site with its racks, placements, providers and saved
// configurations in one transaction.
func (s *gormStore) DeleteSite(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var site model.Site
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&site, id).Error; err != nil {
			return notFound(err, "site %d not found", id)
		}

		rackIDs := tx.Model(&model.Rack{}).Select("id").Where("site_id = ?", id)
		if err := tx.Where("rack_id IN (?)", rackIDs).Delete(&model.RackDevice{}).Error; err != nil {
			return fmt.Errorf("failed to delete placements of site %d: %w", id, err)
		}
		if err := tx.Where("site_id = ?", id).Delete(&model.Provider{}).Error; err != nil {
			return fmt.Errorf("failed to delete providers of site %d: %w", id, err)
		}
		if err := tx.Where("site_id = ?", id).Delete(&model.Rack{}).Error; err != nil {
			return fmt.Errorf("failed to delete racks of site %d: %w", id, err)
		}
		if err := tx.Where("site_id = ?", id).Delete(&model.RackConfiguration{}).Error; err != nil {
			return fmt.Errorf("failed to delete configurations of site %d: %w", id, err)
		}
		if err := tx.Delete(&site).Error; err != nil {
			return fmt.Errorf("failed to delete site %d: %w", id, err)
		}
		return nil
	})
}

// LoadSiteUsage returns a site with racks, their placements and templates,
// and every provider preloaded, ready for aggregation.
func (s *gormStore) LoadSiteUsage(ctx context.Context, id int64) (*model.Site, error) {
	var site model.Site
	err := usagePreloads(s.db.WithContext(ctx)).First(&site, id).Error
	if err != nil {
		return nil, notFound(err, "site %d not found", id)
	}
	return &site, nil
}

// LoadAllSites is LoadSiteUsage for every site.
func (s *gormStore) LoadAllSites(ctx context.Context) ([]model.Site, error) {
	var sites []model.Site
	if err := usagePreloads(s.db.WithContext(ctx)).Order("name").Find(&sites).Error; err != nil {
		return nil, fmt.Errorf("failed to load sites: %w", err)
	}
	return sites, nil
}

func usagePreloads(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Racks", func(db *gorm.DB) *gorm.DB { return db.Order("racks.name") }).
		Preload("Racks.Devices", func(db *gorm.DB) *gorm.DB { return db.Order("rack_devices.position") }).
		Preload("Racks.Devices.Device").
		Preload("Racks.Providers").
		Preload("Providers", func(db *gorm.DB) *gorm.DB { return db.Order("providers.name") })
}
