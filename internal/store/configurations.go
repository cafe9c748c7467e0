package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"racksum-backend/internal/apperr"
	"racksum-backend/internal/model"
)

// ListConfigurations lists saved configurations of one site, or of every
// site when siteID is zero.
func (s *gormStore) ListConfigurations(ctx context.Context, siteID int64) ([]model.RackConfiguration, error) {
	q := s.db.WithContext(ctx).Order("site_id, name")
	if siteID != 0 {
		if _, err := s.GetSite(ctx, siteID); err != nil {
			return nil, err
		}
		q = q.Where("site_id = ?", siteID)
	}
	var configs []model.RackConfiguration
	if err := q.Find(&configs).Error; err != nil {
		return nil, fmt.Errorf("failed to list configurations: %w", err)
	}
	return configs, nil
}

func (s *gormStore) GetConfiguration(ctx context.Context, siteID int64, name string) (*model.RackConfiguration, error) {
	var c model.RackConfiguration
	if err := s.db.WithContext(ctx).Where("site_id = ? AND name = ?", siteID, name).First(&c).Error; err != nil {
		return nil, notFound(err, "configuration %q not found", name)
	}
	return &c, nil
}

// SaveConfiguration stores c under its site and name, replacing the data of
// an existing configuration with the same name. It reports whether a new
// configuration was created. c is refreshed from the stored row.
func (s *gormStore) SaveConfiguration(ctx context.Context, c *model.RackConfiguration) (bool, error) {
	if err := c.Normalize(); err != nil {
		return false, err
	}
	created := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var site model.Site
		if err := tx.Select("id").First(&site, c.SiteID).Error; err != nil {
			return notFound(err, "site %d not found", c.SiteID)
		}

		var existing model.RackConfiguration
		err := tx.Where("site_id = ? AND name = ?", c.SiteID, c.Name).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			created = true
		case err != nil:
			return fmt.Errorf("failed to look up configuration %q: %w", c.Name, err)
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "site_id"}, {Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"description", "config_data", "updated_at"}),
		}).Create(c).Error; err != nil {
			return translateWriteError(err, "configuration %q", c.Name)
		}

		var saved model.RackConfiguration
		if err := tx.Where("site_id = ? AND name = ?", c.SiteID, c.Name).First(&saved).Error; err != nil {
			return fmt.Errorf("failed to reload configuration %q: %w", c.Name, err)
		}
		*c = saved
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (s *gormStore) DeleteConfiguration(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&model.RackConfiguration{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("configuration %d not found", id)
	}
	return nil
}
