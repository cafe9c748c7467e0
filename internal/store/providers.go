package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"racksum-backend/internal/apperr"
	"racksum-backend/internal/model"
	"racksum-backend/internal/placement"
)

func (s *gormStore) ListProviders(ctx context.Context, siteID int64) ([]model.Provider, error) {
	if _, err := s.GetSite(ctx, siteID); err != nil {
		return nil, err
	}
	var providers []model.Provider
	if err := s.db.WithContext(ctx).Where("site_id = ?", siteID).Order("name").Find(&providers).Error; err != nil {
		return nil, fmt.Errorf("failed to list providers of site %d: %w", siteID, err)
	}
	return providers, nil
}

func (s *gormStore) GetProvider(ctx context.Context, id int64) (*model.Provider, error) {
	var p model.Provider
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err, "provider %d not found", id)
	}
	return &p, nil
}

func (s *gormStore) CreateProvider(ctx context.Context, p *model.Provider) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkProvider(tx, p); err != nil {
			return err
		}
		if err := tx.Create(p).Error; err != nil {
			return translateWriteError(err, "provider %q", p.Name)
		}
		return nil
	})
}

func (s *gormStore) UpdateProvider(ctx context.Context, p *model.Provider) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current model.Provider
		if err := tx.First(&current, p.ID).Error; err != nil {
			return notFound(err, "provider %d not found", p.ID)
		}
		if current.SiteID != p.SiteID {
			return apperr.Validation("a provider cannot move between sites")
		}
		if err := checkProvider(tx, p); err != nil {
			return err
		}
		if err := tx.Save(p).Error; err != nil {
			return translateWriteError(err, "provider %q", p.Name)
		}
		return nil
	})
}

func (s *gormStore) DeleteProvider(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&model.Provider{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("provider %d not found", id)
	}
	return nil
}

// checkProvider normalizes the provider, enforces the racking rule and, for a
// racked provider, that the rack belongs to the same site and has room.
func checkProvider(tx *gorm.DB, p *model.Provider) error {
	if err := p.Normalize(); err != nil {
		return err
	}
	if err := placement.ValidateProviderRule(p.RUSize, p.RackID, p.Position); err != nil {
		return err
	}
	if p.RackID == nil {
		return nil
	}

	rack, occupants, err := lockRack(tx, *p.RackID)
	if err != nil {
		return err
	}
	if rack.SiteID != p.SiteID {
		return apperr.InvalidPlacementRule("rack %q belongs to another site", rack.Name)
	}
	c := placement.Candidate{Kind: placement.KindProvider, ID: p.ID, Position: *p.Position, Size: p.RUSize}
	return validate(rack, occupants, c)
}
