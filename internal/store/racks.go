package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"racksum-backend/internal/apperr"
	"racksum-backend/internal/model"
)

func (s *gormStore) ListRacks(ctx context.Context, siteID int64) ([]model.Rack, error) {
	if _, err := s.GetSite(ctx, siteID); err != nil {
		return nil, err
	}
	var racks []model.Rack
	err := s.db.WithContext(ctx).
		Preload("Devices", func(db *gorm.DB) *gorm.DB { return db.Order("rack_devices.position") }).
		Preload("Devices.Device").
		Preload("Providers").
		Where("site_id = ?", siteID).Order("name").Find(&racks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list racks of site %d: %w", siteID, err)
	}
	return racks, nil
}

// GetRack returns a rack with its placements, their templates and its racked
// providers preloaded.
func (s *gormStore) GetRack(ctx context.Context, id int64) (*model.Rack, error) {
	var rack model.Rack
	err := s.db.WithContext(ctx).
		Preload("Devices", func(db *gorm.DB) *gorm.DB { return db.Order("rack_devices.position") }).
		Preload("Devices.Device").
		Preload("Providers").
		First(&rack, id).Error
	if err != nil {
		return nil, notFound(err, "rack %d not found", id)
	}
	return &rack, nil
}

// FindRackByName looks a rack up within a site by name, ignoring case.
func (s *gormStore) FindRackByName(ctx context.Context, siteID int64, name string) (*model.Rack, error) {
	var rack model.Rack
	err := s.db.WithContext(ctx).
		Preload("Devices", func(db *gorm.DB) *gorm.DB { return db.Order("rack_devices.position") }).
		Preload("Devices.Device").
		Preload("Providers").
		Where("site_id = ? AND LOWER(name) = LOWER(?)", siteID, name).
		First(&rack).Error
	if err != nil {
		return nil, notFound(err, "rack %q not found", name)
	}
	return &rack, nil
}

func (s *gormStore) CreateRack(ctx context.Context, r *model.Rack) error {
	if err := r.Normalize(s.maxRUHeight); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(r).Error; err != nil {
		return translateWriteError(err, "rack %q", r.Name)
	}
	return nil
}

// UpdateRack saves r. Shrinking a rack is refused when anything it holds
// would end above the new height.
func (s *gormStore) UpdateRack(ctx context.Context, r *model.Rack) error {
	if err := r.Normalize(s.maxRUHeight); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, occupants, err := lockRack(tx, r.ID)
		if err != nil {
			return err
		}
		if r.RUHeight < current.RUHeight {
			for _, o := range occupants {
				span := o.Span()
				if o.Size < 1 || span.End <= r.RUHeight {
					continue
				}
				return apperr.OutOfBounds(span.Start, span.End,
					"cannot shrink rack %q to %dU: %s %q occupies %s", current.Name, r.RUHeight, o.Kind, o.Name, span)
			}
		}
		if err := tx.Omit(clause.Associations).Save(r).Error; err != nil {
			return translateWriteError(err, "rack %q", r.Name)
		}
		return nil
	})
}

// DeleteRack removes the rack and its placements. Providers racked in it are
// kept but detached.
func (s *gormStore) DeleteRack(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rack model.Rack
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&rack, id).Error; err != nil {
			return notFound(err, "rack %d not found", id)
		}
		if err := tx.Model(&model.Provider{}).Where("rack_id = ?", id).
			Updates(map[string]any{"rack_id": nil, "position": nil}).Error; err != nil {
			return fmt.Errorf("failed to detach providers from rack %d: %w", id, err)
		}
		if err := tx.Where("rack_id = ?", id).Delete(&model.RackDevice{}).Error; err != nil {
			return fmt.Errorf("failed to delete placements of rack %d: %w", id, err)
		}
		if err := tx.Delete(&rack).Error; err != nil {
			return fmt.Errorf("failed to delete rack %d: %w", id, err)
		}
		return nil
	})
}
