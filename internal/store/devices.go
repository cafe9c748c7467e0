package store

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"racksum-backend/internal/apperr"
	"racksum-backend/internal/logger"
	"racksum-backend/internal/model"
	"racksum-backend/internal/placement"
)

func (s *gormStore) ListDeviceTemplates(ctx context.Context, filter DeviceFilter) ([]model.DeviceTemplate, error) {
	var devices []model.DeviceTemplate
	q := categoryFilter(s.db.WithContext(ctx), filter.Category).Order("category, name")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if err := q.Find(&devices).Error; err != nil {
		return nil, fmt.Errorf("failed to list device templates: %w", err)
	}
	return devices, nil
}

func (s *gormStore) CountDeviceTemplates(ctx context.Context, category string) (int64, error) {
	var n int64
	q := categoryFilter(s.db.WithContext(ctx).Model(&model.DeviceTemplate{}), category)
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count device templates: %w", err)
	}
	return n, nil
}

func categoryFilter(db *gorm.DB, category string) *gorm.DB {
	category = strings.TrimSpace(category)
	if category == "" {
		return db
	}
	return db.Where("LOWER(category) LIKE ?", "%"+strings.ToLower(category)+"%")
}

func (s *gormStore) GetDeviceTemplate(ctx context.Context, id int64) (*model.DeviceTemplate, error) {
	var d model.DeviceTemplate
	if err := s.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, notFound(err, "device template %d not found", id)
	}
	return &d, nil
}

// FindDeviceTemplate looks a template up by its catalog device_id.
func (s *gormStore) FindDeviceTemplate(ctx context.Context, deviceID string) (*model.DeviceTemplate, error) {
	var d model.DeviceTemplate
	if err := s.db.WithContext(ctx).Where("device_id = ?", strings.TrimSpace(deviceID)).First(&d).Error; err != nil {
		return nil, notFound(err, "device %q not found", deviceID)
	}
	return &d, nil
}

func (s *gormStore) CreateDeviceTemplate(ctx context.Context, d *model.DeviceTemplate) error {
	if err := d.Normalize(); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(d).Error; err != nil {
		return translateWriteError(err, "device template %q", d.DeviceID)
	}
	return nil
}

// UpdateDeviceTemplate saves d. When its RU size changes, every rack holding
// a placement of the template is checked again with the new size, and the
// update is refused if any placement would no longer fit.
func (s *gormStore) UpdateDeviceTemplate(ctx context.Context, d *model.DeviceTemplate) error {
	if err := d.Normalize(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current model.DeviceTemplate
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&current, d.ID).Error; err != nil {
			return notFound(err, "device template %d not found", d.ID)
		}

		if current.RUSize != d.RUSize {
			if err := revalidateResizes(tx, map[int64]model.DeviceTemplate{d.ID: *d}); err != nil {
				return err
			}
		}

		if err := tx.Save(d).Error; err != nil {
			return translateWriteError(err, "device template %q", d.DeviceID)
		}
		return nil
	})
}

// revalidateResizes checks every rack holding a placement of a resized
// template. All pending sizes are applied to the rack's occupants before any
// placement is validated, so templates resized together are checked against
// each other's new spans.
func revalidateResizes(tx *gorm.DB, resized map[int64]model.DeviceTemplate) error {
	if len(resized) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(resized))
	for id := range resized {
		ids = append(ids, id)
	}

	var placed []model.RackDevice
	if err := tx.Where("device_id IN ?", ids).Order("rack_id, position").Find(&placed).Error; err != nil {
		return fmt.Errorf("failed to find placements of resized device templates: %w", err)
	}
	byRack := make(map[int64][]model.RackDevice)
	var rackIDs []int64
	for _, p := range placed {
		if d := resized[p.TemplateID]; d.RUSize < 1 {
			return apperr.Validation("device template %q is placed in a rack and cannot become 0U", d.DeviceID)
		}
		if _, ok := byRack[p.RackID]; !ok {
			rackIDs = append(rackIDs, p.RackID)
		}
		byRack[p.RackID] = append(byRack[p.RackID], p)
	}

	for _, rackID := range rackIDs {
		rack, occupants, err := lockRack(tx, rackID)
		if err != nil {
			return err
		}
		sizes := make(map[int64]int, len(byRack[rackID]))
		for _, p := range byRack[rackID] {
			sizes[p.ID] = resized[p.TemplateID].RUSize
		}
		for i := range occupants {
			if size, ok := sizes[occupants[i].ID]; ok && occupants[i].Kind == placement.KindDevice {
				occupants[i].Size = size
			}
		}

		for _, p := range byRack[rackID] {
			c := placement.Candidate{Kind: placement.KindDevice, ID: p.ID, Position: p.Position, Size: sizes[p.ID]}
			if err := validate(rack, occupants, c); err != nil {
				return err
			}
		}
	}
	return nil
}

// DeleteDeviceTemplate removes the template and every placement of it.
func (s *gormStore) DeleteDeviceTemplate(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("device_id = ?", id).Delete(&model.RackDevice{}).Error; err != nil {
			return fmt.Errorf("failed to delete placements of device template %d: %w", id, err)
		}
		res := tx.Delete(&model.DeviceTemplate{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete device template %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("device template %d not found", id)
		}
		return nil
	})
}

// UpsertDeviceTemplates writes catalog entries keyed by device_id. Entries
// identical to what is stored are skipped. It returns how many rows were
// written.
func (s *gormStore) UpsertDeviceTemplates(ctx context.Context, items []model.DeviceTemplate) (int, error) {
	existing, err := s.fetchAllDeviceTemplates(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("could not pre-fetch device templates")
		existing = make(map[string]model.DeviceTemplate)
	}

	var toUpsert []model.DeviceTemplate
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if err := item.Normalize(); err != nil {
			return 0, fmt.Errorf("catalog entry %q: %w", item.DeviceID, err)
		}
		if seen[item.DeviceID] {
			return 0, apperr.Validation("catalog lists device_id %q more than once", item.DeviceID)
		}
		seen[item.DeviceID] = true
		if old, ok := existing[item.DeviceID]; ok && sameTemplate(old, item) {
			continue
		}
		toUpsert = append(toUpsert, item)
	}
	if len(toUpsert) == 0 {
		return 0, nil
	}

	logger.Info().Int("count", len(toUpsert)).Msg("batch upserting device templates")
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		resized := make(map[int64]model.DeviceTemplate)
		for _, item := range toUpsert {
			if old, ok := existing[item.DeviceID]; ok && old.RUSize != item.RUSize {
				resized[old.ID] = item
			}
		}
		if err := revalidateResizes(tx, resized); err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "device_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "category", "ru_size", "power_draw", "power_ports_used", "color", "description", "updated_at",
			}),
		}).CreateInBatches(&toUpsert, 100).Error
	})
	if err != nil {
		return 0, translateWriteError(err, "device catalog")
	}
	return len(toUpsert), nil
}

func (s *gormStore) fetchAllDeviceTemplates(ctx context.Context) (map[string]model.DeviceTemplate, error) {
	var devices []model.DeviceTemplate
	if err := s.db.WithContext(ctx).Find(&devices).Error; err != nil {
		return nil, err
	}
	m := make(map[string]model.DeviceTemplate, len(devices))
	for _, d := range devices {
		m[d.DeviceID] = d
	}
	return m, nil
}

func sameTemplate(a, b model.DeviceTemplate) bool {
	return a.Name == b.Name &&
		a.Category == b.Category &&
		a.RUSize == b.RUSize &&
		a.PowerDraw == b.PowerDraw &&
		a.PowerPortsUsed == b.PowerPortsUsed &&
		a.Color == b.Color &&
		a.Description == b.Description
}
