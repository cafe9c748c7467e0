package store

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"racksum-backend/internal/apperr"
	"racksum-backend/internal/model"
	"racksum-backend/internal/placement"
)

// CheckSpace validates a candidate against the rack as currently stored
// without writing anything.
func (s *gormStore) CheckSpace(ctx context.Context, rackID int64, c placement.Candidate) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rack, occupants, err := lockRack(tx, rackID)
		if err != nil {
			return err
		}
		return validate(rack, occupants, c)
	})
}

// PlaceDevice places a device template into a rack. The rack row is locked
// while its occupants are read and validated, so two concurrent placements
// cannot both claim the same RUs.
func (s *gormStore) PlaceDevice(ctx context.Context, rackID int64, req PlacementRequest) (*model.RackDevice, error) {
	var placed model.RackDevice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rack, occupants, err := lockRack(tx, rackID)
		if err != nil {
			return err
		}
		tmpl, err := placeableTemplate(tx, req.DeviceID)
		if err != nil {
			return err
		}

		c := placement.Candidate{Kind: placement.KindDevice, Position: req.Position, Size: tmpl.RUSize}
		if err := validate(rack, occupants, c); err != nil {
			return err
		}

		placed = model.RackDevice{
			RackID:       rack.ID,
			TemplateID:   tmpl.ID,
			Position:     req.Position,
			InstanceName: strings.TrimSpace(req.InstanceName),
		}
		if err := tx.Omit("Device").Create(&placed).Error; err != nil {
			return translateWriteError(err, "placement at position %d in rack %q", req.Position, rack.Name)
		}
		placed.Device = *tmpl
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &placed, nil
}

// MovePlacement changes the position, and optionally the instance name, of an
// existing placement. The placement's own span is ignored during the check.
func (s *gormStore) MovePlacement(ctx context.Context, rackID, placementID int64, req PlacementRequest) (*model.RackDevice, error) {
	var moved model.RackDevice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rack, occupants, err := lockRack(tx, rackID)
		if err != nil {
			return err
		}
		if err := tx.Preload("Device").Where("rack_id = ?", rackID).First(&moved, placementID).Error; err != nil {
			return notFound(err, "placement %d not found in rack %d", placementID, rackID)
		}

		c := placement.Candidate{Kind: placement.KindDevice, ID: moved.ID, Position: req.Position, Size: moved.Device.RUSize}
		if err := validate(rack, occupants, c); err != nil {
			return err
		}

		moved.Position = req.Position
		if name := strings.TrimSpace(req.InstanceName); name != "" {
			moved.InstanceName = name
		}
		if err := tx.Omit("Device").Save(&moved).Error; err != nil {
			return translateWriteError(err, "placement at position %d in rack %q", req.Position, rack.Name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &moved, nil
}

func (s *gormStore) RemovePlacement(ctx context.Context, rackID, placementID int64) error {
	res := s.db.WithContext(ctx).Where("rack_id = ?", rackID).Delete(&model.RackDevice{}, placementID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("placement %d not found in rack %d", placementID, rackID)
	}
	return nil
}

func placeableTemplate(tx *gorm.DB, id int64) (*model.DeviceTemplate, error) {
	var tmpl model.DeviceTemplate
	if err := tx.First(&tmpl, id).Error; err != nil {
		return nil, notFound(err, "device template %d not found", id)
	}
	if tmpl.RUSize < 1 {
		return nil, apperr.Validation("device %q is 0U and cannot be placed in a rack", tmpl.Name)
	}
	return &tmpl, nil
}
