package model

import "time"

// RackDevice is a placement of a device template at a starting RU position.
// No two placements in a rack share a starting position.
type RackDevice struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	RackID       int64     `gorm:"not null;uniqueIndex:idx_rack_devices_rack_position" json:"rack_id"`
	TemplateID   int64     `gorm:"column:device_id;not null;index" json:"device_id"`
	Position     int       `gorm:"not null;uniqueIndex:idx_rack_devices_rack_position;check:chk_rack_devices_position,position >= 1" json:"position"`
	InstanceName string    `gorm:"size:255" json:"instance_name"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`

	// Associations
	Device DeviceTemplate `gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE" json:"device"`
}

// DisplayName is the instance name, falling back to the template name.
func (d RackDevice) DisplayName() string {
	if d.InstanceName != "" {
		return d.InstanceName
	}
	return d.Device.Name
}
