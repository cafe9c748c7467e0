package model

import "time"

// Limits shared by device templates and racks.
const (
	MaxRUSize    = 52
	DefaultColor = "#000000"
	DefaultPorts = 1
)

// DeviceTemplate is a reusable device specification. Racks hold placements
// of templates, never templates themselves.
type DeviceTemplate struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	DeviceID       string    `gorm:"column:device_id;uniqueIndex;size:255;not null" json:"device_id"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	Category       string    `gorm:"size:100;index;not null" json:"category"`
	RUSize         int       `gorm:"column:ru_size;not null;check:chk_devices_ru_size,ru_size >= 0 AND ru_size <= 52" json:"ru_size"`
	PowerDraw      int       `gorm:"not null;check:chk_devices_power_draw,power_draw >= 0" json:"power_draw"`
	PowerPortsUsed int       `gorm:"not null;check:chk_devices_power_ports,power_ports_used >= 0" json:"power_ports_used"`
	Color          string    `gorm:"size:7;not null" json:"color"`
	Description    string    `gorm:"type:text" json:"description"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

// TableName keeps the table name used by existing deployments.
func (DeviceTemplate) TableName() string { return "devices" }
