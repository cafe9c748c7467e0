package model

import (
	"time"

	"gorm.io/datatypes"
)

// RackConfiguration is a user-authored rack layout stored verbatim.
type RackConfiguration struct {
	ID          int64          `gorm:"primaryKey" json:"id"`
	SiteID      int64          `gorm:"not null;uniqueIndex:idx_rack_configurations_site_name" json:"site_id"`
	Name        string         `gorm:"size:255;not null;uniqueIndex:idx_rack_configurations_site_name" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	ConfigData  datatypes.JSON `gorm:"not null" json:"config_data"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
}
