package model

import "time"

// Rack belongs to one site and has a fixed height in rack units.
type Rack struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	SiteID      int64     `gorm:"not null;uniqueIndex:idx_racks_site_name" json:"site_id"`
	Name        string    `gorm:"size:255;not null;uniqueIndex:idx_racks_site_name" json:"name"`
	RUHeight    int       `gorm:"column:ru_height;not null;check:chk_racks_ru_height,ru_height >= 1" json:"ru_height"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`

	// Associations
	Devices   []RackDevice `gorm:"foreignKey:RackID;constraint:OnDelete:CASCADE" json:"devices,omitempty"`
	Providers []Provider   `gorm:"foreignKey:RackID;constraint:OnDelete:SET NULL" json:"providers,omitempty"`
}
