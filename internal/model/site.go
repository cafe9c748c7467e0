package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Site represents a physical location such as a datacenter or server room.
type Site struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	UUID        string    `gorm:"size:36;uniqueIndex;not null" json:"uuid"`
	Name        string    `gorm:"uniqueIndex;size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`

	// Associations
	Racks          []Rack              `gorm:"foreignKey:SiteID;constraint:OnDelete:CASCADE" json:"racks,omitempty"`
	Providers      []Provider          `gorm:"foreignKey:SiteID;constraint:OnDelete:CASCADE" json:"providers,omitempty"`
	Configurations []RackConfiguration `gorm:"foreignKey:SiteID;constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate assigns the external identifier.
func (s *Site) BeforeCreate(tx *gorm.DB) error {
	if s.UUID == "" {
		s.UUID = uuid.NewString()
	}
	return nil
}
