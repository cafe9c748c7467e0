package model

import "time"

// ProviderType is the kind of resource a provider supplies.
type ProviderType string

const (
	ProviderPower   ProviderType = "power"
	ProviderCooling ProviderType = "cooling"
)

// Valid reports whether t is a known provider type.
func (t ProviderType) Valid() bool {
	return t == ProviderPower || t == ProviderCooling
}

// Provider supplies power or cooling to a site. It may also occupy rack space,
// in which case RackID and Position are both set.
type Provider struct {
	ID                 int64        `gorm:"primaryKey" json:"id"`
	SiteID             int64        `gorm:"not null;index" json:"site_id"`
	Name               string       `gorm:"size:255;not null" json:"name"`
	Type               ProviderType `gorm:"size:16;not null" json:"type"`
	PowerCapacity      int          `gorm:"not null" json:"power_capacity"`
	PowerPortsCapacity int          `gorm:"not null" json:"power_ports_capacity"`
	CoolingCapacity    int          `gorm:"not null" json:"cooling_capacity"`
	Description        string       `gorm:"type:text" json:"description"`
	RUSize             int          `gorm:"column:ru_size;not null;check:chk_providers_racking,ru_size >= 0 AND ((rack_id IS NULL AND position IS NULL) OR (ru_size > 0 AND rack_id IS NOT NULL AND position >= 1))" json:"ru_size"`
	RackID             *int64       `gorm:"uniqueIndex:idx_providers_rack_position" json:"rack_id"`
	Position           *int         `gorm:"uniqueIndex:idx_providers_rack_position" json:"position"`
	CreatedAt          time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time    `gorm:"not null" json:"updated_at"`
}

// Racked reports whether the provider currently occupies rack space.
func (p Provider) Racked() bool {
	return p.RUSize > 0 && p.RackID != nil && p.Position != nil
}
