package model

import (
	"strings"

	"racksum-backend/internal/apperr"
	"racksum-backend/internal/parse"
)

// Normalize trims the site's fields and checks its name.
func (s *Site) Normalize() error {
	name, err := parse.Name(s.Name)
	if err != nil {
		return apperr.Validation("site %v", err)
	}
	s.Name = name
	s.Description = strings.TrimSpace(s.Description)
	return nil
}

// Normalize trims the template's fields, applies the colour default and checks
// every bound.
func (d *DeviceTemplate) Normalize() error {
	d.DeviceID = strings.TrimSpace(d.DeviceID)
	if d.DeviceID == "" {
		return apperr.Validation("device_id must not be empty")
	}
	name, err := parse.Name(d.Name)
	if err != nil {
		return apperr.Validation("device %v", err)
	}
	d.Name = name
	category, err := parse.Name(d.Category)
	if err != nil {
		return apperr.Validation("category: %v", err)
	}
	d.Category = category
	if d.RUSize < 0 || d.RUSize > MaxRUSize {
		return apperr.Validation("ru_size must be between 0 and %d, got %d", MaxRUSize, d.RUSize)
	}
	if d.PowerDraw < 0 {
		return apperr.Validation("power_draw must not be negative, got %d", d.PowerDraw)
	}
	if d.PowerPortsUsed < 0 {
		return apperr.Validation("power_ports_used must not be negative, got %d", d.PowerPortsUsed)
	}
	color, err := parse.Color(d.Color, DefaultColor)
	if err != nil {
		return apperr.Validation("%v", err)
	}
	d.Color = color
	d.Description = strings.TrimSpace(d.Description)
	return nil
}

// Normalize trims the rack's fields and checks its height against maxHeight.
func (r *Rack) Normalize(maxHeight int) error {
	name, err := parse.Name(r.Name)
	if err != nil {
		return apperr.Validation("rack %v", err)
	}
	r.Name = name
	if maxHeight <= 0 || maxHeight > MaxRUSize {
		maxHeight = MaxRUSize
	}
	if r.RUHeight < 1 || r.RUHeight > maxHeight {
		return apperr.Validation("ru_height must be between 1 and %d, got %d", maxHeight, r.RUHeight)
	}
	r.Description = strings.TrimSpace(r.Description)
	return nil
}

// Normalize trims the provider's fields and checks its type and capacities.
// The racking rule is checked separately, against the rack.
func (p *Provider) Normalize() error {
	name, err := parse.Name(p.Name)
	if err != nil {
		return apperr.Validation("provider %v", err)
	}
	p.Name = name
	p.Type = ProviderType(strings.ToLower(strings.TrimSpace(string(p.Type))))
	if !p.Type.Valid() {
		return apperr.Validation("provider type must be %q or %q, got %q", ProviderPower, ProviderCooling, p.Type)
	}
	if p.PowerCapacity < 0 || p.PowerPortsCapacity < 0 || p.CoolingCapacity < 0 {
		return apperr.Validation("provider capacities must not be negative")
	}
	p.Description = strings.TrimSpace(p.Description)
	return nil
}

// Normalize trims the configuration's name and requires some data.
func (c *RackConfiguration) Normalize() error {
	name, err := parse.Name(c.Name)
	if err != nil {
		return apperr.Validation("configuration %v", err)
	}
	c.Name = name
	if len(c.ConfigData) == 0 {
		return apperr.Validation("config_data must not be empty")
	}
	c.Description = strings.TrimSpace(c.Description)
	return nil
}
