package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"racksum-backend/internal/apperr"
	"racksum-backend/internal/model"
	"racksum-backend/internal/placement"
	"racksum-backend/internal/store"
)

func (r *Registry) createDevice(ctx context.Context, raw json.RawMessage) (string, error) {
	var args struct {
		DeviceID       string `json:"device_id"`
		Name           string `json:"name"`
		Category       string `json:"category"`
		RUSize         *int   `json:"ru_size"`
		PowerDraw      *int   `json:"power_draw"`
		PowerPortsUsed *int   `json:"power_ports_used"`
		Color          string `json:"color"`
		Description    string `json:"description"`
	}
	if err := decode(raw, &args); err != nil {
		return "", err
	}
	if args.RUSize == nil {
		return "", apperr.Validation("ru_size is required")
	}
	if args.PowerDraw == nil {
		return "", apperr.Validation("power_draw is required")
	}
	ports := model.DefaultPorts
	if args.PowerPortsUsed != nil {
		ports = *args.PowerPortsUsed
	}

	d := &model.DeviceTemplate{
		DeviceID:       args.DeviceID,
		Name:           args.Name,
		Category:       args.Category,
		RUSize:         *args.RUSize,
		PowerDraw:      *args.PowerDraw,
		PowerPortsUsed: ports,
		Color:          args.Color,
		Description:    args.Description,
	}
	if err := r.store.CreateDeviceTemplate(ctx, d); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return "", apperr.Conflict(nil, "Device with ID '%s' already exists.", strings.TrimSpace(args.DeviceID))
		}
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Successfully created device '%s'\n", d.Name)
	fmt.Fprintf(&b, "   Device ID: %s\n", d.DeviceID)
	fmt.Fprintf(&b, "   Category: %s\n", d.Category)
	fmt.Fprintf(&b, "   Size: %dU\n", d.RUSize)
	fmt.Fprintf(&b, "   Power: %d W\n", d.PowerDraw)
	fmt.Fprintf(&b, "   Power Ports: %d\n", d.PowerPortsUsed)
	fmt.Fprintf(&b, "   Color: %s", d.Color)
	if d.Description != "" {
		fmt.Fprintf(&b, "\n   Description: %s", d.Description)
	}
	return b.String(), nil
}

func (r *Registry) createRack(ctx context.Context, raw json.RawMessage) (string, error) {
	var args struct {
		SiteName    string `json:"site_name"`
		RackName    string `json:"rack_name"`
		RUHeight    *int   `json:"ru_height"`
		Description string `json:"description"`
	}
	if err := decode(raw, &args); err != nil {
		return "", err
	}
	site, err := r.findSite(ctx, args.SiteName)
	if err != nil {
		return "", err
	}

	height := r.defaultRUHeight
	if args.RUHeight != nil {
		height = *args.RUHeight
	}
	rack := &model.Rack{
		SiteID:      site.ID,
		Name:        args.RackName,
		RUHeight:    height,
		Description: args.Description,
	}

	existing, err := r.store.FindRackByName(ctx, site.ID, strings.TrimSpace(args.RackName))
	switch {
	case err == nil:
		return "", apperr.Conflict(nil, "Rack '%s' already exists in site '%s'.", existing.Name, site.Name)
	case !errors.Is(err, apperr.ErrNotFound):
		return "", err
	}

	if err := r.store.CreateRack(ctx, rack); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return "", apperr.Conflict(nil, "Rack '%s' already exists in site '%s'.", strings.TrimSpace(args.RackName), site.Name)
		}
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Successfully created rack '%s' in site '%s'\n", rack.Name, site.Name)
	fmt.Fprintf(&b, "   Height: %dU", rack.RUHeight)
	if rack.Description != "" {
		fmt.Fprintf(&b, "\n   Description: %s", rack.Description)
	}
	return b.String(), nil
}

func (r *Registry) deleteRack(ctx context.Context, raw json.RawMessage) (string, error) {
	var args struct {
		SiteName string `json:"site_name"`
		RackName string `json:"rack_name"`
	}
	if err := decode(raw, &args); err != nil {
		return "", err
	}
	site, err := r.findSite(ctx, args.SiteName)
	if err != nil {
		return "", err
	}
	rack, err := r.findRack(ctx, site, args.RackName)
	if err != nil {
		return "", err
	}
	if n := len(rack.Devices); n > 0 {
		return "", apperr.Validation("Cannot delete rack '%s': it contains %d device(s). Remove all devices first.", rack.Name, n)
	}
	if err := r.store.DeleteRack(ctx, rack.ID); err != nil {
		return "", err
	}
	return fmt.Sprintf("Successfully deleted rack '%s' from site '%s'.", rack.Name, site.Name), nil
}

func (r *Registry) updateSiteName(ctx context.Context, raw json.RawMessage) (string, error) {
	var args struct {
		OldName string `json:"old_name"`
		NewName string `json:"new_name"`
	}
	if err := decode(raw, &args); err != nil {
		return "", err
	}
	site, err := r.findSite(ctx, args.OldName)
	if err != nil {
		return "", err
	}

	newName := strings.TrimSpace(args.NewName)
	other, err := r.store.FindSiteByName(ctx, newName)
	switch {
	case err == nil && other.ID != site.ID:
		return "", apperr.Conflict(nil, "A site named '%s' already exists.", other.Name)
	case err != nil && !errors.Is(err, apperr.ErrNotFound):
		return "", err
	}

	oldName := site.Name
	site.Name = newName
	if err := r.store.UpdateSite(ctx, site); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return "", apperr.Conflict(nil, "A site named '%s' already exists.", newName)
		}
		return "", err
	}
	return fmt.Sprintf("Successfully renamed site '%s' to '%s'.", oldName, site.Name), nil
}

func (r *Registry) createProvider(ctx context.Context, raw json.RawMessage) (string, error) {
	var args struct {
		SiteName           string `json:"site_name"`
		Name               string `json:"name"`
		Type               string `json:"type"`
		PowerCapacity      int    `json:"power_capacity"`
		PowerPortsCapacity int    `json:"power_ports_capacity"`
		CoolingCapacity    int    `json:"cooling_capacity"`
		RUSize             int    `json:"ru_size"`
		RackName           string `json:"rack_name"`
		Position           *int   `json:"position"`
		Description        string `json:"description"`
	}
	if err := decode(raw, &args); err != nil {
		return "", err
	}
	site, err := r.findSite(ctx, args.SiteName)
	if err != nil {
		return "", err
	}

	p := &model.Provider{
		SiteID:             site.ID,
		Name:               args.Name,
		Type:               model.ProviderType(args.Type),
		PowerCapacity:      args.PowerCapacity,
		PowerPortsCapacity: args.PowerPortsCapacity,
		CoolingCapacity:    args.CoolingCapacity,
		RUSize:             args.RUSize,
		Position:           args.Position,
		Description:        args.Description,
	}
	var rack *model.Rack
	if args.RackName != "" {
		if rack, err = r.findRack(ctx, site, args.RackName); err != nil {
			return "", err
		}
		p.RackID = &rack.ID
	}

	if err := r.store.CreateProvider(ctx, p); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Successfully created %s provider '%s' in site '%s'", p.Type, p.Name, site.Name)
	if p.PowerCapacity > 0 {
		fmt.Fprintf(&b, "\n   Power Capacity: %s", formatPower(float64(p.PowerCapacity)))
	}
	if p.PowerPortsCapacity > 0 {
		fmt.Fprintf(&b, "\n   Power Ports: %d", p.PowerPortsCapacity)
	}
	if p.CoolingCapacity > 0 {
		fmt.Fprintf(&b, "\n   Cooling Capacity: %s", formatHVAC(r.agg, float64(p.CoolingCapacity)))
	}
	if rack != nil {
		fmt.Fprintf(&b, "\n   Mounted: %s at %s", rack.Name, placement.NewSpan(*p.Position, p.RUSize))
	}
	return b.String(), nil
}

func (r *Registry) placeDevice(ctx context.Context, raw json.RawMessage) (string, error) {
	var args struct {
		SiteName     string `json:"site_name"`
		RackName     string `json:"rack_name"`
		DeviceID     string `json:"device_id"`
		Position     *int   `json:"position"`
		InstanceName string `json:"instance_name"`
	}
	if err := decode(raw, &args); err != nil {
		return "", err
	}
	if args.Position == nil {
		return "", apperr.Validation("position is required")
	}
	site, err := r.findSite(ctx, args.SiteName)
	if err != nil {
		return "", err
	}
	rack, err := r.findRack(ctx, site, args.RackName)
	if err != nil {
		return "", err
	}
	tmpl, err := r.store.FindDeviceTemplate(ctx, strings.TrimSpace(args.DeviceID))
	if errors.Is(err, apperr.ErrNotFound) {
		return "", apperr.NotFound("Device '%s' not found.", args.DeviceID)
	}
	if err != nil {
		return "", err
	}

	placed, err := r.store.PlaceDevice(ctx, rack.ID, store.PlacementRequest{
		DeviceID:     tmpl.ID,
		Position:     *args.Position,
		InstanceName: args.InstanceName,
	})
	if err != nil {
		return "", err
	}

	span := placement.NewSpan(placed.Position, tmpl.RUSize)
	var b strings.Builder
	fmt.Fprintf(&b, "Placed %s in %s/%s at %s\n", placed.DisplayName(), site.Name, rack.Name, span)
	fmt.Fprintf(&b, "   Type: %s (%s)\n", tmpl.Name, tmpl.DeviceID)
	fmt.Fprintf(&b, "   Power: %d W\n", tmpl.PowerDraw)
	fmt.Fprintf(&b, "   Heat: %s", formatHVAC(r.agg, r.agg.HeatOutput(tmpl.PowerDraw)))
	return b.String(), nil
}
