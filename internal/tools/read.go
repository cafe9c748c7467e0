package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"racksum-backend/internal/apperr"
	"racksum-backend/internal/model"
	"racksum-backend/internal/parse"
	"racksum-backend/internal/placement"
	"racksum-backend/internal/resource"
	"racksum-backend/internal/store"
)

const timeLayout = "2006-01-02 15:04"

func (r *Registry) findSite(ctx context.Context, name string) (*model.Site, error) {
	site, err := r.store.FindSiteByName(ctx, strings.TrimSpace(name))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("Site '%s' not found.", name)
	}
	return site, err
}

func (r *Registry) findRack(ctx context.Context, site *model.Site, name string) (*model.Rack, error) {
	rack, err := r.store.FindRackByName(ctx, site.ID, strings.TrimSpace(name))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("Rack '%s' not found in site '%s'.", name, site.Name)
	}
	return rack, err
}

type siteStatsJSON struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	RacksCount   int     `json:"racks_count"`
	DevicesCount int     `json:"devices_count"`
	PowerWatts   int     `json:"power_watts"`
	PowerKW      float64 `json:"power_kw"`
	HVACBTUHr    float64 `json:"hvac_btu_hr"`
	HVACTons     float64 `json:"hvac_tons"`
	CreatedAt    string  `json:"created_at"`
}

func (r *Registry) getSiteStats(ctx context.Context, raw json.RawMessage) (string, error) {
	var args struct {
		OutputFormat string `json:"output_format"`
	}
	if err := decode(raw, &args); err != nil {
		return "", err
	}
	format, err := outputFormat(args.OutputFormat)
	if err != nil {
		return "", err
	}

	sites, err := r.store.LoadAllSites(ctx)
	if err != nil {
		return "", err
	}

	if format == FormatJSON {
		out := struct {
			Sites   []siteStatsJSON `json:"sites"`
			Message string          `json:"message,omitempty"`
		}{Sites: []siteStatsJSON{}}
		if len(sites) == 0 {
			out.Message = "No sites found"
		}
		for i := range sites {
			t := r.agg.Site(&sites[i])
			out.Sites = append(out.Sites, siteStatsJSON{
				Name:         sites[i].Name,
				Description:  sites[i].Description,
				RacksCount:   t.RackCount,
				DevicesCount: t.DeviceCount,
				PowerWatts:   t.PowerWatts,
				PowerKW:      round2(float64(t.PowerWatts) / 1000),
				HVACBTUHr:    round2(t.HVACBTUHr),
				HVACTons:     round2(r.agg.Tons(t.HVACBTUHr)),
				CreatedAt:    sites[i].CreatedAt.Format(time.RFC3339),
			})
		}
		return toJSON(out)
	}

	if len(sites) == 0 {
		return "No sites found in the database.", nil
	}
	var b strings.Builder
	b.WriteString("=== SITE STATISTICS ===\n")
	for i := range sites {
		t := r.agg.Site(&sites[i])
		fmt.Fprintf(&b, "\nSite: %s\n", sites[i].Name)
		if sites[i].Description != "" {
			fmt.Fprintf(&b, "   Description: %s\n", sites[i].Description)
		}
		fmt.Fprintf(&b, "   Racks: %d\n", t.RackCount)
		fmt.Fprintf(&b, "   Devices: %d\n", t.DeviceCount)
		fmt.Fprintf(&b, "   Total Power: %s\n", formatPower(float64(t.PowerWatts)))
		fmt.Fprintf(&b, "   Total HVAC Load: %s\n", formatHVAC(r.agg, t.HVACBTUHr))
		fmt.Fprintf(&b, "   Created: %s\n", sites[i].CreatedAt.Format(timeLayout))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (r *Registry) getSiteDetails(ctx context.Context, raw json.RawMessage) (string, error) {
	var args struct {
		SiteName     string `json:"site_name"`
		OutputFormat string `json:"output_format"`
	}
	if err := decode(raw, &args); err != nil {
		return "", err
	}
	format, err := outputFormat(args.OutputFormat)
	if err != nil {
		return "", err
	}
	found, err := r.findSite(ctx, args.SiteName)
	if err != nil {
		return "", err
	}
	site, err := r.store.LoadSiteUsage(ctx, found.ID)
	if err != nil {
		return "", err
	}
	t := r.agg.Site(site)

	if format == FormatJSON {
		return toJSON(struct {
			Name        string              `json:"name"`
			Description string              `json:"description"`
			CreatedAt   string              `json:"created_at"`
			UpdatedAt   string              `json:"updated_at"`
			Totals      resource.SiteTotals `json:"totals"`
			Providers   []model.Provider    `json:"providers"`
		}{
			Name:        site.Name,
			Description: site.Description,
			CreatedAt:   site.CreatedAt.Format(time.RFC3339),
			UpdatedAt:   site.UpdatedAt.Format(time.RFC3339),
			Totals:      t,
			Providers:   append([]model.Provider{}, site.Providers...),
		})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "=== SITE DETAILS: %s ===\n\n", site.Name)
	if site.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", site.Description)
	}
	fmt.Fprintf(&b, "Created: %s\n", site.CreatedAt.Format(timeLayout))
	fmt.Fprintf(&b, "Last Updated: %s\n\n", site.UpdatedAt.Format(timeLayout))
	fmt.Fprintf(&b, "Total Racks: %d\n", t.RackCount)
	fmt.Fprintf(&b, "Space Used: %s\n", formatSpace(t.RUUsed, t.RUCapacity))
	fmt.Fprintf(&b, "Total Power: %s\n", formatPower(float64(t.PowerWatts)))
	fmt.Fprintf(&b, "Total HVAC Load: %s\n", formatHVAC(r.agg, t.HVACBTUHr))

	if len(t.Racks) > 0 {
		b.WriteString("\n--- RACKS ---\n")
		for i, u := range t.Racks {
			fmt.Fprintf(&b, "\nRack: %s\n", u.Name)
			if d := site.Racks[i].Description; d != "" {
				fmt.Fprintf(&b, "   Description: %s\n", d)
			}
			fmt.Fprintf(&b, "   Height: %dU\n", u.RUHeight)
			fmt.Fprintf(&b, "   Space Used: %s\n", formatSpace(u.RUUsed, u.RUHeight))
			fmt.Fprintf(&b, "   Available: %dU\n", u.RUAvailable)
			fmt.Fprintf(&b, "   Devices: %d\n", u.DeviceCount)
			fmt.Fprintf(&b, "   Power: %s\n", formatPower(float64(u.PowerWatts)))
			fmt.Fprintf(&b, "   HVAC Load: %s\n", formatHVAC(r.agg, u.HVACBTUHr))
		}
	}

	if len(site.Providers) > 0 {
		s := t.Supply
		b.WriteString("\n--- SUPPLY ---\n")
		fmt.Fprintf(&b, "Providers: %d\n", len(site.Providers))
		fmt.Fprintf(&b, "Power Capacity: %s, %.1f%% drawn\n", formatPower(float64(s.PowerCapacity)), s.PowerPercent)
		fmt.Fprintf(&b, "Power Ports: %d / %d (%.1f%%)\n", t.PowerPortsUsed, s.PowerPortsCapacity, s.PowerPortsPercent)
		fmt.Fprintf(&b, "Cooling Capacity: %s, %.1f%% used\n", formatHVAC(r.agg, float64(s.CoolingCapacity)), s.CoolingPercent)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

type rackDeviceJSON struct {
	PlacementID  int64   `json:"placement_id"`
	InstanceName string  `json:"instance_name"`
	DeviceType   string  `json:"device_type"`
	DeviceID     string  `json:"device_id"`
	Category     string  `json:"category"`
	Position     int     `json:"position"`
	RUSize       int     `json:"ru_size"`
	PowerWatts   int     `json:"power_watts"`
	HeatBTUHr    float64 `json:"heat_btu_hr"`
}

func (r *Registry) getRackDetails(ctx context.Context, raw json.RawMessage) (string, error) {
	var args struct {
		SiteName     string `json:"site_name"`
		RackName     string `json:"rack_name"`
		Rack         string `json:"rack"`
		OutputFormat string `json:"output_format"`
	}
	if err := decode(raw, &args); err != nil {
		return "", err
	}
	format, err := outputFormat(args.OutputFormat)
	if err != nil {
		return "", err
	}
	if args.Rack != "" {
		ref, err := parse.ParseRackRef(args.Rack)
		if err != nil {
			return "", apperr.Validation("%v", err)
		}
		args.SiteName, args.RackName = ref.Site, ref.Rack
	}
	if args.SiteName == "" || args.RackName == "" {
		return "", apperr.Validation("site_name and rack_name are required")
	}

	site, err := r.findSite(ctx, args.SiteName)
	if err != nil {
		return "", err
	}
	rack, err := r.findRack(ctx, site, args.RackName)
	if err != nil {
		return "", err
	}
	u := r.agg.Rack(rack)
	free := placement.FreeRanges(rack.RUHeight, store.Occupants(rack.Devices, rack.Providers))

	if format == FormatJSON {
		devices := make([]rackDeviceJSON, 0, len(rack.Devices))
		for _, d := range rack.Devices {
			devices = append(devices, rackDeviceJSON{
				PlacementID:  d.ID,
				InstanceName: d.DisplayName(),
				DeviceType:   d.Device.Name,
				DeviceID:     d.Device.DeviceID,
				Category:     d.Device.Category,
				Position:     d.Position,
				RUSize:       d.Device.RUSize,
				PowerWatts:   d.Device.PowerDraw,
				HeatBTUHr:    round2(r.agg.HeatOutput(d.Device.PowerDraw)),
			})
		}
		return toJSON(struct {
			SiteName    string             `json:"site_name"`
			RackName    string             `json:"rack_name"`
			Description string             `json:"description"`
			Usage       resource.RackUsage `json:"usage"`
			PowerKW     float64            `json:"power_kw"`
			HVACTons    float64            `json:"hvac_tons"`
			FreeRanges  []placement.Span   `json:"free_ranges"`
			Devices     []rackDeviceJSON   `json:"devices"`
			Providers   []model.Provider   `json:"providers"`
		}{
			SiteName:    site.Name,
			RackName:    rack.Name,
			Description: rack.Description,
			Usage:       u,
			PowerKW:     round2(float64(u.PowerWatts) / 1000),
			HVACTons:    round2(r.agg.Tons(u.HVACBTUHr)),
			FreeRanges:  append([]placement.Span{}, free...),
			Devices:     devices,
			Providers:   append([]model.Provider{}, rack.Providers...),
		})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "=== RACK DETAILS: %s - %s ===\n\n", site.Name, rack.Name)
	if rack.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", rack.Description)
	}
	fmt.Fprintf(&b, "Height: %dU\n", rack.RUHeight)
	fmt.Fprintf(&b, "Created: %s\n", rack.CreatedAt.Format(timeLayout))
	fmt.Fprintf(&b, "Last Updated: %s\n\n", rack.UpdatedAt.Format(timeLayout))
	fmt.Fprintf(&b, "Space Used: %s\n", formatSpace(u.RUUsed, u.RUHeight))
	fmt.Fprintf(&b, "Space Available: %dU\n", u.RUAvailable)
	if u.ProviderRU > 0 {
		fmt.Fprintf(&b, "Held by Providers: %dU\n", u.ProviderRU)
	}
	fmt.Fprintf(&b, "Free Ranges: %s\n", spanList(free))
	fmt.Fprintf(&b, "Total Power: %s\n", formatPower(float64(u.PowerWatts)))
	fmt.Fprintf(&b, "HVAC Load: %s\n\n", formatHVAC(r.agg, u.HVACBTUHr))

	if len(rack.Devices) == 0 {
		b.WriteString("No devices installed in this rack.")
		return b.String(), nil
	}
	b.WriteString("--- DEVICES ---\n")
	for _, d := range rack.Devices {
		fmt.Fprintf(&b, "\n%s\n", d.DisplayName())
		fmt.Fprintf(&b, "   Type: %s\n", d.Device.Name)
		fmt.Fprintf(&b, "   Category: %s\n", d.Device.Category)
		fmt.Fprintf(&b, "   Position: %s\n", placement.NewSpan(d.Position, d.Device.RUSize))
		fmt.Fprintf(&b, "   Size: %dU\n", d.Device.RUSize)
		fmt.Fprintf(&b, "   Power: %d W\n", d.Device.PowerDraw)
		fmt.Fprintf(&b, "   Heat: %.0f BTU/hr\n", r.agg.HeatOutput(d.Device.PowerDraw))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func spanList(spans []placement.Span) string {
	if len(spans) == 0 {
		return "none"
	}
	parts := make([]string, len(spans))
	for i, s := range spans {
		parts[i] = s.String()
	}
	return strings.Join(parts, ", ")
}

type deviceJSON struct {
	DeviceID       string  `json:"device_id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	RUSize         int     `json:"ru_size"`
	PowerWatts     int     `json:"power_watts"`
	PowerPortsUsed int     `json:"power_ports_used"`
	HeatBTUHr      float64 `json:"heat_btu_hr"`
	Color          string  `json:"color"`
}

type categoryJSON struct {
	Category string       `json:"category"`
	Devices  []deviceJSON `json:"devices"`
}

func (r *Registry) getAvailableResources(ctx context.Context, raw json.RawMessage) (string, error) {
	var args struct {
		Category     string `json:"category"`
		Limit        int    `json:"limit"`
		OutputFormat string `json:"output_format"`
	}
	if err := decode(raw, &args); err != nil {
		return "", err
	}
	format, err := outputFormat(args.OutputFormat)
	if err != nil {
		return "", err
	}

	devices, err := r.store.ListDeviceTemplates(ctx, store.DeviceFilter{Category: args.Category, Limit: args.Limit})
	if err != nil {
		return "", err
	}

	byCategory := make(map[string][]model.DeviceTemplate)
	var categories []string
	for _, d := range devices {
		if _, ok := byCategory[d.Category]; !ok {
			categories = append(categories, d.Category)
		}
		byCategory[d.Category] = append(byCategory[d.Category], d)
	}
	sort.Strings(categories)

	if format == FormatJSON {
		out := struct {
			TotalDeviceTypes int            `json:"total_device_types"`
			Categories       []categoryJSON `json:"categories"`
			Message          string         `json:"message,omitempty"`
		}{TotalDeviceTypes: len(devices), Categories: []categoryJSON{}}
		if len(devices) == 0 {
			out.Message = "No devices found"
		}
		for _, c := range categories {
			cj := categoryJSON{Category: c}
			for _, d := range byCategory[c] {
				cj.Devices = append(cj.Devices, deviceJSON{
					DeviceID:       d.DeviceID,
					Name:           d.Name,
					Description:    d.Description,
					RUSize:         d.RUSize,
					PowerWatts:     d.PowerDraw,
					PowerPortsUsed: d.PowerPortsUsed,
					HeatBTUHr:      round2(r.agg.HeatOutput(d.PowerDraw)),
					Color:          d.Color,
				})
			}
			out.Categories = append(out.Categories, cj)
		}
		return toJSON(out)
	}

	if len(devices) == 0 {
		msg := "No devices found"
		if args.Category != "" {
			msg += fmt.Sprintf(" in category '%s'", args.Category)
		}
		return msg + ".", nil
	}

	var b strings.Builder
	b.WriteString("=== AVAILABLE DEVICE TYPES ===\n")
	for _, c := range categories {
		fmt.Fprintf(&b, "\n%s\n", c)
		for _, d := range byCategory[c] {
			fmt.Fprintf(&b, "\n   - %s (%s)\n", d.Name, d.DeviceID)
			if d.Description != "" {
				fmt.Fprintf(&b, "     Description: %s\n", d.Description)
			}
			fmt.Fprintf(&b, "     Size: %dU\n", d.RUSize)
			fmt.Fprintf(&b, "     Power: %d W\n", d.PowerDraw)
			fmt.Fprintf(&b, "     Heat: %.0f BTU/hr\n", r.agg.HeatOutput(d.PowerDraw))
			fmt.Fprintf(&b, "     Color: %s\n", d.Color)
		}
	}
	fmt.Fprintf(&b, "\nTotal device types shown: %d", len(devices))
	if args.Limit > 0 {
		total, err := r.store.CountDeviceTemplates(ctx, args.Category)
		if err != nil {
			return "", err
		}
		if total > int64(len(devices)) {
			fmt.Fprintf(&b, "\n(Showing first %d of %d total devices)", len(devices), total)
		}
	}
	return b.String(), nil
}

func (r *Registry) getResourceSummary(ctx context.Context, raw json.RawMessage) (string, error) {
	var args struct {
		OutputFormat string `json:"output_format"`
	}
	if err := decode(raw, &args); err != nil {
		return "", err
	}
	format, err := outputFormat(args.OutputFormat)
	if err != nil {
		return "", err
	}

	sites, err := r.store.LoadAllSites(ctx)
	if err != nil {
		return "", err
	}
	deviceTypes, err := r.store.CountDeviceTemplates(ctx, "")
	if err != nil {
		return "", err
	}
	s := r.agg.Summarize(sites, deviceTypes)

	if format == FormatJSON {
		return toJSON(struct {
			resource.Summary
			PowerKW             float64 `json:"total_power_kw"`
			HVACTons            float64 `json:"total_hvac_tons"`
			AveragePowerPerRack float64 `json:"average_power_per_rack_kw"`
		}{
			Summary:             s,
			PowerKW:             round2(float64(s.PowerWatts) / 1000),
			HVACTons:            round2(r.agg.Tons(s.HVACBTUHr)),
			AveragePowerPerRack: round2(s.AveragePowerPerRack / 1000),
		})
	}

	if s.Sites == 0 {
		return "No sites found in the database.", nil
	}
	var b strings.Builder
	b.WriteString("=== RESOURCE UTILIZATION SUMMARY ===\n\n")
	fmt.Fprintf(&b, "Total Sites: %d\n", s.Sites)
	fmt.Fprintf(&b, "Total Racks: %d\n", s.Racks)
	fmt.Fprintf(&b, "Total Devices Installed: %d\n", s.DevicesInstalled)
	fmt.Fprintf(&b, "Device Types Available: %d\n\n", s.DeviceTypes)

	b.WriteString("--- CAPACITY ---\n")
	fmt.Fprintf(&b, "Total RU Capacity: %dU\n", s.RUCapacity)
	fmt.Fprintf(&b, "Total RU Used: %dU\n", s.RUUsed)
	fmt.Fprintf(&b, "Total RU Available: %dU\n", s.RUAvailable)
	if s.RUCapacity > 0 {
		fmt.Fprintf(&b, "Utilization: %.1f%%\n", s.UtilizationPercent)
	}

	b.WriteString("\n--- POWER & COOLING ---\n")
	fmt.Fprintf(&b, "Total Power Draw: %s\n", formatPower(float64(s.PowerWatts)))
	fmt.Fprintf(&b, "Total HVAC Load: %s\n", formatHVAC(r.agg, s.HVACBTUHr))
	if s.Racks > 0 {
		fmt.Fprintf(&b, "\nAverage per Rack: %s\n", formatPower(s.AveragePowerPerRack))
	}
	if s.Supply.PowerCapacity > 0 || s.Supply.CoolingCapacity > 0 {
		fmt.Fprintf(&b, "\nPower Capacity: %s (%.1f%% drawn)\n", formatPower(float64(s.Supply.PowerCapacity)), s.Supply.PowerPercent)
		fmt.Fprintf(&b, "Cooling Capacity: %s (%.1f%% used)\n", formatHVAC(r.agg, float64(s.Supply.CoolingCapacity)), s.Supply.CoolingPercent)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
