package resource

import (
	"math"

	"racksum-backend/internal/model"
)

// Conversion constants. 1 W of IT load dissipates about 3.41 BTU/hr of heat;
// one ton of refrigeration removes 12,000 BTU/hr.
const (
	DefaultWattsToBTU = 3.41
	DefaultBTUPerTon  = 12000.0
)

// Aggregator computes resource totals from placement data. It holds no state
// besides its conversion factors, so every call reflects the data passed in.
type Aggregator struct {
	WattsToBTU float64
	BTUPerTon  float64
}

// New returns an Aggregator, substituting defaults for non-positive factors.
func New(wattsToBTU, btuPerTon float64) *Aggregator {
	if wattsToBTU <= 0 {
		wattsToBTU = DefaultWattsToBTU
	}
	if btuPerTon <= 0 {
		btuPerTon = DefaultBTUPerTon
	}
	return &Aggregator{WattsToBTU: wattsToBTU, BTUPerTon: btuPerTon}
}

// RackUsage is the resource picture of a single rack.
type RackUsage struct {
	RackID             int64   `json:"rack_id"`
	Name               string  `json:"name"`
	RUHeight           int     `json:"ru_height"`
	RUUsed             int     `json:"ru_used"`
	RUAvailable        int     `json:"ru_available"`
	ProviderRU         int     `json:"provider_ru"`
	UtilizationPercent float64 `json:"utilization_percent"`
	DeviceCount        int     `json:"devices_count"`
	PowerWatts         int     `json:"power_watts"`
	HVACBTUHr          float64 `json:"hvac_btu_hr"`
	PowerPortsUsed     int     `json:"power_ports_used"`
}

// SiteTotals rolls up every rack of a site together with the supply offered
// by the site's providers.
type SiteTotals struct {
	SiteID             int64       `json:"site_id"`
	Name               string      `json:"name"`
	RackCount          int         `json:"racks_count"`
	DeviceCount        int         `json:"devices_count"`
	RUCapacity         int         `json:"ru_capacity"`
	RUUsed             int         `json:"ru_used"`
	RUAvailable        int         `json:"ru_available"`
	UtilizationPercent float64     `json:"utilization_percent"`
	PowerWatts         int         `json:"power_watts"`
	HVACBTUHr          float64     `json:"hvac_btu_hr"`
	PowerPortsUsed     int         `json:"power_ports_used"`
	Supply             Supply      `json:"supply"`
	Racks              []RackUsage `json:"racks"`
}

// Supply is the capacity offered by providers and how much of it is drawn.
type Supply struct {
	PowerCapacity      int     `json:"power_capacity"`
	PowerPortsCapacity int     `json:"power_ports_capacity"`
	CoolingCapacity    int     `json:"cooling_capacity"`
	PowerPercent       float64 `json:"power_percent"`
	PowerPortsPercent  float64 `json:"power_ports_percent"`
	CoolingPercent     float64 `json:"cooling_percent"`
}

// Summary is the rollup across all sites.
type Summary struct {
	Sites               int     `json:"sites"`
	Racks               int     `json:"racks"`
	DevicesInstalled    int     `json:"devices_installed"`
	DeviceTypes         int64   `json:"device_types_available"`
	RUCapacity          int     `json:"ru_total"`
	RUUsed              int     `json:"ru_used"`
	RUAvailable         int     `json:"ru_available"`
	UtilizationPercent  float64 `json:"utilization_percent"`
	PowerWatts          int     `json:"total_power_watts"`
	HVACBTUHr           float64 `json:"total_hvac_btu_hr"`
	PowerPortsUsed      int     `json:"power_ports_used"`
	AveragePowerPerRack float64 `json:"average_power_per_rack_watts"`
	Supply              Supply  `json:"supply"`
}

// RackPowerDraw sums the power draw of every device placed in the rack.
// Providers are supply and never count as draw.
func (a *Aggregator) RackPowerDraw(r *model.Rack) int {
	total := 0
	for _, d := range r.Devices {
		total += d.Device.PowerDraw
	}
	return total
}

// RackHVACLoad is the rack's power draw converted to BTU/hr.
func (a *Aggregator) RackHVACLoad(r *model.Rack) float64 {
	return a.HeatOutput(a.RackPowerDraw(r))
}

// RackPowerPortsUsed sums the PDU ports required by the rack's devices.
func (a *Aggregator) RackPowerPortsUsed(r *model.Rack) int {
	total := 0
	for _, d := range r.Devices {
		total += d.Device.PowerPortsUsed
	}
	return total
}

// RackRUUsed sums the RU size of the rack's devices.
func (a *Aggregator) RackRUUsed(r *model.Rack) int {
	total := 0
	for _, d := range r.Devices {
		total += d.Device.RUSize
	}
	return total
}

// RackRUAvailable is the rack height minus the RU used by devices.
func (a *Aggregator) RackRUAvailable(r *model.Rack) int {
	return r.RUHeight - a.RackRUUsed(r)
}

// HeatOutput converts watts to BTU/hr.
func (a *Aggregator) HeatOutput(watts int) float64 {
	return float64(watts) * a.WattsToBTU
}

// Tons converts BTU/hr to tons of refrigeration.
func (a *Aggregator) Tons(btu float64) float64 {
	return btu / a.BTUPerTon
}

// Rack computes the usage of a single rack. Devices must have their template
// loaded.
func (a *Aggregator) Rack(r *model.Rack) RackUsage {
	used := a.RackRUUsed(r)
	power := a.RackPowerDraw(r)

	providerRU := 0
	for _, p := range r.Providers {
		if p.Racked() {
			providerRU += p.RUSize
		}
	}

	return RackUsage{
		RackID:             r.ID,
		Name:               r.Name,
		RUHeight:           r.RUHeight,
		RUUsed:             used,
		RUAvailable:        r.RUHeight - used,
		ProviderRU:         providerRU,
		UtilizationPercent: Percent(float64(used), float64(r.RUHeight)),
		DeviceCount:        len(r.Devices),
		PowerWatts:         power,
		HVACBTUHr:          a.HeatOutput(power),
		PowerPortsUsed:     a.RackPowerPortsUsed(r),
	}
}

// Site computes the totals of a site from its racks and providers.
func (a *Aggregator) Site(s *model.Site) SiteTotals {
	t := SiteTotals{
		SiteID:    s.ID,
		Name:      s.Name,
		RackCount: len(s.Racks),
		Racks:     make([]RackUsage, 0, len(s.Racks)),
	}
	for i := range s.Racks {
		u := a.Rack(&s.Racks[i])
		t.Racks = append(t.Racks, u)
		t.DeviceCount += u.DeviceCount
		t.RUCapacity += u.RUHeight
		t.RUUsed += u.RUUsed
		t.PowerWatts += u.PowerWatts
		t.PowerPortsUsed += u.PowerPortsUsed
	}
	t.RUAvailable = t.RUCapacity - t.RUUsed
	t.UtilizationPercent = Percent(float64(t.RUUsed), float64(t.RUCapacity))
	t.HVACBTUHr = a.HeatOutput(t.PowerWatts)
	t.Supply = a.supply(s.Providers, t.PowerWatts, t.PowerPortsUsed, t.HVACBTUHr)
	return t
}

// Summarize rolls up all sites. deviceTypes is the number of device templates
// in the catalog.
func (a *Aggregator) Summarize(sites []model.Site, deviceTypes int64) Summary {
	sum := Summary{Sites: len(sites), DeviceTypes: deviceTypes}
	var providers []model.Provider
	for i := range sites {
		t := a.Site(&sites[i])
		sum.Racks += t.RackCount
		sum.DevicesInstalled += t.DeviceCount
		sum.RUCapacity += t.RUCapacity
		sum.RUUsed += t.RUUsed
		sum.PowerWatts += t.PowerWatts
		sum.PowerPortsUsed += t.PowerPortsUsed
		providers = append(providers, sites[i].Providers...)
	}
	sum.RUAvailable = sum.RUCapacity - sum.RUUsed
	sum.UtilizationPercent = Percent(float64(sum.RUUsed), float64(sum.RUCapacity))
	sum.HVACBTUHr = a.HeatOutput(sum.PowerWatts)
	if sum.Racks > 0 {
		sum.AveragePowerPerRack = math.Round(float64(sum.PowerWatts)/float64(sum.Racks)*100) / 100
	}
	sum.Supply = a.supply(providers, sum.PowerWatts, sum.PowerPortsUsed, sum.HVACBTUHr)
	return sum
}

func (a *Aggregator) supply(providers []model.Provider, power, ports int, hvac float64) Supply {
	var s Supply
	for _, p := range providers {
		s.PowerCapacity += p.PowerCapacity
		s.PowerPortsCapacity += p.PowerPortsCapacity
		s.CoolingCapacity += p.CoolingCapacity
	}
	s.PowerPercent = Percent(float64(power), float64(s.PowerCapacity))
	s.PowerPortsPercent = Percent(float64(ports), float64(s.PowerPortsCapacity))
	s.CoolingPercent = Percent(hvac, float64(s.CoolingCapacity))
	return s
}

// Percent returns used as a percentage of total rounded to one decimal place,
// or 0 when total is not positive.
func Percent(used, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(used/total*100*10) / 10
}
