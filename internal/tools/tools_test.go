package tools

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"racksum-backend/config"
	"racksum-backend/internal/db"
	"racksum-backend/internal/model"
	"racksum-backend/internal/resource"
	"racksum-backend/internal/store"
)

type fixture struct {
	store store.Store
	reg   *Registry
	site  *model.Site
	rack  *model.Rack
	ctx   context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gormDB, err := db.Init(&config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "tools.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := gormDB.DB()
		sqlDB.Close()
	})

	s := store.NewGormStore(gormDB)
	ctx := context.Background()

	site := &model.Site{Name: "Main DC", Description: "Primary"}
	require.NoError(t, s.CreateSite(ctx, site))
	rack := &model.Rack{SiteID: site.ID, Name: "R1", RUHeight: 42}
	require.NoError(t, s.CreateRack(ctx, rack))
	for _, d := range []*model.DeviceTemplate{
		{DeviceID: "srv-2u", Name: "Server 2U", Category: "server", RUSize: 2, PowerDraw: 500, PowerPortsUsed: 2},
		{DeviceID: "sw-1u", Name: "Switch", Category: "network", RUSize: 1, PowerDraw: 150, PowerPortsUsed: 1},
	} {
		require.NoError(t, s.CreateDeviceTemplate(ctx, d))
	}

	return &fixture{
		store: s,
		reg:   NewRegistry(s, resource.New(0, 0), 42),
		site:  site,
		rack:  rack,
		ctx:   ctx,
	}
}

func (f *fixture) call(t *testing.T, name, args string) Result {
	t.Helper()
	res, err := f.reg.Call(f.ctx, name, json.RawMessage(args))
	require.NoError(t, err)
	return res
}

func TestFormatters(t *testing.T) {
	agg := resource.New(0, 0)

	assert.Equal(t, "1,500 W (1.50 kW)", formatPower(1500))
	assert.Equal(t, "5,115 BTU/hr (0.43 tons)", formatHVAC(agg, agg.HeatOutput(1500)))
	assert.Equal(t, "2U / 42U (4.8%)", formatSpace(2, 42))
	assert.Equal(t, "0U / 0U (0.0%)", formatSpace(0, 0))
}

func TestDefinitions(t *testing.T) {
	f := newFixture(t)

	defs := f.reg.Definitions()
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
		assert.Equal(t, "object", d.InputSchema["type"], d.Name)
	}
	assert.Equal(t, []string{
		"create_device", "create_provider", "create_rack", "delete_rack",
		"get_available_resources", "get_rack_details", "get_resource_summary",
		"get_site_details", "get_site_stats", "place_device", "update_site_name",
	}, names)
}

func TestCall_UnknownTool(t *testing.T) {
	f := newFixture(t)

	_, err := f.reg.Call(f.ctx, "drop_tables", nil)
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestCall_ErrorsComeBackAsText(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		tool string
		args string
		want string
	}{
		{"missing site", "get_site_details", `{"site_name":"Nowhere"}`, "Site 'Nowhere' not found."},
		{"missing rack", "get_rack_details", `{"site_name":"Main DC","rack_name":"R9"}`, "Rack 'R9' not found in site 'Main DC'."},
		{"missing device", "place_device", `{"site_name":"Main DC","rack_name":"R1","device_id":"nope","position":1}`, "Device 'nope' not found."},
		{"unknown argument", "get_site_stats", `{"fromat":"json"}`, "invalid arguments"},
		{"bad output format", "get_site_stats", `{"output_format":"xml"}`, "output_format must be"},
		{"missing ru_size", "create_device", `{"device_id":"x","name":"X","category":"c","power_draw":1}`, "ru_size is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := f.call(t, tt.tool, tt.args)
			assert.True(t, res.IsError)
			assert.Contains(t, res.Text, tt.want)
		})
	}
}

func TestPlaceDeviceAndRackDetails(t *testing.T) {
	f := newFixture(t)

	res := f.call(t, "place_device", `{"site_name":"main dc","rack_name":"r1","device_id":"srv-2u","position":1,"instance_name":"web-01"}`)
	require.False(t, res.IsError, res.Text)
	assert.Contains(t, res.Text, "Placed web-01 in Main DC/R1 at RU 1-2")

	res = f.call(t, "place_device", `{"site_name":"Main DC","rack_name":"R1","device_id":"sw-1u","position":2}`)
	assert.True(t, res.IsError)
	assert.NotContains(t, res.Text, "Error:")

	res = f.call(t, "get_rack_details", `{"rack":"Main DC/R1"}`)
	require.False(t, res.IsError, res.Text)
	assert.Contains(t, res.Text, "Space Used: 2U / 42U (4.8%)")
	assert.Contains(t, res.Text, "Free Ranges: RU 3-42")
	assert.Contains(t, res.Text, "Total Power: 500 W (0.50 kW)")
	assert.Contains(t, res.Text, "HVAC Load: 1,705 BTU/hr (0.14 tons)")
	assert.Contains(t, res.Text, "web-01")

	res = f.call(t, "get_rack_details", `{"site_name":"Main DC","rack_name":"R1","output_format":"json"}`)
	require.False(t, res.IsError, res.Text)
	var out struct {
		Usage struct {
			RUUsed     int `json:"ru_used"`
			PowerWatts int `json:"power_watts"`
		} `json:"usage"`
		FreeRanges []struct{ Start, End int } `json:"free_ranges"`
		Devices    []struct {
			InstanceName string `json:"instance_name"`
			Position     int    `json:"position"`
		} `json:"devices"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Text), &out))
	assert.Equal(t, 2, out.Usage.RUUsed)
	assert.Equal(t, 500, out.Usage.PowerWatts)
	require.Len(t, out.FreeRanges, 1)
	assert.Equal(t, 3, out.FreeRanges[0].Start)
	assert.Equal(t, 42, out.FreeRanges[0].End)
	require.Len(t, out.Devices, 1)
	assert.Equal(t, "web-01", out.Devices[0].InstanceName)
}

func TestSiteStatsAndSummary(t *testing.T) {
	f := newFixture(t)
	for _, pos := range []string{"1", "3", "5"} {
		res := f.call(t, "place_device", `{"site_name":"Main DC","rack_name":"R1","device_id":"srv-2u","position":`+pos+`}`)
		require.False(t, res.IsError, res.Text)
	}

	res := f.call(t, "get_site_stats", `{}`)
	require.False(t, res.IsError, res.Text)
	assert.Contains(t, res.Text, "Site: Main DC")
	assert.Contains(t, res.Text, "Devices: 3")
	assert.Contains(t, res.Text, "Total Power: 1,500 W (1.50 kW)")
	assert.Contains(t, res.Text, "Total HVAC Load: 5,115 BTU/hr (0.43 tons)")

	res = f.call(t, "get_site_stats", `{"output_format":"json"}`)
	var stats struct {
		Sites []siteStatsJSON `json:"sites"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Text), &stats))
	require.Len(t, stats.Sites, 1)
	assert.Equal(t, 1, stats.Sites[0].RacksCount)
	assert.Equal(t, 1500, stats.Sites[0].PowerWatts)
	assert.Equal(t, 1.5, stats.Sites[0].PowerKW)
	assert.Equal(t, 0.43, stats.Sites[0].HVACTons)

	res = f.call(t, "get_resource_summary", `{"output_format":"json"}`)
	var sum map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Text), &sum))
	assert.EqualValues(t, 1, sum["sites"])
	assert.EqualValues(t, 3, sum["devices_installed"])
	assert.EqualValues(t, 2, sum["device_types_available"])
	assert.EqualValues(t, 6, sum["ru_used"])
	assert.EqualValues(t, 1500, sum["total_power_watts"])

	res = f.call(t, "get_resource_summary", "")
	assert.Contains(t, res.Text, "Total RU Used: 6U")
	assert.Contains(t, res.Text, "Utilization: 14.3%")
}

func TestGetSiteDetails_WithProviders(t *testing.T) {
	f := newFixture(t)

	res := f.call(t, "create_provider", `{"site_name":"Main DC","name":"PDU A","type":"power","power_capacity":5000,"power_ports_capacity":24,"ru_size":1,"rack_name":"R1","position":42}`)
	require.False(t, res.IsError, res.Text)
	assert.Contains(t, res.Text, "Mounted: R1 at RU 42")

	res = f.call(t, "place_device", `{"site_name":"Main DC","rack_name":"R1","device_id":"sw-1u","position":42}`)
	assert.True(t, res.IsError, "a provider holds RU 42")

	res = f.call(t, "get_site_details", `{"site_name":"MAIN DC"}`)
	require.False(t, res.IsError, res.Text)
	assert.Contains(t, res.Text, "Rack: R1")
	assert.Contains(t, res.Text, "Power Capacity: 5,000 W (5.00 kW), 0.0% drawn")

	res = f.call(t, "get_rack_details", `{"rack":"Main DC/R1"}`)
	assert.Contains(t, res.Text, "Held by Providers: 1U")
	assert.Contains(t, res.Text, "Free Ranges: RU 1-41")
}

func TestGetAvailableResources(t *testing.T) {
	f := newFixture(t)

	res := f.call(t, "get_available_resources", `{"limit":1}`)
	require.False(t, res.IsError, res.Text)
	assert.Contains(t, res.Text, "Total device types shown: 1")
	assert.Contains(t, res.Text, "(Showing first 1 of 2 total devices)")

	res = f.call(t, "get_available_resources", `{"category":"NET","output_format":"json"}`)
	var out struct {
		Total      int            `json:"total_device_types"`
		Categories []categoryJSON `json:"categories"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Text), &out))
	assert.Equal(t, 1, out.Total)
	require.Len(t, out.Categories, 1)
	assert.Equal(t, "network", out.Categories[0].Category)
	assert.Equal(t, "sw-1u", out.Categories[0].Devices[0].DeviceID)

	res = f.call(t, "get_available_resources", `{"category":"storage"}`)
	assert.Equal(t, "No devices found in category 'storage'.", res.Text)
}

func TestWriteTools(t *testing.T) {
	f := newFixture(t)

	t.Run("create device defaults ports", func(t *testing.T) {
		res := f.call(t, "create_device", `{"device_id":"fw-1u","name":"Firewall","category":"security","ru_size":1,"power_draw":200}`)
		require.False(t, res.IsError, res.Text)
		tmpl, err := f.store.FindDeviceTemplate(f.ctx, "fw-1u")
		require.NoError(t, err)
		assert.Equal(t, 1, tmpl.PowerPortsUsed)
		assert.Equal(t, model.DefaultColor, tmpl.Color)

		res = f.call(t, "create_device", `{"device_id":"fw-1u","name":"Firewall","category":"security","ru_size":1,"power_draw":200}`)
		assert.True(t, res.IsError)
		assert.Equal(t, "Device with ID 'fw-1u' already exists.", res.Text)
	})

	t.Run("create rack", func(t *testing.T) {
		res := f.call(t, "create_rack", `{"site_name":"Main DC","rack_name":"R2"}`)
		require.False(t, res.IsError, res.Text)
		assert.Contains(t, res.Text, "Height: 42U")

		res = f.call(t, "create_rack", `{"site_name":"Main DC","rack_name":"r2"}`)
		assert.True(t, res.IsError)
		assert.Equal(t, "Rack 'R2' already exists in site 'Main DC'.", res.Text)

		res = f.call(t, "create_rack", `{"site_name":"Main DC","rack_name":"Tall","ru_height":60}`)
		assert.True(t, res.IsError)
	})

	t.Run("delete rack refuses devices", func(t *testing.T) {
		res := f.call(t, "place_device", `{"site_name":"Main DC","rack_name":"R1","device_id":"sw-1u","position":10}`)
		require.False(t, res.IsError, res.Text)

		res = f.call(t, "delete_rack", `{"site_name":"Main DC","rack_name":"R1"}`)
		assert.True(t, res.IsError)
		assert.Equal(t, "Cannot delete rack 'R1': it contains 1 device(s). Remove all devices first.", res.Text)

		res = f.call(t, "delete_rack", `{"site_name":"Main DC","rack_name":"R2"}`)
		require.False(t, res.IsError, res.Text)
		_, err := f.store.FindRackByName(f.ctx, f.site.ID, "R2")
		assert.Error(t, err)
	})

	t.Run("rename site", func(t *testing.T) {
		require.NoError(t, f.store.CreateSite(f.ctx, &model.Site{Name: "Backup DC"}))

		res := f.call(t, "update_site_name", `{"old_name":"Main DC","new_name":"backup dc"}`)
		assert.True(t, res.IsError)
		assert.Equal(t, "A site named 'Backup DC' already exists.", res.Text)

		res = f.call(t, "update_site_name", `{"old_name":"main dc","new_name":"Primary DC"}`)
		require.False(t, res.IsError, res.Text)
		assert.Equal(t, "Successfully renamed site 'Main DC' to 'Primary DC'.", res.Text)
	})

	t.Run("provider rule", func(t *testing.T) {
		res := f.call(t, "create_provider", `{"site_name":"Primary DC","name":"CRAC","type":"cooling","cooling_capacity":60000,"rack_name":"R1","position":20}`)
		assert.True(t, res.IsError)

		res = f.call(t, "create_provider", `{"site_name":"Primary DC","name":"CRAC","type":"cooling","cooling_capacity":60000}`)
		require.False(t, res.IsError, res.Text)
		assert.Contains(t, res.Text, "Cooling Capacity: 60,000 BTU/hr (5.00 tons)")
	})
}
