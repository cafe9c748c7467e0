package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"racksum-backend/internal/apperr"
)

func TestDeviceTemplate_Normalize(t *testing.T) {
	d := DeviceTemplate{DeviceID: " srv-1 ", Name: " Dell  R650 ", Category: "Server", RUSize: 1, PowerDraw: 400}
	require.NoError(t, d.Normalize())
	assert.Equal(t, "srv-1", d.DeviceID)
	assert.Equal(t, "Dell R650", d.Name)
	assert.Equal(t, DefaultColor, d.Color)

	testCases := []struct {
		name   string
		mutate func(d *DeviceTemplate)
	}{
		{name: "Missing device_id", mutate: func(d *DeviceTemplate) { d.DeviceID = "" }},
		{name: "Missing name", mutate: func(d *DeviceTemplate) { d.Name = " " }},
		{name: "Missing category", mutate: func(d *DeviceTemplate) { d.Category = "" }},
		{name: "Too tall", mutate: func(d *DeviceTemplate) { d.RUSize = MaxRUSize + 1 }},
		{name: "Negative size", mutate: func(d *DeviceTemplate) { d.RUSize = -1 }},
		{name: "Negative power", mutate: func(d *DeviceTemplate) { d.PowerDraw = -5 }},
		{name: "Negative ports", mutate: func(d *DeviceTemplate) { d.PowerPortsUsed = -1 }},
		{name: "Bad colour", mutate: func(d *DeviceTemplate) { d.Color = "red" }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := DeviceTemplate{DeviceID: "x", Name: "X", Category: "Server", RUSize: 1}
			tc.mutate(&d)
			assert.ErrorIs(t, d.Normalize(), apperr.ErrValidation)
		})
	}
}

func TestRack_Normalize(t *testing.T) {
	r := Rack{Name: " R1 ", RUHeight: 42}
	require.NoError(t, r.Normalize(48))
	assert.Equal(t, "R1", r.Name)

	r.RUHeight = 49
	assert.ErrorIs(t, r.Normalize(48), apperr.ErrValidation)

	r.RUHeight = 0
	assert.ErrorIs(t, r.Normalize(48), apperr.ErrValidation)

	// Limits above the physical maximum fall back to it.
	r.RUHeight = MaxRUSize + 1
	assert.ErrorIs(t, r.Normalize(100), apperr.ErrValidation)
}

func TestProvider_Normalize(t *testing.T) {
	p := Provider{Name: "UPS A", Type: " Power "}
	require.NoError(t, p.Normalize())
	assert.Equal(t, ProviderPower, p.Type)

	p.Type = "steam"
	assert.ErrorIs(t, p.Normalize(), apperr.ErrValidation)

	p.Type = ProviderCooling
	p.CoolingCapacity = -1
	assert.ErrorIs(t, p.Normalize(), apperr.ErrValidation)
}

func TestSiteAndConfiguration_Normalize(t *testing.T) {
	s := Site{Name: "  Main   DC "}
	require.NoError(t, s.Normalize())
	assert.Equal(t, "Main DC", s.Name)
	assert.ErrorIs(t, (&Site{}).Normalize(), apperr.ErrValidation)

	c := RackConfiguration{Name: "layout"}
	assert.ErrorIs(t, c.Normalize(), apperr.ErrValidation)
	c.ConfigData = datatypes.JSON(`{"racks":[]}`)
	assert.NoError(t, c.Normalize())
}
