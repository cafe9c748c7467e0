package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expected  string
		expectErr bool
	}{
		{name: "Plain", raw: "Main DC", expected: "Main DC"},
		{name: "Surrounding spaces", raw: "  Rack 01 ", expected: "Rack 01"},
		{name: "Inner whitespace collapsed", raw: "Row\tA   Rack\n3", expected: "Row A Rack 3"},
		{name: "Unicode kept", raw: "机房 A", expected: "机房 A"},
		{name: "Empty", raw: "", expectErr: true},
		{name: "Only whitespace", raw: " \t ", expectErr: true},
		{name: "Too long", raw: strings.Repeat("x", MaxNameLength+1), expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Name(tc.raw)
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, got)
			}
		})
	}
}

func TestColor(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expected  string
		expectErr bool
	}{
		{name: "Six digits", raw: "#1A2B3C", expected: "#1a2b3c"},
		{name: "Three digits", raw: "#FFF", expected: "#fff"},
		{name: "Empty uses default", raw: "", expected: "#000000"},
		{name: "Missing hash", raw: "112233", expectErr: true},
		{name: "Bad digit", raw: "#12345G", expectErr: true},
		{name: "Wrong length", raw: "#1234", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Color(tc.raw, "#000000")
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, got)
			}
		})
	}
}

func TestParseRackRef(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expected  RackRef
		expectErr bool
	}{
		{name: "Simple", raw: "Main DC/R1", expected: RackRef{Site: "Main DC", Rack: "R1"}},
		{name: "Slash in site name", raw: "EU/West/R2", expected: RackRef{Site: "EU/West", Rack: "R2"}},
		{name: "Trimmed parts", raw: " Lab / A1 ", expected: RackRef{Site: "Lab", Rack: "A1"}},
		{name: "No slash", raw: "R1", expectErr: true},
		{name: "Missing rack", raw: "Main DC/", expectErr: true},
		{name: "Missing site", raw: "/R1", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseRackRef(tc.raw)
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, got)
				assert.Equal(t, got.Site+"/"+got.Rack, got.String())
			}
		})
	}
}
