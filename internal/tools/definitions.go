package tools

func str(desc string) map[string]any     { return map[string]any{"type": "string", "description": desc} }
func integer(desc string) map[string]any { return map[string]any{"type": "integer", "description": desc} }

var outputFormatProp = map[string]any{
	"type":        "string",
	"enum":        []string{FormatText, FormatJSON},
	"description": "Output format: 'text' (default, human-readable) or 'json' (structured data)",
	"default":     FormatText,
}

func schema(props map[string]any, required ...string) map[string]any {
	if required == nil {
		required = []string{}
	}
	return map[string]any{"type": "object", "properties": props, "required": required}
}

func (r *Registry) register() {
	r.add(Definition{
		Name:        "get_site_stats",
		Description: "Get statistics for all sites including rack count, device count, and resource usage",
		InputSchema: schema(map[string]any{"output_format": outputFormatProp}),
	}, r.getSiteStats)

	r.add(Definition{
		Name:        "get_site_details",
		Description: "Get detailed information about a specific site including all racks, providers and resource usage",
		InputSchema: schema(map[string]any{
			"site_name":     str("Name of the site to get details for"),
			"output_format": outputFormatProp,
		}, "site_name"),
	}, r.getSiteDetails)

	r.add(Definition{
		Name:        "get_rack_details",
		Description: "Get detailed information about a specific rack including devices, free space and resource usage",
		InputSchema: schema(map[string]any{
			"site_name":     str("Name of the site containing the rack"),
			"rack_name":     str("Name of the rack to get details for"),
			"rack":          str("Alternative to site_name and rack_name, written as site/rack"),
			"output_format": outputFormatProp,
		}),
	}, r.getRackDetails)

	r.add(Definition{
		Name:        "get_available_resources",
		Description: "Get information about available device types and their specifications",
		InputSchema: schema(map[string]any{
			"category":      str("Filter devices by category (optional)"),
			"limit":         integer("Maximum number of devices to return (optional, default: no limit)"),
			"output_format": outputFormatProp,
		}),
	}, r.getAvailableResources)

	r.add(Definition{
		Name:        "get_resource_summary",
		Description: "Get overall resource utilization summary across all sites",
		InputSchema: schema(map[string]any{"output_format": outputFormatProp}),
	}, r.getResourceSummary)

	r.add(Definition{
		Name:        "create_device",
		Description: "Create a new device type that can be placed in racks",
		InputSchema: schema(map[string]any{
			"device_id":        str("Unique identifier for the device"),
			"name":             str("Display name of the device"),
			"category":         str("Device category (e.g., Server, Network, Storage)"),
			"ru_size":          integer("Rack unit size of the device"),
			"power_draw":       integer("Power consumption in watts"),
			"power_ports_used": integer("Number of PDU power ports required (default: 1)"),
			"color":            str("Hex color code for display (default: #000000)"),
			"description":      str("Optional description of the device"),
		}, "device_id", "name", "category", "ru_size", "power_draw"),
	}, r.createDevice)

	r.add(Definition{
		Name:        "create_rack",
		Description: "Create a new rack in a site",
		InputSchema: schema(map[string]any{
			"site_name":   str("Name of the site to add the rack to"),
			"rack_name":   str("Name of the new rack"),
			"ru_height":   integer("Height of the rack in rack units (default: 42)"),
			"description": str("Optional description of the rack"),
		}, "site_name", "rack_name"),
	}, r.createRack)

	r.add(Definition{
		Name:        "delete_rack",
		Description: "Delete an empty rack from a site",
		InputSchema: schema(map[string]any{
			"site_name": str("Name of the site containing the rack"),
			"rack_name": str("Name of the rack to delete"),
		}, "site_name", "rack_name"),
	}, r.deleteRack)

	r.add(Definition{
		Name:        "update_site_name",
		Description: "Change the name of an existing site",
		InputSchema: schema(map[string]any{
			"old_name": str("Current name of the site"),
			"new_name": str("New name for the site"),
		}, "old_name", "new_name"),
	}, r.updateSiteName)

	r.add(Definition{
		Name:        "create_provider",
		Description: "Create a power or cooling provider for a site, optionally mounted in a rack",
		InputSchema: schema(map[string]any{
			"site_name":            str("Name of the site the provider supplies"),
			"name":                 str("Name of the provider"),
			"type":                 map[string]any{"type": "string", "enum": []string{"power", "cooling"}, "description": "Kind of supply"},
			"power_capacity":       integer("Power capacity in watts"),
			"power_ports_capacity": integer("Number of power ports offered"),
			"cooling_capacity":     integer("Cooling capacity in BTU/hr"),
			"ru_size":              integer("Rack units occupied when mounted (default: 0)"),
			"rack_name":            str("Rack to mount the provider in (requires position and ru_size > 0)"),
			"position":             integer("Lowest RU occupied when mounted"),
			"description":          str("Optional description of the provider"),
		}, "site_name", "name", "type"),
	}, r.createProvider)

	r.add(Definition{
		Name:        "place_device",
		Description: "Place a device type into a rack at a starting rack unit",
		InputSchema: schema(map[string]any{
			"site_name":     str("Name of the site containing the rack"),
			"rack_name":     str("Name of the rack"),
			"device_id":     str("device_id of the device type to place"),
			"position":      integer("Lowest rack unit the device will occupy (1 is the bottom)"),
			"instance_name": str("Optional name for this particular device"),
		}, "site_name", "rack_name", "device_id", "position"),
	}, r.placeDevice)
}
