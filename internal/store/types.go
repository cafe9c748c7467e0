package store

// DeviceFilter narrows a device template listing. Category matches
// case-insensitively as a substring. A zero Limit means no limit.
type DeviceFilter struct {
	Category string
	Limit    int
}

// PlacementRequest asks for a device template to be placed, or moved, at a
// starting RU position.
type PlacementRequest struct {
	DeviceID     int64  `json:"device_id"`
	Position     int    `json:"position"`
	InstanceName string `json:"instance_name"`
}
