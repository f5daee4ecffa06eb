package domain

// Coordinate represents a geographic coordinate (WGS 84) in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Area describes the administrative area nearest a coordinate.
type Area struct {
	PostalCode string `json:"postalCode"`
	District   string `json:"district"`
	Region     string `json:"region"`
}

const (
	UnknownDistrict = "Unknown district"
	UnknownRegion   = "Unknown region"
)

// Label is the human-readable name used for the midpoint area.
func (a Area) Label() string {
	switch {
	case a.District != "" && a.District != UnknownDistrict:
		return a.District
	case a.Region != "" && a.Region != UnknownRegion:
		return a.Region
	default:
		return a.PostalCode
	}
}
