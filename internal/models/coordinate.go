package models

type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Midpoint returns the point halfway between c and other. Good enough for
// the small query areas this service works with; no great-circle midpoint.
func (c Coordinate) Midpoint(other Coordinate) Coordinate {
	return Coordinate{
		Latitude:  (c.Latitude + other.Latitude) / 2,
		Longitude: (c.Longitude + other.Longitude) / 2,
	}
}
