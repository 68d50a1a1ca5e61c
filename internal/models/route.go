package models

// RouteSegment is one ranked element of a composed route. A route list is
// ordered safest-first; index 0 is always the best available option.
type RouteSegment struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Status RoadStatus   `json:"status"`
	Path   []Coordinate `json:"path"`
}
