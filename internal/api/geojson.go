package api

import (
	"github.com/riverwatch/go-flood-routes/internal/models"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"`
}

// toGeoJSON renders routes as a FeatureCollection of LineStrings, coordinates
// in GeoJSON's lon-lat order. The rank property mirrors the array position so
// clients can recover the ordering after re-projection.
func toGeoJSON(routes []models.RouteSegment) FeatureCollection {
	features := make([]Feature, 0, len(routes))

	for i, route := range routes {
		coords := make([][]float64, 0, len(route.Path))
		for _, p := range route.Path {
			coords = append(coords, []float64{p.Longitude, p.Latitude})
		}

		f := Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "LineString",
				Coordinates: coords,
			},
			Properties: map[string]any{
				"id":     route.ID,
				"name":   route.Name,
				"status": route.Status,
				"rank":   i,
			},
		}
		features = append(features, f)
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}
