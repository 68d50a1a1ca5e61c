package risk

import (
	"context"
	"fmt"

	"github.com/riverwatch/go-flood-routes/internal/geo"
	"github.com/riverwatch/go-flood-routes/internal/models"
	"github.com/riverwatch/go-flood-routes/internal/repository"
)

// ClosestReading pairs a reading with its exact haversine distance from the
// queried point.
type ClosestReading struct {
	Reading    models.RiverReading
	DistanceKm float64
}

// RiverLookup finds the nearest gauge reading to a point.
type RiverLookup struct {
	repo repository.RiverRepository
}

func NewRiverLookup(repo repository.RiverRepository) *RiverLookup {
	return &RiverLookup{repo: repo}
}

// ClosestRiver returns the in-range reading with minimum haversine distance,
// or nil when no reading is in range. The area query is an approximate
// bounding box; only the final minimum selection uses exact distance.
// Equal-distance ties go to the first candidate in store iteration order.
func (l *RiverLookup) ClosestRiver(ctx context.Context, lat, lon, searchRadiusKm float64) (*ClosestReading, error) {
	readings, err := l.repo.GetReadingsByArea(ctx, lat, lon, searchRadiusKm)
	if err != nil {
		return nil, fmt.Errorf("error querying readings near (%v, %v): %w", lat, lon, err)
	}
	if len(readings) == 0 {
		return nil, nil
	}

	closest := ClosestReading{
		Reading:    readings[0],
		DistanceKm: geo.DistanceKm(lat, lon, readings[0].Latitude, readings[0].Longitude),
	}
	for _, r := range readings[1:] {
		d := geo.DistanceKm(lat, lon, r.Latitude, r.Longitude)
		if d < closest.DistanceKm {
			closest = ClosestReading{Reading: r, DistanceKm: d}
		}
	}

	return &closest, nil
}
