package models

import "time"

type RoadStatus string

const (
	RoadStatusSafe       RoadStatus = "SAFE"
	RoadStatusNearFlood  RoadStatus = "NEAR_FLOOD"
	RoadStatusUnderFlood RoadStatus = "UNDER_FLOOD"
)

// rank orders statuses from most to least passable.
func (s RoadStatus) rank() int {
	switch s {
	case RoadStatusSafe:
		return 0
	case RoadStatusNearFlood:
		return 1
	case RoadStatusUnderFlood:
		return 2
	}
	return 3
}

// SaferThan reports whether s ranks strictly better than other.
func (s RoadStatus) SaferThan(other RoadStatus) bool {
	return s.rank() < other.rank()
}

// RoadSegment is one stored stretch of road between two endpoints. Status is
// a derived cache: the road-status classifier recomputes it against the
// latest river readings and writes changes back through the repository.
type RoadSegment struct {
	ID             string
	Name           string
	StartLatitude  float64
	StartLongitude float64
	EndLatitude    float64
	EndLongitude   float64
	Status         RoadStatus
	DistanceKm     float64 // precomputed length, 0 when unknown
	UpdatedAt      time.Time
}

func (r *RoadSegment) Start() Coordinate {
	return Coordinate{Latitude: r.StartLatitude, Longitude: r.StartLongitude}
}

func (r *RoadSegment) End() Coordinate {
	return Coordinate{Latitude: r.EndLatitude, Longitude: r.EndLongitude}
}
