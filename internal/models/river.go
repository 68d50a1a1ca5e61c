package models

import "time"

// RiverReading is the latest water level reported by a gauge station.
type RiverReading struct {
	ID        string // Unique ID from source (e.g., "ea_E2043")
	Source    string // "ea"
	River     string // River name, may be empty for unnamed watercourses
	Station   string // Monitoring station name
	Latitude  float64
	Longitude float64
	Level     float64 // current water height, meters
	// CriticalThreshold is the level above which the station is considered
	// flood-triggering. Nil when the source publishes no typical range.
	CriticalThreshold *float64
	RecordedAt        time.Time // when the gauge recorded the level
	CreatedAt         time.Time // when we ingested it
}

func (r *RiverReading) Coordinate() Coordinate {
	return Coordinate{Latitude: r.Latitude, Longitude: r.Longitude}
}

// ThresholdOrDefault substitutes level-5 when the source carries no
// critical threshold, so classifiers never see a missing value.
func (r *RiverReading) ThresholdOrDefault() float64 {
	if r.CriticalThreshold != nil {
		return *r.CriticalThreshold
	}
	return r.Level - 5
}
