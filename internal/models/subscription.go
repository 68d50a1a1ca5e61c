package models

import "time"

// Subscription is a user location watched for elevated flood risk.
// LastNotified suppresses repeat alerts: a mail goes out only when the
// assessed level rises above it, and dropping back to LOW resets it.
type Subscription struct {
	ID           string
	Email        string
	Latitude     float64
	Longitude    float64
	LastNotified RiskLevel
	CreatedAt    time.Time
}

func (s *Subscription) Coordinate() Coordinate {
	return Coordinate{Latitude: s.Latitude, Longitude: s.Longitude}
}
