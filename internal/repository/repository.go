package repository

import (
	"context"

	"github.com/riverwatch/go-flood-routes/internal/models"
)

// RiverRepository stores gauge readings and answers area queries. Area
// queries are approximate bounding-box filters; callers tighten with exact
// haversine distance where it matters.
type RiverRepository interface {
	UpsertReading(ctx context.Context, r *models.RiverReading) error
	GetReadingByID(ctx context.Context, id string) (*models.RiverReading, error)
	GetReadingsByArea(ctx context.Context, lat, lon, radiusKm float64) ([]models.RiverReading, error)
}

// RoadRepository stores road segments. UpdateRoadStatus is the one write-back
// path the routing core uses; status is a derived cache, so last-write-wins
// races between overlapping requests are acceptable.
type RoadRepository interface {
	AddRoad(ctx context.Context, r *models.RoadSegment) error
	GetRoadsByArea(ctx context.Context, lat, lon, radiusKm float64) ([]models.RoadSegment, error)
	UpdateRoadStatus(ctx context.Context, id string, status models.RoadStatus) (*models.RoadSegment, error)
}

// SubscriptionRepository stores watched locations for email alerts.
type SubscriptionRepository interface {
	AddSubscription(ctx context.Context, s *models.Subscription) error
	DeleteSubscription(ctx context.Context, id string) error
	ListSubscriptions(ctx context.Context) ([]models.Subscription, error)
	SetLastNotified(ctx context.Context, id string, level models.RiskLevel) error
}
