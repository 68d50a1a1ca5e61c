// Package routing implements the road-status classifier and the route
// composer that ranks road segments between two points.
package routing

import (
	"context"
	"fmt"

	"github.com/riverwatch/go-flood-routes/internal/geo"
	"github.com/riverwatch/go-flood-routes/internal/models"
	"github.com/riverwatch/go-flood-routes/internal/repository"
)

const (
	// UnderFloodRadiusKm: a gauge over threshold this close to an endpoint
	// means the road is under water.
	UnderFloodRadiusKm = 0.2
	// NearFloodRadiusKm: a gauge within 5m of threshold this close means
	// the road is at risk.
	NearFloodRadiusKm = 0.5
	// ReadingSearchRadiusKm bounds the gauge query around each endpoint.
	ReadingSearchRadiusKm = 5.0
)

// ClassifySegment maps a road's endpoints and the nearby gauge readings to a
// status. The first reading that puts the road under water short-circuits;
// otherwise a near-flood reading anywhere in the list downgrades SAFE.
// Which reading gets blamed depends on iteration order, the status does not.
func ClassifySegment(start, end models.Coordinate, nearby []models.RiverReading) models.RoadStatus {
	nearFlood := false
	for _, r := range nearby {
		distToStart := geo.Between(start, r.Coordinate())
		distToEnd := geo.Between(end, r.Coordinate())
		threshold := r.ThresholdOrDefault()

		if (distToStart < UnderFloodRadiusKm || distToEnd < UnderFloodRadiusKm) && r.Level > threshold {
			return models.RoadStatusUnderFlood
		}
		if (distToStart < NearFloodRadiusKm || distToEnd < NearFloodRadiusKm) && r.Level > threshold-5 {
			nearFlood = true
		}
	}

	if nearFlood {
		return models.RoadStatusNearFlood
	}
	return models.RoadStatusSafe
}

// StatusService re-evaluates road statuses against the latest readings and
// writes changes back to the store. Stored status is a write-through cache:
// after any refresh it reflects current river data, never stale rows.
type StatusService struct {
	roads  repository.RoadRepository
	rivers repository.RiverRepository
}

func NewStatusService(roads repository.RoadRepository, rivers repository.RiverRepository) *StatusService {
	return &StatusService{roads: roads, rivers: rivers}
}

// readingsNearEndpoints unions gauge readings around both endpoints,
// deduplicated by id, preserving first-seen order.
func (s *StatusService) readingsNearEndpoints(ctx context.Context, start, end models.Coordinate) ([]models.RiverReading, error) {
	startReadings, err := s.rivers.GetReadingsByArea(ctx, start.Latitude, start.Longitude, ReadingSearchRadiusKm)
	if err != nil {
		return nil, fmt.Errorf("error querying readings near start: %w", err)
	}
	endReadings, err := s.rivers.GetReadingsByArea(ctx, end.Latitude, end.Longitude, ReadingSearchRadiusKm)
	if err != nil {
		return nil, fmt.Errorf("error querying readings near end: %w", err)
	}

	seen := make(map[string]bool, len(startReadings))
	merged := make([]models.RiverReading, 0, len(startReadings)+len(endReadings))
	for _, r := range startReadings {
		seen[r.ID] = true
		merged = append(merged, r)
	}
	for _, r := range endReadings {
		if !seen[r.ID] {
			merged = append(merged, r)
		}
	}
	return merged, nil
}

// Refresh reclassifies a stored road and persists the status when it changed.
// The passed segment is updated in place either way.
func (s *StatusService) Refresh(ctx context.Context, road *models.RoadSegment) (models.RoadStatus, error) {
	readings, err := s.readingsNearEndpoints(ctx, road.Start(), road.End())
	if err != nil {
		return "", err
	}

	status := ClassifySegment(road.Start(), road.End(), readings)
	if status != road.Status {
		if _, err := s.roads.UpdateRoadStatus(ctx, road.ID, status); err != nil {
			return "", fmt.Errorf("error writing back status for road %s: %w", road.ID, err)
		}
	}
	road.Status = status
	return status, nil
}

// AssessBetween classifies the stretch between two arbitrary points without
// touching stored roads.
func (s *StatusService) AssessBetween(ctx context.Context, start, end models.Coordinate) (models.RoadStatus, error) {
	readings, err := s.readingsNearEndpoints(ctx, start, end)
	if err != nil {
		return "", err
	}
	return ClassifySegment(start, end, readings), nil
}
