package routing

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/riverwatch/go-flood-routes/internal/geo"
	"github.com/riverwatch/go-flood-routes/internal/models"
	"github.com/riverwatch/go-flood-routes/internal/repository"
)

const (
	// QueryRadiusFactor widens the road query beyond the direct line so
	// roads fanning out from it are still candidates.
	QueryRadiusFactor = 1.5
	// ConnectorMaxKm caps how far a synthetic connector may stretch to
	// stitch the raw start/end point onto the road network.
	ConnectorMaxKm = 10.0
)

// Composer turns a start/end coordinate pair into a ranked list of route
// segments: SAFE first, then NEAR_FLOOD, then UNDER_FLOOD. Index 0 is always
// the best available option. Statuses are refreshed against the latest river
// data as part of composition.
type Composer struct {
	roads  repository.RoadRepository
	status *StatusService
}

func NewComposer(roads repository.RoadRepository, status *StatusService) *Composer {
	return &Composer{roads: roads, status: status}
}

// ComposeRoutes builds the ranked route list between start and end. Sparse
// data degrades gracefully: no roads in the area yields a single synthetic
// direct segment rather than an error.
func (c *Composer) ComposeRoutes(ctx context.Context, start, end models.Coordinate) ([]models.RouteSegment, error) {
	directKm := geo.Between(start, end)
	if directKm == 0 {
		// Degenerate query: the area would be empty anyway, return the
		// trivial single-point route.
		return []models.RouteSegment{{
			ID:     uuid.NewString(),
			Name:   "Direct path",
			Status: models.RoadStatusSafe,
			Path:   []models.Coordinate{start},
		}}, nil
	}

	center := start.Midpoint(end)
	radiusKm := QueryRadiusFactor * directKm

	roads, err := c.roads.GetRoadsByArea(ctx, center.Latitude, center.Longitude, radiusKm)
	if err != nil {
		return nil, fmt.Errorf("error querying roads near (%v, %v): %w", center.Latitude, center.Longitude, err)
	}
	if len(roads) == 0 {
		return []models.RouteSegment{directSegment(start, end)}, nil
	}

	// Refresh each candidate against current river data, then bucket by
	// status preserving fetch order within each bucket.
	var safe, caution, danger []models.RouteSegment
	for i := range roads {
		road := &roads[i]
		status, err := c.status.Refresh(ctx, road)
		if err != nil {
			return nil, err
		}

		seg := models.RouteSegment{
			ID:     road.ID,
			Name:   road.Name,
			Status: status,
			Path:   []models.Coordinate{road.Start(), road.End()},
		}
		switch status {
		case models.RoadStatusSafe:
			safe = append(safe, seg)
		case models.RoadStatusNearFlood:
			caution = append(caution, seg)
		default:
			danger = append(danger, seg)
		}
	}

	routes := make([]models.RouteSegment, 0, len(roads)+2)
	if conn := c.startConnector(start, roads); conn != nil {
		routes = append(routes, *conn)
	}
	routes = append(routes, safe...)
	if conn := c.endConnector(end, roads); conn != nil {
		routes = append(routes, *conn)
	}
	routes = append(routes, caution...)
	routes = append(routes, danger...)

	return routes, nil
}

// startConnector stitches the raw start coordinate to the nearest candidate
// road start, preferring SAFE roads. Nil when every candidate is too far.
func (c *Composer) startConnector(start models.Coordinate, roads []models.RoadSegment) *models.RouteSegment {
	road, dist := nearestRoad(roads, start, (*models.RoadSegment).Start)
	if road == nil || dist >= ConnectorMaxKm {
		return nil
	}
	return &models.RouteSegment{
		ID:     uuid.NewString(),
		Name:   fmt.Sprintf("Connector to %s", road.Name),
		Status: models.RoadStatusSafe,
		Path:   []models.Coordinate{start, road.Start()},
	}
}

// endConnector stitches the nearest candidate road end to the raw end
// coordinate, preferring SAFE roads.
func (c *Composer) endConnector(end models.Coordinate, roads []models.RoadSegment) *models.RouteSegment {
	road, dist := nearestRoad(roads, end, (*models.RoadSegment).End)
	if road == nil || dist >= ConnectorMaxKm {
		return nil
	}
	return &models.RouteSegment{
		ID:     uuid.NewString(),
		Name:   fmt.Sprintf("Connector from %s", road.Name),
		Status: models.RoadStatusSafe,
		Path:   []models.Coordinate{road.End(), end},
	}
}

// nearestRoad finds the road whose chosen endpoint is closest to the point.
// SAFE roads are searched first; only if none exist does any road qualify.
func nearestRoad(roads []models.RoadSegment, point models.Coordinate, endpoint func(*models.RoadSegment) models.Coordinate) (*models.RoadSegment, float64) {
	pick := func(onlySafe bool) (*models.RoadSegment, float64) {
		var best *models.RoadSegment
		bestDist := 0.0
		for i := range roads {
			if onlySafe && roads[i].Status != models.RoadStatusSafe {
				continue
			}
			d := geo.Between(point, endpoint(&roads[i]))
			if best == nil || d < bestDist {
				best = &roads[i]
				bestDist = d
			}
		}
		return best, bestDist
	}

	if road, dist := pick(true); road != nil {
		return road, dist
	}
	return pick(false)
}

func directSegment(start, end models.Coordinate) models.RouteSegment {
	return models.RouteSegment{
		ID:     uuid.NewString(),
		Name:   "Direct path",
		Status: models.RoadStatusSafe,
		Path:   []models.Coordinate{start, end},
	}
}
