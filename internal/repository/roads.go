package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/riverwatch/go-flood-routes/internal/geo"
	"github.com/riverwatch/go-flood-routes/internal/models"
)

func (s *SQLiteDB) AddRoad(ctx context.Context, r *models.RoadSegment) error {
	if r.Status == "" {
		r.Status = models.RoadStatusSafe
	}
	if r.DistanceKm == 0 {
		r.DistanceKm = geo.DistanceKm(r.StartLatitude, r.StartLongitude, r.EndLatitude, r.EndLongitude)
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now()
	}

	query := `
		INSERT INTO roads (id, name, start_latitude, start_longitude, end_latitude, end_longitude, status, distance_km, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.Name, r.StartLatitude, r.StartLongitude, r.EndLatitude, r.EndLongitude,
		string(r.Status), r.DistanceKm, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error adding road %s: %w", r.ID, err)
	}
	return nil
}

// GetRoadsByArea returns roads with either endpoint inside an approximate
// bounding box around the center, in stable id order.
func (s *SQLiteDB) GetRoadsByArea(ctx context.Context, lat, lon, radiusKm float64) ([]models.RoadSegment, error) {
	dLat, dLon := geo.BoundingDegrees(lat, radiusKm)
	latMin, latMax := lat-dLat, lat+dLat
	lonMin, lonMax := lon-dLon, lon+dLon

	query := `
		SELECT id, name, start_latitude, start_longitude, end_latitude, end_longitude, status, distance_km, updated_at
		FROM roads
		WHERE (start_latitude BETWEEN ? AND ? AND start_longitude BETWEEN ? AND ?)
		   OR (end_latitude BETWEEN ? AND ? AND end_longitude BETWEEN ? AND ?)
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query,
		latMin, latMax, lonMin, lonMax,
		latMin, latMax, lonMin, lonMax,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying roads by area: %w", err)
	}
	defer rows.Close()

	var roads []models.RoadSegment
	for rows.Next() {
		var r models.RoadSegment
		var status string
		if err := rows.Scan(&r.ID, &r.Name, &r.StartLatitude, &r.StartLongitude,
			&r.EndLatitude, &r.EndLongitude, &status, &r.DistanceKm, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning road: %w", err)
		}
		r.Status = models.RoadStatus(status)
		roads = append(roads, r)
	}
	return roads, rows.Err()
}

// UpdateRoadStatus writes a recomputed status back and returns the updated
// segment. Returns nil when the road does not exist.
func (s *SQLiteDB) UpdateRoadStatus(ctx context.Context, id string, status models.RoadStatus) (*models.RoadSegment, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE roads SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("error updating road status for %s: %w", id, err)
	}

	var r models.RoadSegment
	var st string
	err = s.db.QueryRowContext(ctx,
		`SELECT id, name, start_latitude, start_longitude, end_latitude, end_longitude, status, distance_km, updated_at
		 FROM roads WHERE id = ?`, id,
	).Scan(&r.ID, &r.Name, &r.StartLatitude, &r.StartLongitude,
		&r.EndLatitude, &r.EndLongitude, &st, &r.DistanceKm, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading road %s after update: %w", id, err)
	}
	r.Status = models.RoadStatus(st)
	return &r, nil
}
