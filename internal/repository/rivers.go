package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverwatch/go-flood-routes/internal/geo"
	"github.com/riverwatch/go-flood-routes/internal/models"
)

func (s *SQLiteDB) UpsertReading(ctx context.Context, r *models.RiverReading) error {
	query := `
		INSERT INTO river_readings (id, source, river, station, latitude, longitude, level, critical_threshold, recorded_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			level=excluded.level,
			critical_threshold=excluded.critical_threshold,
			recorded_at=excluded.recorded_at`

	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.Source, r.River, r.Station, r.Latitude, r.Longitude,
		r.Level, r.CriticalThreshold, r.RecordedAt, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error upserting reading %s: %w", r.ID, err)
	}
	return nil
}

func (s *SQLiteDB) GetReadingByID(ctx context.Context, id string) (*models.RiverReading, error) {
	query := `
		SELECT id, source, river, station, latitude, longitude, level, critical_threshold, recorded_at, created_at
		FROM river_readings WHERE id = ?`

	r, err := scanReading(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting reading %s: %w", id, err)
	}
	return r, nil
}

// GetReadingsByArea returns readings inside an approximate bounding box around
// the center, ordered by id for stable iteration. The box uses the 111 km per
// degree approximation; it is not an exact circle.
func (s *SQLiteDB) GetReadingsByArea(ctx context.Context, lat, lon, radiusKm float64) ([]models.RiverReading, error) {
	dLat, dLon := geo.BoundingDegrees(lat, radiusKm)

	query := `
		SELECT id, source, river, station, latitude, longitude, level, critical_threshold, recorded_at, created_at
		FROM river_readings
		WHERE latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, lat-dLat, lat+dLat, lon-dLon, lon+dLon)
	if err != nil {
		return nil, fmt.Errorf("error querying readings by area: %w", err)
	}
	defer rows.Close()

	var readings []models.RiverReading
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning reading: %w", err)
		}
		readings = append(readings, *r)
	}
	return readings, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReading(row rowScanner) (*models.RiverReading, error) {
	var r models.RiverReading
	var river sql.NullString
	var threshold sql.NullFloat64

	err := row.Scan(&r.ID, &r.Source, &river, &r.Station, &r.Latitude, &r.Longitude,
		&r.Level, &threshold, &r.RecordedAt, &r.CreatedAt)
	if err != nil {
		return nil, err
	}

	r.River = river.String
	if threshold.Valid {
		r.CriticalThreshold = &threshold.Float64
	}
	return &r, nil
}
