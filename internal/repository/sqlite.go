package repository

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS river_readings (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			river TEXT,
			station TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			level REAL NOT NULL,
			critical_threshold REAL,
			recorded_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS roads (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			start_latitude REAL NOT NULL,
			start_longitude REAL NOT NULL,
			end_latitude REAL NOT NULL,
			end_longitude REAL NOT NULL,
			status TEXT NOT NULL DEFAULT 'SAFE',
			distance_km REAL NOT NULL DEFAULT 0,
			updated_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS subscriptions (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			last_notified TEXT NOT NULL DEFAULT 'LOW',
			created_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_readings_lat_lon ON river_readings(latitude, longitude);
		CREATE INDEX IF NOT EXISTS idx_roads_start ON roads(start_latitude, start_longitude);
		CREATE INDEX IF NOT EXISTS idx_subscriptions_email ON subscriptions(email);
  	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}
