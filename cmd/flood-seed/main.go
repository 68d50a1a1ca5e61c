package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/riverwatch/go-flood-routes/internal/config"
	"github.com/riverwatch/go-flood-routes/internal/logging"
	"github.com/riverwatch/go-flood-routes/internal/models"
	"github.com/riverwatch/go-flood-routes/internal/repository"
)

type seedRoad struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	StartLat float64 `json:"start_lat"`
	StartLon float64 `json:"start_lon"`
	EndLat   float64 `json:"end_lat"`
	EndLon   float64 `json:"end_lon"`
}

// Loads road segments from a JSON file into the database so the route
// composer has a network to rank. Usage: flood-seed roads.json
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	if len(os.Args) < 2 {
		logging.Fatalf("usage: %s <roads.json>", os.Args[0])
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		logging.Fatalf("Failed to read %s: %v", os.Args[1], err)
	}

	var roads []seedRoad
	if err := json.Unmarshal(data, &roads); err != nil {
		logging.Fatalf("Failed to parse %s: %v", os.Args[1], err)
	}

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	seeded := 0
	for _, r := range roads {
		road := &models.RoadSegment{
			ID:             r.ID,
			Name:           r.Name,
			StartLatitude:  r.StartLat,
			StartLongitude: r.StartLon,
			EndLatitude:    r.EndLat,
			EndLongitude:   r.EndLon,
		}
		if road.ID == "" {
			road.ID = uuid.NewString()
		}
		if err := db.AddRoad(ctx, road); err != nil {
			slog.Error("skipping road", "name", r.Name, "error", err)
			continue
		}
		seeded++
	}

	slog.Info("seeding complete", "seeded", seeded, "total", len(roads))
}
