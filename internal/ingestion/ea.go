package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/riverwatch/go-flood-routes/internal/models"
)

// Subset of the Environment Agency real-time flood-monitoring response:
// stations with coordinates, an optional typical range, and the latest level
// reading per measure.
type eaResponse struct {
	Items []eaStation `json:"items"`
}

type eaStation struct {
	StationReference string      `json:"stationReference"`
	Label            string      `json:"label"`
	RiverName        string      `json:"riverName"`
	Lat              *float64    `json:"lat"`
	Long             *float64    `json:"long"`
	StageScale       *eaScale    `json:"stageScale"`
	Measures         []eaMeasure `json:"measures"`
}

type eaScale struct {
	TypicalRangeHigh *float64 `json:"typicalRangeHigh"`
}

type eaMeasure struct {
	Parameter     string     `json:"parameter"`
	LatestReading *eaReading `json:"latestReading"`
}

type eaReading struct {
	Value    float64 `json:"value"`
	DateTime string  `json:"dateTime"`
}

func (m *Manager) pollEA(ctx context.Context, url string) ([]*models.RiverReading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	client := &http.Client{
		Timeout: 15 * time.Second,
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var data eaResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	readings := make([]*models.RiverReading, 0, len(data.Items))
	for _, station := range data.Items {
		level, recordedAt, ok := latestLevel(&station)
		if !ok || station.Lat == nil || station.Long == nil {
			continue // no usable level or no position, nothing to assess against
		}

		r := &models.RiverReading{
			ID:         "ea_" + station.StationReference,
			Source:     "ea",
			River:      station.RiverName,
			Station:    station.Label,
			Latitude:   *station.Lat,
			Longitude:  *station.Long,
			Level:      level,
			RecordedAt: recordedAt,
			CreatedAt:  time.Now(),
		}
		if station.StageScale != nil && station.StageScale.TypicalRangeHigh != nil {
			r.CriticalThreshold = station.StageScale.TypicalRangeHigh
		}
		readings = append(readings, r)
	}

	return readings, nil
}

// latestLevel picks the first level measure carrying a reading.
func latestLevel(station *eaStation) (float64, time.Time, bool) {
	for _, m := range station.Measures {
		if m.Parameter != "level" || m.LatestReading == nil {
			continue
		}
		recordedAt, err := time.Parse(time.RFC3339, m.LatestReading.DateTime)
		if err != nil {
			slog.Warn("EA timestamp parsing failed", "station", station.StationReference, "error", err.Error())
			recordedAt = time.Now()
		}
		return m.LatestReading.Value, recordedAt, true
	}
	return 0, time.Time{}, false
}
