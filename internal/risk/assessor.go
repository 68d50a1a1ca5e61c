package risk

import (
	"context"

	"github.com/riverwatch/go-flood-routes/internal/geo"
	"github.com/riverwatch/go-flood-routes/internal/models"
)

// DefaultSearchRadiusKm bounds how far the assessor looks for a gauge.
const DefaultSearchRadiusKm = 25.0

// namedRiver is a fixed reference point used to attach a river name to an
// assessment when the gauge itself reports none. Purely cosmetic; never
// influences the risk level.
type namedRiver struct {
	name     string
	lat, lon float64
}

var namedRivers = []namedRiver{
	{"Thames", 51.4934, -0.2295},
	{"Severn", 52.1900, -2.2200},
	{"Trent", 52.9500, -0.8700},
	{"Great Ouse", 52.5800, 0.2900},
	{"Wye", 51.9900, -2.6400},
	{"Tyne", 54.9700, -1.6000},
	{"Mersey", 53.3500, -2.7300},
	{"Aire", 53.7200, -1.3800},
}

// Assessor is the one "assess risk at point X" operation. It orchestrates the
// river lookup and the classifier; login, location-update, and alert flows all
// consume this.
type Assessor struct {
	lookup         *RiverLookup
	classifier     Classifier
	searchRadiusKm float64
}

func NewAssessor(lookup *RiverLookup, classifier Classifier, searchRadiusKm float64) *Assessor {
	if searchRadiusKm <= 0 {
		searchRadiusKm = DefaultSearchRadiusKm
	}
	return &Assessor{
		lookup:         lookup,
		classifier:     classifier,
		searchRadiusKm: searchRadiusKm,
	}
}

// Assess returns the flood risk at a point. No gauge in range is not an
// error: the assessment degrades to LOW with zeroed levels.
func (a *Assessor) Assess(ctx context.Context, lat, lon float64) (*models.RiskAssessment, error) {
	closest, err := a.lookup.ClosestRiver(ctx, lat, lon, a.searchRadiusKm)
	if err != nil {
		return nil, err
	}
	if closest == nil {
		return &models.RiskAssessment{
			RiskLevel:      models.RiskLevelLow,
			WaterLevel:     0,
			ThresholdLevel: 0,
		}, nil
	}

	reading := closest.Reading
	threshold := reading.ThresholdOrDefault()
	level := a.classifier.Classify(reading.Level, threshold, closest.DistanceKm)

	name := riverName(&reading)
	distance := closest.DistanceKm
	return &models.RiskAssessment{
		RiskLevel:       level,
		WaterLevel:      reading.Level,
		ThresholdLevel:  threshold,
		DistanceToRiver: &distance,
		RiverName:       &name,
	}, nil
}

// riverName prefers the gauge's own river name, falling back to the nearest
// entry in the fixed reference table.
func riverName(r *models.RiverReading) string {
	if r.River != "" {
		return r.River
	}

	best := namedRivers[0]
	bestDist := geo.DistanceKm(r.Latitude, r.Longitude, best.lat, best.lon)
	for _, nr := range namedRivers[1:] {
		if d := geo.DistanceKm(r.Latitude, r.Longitude, nr.lat, nr.lon); d < bestDist {
			best = nr
			bestDist = d
		}
	}
	return best.name
}
