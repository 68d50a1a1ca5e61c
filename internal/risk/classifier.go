// Package risk implements the flood risk core: the rule-based classifier,
// the closest-river lookup, and the assessor that ties them together.
package risk

import "github.com/riverwatch/go-flood-routes/internal/models"

// DefaultDistanceOverrideKm forces LOW beyond this distance from the river.
const DefaultDistanceOverrideKm = 5.0

// Classifier maps (water level, critical threshold, distance to river) to a
// risk level with a fixed decision table. There is exactly one copy of this
// table in the codebase; every surface that reports risk calls it.
type Classifier struct {
	// DistanceOverrideKm short-circuits the table: anything farther than
	// this from the river is LOW regardless of water level. Zero disables
	// the override.
	DistanceOverrideKm float64
}

// Classify evaluates the decision table top to bottom, first match wins.
// criticalThreshold must already be defaulted by the caller (level-5 when the
// reading carries none); Classify never sees a missing value.
func (c Classifier) Classify(waterLevel, criticalThreshold, distanceToRiverKm float64) models.RiskLevel {
	if c.DistanceOverrideKm > 0 && distanceToRiverKm > c.DistanceOverrideKm {
		return models.RiskLevelLow
	}

	switch {
	case waterLevel >= criticalThreshold:
		return models.RiskLevelHigh
	case waterLevel >= criticalThreshold-5:
		return models.RiskLevelMedium
	case distanceToRiverKm < 0.5:
		return models.RiskLevelMedium
	default:
		return models.RiskLevelLow
	}
}
