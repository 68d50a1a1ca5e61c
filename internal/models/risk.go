package models

type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "LOW"
	RiskLevelMedium RiskLevel = "MEDIUM"
	RiskLevelHigh   RiskLevel = "HIGH"
)

// Severity orders risk levels so callers can compare them (HIGH > MEDIUM > LOW).
func (l RiskLevel) Severity() int {
	switch l {
	case RiskLevelHigh:
		return 2
	case RiskLevelMedium:
		return 1
	}
	return 0
}

// RiskAssessment is the structured result of assessing flood risk at a point.
// Computed per request, never persisted. The JSON field names are the contract
// existing clients depend on.
type RiskAssessment struct {
	RiskLevel       RiskLevel `json:"riskLevel"`
	WaterLevel      float64   `json:"waterLevel"`
	ThresholdLevel  float64   `json:"thresholdLevel"`
	DistanceToRiver *float64  `json:"distanceToRiver"` // km, nil when no reading in range
	RiverName       *string   `json:"riverName"`       // nil when no reading in range
}
