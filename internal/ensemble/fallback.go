package ensemble

import (
	"aquaguard/internal/models"
)

// demoPrediction is one row of the static per-village fallback table served
// while no trained model is available.
type demoPrediction struct {
	RiskScore  float64
	AlertLevel models.AlertLevel
	Disease    models.DiseaseType
	Confidence float64
}

// demoPredictions covers the full deployment footprint. A village missing
// from this table cannot be served on the untrained path.
var demoPredictions = map[string]demoPrediction{
	"MH_SHA": {RiskScore: 91, AlertLevel: models.AlertCritical, Disease: models.DiseaseCholera, Confidence: 89},
	"UP_BAH": {RiskScore: 74, AlertLevel: models.AlertHigh, Disease: models.DiseaseTyphoid, Confidence: 82},
	"MH_SHP": {RiskScore: 58, AlertLevel: models.AlertMedium, Disease: models.DiseaseDysentery, Confidence: 71},
	"UP_GON": {RiskScore: 52, AlertLevel: models.AlertMedium, Disease: models.DiseaseHepatitisA, Confidence: 68},
	"MH_DHA": {RiskScore: 45, AlertLevel: models.AlertLow, Disease: models.DiseaseNone, Confidence: 65},
	"MH_YAW": {RiskScore: 38, AlertLevel: models.AlertLow, Disease: models.DiseaseNone, Confidence: 72},
	"MH_CHO": {RiskScore: 35, AlertLevel: models.AlertLow, Disease: models.DiseaseNone, Confidence: 75},
	"UP_BAL": {RiskScore: 32, AlertLevel: models.AlertLow, Disease: models.DiseaseNone, Confidence: 78},
	"MH_RAV": {RiskScore: 28, AlertLevel: models.AlertBaseline, Disease: models.DiseaseNone, Confidence: 80},
	"MH_AMA": {RiskScore: 25, AlertLevel: models.AlertBaseline, Disease: models.DiseaseNone, Confidence: 82},
	"MH_PAR": {RiskScore: 22, AlertLevel: models.AlertBaseline, Disease: models.DiseaseNone, Confidence: 85},
	"UP_SHR": {RiskScore: 20, AlertLevel: models.AlertBaseline, Disease: models.DiseaseNone, Confidence: 83},
	"MH_PAC": {RiskScore: 18, AlertLevel: models.AlertBaseline, Disease: models.DiseaseNone, Confidence: 86},
	"UP_LAK": {RiskScore: 15, AlertLevel: models.AlertBaseline, Disease: models.DiseaseNone, Confidence: 88},
	"MH_CHA": {RiskScore: 12, AlertLevel: models.AlertBaseline, Disease: models.DiseaseNone, Confidence: 90},
}

// staticRiskFactors names the dominant risk drivers for villages with known
// contamination profiles; used when model attribution is unavailable.
var staticRiskFactors = map[string][]models.RiskFactor{
	"MH_SHA": {
		{Feature: "Turbidity NTU", Impact: 0.42, Direction: models.DirectionIncreasesRisk},
		{Feature: "Water Quality Index", Impact: 0.38, Direction: models.DirectionIncreasesRisk},
		{Feature: "Symptom Score", Impact: 0.31, Direction: models.DirectionIncreasesRisk},
	},
	"UP_BAH": {
		{Feature: "Coliform CFU", Impact: 0.36, Direction: models.DirectionIncreasesRisk},
		{Feature: "TDS PPM", Impact: 0.29, Direction: models.DirectionIncreasesRisk},
		{Feature: "Environmental Risk", Impact: 0.24, Direction: models.DirectionIncreasesRisk},
	},
}

// fallbackRiskFactors returns the static factor list for a village, or the
// generic three-factor default.
func fallbackRiskFactors(villageID string) []models.RiskFactor {
	if factors, ok := staticRiskFactors[villageID]; ok {
		out := make([]models.RiskFactor, len(factors))
		copy(out, factors)
		return out
	}
	return []models.RiskFactor{
		{Feature: "Water Quality Index", Impact: 0.25, Direction: models.DirectionIncreasesRisk},
		{Feature: "Turbidity NTU", Impact: 0.18, Direction: models.DirectionIncreasesRisk},
		{Feature: "Rainfall MM", Impact: 0.12, Direction: models.DirectionIncreasesRisk},
	}
}

// recommendedActions maps an alert level to the ordered response playbook.
func recommendedActions(level models.AlertLevel) []string {
	switch level {
	case models.AlertCritical:
		return []string{
			"IMMEDIATE: deploy emergency medical team to village",
			"URGENT: chlorinate all water sources (2-3 ppm)",
			"Distribute 500+ ORS packets door-to-door",
			"Establish temporary medical camp within 24 hours",
			"Issue public health advisory via local channels",
			"Send water samples for lab testing immediately",
		}
	case models.AlertHigh:
		return []string{
			"Deploy health workers for door-to-door survey",
			"Chlorinate main water sources (1-2 ppm)",
			"Distribute 200 ORS packets to high-risk households",
			"Conduct water quality testing (pH, turbidity, coliform)",
			"Community awareness session on water safety",
		}
	case models.AlertMedium:
		return []string{
			"Increase surveillance with daily symptom monitoring",
			"Test chlorine levels in water sources",
			"Pre-position 100 ORS packets at health center",
			"Weekly health worker visits",
		}
	case models.AlertLow:
		return []string{
			"Continue routine monitoring",
			"Monthly water quality checks",
			"Distribute hygiene education materials",
		}
	default:
		return []string{
			"Maintain current monitoring protocols",
			"Routine health education programs",
		}
	}
}
