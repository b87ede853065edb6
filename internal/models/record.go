package models

import (
	"time"
)

// AlertLevel is the ordered outbreak severity category.
type AlertLevel string

const (
	AlertBaseline AlertLevel = "baseline"
	AlertLow      AlertLevel = "low"
	AlertMedium   AlertLevel = "medium"
	AlertHigh     AlertLevel = "high"
	AlertCritical AlertLevel = "critical"
)

// AlertLevels lists all levels in ascending severity order. The ensemble's
// alert classifiers encode class indices in exactly this order.
var AlertLevels = []AlertLevel{AlertBaseline, AlertLow, AlertMedium, AlertHigh, AlertCritical}

// Rank returns the position of the level in the severity order, or -1 for
// an unknown level.
func (l AlertLevel) Rank() int {
	for i, level := range AlertLevels {
		if level == l {
			return i
		}
	}
	return -1
}

// IsValid checks if the alert level is a known severity category
func (l AlertLevel) IsValid() bool {
	return l.Rank() >= 0
}

// DiseaseType identifies the predicted water-borne disease.
type DiseaseType string

const (
	DiseaseNone       DiseaseType = "none"
	DiseaseCholera    DiseaseType = "cholera"
	DiseaseTyphoid    DiseaseType = "typhoid"
	DiseaseDysentery  DiseaseType = "dysentery"
	DiseaseHepatitisA DiseaseType = "hepatitis_a"
)

// Trend describes the short-term direction of a village's risk.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendWorsening Trend = "worsening"
)

// HistoricalRecord is one day of one village's symptom and water-quality
// history. Lag features are filled per village series after generation and
// zero-filled before enough history exists.
type HistoricalRecord struct {
	Date      time.Time `json:"date"`
	VillageID string    `json:"village_id"`

	// Raw symptom counts
	DiarrheaCases      int `json:"diarrhea_cases"`
	VomitingCases      int `json:"vomiting_cases"`
	FeverCases         int `json:"fever_cases"`
	AbdominalPainCases int `json:"abdominal_pain_cases"`
	BloodInStoolCases  int `json:"blood_in_stool_cases"`
	TotalCases         int `json:"total_cases"`

	// Water quality
	PHLevel      float64 `json:"ph_level"`
	TurbidityNTU float64 `json:"turbidity_ntu"`
	TDSPPM       float64 `json:"tds_ppm"`
	ColiformCFU  float64 `json:"coliform_cfu"`
	ChlorinePPM  float64 `json:"chlorine_ppm"`

	// Environment
	RainfallMM         float64 `json:"rainfall_mm"`
	TemperatureCelsius float64 `json:"temperature_celsius"`

	// Derived scores
	SymptomScore      float64 `json:"symptom_score"`
	WaterQualityIndex float64 `json:"water_quality_index"`
	EnvironmentalRisk float64 `json:"environmental_risk"`
	RiskScore         float64 `json:"risk_score"`

	AlertLevel  AlertLevel  `json:"alert_level"`
	DiseaseType DiseaseType `json:"disease_type"`
	IsOutbreak  bool        `json:"is_outbreak"`

	// Lag features, per village time series
	Lag1Cases           float64 `json:"lag_1_cases"`
	Lag3Cases           float64 `json:"lag_3_cases"`
	Lag7Cases           float64 `json:"lag_7_cases"`
	Rolling7DayCaseRate float64 `json:"rolling_7day_case_rate"`
}

// BucketAlertLevel maps a symptom score and water quality index to an alert
// level. Rules are checked in priority order and the first match wins, so a
// high symptom score decides before WQI is even looked at.
func BucketAlertLevel(symptomScore, wqi float64) AlertLevel {
	switch {
	case symptomScore > 15 || wqi < 30:
		return AlertCritical
	case symptomScore > 10 || wqi < 50:
		return AlertHigh
	case symptomScore > 5 || wqi < 65:
		return AlertMedium
	case symptomScore > 2 || wqi < 75:
		return AlertLow
	default:
		return AlertBaseline
	}
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
