package models

import "time"

// Risk factor directions.
const (
	DirectionIncreasesRisk = "increases_risk"
	DirectionDecreasesRisk = "decreases_risk"
)

// RiskFactor names one feature's contribution to a prediction.
type RiskFactor struct {
	Feature   string  `json:"feature"`
	Impact    float64 `json:"impact"`
	Direction string  `json:"direction"`
}

// Prediction is the final output of the ensemble for one village. Derived
// fresh on every call; persistence is an external concern.
type Prediction struct {
	VillageID   string `json:"village_id"`
	VillageName string `json:"village_name"`

	RiskScore         float64     `json:"risk_score"`
	AlertLevel        AlertLevel  `json:"alert_level"`
	PredictedDisease  DiseaseType `json:"predicted_disease"`
	ConfidencePercent float64     `json:"confidence_percent"`

	CasesPredictedNext7Days int          `json:"cases_predicted_next_7_days"`
	TopRiskFactors          []RiskFactor `json:"top_risk_factors"`
	RecommendedActions      []string     `json:"recommended_actions"`
	WaterQualityIndex       float64      `json:"water_quality_index"`
	Trend                   Trend        `json:"trend"`

	SensorContributed bool      `json:"sensor_contributed"`
	LastUpdated       time.Time `json:"last_updated"`
}

// ResourceEstimate is the fixed-shape outbreak response resource plan.
type ResourceEstimate struct {
	ORSPackets           int    `json:"ors_packets"`
	MedicalStaff         int    `json:"medical_staff"`
	WaterTestingKits     int    `json:"water_testing_kits"`
	ChlorineTablets      int    `json:"chlorine_tablets"`
	EstimatedCostINR     int    `json:"estimated_cost_inr"`
	ResponseTimeEstimate string `json:"response_time_estimate"`
}

// AlertDecision is the outcome of applying the alert policy to a prediction.
type AlertDecision struct {
	ShouldEmit  bool             `json:"should_emit"`
	AlertLevel  AlertLevel       `json:"alert_level"`
	RiskScore   float64          `json:"risk_score"`
	CasesAtRisk int              `json:"cases_at_risk"`
	Resources   ResourceEstimate `json:"resources"`
}
