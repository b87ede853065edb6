package models

// Feature indices into a FeatureVector. The order is a contract shared by
// the feature builder, every base model, and the stacking meta-model; adding
// or removing a feature is a breaking change to trained model state.
const (
	FeatSymptomScore = iota
	FeatWaterQualityIndex
	FeatEnvironmentalRisk
	FeatRolling7DayCaseRate
	FeatLag1Cases
	FeatLag3Cases
	FeatLag7Cases
	FeatPHLevel
	FeatTurbidityNTU
	FeatTDSPPM
	FeatColiformCFU
	FeatChlorinePPM
	FeatRainfallMM
	FeatTemperatureCelsius
	FeatPopulation

	NumFeatures
)

// FeatureNames maps feature indices to their canonical snake_case names.
var FeatureNames = [NumFeatures]string{
	"symptom_score",
	"water_quality_index",
	"environmental_risk",
	"rolling_7day_case_rate",
	"lag_1_cases",
	"lag_3_cases",
	"lag_7_cases",
	"ph_level",
	"turbidity_ntu",
	"tds_ppm",
	"coliform_cfu",
	"chlorine_ppm",
	"rainfall_mm",
	"temperature_celsius",
	"population",
}

// featureDisplayNames are the operator-facing labels used in risk factors.
var featureDisplayNames = [NumFeatures]string{
	"Symptom Score",
	"Water Quality Index",
	"Environmental Risk",
	"Rolling 7day Case Rate",
	"Lag 1 Cases",
	"Lag 3 Cases",
	"Lag 7 Cases",
	"Ph Level",
	"Turbidity NTU",
	"TDS PPM",
	"Coliform CFU",
	"Chlorine PPM",
	"Rainfall MM",
	"Temperature Celsius",
	"Population",
}

// FeatureDisplayName humanizes a feature index for reports.
func FeatureDisplayName(i int) string {
	if i < 0 || i >= NumFeatures {
		return "Unknown"
	}
	return featureDisplayNames[i]
}

// FeatureVector is the fixed, ordered numeric input to the ensemble. Built
// fresh per prediction call and never persisted.
type FeatureVector [NumFeatures]float64

// Slice returns the vector as a []float64 backed by a copy.
func (f FeatureVector) Slice() []float64 {
	out := make([]float64, NumFeatures)
	copy(out, f[:])
	return out
}
