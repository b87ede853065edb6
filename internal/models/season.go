package models

import "time"

// Season is one of the four regional climate regimes. Both the historical
// generator and the live simulator classify calendar months with the same
// table so their outputs stay mutually consistent.
type Season string

const (
	SeasonMonsoon     Season = "monsoon"      // Jun-Sep
	SeasonSummer      Season = "summer"       // Mar-May
	SeasonWinter      Season = "winter"       // Nov-Feb
	SeasonPostMonsoon Season = "post_monsoon" // Oct
)

// SeasonForMonth classifies a calendar month into its seasonal regime.
func SeasonForMonth(month time.Month) Season {
	switch {
	case month >= time.June && month <= time.September:
		return SeasonMonsoon
	case month >= time.March && month <= time.May:
		return SeasonSummer
	case month >= time.November || month <= time.February:
		return SeasonWinter
	default:
		return SeasonPostMonsoon
	}
}

// RiskMultiplier scales turbidity and contamination in the historical
// generator.
func (s Season) RiskMultiplier() float64 {
	switch s {
	case SeasonMonsoon:
		return 1.8
	case SeasonSummer:
		return 1.3
	case SeasonWinter:
		return 0.7
	default:
		return 1.1
	}
}

// SensorMultipliers holds the per-parameter seasonal factors applied to
// simulated live readings.
type SensorMultipliers struct {
	Turbidity float64
	TDS       float64
	Temp      float64
}

// SensorMultipliersFor returns the live-reading seasonal factors.
func (s Season) SensorMultipliersFor() SensorMultipliers {
	switch s {
	case SeasonMonsoon:
		return SensorMultipliers{Turbidity: 1.8, TDS: 1.2, Temp: 0.95}
	case SeasonSummer:
		return SensorMultipliers{Turbidity: 1.1, TDS: 1.15, Temp: 1.1}
	case SeasonWinter:
		return SensorMultipliers{Turbidity: 0.9, TDS: 0.95, Temp: 0.85}
	default:
		return SensorMultipliers{Turbidity: 1.0, TDS: 1.0, Temp: 1.0}
	}
}
