package models

import (
	"testing"
	"time"
)

func TestBucketAlertLevel(t *testing.T) {
	tests := []struct {
		name         string
		symptomScore float64
		wqi          float64
		want         AlertLevel
	}{
		{"high symptoms good water", 16, 90, AlertCritical},
		{"terrible water no symptoms", 0, 25, AlertCritical},
		{"elevated symptoms", 11, 90, AlertHigh},
		{"poor water", 0, 45, AlertHigh},
		{"moderate symptoms", 6, 90, AlertMedium},
		{"marginal water", 0, 60, AlertMedium},
		{"mild symptoms", 3, 90, AlertLow},
		{"slightly degraded water", 0, 70, AlertLow},
		{"quiet village", 1, 80, AlertBaseline},
		{"boundary symptom score 15", 15, 90, AlertHigh},
		{"boundary wqi 30", 0, 30, AlertHigh},
		{"boundary symptom score 2", 2, 80, AlertBaseline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BucketAlertLevel(tt.symptomScore, tt.wqi)
			if got != tt.want {
				t.Errorf("BucketAlertLevel(%v, %v) = %v, want %v",
					tt.symptomScore, tt.wqi, got, tt.want)
			}
		})
	}
}

func TestAlertLevelRank(t *testing.T) {
	prev := -1
	for _, level := range AlertLevels {
		rank := level.Rank()
		if rank <= prev {
			t.Errorf("level %v rank %d not above previous %d", level, rank, prev)
		}
		prev = rank
	}

	if AlertLevel("bogus").Rank() != -1 {
		t.Errorf("unknown level should rank -1")
	}
	if AlertLevel("bogus").IsValid() {
		t.Errorf("unknown level should not be valid")
	}
	if !AlertCritical.IsValid() {
		t.Errorf("critical should be valid")
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi, want float64
	}{
		{50, 0, 100, 50},
		{-5, 0, 100, 0},
		{120, 0, 100, 100},
		{0, 0, 100, 0},
		{100, 0, 100, 100},
	}
	for _, tt := range tests {
		if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}

func TestSeasonForMonth(t *testing.T) {
	tests := []struct {
		month time.Month
		want  Season
	}{
		{time.January, SeasonWinter},
		{time.February, SeasonWinter},
		{time.March, SeasonSummer},
		{time.May, SeasonSummer},
		{time.June, SeasonMonsoon},
		{time.September, SeasonMonsoon},
		{time.October, SeasonPostMonsoon},
		{time.November, SeasonWinter},
		{time.December, SeasonWinter},
	}
	for _, tt := range tests {
		if got := SeasonForMonth(tt.month); got != tt.want {
			t.Errorf("SeasonForMonth(%v) = %v, want %v", tt.month, got, tt.want)
		}
	}
}

func TestSeasonRiskMultiplier(t *testing.T) {
	if m := SeasonMonsoon.RiskMultiplier(); m != 1.8 {
		t.Errorf("monsoon multiplier = %v, want 1.8", m)
	}
	if m := SeasonWinter.RiskMultiplier(); m != 0.7 {
		t.Errorf("winter multiplier = %v, want 0.7", m)
	}
	if SeasonMonsoon.RiskMultiplier() <= SeasonSummer.RiskMultiplier() {
		t.Errorf("monsoon should carry more risk than summer")
	}
}
