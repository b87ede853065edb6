package models

import (
	"time"
)

// QualityStatus classifies a single reading's drinkability.
type QualityStatus string

const (
	QualitySafe     QualityStatus = "safe"
	QualityMarginal QualityStatus = "marginal"
	QualityUnsafe   QualityStatus = "unsafe"
	QualityCritical QualityStatus = "critical"
)

// Anomaly types raised by the single-reading threshold rules.
const (
	AnomalyPHOutOfRange    = "ph_out_of_range"
	AnomalyHighTurbidity   = "high_turbidity"
	AnomalyHighTDS         = "high_tds"
	AnomalyHighTemperature = "high_temperature"
)

// SensorReading is a single water-quality measurement from one device.
// Readings are ephemeral and retained only in a bounded per-device buffer.
type SensorReading struct {
	Timestamp time.Time `json:"timestamp"`
	DeviceID  string    `json:"device_id"`
	VillageID string    `json:"village_id"`

	PHLevel          float64 `json:"ph_level"`
	TurbidityNTU     float64 `json:"turbidity_ntu"`
	TDSPPM           float64 `json:"tds_ppm"`
	WaterTempCelsius float64 `json:"water_temp_celsius"`
	AirTempCelsius   float64 `json:"air_temp_celsius"`
	HumidityPercent  float64 `json:"humidity_percent"`
	FlowRateLPM      float64 `json:"flow_rate_lpm"`

	IsLiveHardware  bool          `json:"is_live_hardware"`
	AnomalyDetected bool          `json:"anomaly_detected"`
	AnomalyType     string        `json:"anomaly_type,omitempty"`
	QualityStatus   QualityStatus `json:"quality_status"`

	// Stale marks a reading replayed from the buffer of an offline device
	// rather than freshly measured.
	Stale bool `json:"stale,omitempty"`
}

// CheckAnomaly applies the single-reading threshold rules in priority order
// and returns the first violated rule, if any.
func CheckAnomaly(ph, turbidity, tds, waterTemp float64) (bool, string) {
	switch {
	case ph < 6.5 || ph > 8.5:
		return true, AnomalyPHOutOfRange
	case turbidity > 5.0:
		return true, AnomalyHighTurbidity
	case tds > 500:
		return true, AnomalyHighTDS
	case waterTemp > 35:
		return true, AnomalyHighTemperature
	}
	return false, ""
}

// ClassifyQuality maps a reading to a quality status given the anomaly
// outcome. Critical requires an anomaly plus a severe excursion; marginal
// covers the warning bands just inside the anomaly limits.
func ClassifyQuality(ph, turbidity, tds float64, anomaly bool) QualityStatus {
	if anomaly {
		if turbidity > 8 || ph < 6.0 || ph > 9.0 {
			return QualityCritical
		}
		return QualityUnsafe
	}

	if (ph >= 6.5 && ph <= 6.7) || (ph >= 8.3 && ph <= 8.5) ||
		(turbidity >= 3.5 && turbidity <= 5.0) ||
		(tds >= 450 && tds <= 500) {
		return QualityMarginal
	}

	return QualitySafe
}

// DeviceStatus is a point-in-time health snapshot of a monitoring device.
type DeviceStatus struct {
	DeviceID  string `json:"device_id"`
	VillageID string `json:"village_id"`

	IsOnline       bool `json:"is_online"`
	IsLiveHardware bool `json:"is_live_hardware"`

	CPUTempCelsius  float64 `json:"cpu_temp_celsius"`
	CPUUsagePercent float64 `json:"cpu_usage_percent"`
	RAMUsedGB       float64 `json:"ram_used_gb"`
	RAMTotalGB      float64 `json:"ram_total_gb"`
	UptimeHours     float64 `json:"uptime_hours"`

	LastReadingAt  time.Time `json:"last_reading_at"`
	ReadingsToday  int       `json:"readings_today"`
	AnomaliesToday int       `json:"anomalies_today"`

	NetworkType        string  `json:"network_type"`
	SignalDBM          int     `json:"signal_dbm"`
	BatteryBackupHours float64 `json:"battery_backup_hours"`
	SolarCharging      bool    `json:"solar_charging"`
}

// CalibrationResult reports the offsets applied by a calibration run.
type CalibrationResult struct {
	DeviceID     string    `json:"device_id"`
	CalibratedAt time.Time `json:"calibrated_at"`
	Success      bool      `json:"success"`

	PHOffset        float64 `json:"ph_offset"`
	TurbidityOffset float64 `json:"turbidity_offset"`
	TDSOffset       float64 `json:"tds_offset"`
	TempOffset      float64 `json:"temp_offset"`

	Message string `json:"message"`
}
