// Package sensor provides the water-quality sensing capability behind the
// risk pipeline. Two variants exist: a fully simulated fleet and a hardware
// variant that is a distinct, checked "not configured" state. Selection
// between them is a startup-time configuration decision.
package sensor

import (
	"errors"

	"aquaguard/internal/models"
)

// Sensor errors
var (
	ErrUnknownDevice         = errors.New("unknown device")
	ErrHardwareNotConfigured = errors.New("hardware sensors not configured")
)

// Interface is the capability exposed by a sensor fleet. Per-device call
// ordering matters (drift and deterioration state depend on the previous
// reading); calls across devices are independent.
type Interface interface {
	// Reading produces the next reading for a device. Offline devices
	// replay their last buffered reading, marked stale.
	Reading(deviceID string) (models.SensorReading, error)

	// Status computes a point-in-time device health snapshot.
	Status(deviceID string) (models.DeviceStatus, error)

	// History returns the last count readings, most recent last.
	History(deviceID string, count int) ([]models.SensorReading, error)

	// Calibrate runs a calibration cycle and reports the offsets.
	Calibrate(deviceID string) (models.CalibrationResult, error)

	// Devices lists the configured device fleet.
	Devices() []DeviceConfig

	// LiveHardware reports whether readings come from real sensors.
	LiveHardware() bool
}

// Baseline holds a device's nominal parameter values before seasonal,
// time-of-day, drift, and noise effects.
type Baseline struct {
	PH        float64
	Turbidity float64
	TDS       float64
	WaterTemp float64
	AirTemp   float64
	Humidity  float64
	FlowRate  float64
}

// DeviceConfig describes one deployed monitoring unit.
type DeviceConfig struct {
	ID        string
	VillageID string

	// Offline devices serve stale buffered readings instead of fresh ones.
	Offline bool

	// Deteriorating marks the single device whose turbidity baseline
	// rises by a fixed increment per reading, modeling progressive
	// contamination.
	Deteriorating bool

	NetworkType string
	Baseline    Baseline
}

// DefaultDevices is the simulated fleet: one healthy unit, one with a
// progressive turbidity problem, and one that has dropped offline.
func DefaultDevices() []DeviceConfig {
	return []DeviceConfig{
		{
			ID:          "AQG-UNIT-001",
			VillageID:   "MH_SHP",
			NetworkType: "4G",
			Baseline: Baseline{
				PH: 7.2, Turbidity: 1.1, TDS: 312,
				WaterTemp: 26.5, AirTemp: 31.0, Humidity: 65, FlowRate: 12.5,
			},
		},
		{
			ID:            "AQG-UNIT-002",
			VillageID:     "MH_DHA",
			Deteriorating: true,
			NetworkType:   "WiFi",
			Baseline: Baseline{
				PH: 6.8, Turbidity: 4.2, TDS: 478,
				WaterTemp: 28.1, AirTemp: 33.2, Humidity: 72, FlowRate: 10.8,
			},
		},
		{
			ID:          "AQG-UNIT-003",
			VillageID:   "UP_BAH",
			Offline:     true,
			NetworkType: "WiFi",
			Baseline: Baseline{
				PH: 7.0, Turbidity: 2.5, TDS: 390,
				WaterTemp: 27.0, AirTemp: 32.5, Humidity: 68, FlowRate: 11.2,
			},
		},
	}
}
