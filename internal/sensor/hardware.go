package sensor

import (
	"aquaguard/internal/models"
)

// Hardware is the real-sensor variant of the capability. Deployments
// without wired hardware hold it in a distinct "not configured" state:
// construction always succeeds, Configured reports false, and every
// operation returns ErrHardwareNotConfigured. Field integration replaces
// this with a driver-backed implementation behind the same Interface.
type Hardware struct {
	devices []DeviceConfig
}

// NewHardware constructs the hardware variant for the given fleet.
func NewHardware(devices []DeviceConfig) *Hardware {
	return &Hardware{devices: devices}
}

// Configured reports whether real sensors are wired up.
func (h *Hardware) Configured() bool { return false }

// LiveHardware is true by definition for this variant.
func (h *Hardware) LiveHardware() bool { return true }

// Devices lists the configured fleet.
func (h *Hardware) Devices() []DeviceConfig {
	out := make([]DeviceConfig, len(h.devices))
	copy(out, h.devices)
	return out
}

func (h *Hardware) Reading(deviceID string) (models.SensorReading, error) {
	return models.SensorReading{}, ErrHardwareNotConfigured
}

func (h *Hardware) Status(deviceID string) (models.DeviceStatus, error) {
	return models.DeviceStatus{}, ErrHardwareNotConfigured
}

func (h *Hardware) History(deviceID string, count int) ([]models.SensorReading, error) {
	return nil, ErrHardwareNotConfigured
}

func (h *Hardware) Calibrate(deviceID string) (models.CalibrationResult, error) {
	return models.CalibrationResult{}, ErrHardwareNotConfigured
}
