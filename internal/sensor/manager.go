package sensor

import (
	"math/rand/v2"

	"aquaguard/internal/config"
	"aquaguard/internal/logger"
)

// Select picks the sensor variant for the configured mode. Hardware mode
// without wired sensors falls back to the simulator so the pipeline keeps
// serving readings.
func Select(mode config.SensorMode, devices []DeviceConfig, src rand.Source) Interface {
	log := logger.WithComponent("sensor_manager")

	switch mode {
	case config.SensorModeHardware:
		hw := NewHardware(devices)
		if hw.Configured() {
			log.Info().Msg("hardware sensor mode active")
			return hw
		}
		log.Warn().Msg("hardware sensors not configured, falling back to simulator")
		return NewSimulator(devices, src)
	case config.SensorModeSimulated:
		log.Info().Int("devices", len(devices)).Msg("simulated sensor mode active")
		return NewSimulator(devices, src)
	default:
		log.Warn().Str("mode", string(mode)).Msg("unknown sensor mode, using simulator")
		return NewSimulator(devices, src)
	}
}
