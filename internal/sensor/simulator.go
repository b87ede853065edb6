package sensor

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"aquaguard/internal/metrics"
	"aquaguard/internal/models"
)

const (
	// Readings retained per device before the oldest is evicted.
	bufferCapacity = 1000

	// Drift advances every driftInterval-th reading.
	driftInterval = 10

	// Fixed turbidity increment per reading on the deteriorating device.
	deteriorationStep = 0.15
)

// Symmetric drift clamp bounds per parameter. The drift state is a bounded
// random walk, never unbounded diffusion.
const (
	driftBoundPH        = 0.3
	driftBoundTurbidity = 0.5
	driftBoundTDS       = 20.0
	driftBoundTemp      = 2.0
)

// Measurement noise standard deviations.
const (
	noisePH        = 0.05
	noiseTurbidity = 0.1
	noiseTDS       = 5.0
	noiseWaterTemp = 0.3
	noiseAirTemp   = 0.5
	noiseHumidity  = 2.0
	noiseFlowRate  = 0.3
)

// driftState is the slow calibration-decay component of a device.
type driftState struct {
	ph        float64
	turbidity float64
	tds       float64
	temp      float64
}

// device owns all mutable state of one simulated unit. Every access goes
// through mu so a device's reading stream stays strictly ordered even when
// different devices are polled concurrently.
type device struct {
	cfg DeviceConfig

	mu            sync.Mutex
	rng           *rand.Rand
	buffer        []models.SensorReading
	readings      int
	anomalies     int
	drift         driftState
	deterioration int
}

// Simulator generates bounded, noisy, drifting readings for a fixed device
// fleet. It satisfies Interface.
type Simulator struct {
	devices map[string]*device
	order   []string
	start   time.Time

	// now is injectable for deterministic time-of-day tests.
	now func() time.Time
}

// SimulatorOption configures a Simulator.
type SimulatorOption func(*Simulator)

// WithClock overrides the simulator's time source.
func WithClock(now func() time.Time) SimulatorOption {
	return func(s *Simulator) { s.now = now }
}

// NewSimulator builds a simulator for the given fleet. Each device gets an
// independent random stream derived from src; a nil src yields
// non-deterministic behavior.
func NewSimulator(devices []DeviceConfig, src rand.Source, opts ...SimulatorOption) *Simulator {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	seeder := rand.New(src)

	s := &Simulator{
		devices: make(map[string]*device, len(devices)),
		order:   make([]string, 0, len(devices)),
		start:   time.Now(),
		now:     time.Now,
	}
	for _, cfg := range devices {
		s.devices[cfg.ID] = &device{
			cfg: cfg,
			rng: rand.New(rand.NewPCG(seeder.Uint64(), seeder.Uint64())),
		}
		s.order = append(s.order, cfg.ID)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LiveHardware is always false for the simulator.
func (s *Simulator) LiveHardware() bool { return false }

// Devices lists the simulated fleet.
func (s *Simulator) Devices() []DeviceConfig {
	out := make([]DeviceConfig, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.devices[id].cfg)
	}
	return out
}

func (s *Simulator) device(deviceID string) (*device, error) {
	d, ok := s.devices[deviceID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDevice, deviceID)
	}
	return d, nil
}

// Reading generates the next reading for a device.
func (s *Simulator) Reading(deviceID string) (models.SensorReading, error) {
	d, err := s.device(deviceID)
	if err != nil {
		return models.SensorReading{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// Offline devices replay their last buffered reading, marked stale.
	if d.cfg.Offline && len(d.buffer) > 0 {
		stale := d.buffer[len(d.buffer)-1]
		stale.Stale = true
		metrics.SensorStaleReadsTotal.WithLabelValues(deviceID).Inc()
		return stale, nil
	}

	now := s.now()
	reading := d.generate(now)

	d.store(reading)
	metrics.SensorReadingsTotal.WithLabelValues(deviceID, string(reading.QualityStatus)).Inc()
	if reading.AnomalyDetected {
		metrics.SensorAnomaliesTotal.WithLabelValues(deviceID, reading.AnomalyType).Inc()
	}
	return reading, nil
}

// generate composes baseline, seasonal and time-of-day modulation, drift,
// deterioration, and measurement noise, then clamps to physical ranges.
// Caller holds d.mu.
func (d *device) generate(now time.Time) models.SensorReading {
	seasonal := models.SeasonForMonth(now.Month()).SensorMultipliersFor()
	tempFactor, turbidityFactor := timeOfDayFactors(now.Hour())

	d.updateDrift()

	b := d.cfg.Baseline
	ph := b.PH + d.drift.ph + d.noise(noisePH)
	turbidity := b.Turbidity*seasonal.Turbidity*turbidityFactor + d.drift.turbidity + d.noise(noiseTurbidity)
	tds := b.TDS*seasonal.TDS + d.drift.tds + d.noise(noiseTDS)
	waterTemp := b.WaterTemp*seasonal.Temp*tempFactor + d.drift.temp + d.noise(noiseWaterTemp)
	airTemp := b.AirTemp*seasonal.Temp + d.noise(noiseAirTemp)
	humidity := b.Humidity + d.noise(noiseHumidity)
	flowRate := b.FlowRate + d.noise(noiseFlowRate)

	if d.cfg.Deteriorating {
		d.deterioration++
		turbidity += float64(d.deterioration) * deteriorationStep
	}

	// Physical range clamps; bounds violations are prevented by
	// construction, never surfaced.
	ph = models.Clamp(ph, 5.0, 10.0)
	turbidity = math.Max(0, turbidity)
	tds = math.Max(0, tds)
	waterTemp = models.Clamp(waterTemp, 15, 40)
	airTemp = models.Clamp(airTemp, 20, 45)
	humidity = models.Clamp(humidity, 30, 100)
	flowRate = math.Max(0, flowRate)

	anomaly, anomalyType := models.CheckAnomaly(ph, turbidity, tds, waterTemp)
	quality := models.ClassifyQuality(ph, turbidity, tds, anomaly)

	return models.SensorReading{
		Timestamp:        now,
		DeviceID:         d.cfg.ID,
		VillageID:        d.cfg.VillageID,
		PHLevel:          round2(ph),
		TurbidityNTU:     round2(turbidity),
		TDSPPM:           round1(tds),
		WaterTempCelsius: round1(waterTemp),
		AirTempCelsius:   round1(airTemp),
		HumidityPercent:  round1(humidity),
		FlowRateLPM:      round1(flowRate),
		IsLiveHardware:   false,
		AnomalyDetected:  anomaly,
		AnomalyType:      anomalyType,
		QualityStatus:    quality,
	}
}

// timeOfDayFactors models the diurnal cycle: water temperature follows a
// sinusoid peaking at 14:00, turbidity runs 15% higher after 18:00
// (evening usage).
func timeOfDayFactors(hour int) (temp, turbidity float64) {
	temp = 1.0 + 0.15*math.Sin(float64(hour-8)*math.Pi/12)
	turbidity = 1.0
	if hour >= 18 {
		turbidity = 1.15
	}
	return temp, turbidity
}

// updateDrift advances the bounded random walk every driftInterval-th
// reading. Each component is clamped to its own symmetric bound after the
// increment. Caller holds d.mu.
func (d *device) updateDrift() {
	if d.readings%driftInterval != 0 {
		return
	}
	d.drift.ph = models.Clamp(d.drift.ph+d.noise(0.02), -driftBoundPH, driftBoundPH)
	d.drift.turbidity = models.Clamp(d.drift.turbidity+d.noise(0.05), -driftBoundTurbidity, driftBoundTurbidity)
	d.drift.tds = models.Clamp(d.drift.tds+d.noise(2), -driftBoundTDS, driftBoundTDS)
	d.drift.temp = models.Clamp(d.drift.temp+d.noise(0.1), -driftBoundTemp, driftBoundTemp)
}

func (d *device) noise(sigma float64) float64 {
	return d.rng.NormFloat64() * sigma
}

// store appends a reading, evicting the oldest at capacity. Caller holds
// d.mu.
func (d *device) store(r models.SensorReading) {
	if len(d.buffer) >= bufferCapacity {
		copy(d.buffer, d.buffer[1:])
		d.buffer[len(d.buffer)-1] = r
	} else {
		d.buffer = append(d.buffer, r)
	}
	d.readings++
	if r.AnomalyDetected {
		d.anomalies++
	}
}

// History returns the last count readings, most recent last.
func (s *Simulator) History(deviceID string, count int) ([]models.SensorReading, error) {
	d, err := s.device(deviceID)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if count <= 0 || count > len(d.buffer) {
		count = len(d.buffer)
	}
	out := make([]models.SensorReading, count)
	copy(out, d.buffer[len(d.buffer)-count:])
	return out, nil
}

// Status computes a device health snapshot from elapsed uptime and the
// current hour. CPU and memory figures oscillate sinusoidally with bounded
// noise; battery hours trend up while solar charging and down otherwise.
func (s *Simulator) Status(deviceID string) (models.DeviceStatus, error) {
	d, err := s.device(deviceID)
	if err != nil {
		return models.DeviceStatus{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	now := s.now()
	uptime := now.Sub(s.start).Hours()
	hour := now.Hour()

	cpuTemp := 53 + 5*math.Sin(uptime*0.5) + d.noise(1)
	cpuUsage := models.Clamp(25+10*math.Sin(uptime*0.3)+d.noise(3), 0, 100)
	ramUsed := 2.1 + 0.3*math.Sin(uptime*0.2) + d.noise(0.1)

	solarCharging := hour >= 7 && hour <= 18
	var batteryHours float64
	if solarCharging {
		batteryHours = math.Min(72, 48+uptime*0.5)
	} else {
		batteryHours = math.Max(24, 72-uptime*0.3)
	}

	var lastReadingAt time.Time
	if len(d.buffer) > 0 {
		lastReadingAt = d.buffer[len(d.buffer)-1].Timestamp
	}

	return models.DeviceStatus{
		DeviceID:           d.cfg.ID,
		VillageID:          d.cfg.VillageID,
		IsOnline:           !d.cfg.Offline,
		IsLiveHardware:     false,
		CPUTempCelsius:     round1(cpuTemp),
		CPUUsagePercent:    round1(cpuUsage),
		RAMUsedGB:          round2(ramUsed),
		RAMTotalGB:         16.0,
		UptimeHours:        round1(uptime),
		LastReadingAt:      lastReadingAt,
		ReadingsToday:      d.readings,
		AnomaliesToday:     d.anomalies,
		NetworkType:        d.cfg.NetworkType,
		SignalDBM:          -71 + d.rng.IntN(11) - 5,
		BatteryBackupHours: round1(batteryHours),
		SolarCharging:      solarCharging,
	}, nil
}

// Calibrate simulates a calibration cycle and reports the offsets.
func (s *Simulator) Calibrate(deviceID string) (models.CalibrationResult, error) {
	d, err := s.device(deviceID)
	if err != nil {
		return models.CalibrationResult{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	return models.CalibrationResult{
		DeviceID:        deviceID,
		CalibratedAt:    s.now(),
		Success:         true,
		PHOffset:        round3(d.noise(0.05)),
		TurbidityOffset: round3(d.noise(0.1)),
		TDSOffset:       round2(d.noise(5)),
		TempOffset:      round3(d.noise(0.2)),
		Message:         fmt.Sprintf("calibration successful for %s, offsets applied", deviceID),
	}, nil
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
