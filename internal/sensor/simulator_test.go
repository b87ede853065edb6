package sensor

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"aquaguard/internal/models"
)

func fixedClock(hour int) func() time.Time {
	return func() time.Time {
		return time.Date(2024, 7, 15, hour, 0, 0, 0, time.UTC)
	}
}

func healthyDevice() DeviceConfig {
	return DeviceConfig{
		ID:          "AQG-UNIT-001",
		VillageID:   "MH_SHP",
		NetworkType: "4G",
		Baseline: Baseline{
			PH: 7.2, Turbidity: 1.1, TDS: 312,
			WaterTemp: 26.5, AirTemp: 31.0, Humidity: 65, FlowRate: 12.5,
		},
	}
}

func TestReadingUnknownDevice(t *testing.T) {
	s := NewSimulator([]DeviceConfig{healthyDevice()}, rand.NewPCG(1, 1))

	if _, err := s.Reading("AQG-UNIT-404"); !errors.Is(err, ErrUnknownDevice) {
		t.Fatalf("Reading error = %v, want ErrUnknownDevice", err)
	}
	if _, err := s.Status("AQG-UNIT-404"); !errors.Is(err, ErrUnknownDevice) {
		t.Fatalf("Status error = %v, want ErrUnknownDevice", err)
	}
	if _, err := s.Calibrate("AQG-UNIT-404"); !errors.Is(err, ErrUnknownDevice) {
		t.Fatalf("Calibrate error = %v, want ErrUnknownDevice", err)
	}
}

func TestReadingIdentityAndBounds(t *testing.T) {
	s := NewSimulator([]DeviceConfig{healthyDevice()}, rand.NewPCG(2, 2), WithClock(fixedClock(12)))

	for i := 0; i < 200; i++ {
		r, err := s.Reading("AQG-UNIT-001")
		if err != nil {
			t.Fatalf("Reading returned error: %v", err)
		}
		if r.DeviceID != "AQG-UNIT-001" || r.VillageID != "MH_SHP" {
			t.Fatalf("reading identity wrong: %+v", r)
		}
		if r.IsLiveHardware {
			t.Fatalf("simulated reading marked as live hardware")
		}
		if r.PHLevel < 5.0 || r.PHLevel > 10.0 {
			t.Fatalf("pH %v outside [5,10]", r.PHLevel)
		}
		if r.TurbidityNTU < 0 || r.TDSPPM < 0 || r.FlowRateLPM < 0 {
			t.Fatalf("negative physical value: %+v", r)
		}
		if r.WaterTempCelsius < 15 || r.WaterTempCelsius > 40 {
			t.Fatalf("water temp %v outside [15,40]", r.WaterTempCelsius)
		}
		if r.HumidityPercent < 30 || r.HumidityPercent > 100 {
			t.Fatalf("humidity %v outside [30,100]", r.HumidityPercent)
		}
	}
}

func TestReadingDeterministicWithSeed(t *testing.T) {
	mk := func() *Simulator {
		return NewSimulator([]DeviceConfig{healthyDevice()}, rand.NewPCG(5, 5), WithClock(fixedClock(9)))
	}
	a, b := mk(), mk()

	for i := 0; i < 20; i++ {
		ra, err := a.Reading("AQG-UNIT-001")
		if err != nil {
			t.Fatalf("Reading returned error: %v", err)
		}
		rb, err := b.Reading("AQG-UNIT-001")
		if err != nil {
			t.Fatalf("Reading returned error: %v", err)
		}
		if ra != rb {
			t.Fatalf("reading %d differs between identically seeded simulators:\n%+v\n%+v", i, ra, rb)
		}
	}
}

func TestOfflineDeviceReplaysStaleReading(t *testing.T) {
	cfg := healthyDevice()
	cfg.ID = "AQG-UNIT-003"
	cfg.Offline = true

	s := NewSimulator([]DeviceConfig{cfg}, rand.NewPCG(4, 4), WithClock(fixedClock(10)))

	first, err := s.Reading("AQG-UNIT-003")
	if err != nil {
		t.Fatalf("first Reading returned error: %v", err)
	}
	if first.Stale {
		t.Fatalf("first reading of an offline device should be freshly generated")
	}

	for i := 0; i < 3; i++ {
		replay, err := s.Reading("AQG-UNIT-003")
		if err != nil {
			t.Fatalf("replay Reading returned error: %v", err)
		}
		if !replay.Stale {
			t.Fatalf("offline replay not marked stale: %+v", replay)
		}
		replay.Stale = false
		if replay != first {
			t.Fatalf("offline replay differs from buffered reading:\n%+v\n%+v", replay, first)
		}
	}
}

func TestDeterioratingDeviceTurbidityRises(t *testing.T) {
	cfg := healthyDevice()
	cfg.ID = "AQG-UNIT-002"
	cfg.Deteriorating = true

	s := NewSimulator([]DeviceConfig{cfg}, rand.NewPCG(6, 6), WithClock(fixedClock(12)))

	var early, late float64
	for i := 0; i < 100; i++ {
		r, err := s.Reading("AQG-UNIT-002")
		if err != nil {
			t.Fatalf("Reading returned error: %v", err)
		}
		if i < 10 {
			early += r.TurbidityNTU
		}
		if i >= 90 {
			late += r.TurbidityNTU
		}
	}

	// 80+ deterioration steps of 0.15 dwarf noise and drift.
	if late/10 < early/10+5 {
		t.Fatalf("turbidity did not deteriorate: early avg %.2f, late avg %.2f", early/10, late/10)
	}
}

func TestDriftStaysBounded(t *testing.T) {
	s := NewSimulator([]DeviceConfig{healthyDevice()}, rand.NewPCG(8, 8), WithClock(fixedClock(12)))
	d := s.devices["AQG-UNIT-001"]

	d.mu.Lock()
	for i := 0; i < 5000; i++ {
		d.readings = i * driftInterval // force an advance every call
		d.updateDrift()

		if math.Abs(d.drift.ph) > driftBoundPH ||
			math.Abs(d.drift.turbidity) > driftBoundTurbidity ||
			math.Abs(d.drift.tds) > driftBoundTDS ||
			math.Abs(d.drift.temp) > driftBoundTemp {
			d.mu.Unlock()
			t.Fatalf("drift escaped bounds after %d updates: %+v", i, d.drift)
		}
	}
	d.mu.Unlock()
}

func TestHistoryOrderAndBufferEviction(t *testing.T) {
	s := NewSimulator([]DeviceConfig{healthyDevice()}, rand.NewPCG(10, 10), WithClock(fixedClock(12)))

	total := bufferCapacity + 50
	var last models.SensorReading
	for i := 0; i < total; i++ {
		r, err := s.Reading("AQG-UNIT-001")
		if err != nil {
			t.Fatalf("Reading returned error: %v", err)
		}
		last = r
	}

	all, err := s.History("AQG-UNIT-001", 0)
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if len(all) != bufferCapacity {
		t.Fatalf("buffer holds %d readings, want %d", len(all), bufferCapacity)
	}
	if all[len(all)-1] != last {
		t.Fatalf("history should end with the most recent reading")
	}

	tail, err := s.History("AQG-UNIT-001", 5)
	if err != nil {
		t.Fatalf("History(5) returned error: %v", err)
	}
	if len(tail) != 5 || tail[4] != last {
		t.Fatalf("History(5) = %d readings ending %+v, want 5 ending with last", len(tail), tail[len(tail)-1])
	}
}

func TestStatusSnapshot(t *testing.T) {
	offline := healthyDevice()
	offline.ID = "AQG-UNIT-003"
	offline.Offline = true
	offline.NetworkType = "WiFi"

	s := NewSimulator([]DeviceConfig{healthyDevice(), offline}, rand.NewPCG(11, 11), WithClock(fixedClock(12)))

	st, err := s.Status("AQG-UNIT-001")
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if !st.IsOnline || st.IsLiveHardware {
		t.Errorf("healthy simulated device status wrong: %+v", st)
	}
	if st.RAMTotalGB != 16.0 {
		t.Errorf("RAMTotalGB = %v, want 16", st.RAMTotalGB)
	}
	if st.CPUUsagePercent < 0 || st.CPUUsagePercent > 100 {
		t.Errorf("CPU usage %v outside [0,100]", st.CPUUsagePercent)
	}
	if !st.SolarCharging {
		t.Errorf("expected solar charging at noon")
	}

	st3, err := s.Status("AQG-UNIT-003")
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if st3.IsOnline {
		t.Errorf("offline device reported online")
	}
}

func TestCalibrate(t *testing.T) {
	s := NewSimulator([]DeviceConfig{healthyDevice()}, rand.NewPCG(12, 12))

	res, err := s.Calibrate("AQG-UNIT-001")
	if err != nil {
		t.Fatalf("Calibrate returned error: %v", err)
	}
	if !res.Success || res.DeviceID != "AQG-UNIT-001" {
		t.Errorf("calibration result wrong: %+v", res)
	}
	if res.Message == "" {
		t.Errorf("calibration message empty")
	}
}

func TestHardwareNotConfigured(t *testing.T) {
	h := NewHardware(DefaultDevices())

	if !h.LiveHardware() {
		t.Errorf("hardware variant should report live hardware")
	}
	if h.Configured() {
		t.Errorf("hardware variant should report not configured")
	}
	if _, err := h.Reading("AQG-UNIT-001"); !errors.Is(err, ErrHardwareNotConfigured) {
		t.Errorf("Reading error = %v, want ErrHardwareNotConfigured", err)
	}
	if _, err := h.Status("AQG-UNIT-001"); !errors.Is(err, ErrHardwareNotConfigured) {
		t.Errorf("Status error = %v, want ErrHardwareNotConfigured", err)
	}
	if _, err := h.Calibrate("AQG-UNIT-001"); !errors.Is(err, ErrHardwareNotConfigured) {
		t.Errorf("Calibrate error = %v, want ErrHardwareNotConfigured", err)
	}
}
