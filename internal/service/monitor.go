// Package service wires the risk inference pipeline together: sensor fleet
// polling, feature building, ensemble prediction, alert decisions, and
// best-effort event publishing.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"aquaguard/internal/alerting"
	"aquaguard/internal/catalog"
	"aquaguard/internal/config"
	"aquaguard/internal/dataset"
	"aquaguard/internal/ensemble"
	"aquaguard/internal/events"
	"aquaguard/internal/features"
	"aquaguard/internal/logger"
	"aquaguard/internal/metrics"
	"aquaguard/internal/middleware"
	"aquaguard/internal/models"
	"aquaguard/internal/sensor"
)

// Monitor is the high-level coordinator for sensing, predicting, and
// alerting.
type Monitor struct {
	cfg       *config.Config
	catalog   *catalog.Catalog
	sensors   sensor.Interface
	builder   *features.Builder
	predictor *ensemble.Predictor
	policy    *alerting.Policy
	sink      alerting.Sink
	publisher events.Publisher

	httpServer *http.Server
	wg         sync.WaitGroup

	cycles        atomic.Uint64
	alertsEmitted atomic.Uint64
	alertsSkipped atomic.Uint64
}

// Option customizes a Monitor, mainly for tests.
type Option func(*Monitor)

// WithSink overrides the alert sink.
func WithSink(sink alerting.Sink) Option {
	return func(m *Monitor) { m.sink = sink }
}

// WithPublisher overrides the event publisher.
func WithPublisher(pub events.Publisher) Option {
	return func(m *Monitor) { m.publisher = pub }
}

// WithSensors overrides the sensor fleet.
func WithSensors(s sensor.Interface) Option {
	return func(m *Monitor) { m.sensors = s }
}

// New constructs a Monitor with given config. All randomness derives from
// cfg.Seed when set, so a full run is reproducible.
func New(cfg *config.Config, opts ...Option) (*Monitor, error) {
	log := logger.WithComponent("monitor")

	var base rand.Source
	if cfg.Seed != 0 {
		base = rand.NewPCG(cfg.Seed, cfg.Seed)
	} else {
		base = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	seeder := rand.New(base)
	next := func() rand.Source {
		return rand.NewPCG(seeder.Uint64(), seeder.Uint64())
	}

	cat := catalog.Default()
	builder := features.NewBuilder(cat, next())

	m := &Monitor{
		cfg:       cfg,
		catalog:   cat,
		builder:   builder,
		predictor: ensemble.New(cat, builder, next()),
		policy:    alerting.NewPolicy(),
		sink:      alerting.NewMemorySink(),
		sensors:   sensor.Select(cfg.SensorMode, sensor.DefaultDevices(), next()),
	}

	if cfg.EventsEnabled {
		pub, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.ReadingsTopic, cfg.AlertsTopic)
		if err != nil {
			return nil, fmt.Errorf("init publisher: %w", err)
		}
		m.publisher = pub
	} else {
		m.publisher = events.NopPublisher{}
	}

	for _, opt := range opts {
		opt(m)
	}

	log.Info().
		Int("villages", cat.Len()).
		Int("devices", len(m.sensors.Devices())).
		Bool("events_enabled", cfg.EventsEnabled).
		Msg("monitor initialized")
	return m, nil
}

// Predictor exposes the ensemble for external query layers.
func (m *Monitor) Predictor() *ensemble.Predictor { return m.predictor }

// Sink exposes the alert sink for external query layers.
func (m *Monitor) Sink() alerting.Sink { return m.sink }

// Sensors exposes the active sensor fleet.
func (m *Monitor) Sensors() sensor.Interface { return m.sensors }

// Run starts background goroutines and blocks until context cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	log := logger.WithComponent("monitor")
	log.Info().Msg("monitor starting")

	if m.cfg.TrainOnStart {
		m.train()
	}

	m.initHTTPServer()
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		log.Info().Str("addr", m.cfg.OpsAddr).Msg("starting ops HTTP server")
		if err := m.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("ops HTTP server error")
		}
	}()

	// One ordered polling loop per device. Devices poll independently;
	// a device's own stream stays strictly sequential.
	for _, dev := range m.sensors.Devices() {
		m.wg.Add(1)
		go func(deviceID string) {
			defer m.wg.Done()
			m.pollLoop(ctx, deviceID)
		}(dev.ID)
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.reportStats(ctx)
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")
	return m.shutdown()
}

// train generates the synthetic history and fits the ensemble. Failure is
// reported but not fatal; the predictor keeps serving the fallback table.
func (m *Monitor) train() {
	log := logger.WithComponent("monitor")

	var src rand.Source
	if m.cfg.Seed != 0 {
		src = rand.NewPCG(m.cfg.Seed, m.cfg.Seed+1)
	}
	gen := dataset.New(src)

	records := gen.Generate(m.catalog.All(), m.cfg.HistoryStart, m.cfg.HistoryEnd)
	if err := m.predictor.Train(records); err != nil {
		log.Error().Err(err).Msg("ensemble training failed, serving fallback predictions")
		return
	}

	stats := m.predictor.Stats()
	log.Info().
		Int("records", stats.Records).
		Float64("meta_accuracy", stats.MetaAccuracy).
		Msg("ensemble ready")
}

// pollLoop runs one device's read-predict-alert cycle on a fixed interval.
// Cancellation is only observed between cycles, so a device's drift and
// buffer state is never left mid-update.
func (m *Monitor) pollLoop(ctx context.Context, deviceID string) {
	log := logger.WithComponent("poller").With().Str("device_id", deviceID).Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).
				Msg("poller panic recovered")
			metrics.PanicsRecovered.WithLabelValues("poller").Inc()
		}
	}()

	log.Info().Dur("interval", m.cfg.PollInterval).Msg("poller started")
	defer log.Info().Msg("poller stopped")

	// First cycle immediately, then on the ticker.
	m.pollDevice(ctx, deviceID)

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.pollDevice(ctx, deviceID)
		}
	}
}

// pollDevice runs one full cycle for one device: take a reading, publish
// it, predict, decide, and emit an alert when warranted.
func (m *Monitor) pollDevice(ctx context.Context, deviceID string) {
	log := logger.WithComponent("poller").With().Str("device_id", deviceID).Logger()
	start := time.Now()
	defer func() {
		metrics.PollCycleDuration.WithLabelValues(deviceID).Observe(time.Since(start).Seconds())
	}()
	m.cycles.Add(1)

	reading, err := m.sensors.Reading(deviceID)
	if err != nil {
		log.Error().Err(err).Msg("reading failed")
		return
	}

	// Best-effort broadcast; a failed publish never blocks prediction.
	if err := m.publisher.PublishReading(ctx, reading); err != nil {
		log.Debug().Err(err).Msg("reading publish failed")
	}

	pred, err := m.predictor.Predict(reading.VillageID, &reading)
	if err != nil {
		log.Error().Err(err).Str("village_id", reading.VillageID).Msg("prediction failed")
		return
	}

	village, err := m.catalog.Get(reading.VillageID)
	if err != nil {
		log.Error().Err(err).Msg("village lookup failed")
		return
	}

	decision := m.policy.Decide(pred, village.Population)
	if !decision.ShouldEmit {
		m.alertsSkipped.Add(1)
		metrics.AlertsSkipped.Inc()
		log.Debug().Float64("risk_score", pred.RiskScore).Msg("below alert threshold")
		return
	}

	alert, err := m.sink.Create(alerting.CreateRequest{
		VillageID:          pred.VillageID,
		AlertLevel:         decision.AlertLevel,
		RiskScore:          decision.RiskScore,
		PredictedDisease:   pred.PredictedDisease,
		TriggerReason:      triggerReason(pred, reading),
		CasesAtRisk:        decision.CasesAtRisk,
		Resources:          decision.Resources,
		RecommendedActions: pred.RecommendedActions,
		TriggeredBySensor:  true,
		SensorDeviceID:     reading.DeviceID,
		SensorReadingSummary: fmt.Sprintf("pH: %.1f, Turbidity: %.1f NTU, TDS: %.0f ppm",
			reading.PHLevel, reading.TurbidityNTU, reading.TDSPPM),
	})
	if err != nil {
		log.Error().Err(err).Msg("alert create failed")
		return
	}

	m.alertsEmitted.Add(1)
	metrics.AlertsEmitted.WithLabelValues(string(decision.AlertLevel)).Inc()

	if err := m.publisher.PublishAlert(ctx, alert); err != nil {
		log.Debug().Err(err).Msg("alert publish failed")
	}
}

// triggerReason summarizes why an alert fired, for operators.
func triggerReason(pred models.Prediction, reading models.SensorReading) string {
	reason := fmt.Sprintf("Risk score %.1f for %s (predicted %s, %s trend)",
		pred.RiskScore, pred.VillageName, pred.PredictedDisease, pred.Trend)
	if reading.AnomalyDetected {
		reason += fmt.Sprintf("; sensor anomaly: %s", reading.AnomalyType)
	}
	return reason
}

func (m *Monitor) initHTTPServer() {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", m.healthHandler)
	mux.HandleFunc("/stats", m.statsHandler)
	mux.Handle("/metrics", promhttp.Handler())

	m.httpServer = &http.Server{
		Addr:         m.cfg.OpsAddr,
		Handler:      middleware.Chain(mux, middleware.Recovery, middleware.Logging),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func (m *Monitor) shutdown() error {
	log := logger.WithComponent("monitor")
	log.Info().Msg("initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := m.httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("ops HTTP server shutdown error")
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("pollers stopped gracefully")
	case <-time.After(15 * time.Second):
		log.Warn().Msg("poller shutdown timeout - forcing exit")
	}

	if err := m.publisher.Close(); err != nil {
		log.Error().Err(err).Msg("publisher close error")
	}

	log.Info().Msg("monitor stopped gracefully")
	return nil
}

// reportStats periodically logs pipeline statistics.
func (m *Monitor) reportStats(ctx context.Context) {
	log := logger.WithComponent("monitor")
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := m.predictor.Stats()
			log.Info().
				Uint64("poll_cycles", m.cycles.Load()).
				Uint64("alerts_emitted", m.alertsEmitted.Load()).
				Uint64("alerts_skipped", m.alertsSkipped.Load()).
				Int("active_alerts", len(m.sink.ListActive())).
				Bool("trained", stats.Trained).
				Msg("stats")
		}
	}
}

func (m *Monitor) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","trained":%t,"timestamp":"%s"}`,
		m.predictor.Trained(), time.Now().Format(time.RFC3339))
}

func (m *Monitor) statsHandler(w http.ResponseWriter, r *http.Request) {
	out := struct {
		Model         ensemble.Stats `json:"model"`
		PollCycles    uint64         `json:"poll_cycles"`
		AlertsEmitted uint64         `json:"alerts_emitted"`
		AlertsSkipped uint64         `json:"alerts_skipped"`
		ActiveAlerts  int            `json:"active_alerts"`
	}{
		Model:         m.predictor.Stats(),
		PollCycles:    m.cycles.Load(),
		AlertsEmitted: m.alertsEmitted.Load(),
		AlertsSkipped: m.alertsSkipped.Load(),
		ActiveAlerts:  len(m.sink.ListActive()),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(out); err != nil {
		log := logger.WithComponent("monitor")
		log.Error().Err(err).Msg("stats encode failed")
	}
}
