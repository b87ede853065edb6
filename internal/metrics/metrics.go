package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics (ops server)
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aquaguard_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aquaguard_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)

	// Sensor metrics
	SensorReadingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aquaguard_sensor_readings_total",
			Help: "Total number of sensor readings taken",
		},
		[]string{"device_id", "quality_status"},
	)

	SensorAnomaliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aquaguard_sensor_anomalies_total",
			Help: "Total number of anomalous readings",
		},
		[]string{"device_id", "anomaly_type"},
	)

	SensorStaleReadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aquaguard_sensor_stale_reads_total",
			Help: "Total number of stale reads served for offline devices",
		},
		[]string{"device_id"},
	)

	// Prediction metrics
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aquaguard_predictions_total",
			Help: "Total number of predictions generated",
		},
		[]string{"path"}, // path: trained, fallback
	)

	PredictionsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aquaguard_predictions_failed_total",
			Help: "Total number of failed prediction calls",
		},
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aquaguard_training_duration_seconds",
			Help:    "Duration of ensemble training runs",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	TrainingRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aquaguard_training_records",
			Help: "Number of historical records used in the last training run",
		},
	)

	ModelAccuracy = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "aquaguard_model_accuracy",
			Help: "Held-out accuracy of each ensemble model after training",
		},
		[]string{"model"}, // disease, alert, meta, risk_r2
	)

	// Alerting metrics
	AlertsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aquaguard_alerts_emitted_total",
			Help: "Total number of alerts emitted",
		},
		[]string{"alert_level"},
	)

	AlertsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aquaguard_alerts_skipped_total",
			Help: "Total number of predictions below the alert threshold",
		},
	)

	// Event publishing metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aquaguard_events_published_total",
			Help: "Total number of events published to the broker",
		},
		[]string{"topic", "status"}, // status: success, failed
	)

	PublishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aquaguard_publish_duration_seconds",
			Help:    "Time taken to publish an event",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	// Polling metrics
	PollCycleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aquaguard_poll_cycle_duration_seconds",
			Help:    "Duration of one device polling cycle",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 2.5},
		},
		[]string{"device_id"},
	)

	// Panic recovery
	PanicsRecovered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aquaguard_panics_recovered_total",
			Help: "Total number of panics recovered",
		},
		[]string{"component"},
	)
)
