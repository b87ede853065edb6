package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// SensorMode selects the sensor capability variant at startup.
type SensorMode string

const (
	SensorModeSimulated SensorMode = "simulated"
	SensorModeHardware  SensorMode = "hardware"
)

// Config holds runtime configuration for the monitor.
type Config struct {
	// Log level: debug, info, warn, error
	LogLevel string

	// Ops HTTP server (health, stats, prometheus metrics)
	OpsAddr string

	// Kafka brokers and event topics
	KafkaBrokers  []string
	ReadingsTopic string
	AlertsTopic   string
	// EventsEnabled disables the broker entirely when false (local dev)
	EventsEnabled bool

	// Sensor source selection
	SensorMode SensorMode

	// Device polling interval
	PollInterval time.Duration

	// TrainOnStart fits the ensemble from synthetic history at startup.
	// When false (or when training fails) predictions come from the
	// static fallback table.
	TrainOnStart bool

	// Seed for all simulation randomness. Zero means non-deterministic.
	Seed uint64

	// Historical dataset window used for training
	HistoryStart time.Time
	HistoryEnd   time.Time
}

// Default returns a sensible default config for local dev.
func Default() *Config {
	return &Config{
		LogLevel:      "info",
		OpsAddr:       ":8080",
		KafkaBrokers:  []string{"localhost:9092"},
		ReadingsTopic: "aquaguard.readings",
		AlertsTopic:   "aquaguard.alerts",
		EventsEnabled: false,
		SensorMode:    SensorModeSimulated,
		PollInterval:  30 * time.Second,
		TrainOnStart:  true,
		Seed:          0,
		HistoryStart:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		HistoryEnd:    time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	}
}

// FromEnv builds a config from environment variables, falling back to
// defaults for anything unset.
func FromEnv() *Config {
	cfg := Default()

	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.OpsAddr = getEnv("OPS_ADDR", cfg.OpsAddr)

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
		cfg.EventsEnabled = true
	}
	cfg.ReadingsTopic = getEnv("READINGS_TOPIC", cfg.ReadingsTopic)
	cfg.AlertsTopic = getEnv("ALERTS_TOPIC", cfg.AlertsTopic)

	if mode := os.Getenv("SENSOR_MODE"); mode != "" {
		cfg.SensorMode = SensorMode(strings.ToLower(mode))
	}

	if sec := getEnvInt("POLL_INTERVAL_SEC", 0); sec > 0 {
		cfg.PollInterval = time.Duration(sec) * time.Second
	}

	if v := os.Getenv("TRAIN_ON_START"); v != "" {
		cfg.TrainOnStart = v == "true" || v == "1"
	}

	if seed := getEnvInt("SIM_SEED", 0); seed > 0 {
		cfg.Seed = uint64(seed)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
