// Package events publishes reading and alert events for external
// consumers. Publishing is fire-and-forget: failures are logged and
// counted but never retried and never surfaced into the prediction flow.
package events

import (
	"context"
	"time"

	"aquaguard/internal/alerting"
	"aquaguard/internal/models"
)

// Publisher is the notification/broadcast surface consumed by the core.
type Publisher interface {
	PublishReading(ctx context.Context, reading models.SensorReading) error
	PublishAlert(ctx context.Context, alert alerting.Alert) error
	Close() error
}

// ReadingEvent wraps a sensor reading with publish metadata.
type ReadingEvent struct {
	Reading     models.SensorReading `json:"reading"`
	PublishedAt time.Time            `json:"published_at"`
	Node        string               `json:"node"`
}

// AlertEvent wraps an emitted alert with publish metadata.
type AlertEvent struct {
	Alert       alerting.Alert `json:"alert"`
	PublishedAt time.Time      `json:"published_at"`
	Node        string         `json:"node"`
}

// NopPublisher discards all events; used when no broker is configured and
// in tests.
type NopPublisher struct{}

func (NopPublisher) PublishReading(context.Context, models.SensorReading) error { return nil }
func (NopPublisher) PublishAlert(context.Context, alerting.Alert) error         { return nil }
func (NopPublisher) Close() error                                               { return nil }
