package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"aquaguard/internal/alerting"
	"aquaguard/internal/logger"
	"aquaguard/internal/metrics"
	"aquaguard/internal/models"
)

// Publisher errors
var (
	ErrPublisherClosed = errors.New("publisher is closed")
)

// KafkaPublisher writes reading and alert events to two topics. Messages
// are keyed by village so one village's events stay ordered per partition.
// Publishing makes a single attempt; callers treat failures as best-effort.
type KafkaPublisher struct {
	readings *kafka.Writer
	alerts   *kafka.Writer
	node     string
	closed   atomic.Bool

	published atomic.Uint64
	failed    atomic.Uint64
}

// NewKafkaPublisher creates a publisher for the given brokers and topics.
func NewKafkaPublisher(brokers []string, readingsTopic, alertsTopic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("at least one broker is required")
	}
	if readingsTopic == "" || alertsTopic == "" {
		return nil, errors.New("both topics are required")
	}

	node, _ := os.Hostname()
	if node == "" {
		node = "unknown"
	}

	newWriter := func(topic string) *kafka.Writer {
		return &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 50 * time.Millisecond,
			WriteTimeout: 5 * time.Second,
			RequiredAcks: kafka.RequireOne,
			MaxAttempts:  1, // fire-and-forget, never retried
			Async:        false,
		}
	}

	return &KafkaPublisher{
		readings: newWriter(readingsTopic),
		alerts:   newWriter(alertsTopic),
		node:     node,
	}, nil
}

// PublishReading sends a reading event.
func (p *KafkaPublisher) PublishReading(ctx context.Context, reading models.SensorReading) error {
	event := ReadingEvent{Reading: reading, PublishedAt: time.Now().UTC(), Node: p.node}
	return p.publish(ctx, p.readings, reading.VillageID, reading.DeviceID, event)
}

// PublishAlert sends an alert event.
func (p *KafkaPublisher) PublishAlert(ctx context.Context, alert alerting.Alert) error {
	event := AlertEvent{Alert: alert, PublishedAt: time.Now().UTC(), Node: p.node}
	return p.publish(ctx, p.alerts, alert.VillageID, alert.ID, event)
}

func (p *KafkaPublisher) publish(ctx context.Context, writer *kafka.Writer, key, eventID string, event any) error {
	if p.closed.Load() {
		return ErrPublisherClosed
	}

	log := logger.WithComponent("event_publisher")
	start := time.Now()

	data, err := json.Marshal(event)
	if err != nil {
		p.failed.Add(1)
		metrics.EventsPublished.WithLabelValues(writer.Topic, "failed").Inc()
		return fmt.Errorf("serialize event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafka.Header{
			{Key: "village_id", Value: []byte(key)},
			{Key: "event_id", Value: []byte(eventID)},
			{Key: "node", Value: []byte(p.node)},
		},
		Time: start,
	}

	err = writer.WriteMessages(ctx, msg)
	metrics.PublishDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		p.failed.Add(1)
		metrics.EventsPublished.WithLabelValues(writer.Topic, "failed").Inc()
		log.Warn().Err(err).Str("topic", writer.Topic).Str("key", key).
			Msg("event publish failed")
		return err
	}

	p.published.Add(1)
	metrics.EventsPublished.WithLabelValues(writer.Topic, "success").Inc()
	return nil
}

// Stats holds publisher counters.
type Stats struct {
	Published uint64
	Failed    uint64
}

// Stats returns publish counters.
func (p *KafkaPublisher) Stats() Stats {
	return Stats{Published: p.published.Load(), Failed: p.failed.Load()}
}

// Close closes both writers.
func (p *KafkaPublisher) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	rErr := p.readings.Close()
	aErr := p.alerts.Close()
	if rErr != nil {
		return rErr
	}
	return aErr
}
