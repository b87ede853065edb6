package events

import (
	"context"
	"errors"
	"testing"

	"aquaguard/internal/models"
)

func TestNewKafkaPublisherValidation(t *testing.T) {
	if _, err := NewKafkaPublisher(nil, "readings", "alerts"); err == nil {
		t.Errorf("expected error for empty broker list")
	}
	if _, err := NewKafkaPublisher([]string{"localhost:9092"}, "", "alerts"); err == nil {
		t.Errorf("expected error for empty readings topic")
	}
	if _, err := NewKafkaPublisher([]string{"localhost:9092"}, "readings", ""); err == nil {
		t.Errorf("expected error for empty alerts topic")
	}
}

func TestPublishAfterClose(t *testing.T) {
	p, err := NewKafkaPublisher([]string{"localhost:9092"}, "readings", "alerts")
	if err != nil {
		t.Fatalf("NewKafkaPublisher returned error: %v", err)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	// Idempotent.
	if err := p.Close(); err != nil {
		t.Fatalf("second Close returned error: %v", err)
	}

	err = p.PublishReading(context.Background(), models.SensorReading{VillageID: "MH_SHP"})
	if !errors.Is(err, ErrPublisherClosed) {
		t.Fatalf("publish after close error = %v, want ErrPublisherClosed", err)
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}

	if err := p.PublishReading(context.Background(), models.SensorReading{}); err != nil {
		t.Errorf("NopPublisher.PublishReading returned error: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("NopPublisher.Close returned error: %v", err)
	}
}
