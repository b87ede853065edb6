package alerting

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"aquaguard/internal/logger"
	"aquaguard/internal/models"
)

// ErrUnknownAlert is returned when acknowledging or resolving an alert ID
// the sink has never seen.
var ErrUnknownAlert = errors.New("unknown alert")

// Alert is one emitted outbreak alert as held by a sink.
type Alert struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	VillageID        string             `json:"village_id"`
	AlertLevel       models.AlertLevel  `json:"alert_level"`
	RiskScore        float64            `json:"risk_score"`
	PredictedDisease models.DiseaseType `json:"predicted_disease"`
	TriggerReason    string             `json:"trigger_reason"`
	CasesAtRisk      int                `json:"cases_at_risk"`

	Resources          models.ResourceEstimate `json:"resources"`
	RecommendedActions []string                `json:"recommended_actions"`

	// Sensor provenance, set when a live reading triggered the alert.
	TriggeredBySensor    bool   `json:"triggered_by_sensor"`
	SensorDeviceID       string `json:"sensor_device_id,omitempty"`
	SensorReadingSummary string `json:"sensor_reading_summary,omitempty"`

	Acknowledged   bool      `json:"acknowledged"`
	AcknowledgedAt time.Time `json:"acknowledged_at,omitempty"`
	AcknowledgedBy string    `json:"acknowledged_by,omitempty"`
	ActionTaken    string    `json:"action_taken,omitempty"`
	Notes          string    `json:"notes,omitempty"`

	Resolved   bool      `json:"resolved"`
	ResolvedAt time.Time `json:"resolved_at,omitempty"`
}

// CreateRequest carries everything needed to open an alert.
type CreateRequest struct {
	VillageID        string
	AlertLevel       models.AlertLevel
	RiskScore        float64
	PredictedDisease models.DiseaseType
	TriggerReason    string
	CasesAtRisk      int

	Resources          models.ResourceEstimate
	RecommendedActions []string

	TriggeredBySensor    bool
	SensorDeviceID       string
	SensorReadingSummary string
}

// Sink is the abstract alert store consumed by external layers. The core
// only calls Create; acknowledge/resolve/list serve the surfaces outside
// this module.
type Sink interface {
	Create(req CreateRequest) (Alert, error)
	ListActive() []Alert
	ListHistory(days int) []Alert
	Acknowledge(id, action, notes, by string) (Alert, error)
	Resolve(id string) (Alert, error)
}

// MemorySink is an in-process Sink, newest alerts first.
type MemorySink struct {
	mu     sync.RWMutex
	alerts []*Alert
	byID   map[string]*Alert
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{byID: make(map[string]*Alert)}
}

// Create opens a new alert.
func (s *MemorySink) Create(req CreateRequest) (Alert, error) {
	alert := &Alert{
		ID:                   uuid.New().String(),
		CreatedAt:            time.Now(),
		VillageID:            req.VillageID,
		AlertLevel:           req.AlertLevel,
		RiskScore:            req.RiskScore,
		PredictedDisease:     req.PredictedDisease,
		TriggerReason:        req.TriggerReason,
		CasesAtRisk:          req.CasesAtRisk,
		Resources:            req.Resources,
		RecommendedActions:   req.RecommendedActions,
		TriggeredBySensor:    req.TriggeredBySensor,
		SensorDeviceID:       req.SensorDeviceID,
		SensorReadingSummary: req.SensorReadingSummary,
	}

	s.mu.Lock()
	s.alerts = append([]*Alert{alert}, s.alerts...)
	s.byID[alert.ID] = alert
	s.mu.Unlock()

	log := logger.WithComponent("alert_sink")
	log.Info().
		Str("alert_id", alert.ID).
		Str("village_id", alert.VillageID).
		Str("alert_level", string(alert.AlertLevel)).
		Float64("risk_score", alert.RiskScore).
		Msg("alert created")
	return *alert, nil
}

// ListActive returns all unresolved alerts, newest first.
func (s *MemorySink) ListActive() []Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		if !a.Resolved {
			out = append(out, *a)
		}
	}
	return out
}

// ListHistory returns alerts created in the last days, newest first.
func (s *MemorySink) ListHistory(days int) []Alert {
	cutoff := time.Now().AddDate(0, 0, -days)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		if a.CreatedAt.After(cutoff) {
			out = append(out, *a)
		}
	}
	return out
}

// Acknowledge records an operator response against an alert.
func (s *MemorySink) Acknowledge(id, action, notes, by string) (Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[id]
	if !ok {
		return Alert{}, fmt.Errorf("%w: %s", ErrUnknownAlert, id)
	}
	a.Acknowledged = true
	a.AcknowledgedAt = time.Now()
	a.AcknowledgedBy = by
	a.ActionTaken = action
	a.Notes = notes
	return *a, nil
}

// Resolve closes an alert.
func (s *MemorySink) Resolve(id string) (Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[id]
	if !ok {
		return Alert{}, fmt.Errorf("%w: %s", ErrUnknownAlert, id)
	}
	a.Resolved = true
	a.ResolvedAt = time.Now()
	return *a, nil
}
