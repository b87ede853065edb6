package alerting

import (
	"errors"
	"testing"

	"aquaguard/internal/models"
)

func createTestAlert(t *testing.T, s Sink, villageID string, level models.AlertLevel) Alert {
	t.Helper()
	alert, err := s.Create(CreateRequest{
		VillageID:        villageID,
		AlertLevel:       level,
		RiskScore:        74,
		PredictedDisease: models.DiseaseTyphoid,
		TriggerReason:    "test trigger",
		CasesAtRisk:      12,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	return alert
}

func TestMemorySinkCreateAndList(t *testing.T) {
	s := NewMemorySink()

	first := createTestAlert(t, s, "UP_BAH", models.AlertHigh)
	second := createTestAlert(t, s, "MH_SHA", models.AlertCritical)

	if first.ID == "" || second.ID == "" {
		t.Fatalf("alerts should get generated IDs")
	}
	if first.ID == second.ID {
		t.Fatalf("alert IDs should be unique")
	}

	active := s.ListActive()
	if len(active) != 2 {
		t.Fatalf("ListActive returned %d alerts, want 2", len(active))
	}
	if active[0].ID != second.ID {
		t.Errorf("ListActive should be newest first, got %s", active[0].VillageID)
	}
}

func TestMemorySinkAcknowledge(t *testing.T) {
	s := NewMemorySink()
	alert := createTestAlert(t, s, "UP_BAH", models.AlertHigh)

	acked, err := s.Acknowledge(alert.ID, "dispatched field team", "team of 4 en route", "dr.sharma")
	if err != nil {
		t.Fatalf("Acknowledge returned error: %v", err)
	}
	if !acked.Acknowledged || acked.AcknowledgedBy != "dr.sharma" || acked.ActionTaken != "dispatched field team" {
		t.Errorf("acknowledge did not record response: %+v", acked)
	}
	if acked.Resolved {
		t.Errorf("acknowledged alert should remain unresolved")
	}

	if _, err := s.Acknowledge("nope", "", "", ""); !errors.Is(err, ErrUnknownAlert) {
		t.Errorf("Acknowledge(nope) error = %v, want ErrUnknownAlert", err)
	}
}

func TestMemorySinkResolve(t *testing.T) {
	s := NewMemorySink()
	alert := createTestAlert(t, s, "UP_BAH", models.AlertHigh)
	keep := createTestAlert(t, s, "MH_SHA", models.AlertCritical)

	resolved, err := s.Resolve(alert.ID)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !resolved.Resolved || resolved.ResolvedAt.IsZero() {
		t.Errorf("resolve did not close the alert: %+v", resolved)
	}

	active := s.ListActive()
	if len(active) != 1 || active[0].ID != keep.ID {
		t.Fatalf("ListActive after resolve = %d alerts, want only %s", len(active), keep.ID)
	}

	// Resolved alerts stay visible in history.
	history := s.ListHistory(7)
	if len(history) != 2 {
		t.Fatalf("ListHistory returned %d alerts, want 2", len(history))
	}

	if _, err := s.Resolve("nope"); !errors.Is(err, ErrUnknownAlert) {
		t.Errorf("Resolve(nope) error = %v, want ErrUnknownAlert", err)
	}
}
