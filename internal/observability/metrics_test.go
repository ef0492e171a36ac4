package observability

import (
	"path/filepath"
	"testing"
	"time"
)

func TestMetricsCalculator_Aggregates(t *testing.T) {
	log, err := NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))
	if err != nil {
		t.Fatalf("NewJSONLEventLog failed: %v", err)
	}
	defer log.Close()

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	fixture := []Event{
		{Time: base, Level: "INFO", Type: "incident.created", Data: map[string]any{"type": "GSR"}},
		{Time: base.Add(time.Minute), Level: "INFO", Type: "incident.created", Data: map[string]any{"type": "PRL"}},
		{Time: base.Add(2 * time.Minute), Level: "INFO", Type: "incident.action_completed", Data: map[string]any{"action": "5.3"}},
		{Time: base.Add(3 * time.Minute), Level: "INFO", Type: "incident.action_completed", Data: map[string]any{"action": "5.3"}},
		{Time: base.Add(4 * time.Minute), Level: "INFO", Type: "incident.field_updated"},
		{Time: base.Add(5 * time.Minute), Level: "INFO", Type: "incident.archived", Data: map[string]any{"count": 2}},
		{Time: base.Add(6 * time.Minute), Level: "INFO", Type: "incident.restored"},
		{Time: base.Add(7 * time.Minute), Level: "INFO", Type: "reminder.scheduled"},
		{Time: base.Add(8 * time.Minute), Level: "INFO", Type: "reminder.snoozed"},
		{Time: base.Add(9 * time.Minute), Level: "WARN", Type: "storage.write_failed"},
	}
	for _, e := range fixture {
		if err := log.Write(e); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	m, err := NewMetricsCalculator(log).Calculate(base.Add(-time.Hour))
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	if m.IncidentsCreated != 2 {
		t.Fatalf("IncidentsCreated = %d, want 2", m.IncidentsCreated)
	}
	if m.IncidentsByType["GSR"] != 1 || m.IncidentsByType["PRL"] != 1 {
		t.Fatalf("unexpected IncidentsByType %v", m.IncidentsByType)
	}
	if m.ActionsCompleted != 2 || m.ActionsByCode["5.3"] != 2 {
		t.Fatalf("unexpected action metrics %d %v", m.ActionsCompleted, m.ActionsByCode)
	}
	if m.IncidentsArchived != 2 {
		t.Fatalf("IncidentsArchived = %d, want 2", m.IncidentsArchived)
	}
	if m.IncidentsRestored != 1 || m.RemindersScheduled != 1 || m.RemindersSnoozed != 1 {
		t.Fatal("unexpected restore/reminder counts")
	}
	if m.WriteFailures != 1 {
		t.Fatalf("WriteFailures = %d, want 1", m.WriteFailures)
	}
	if m.EventCount != len(fixture) {
		t.Fatalf("EventCount = %d, want %d", m.EventCount, len(fixture))
	}
	if m.OldestEvent == nil || !m.OldestEvent.Equal(base) {
		t.Fatalf("OldestEvent = %v, want %v", m.OldestEvent, base)
	}
	if m.NewestEvent == nil || !m.NewestEvent.Equal(base.Add(9*time.Minute)) {
		t.Fatalf("NewestEvent = %v", m.NewestEvent)
	}
}

func TestMetricsCalculator_SinceWindow(t *testing.T) {
	log, err := NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))
	if err != nil {
		t.Fatalf("NewJSONLEventLog failed: %v", err)
	}
	defer log.Close()

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	_ = log.Write(Event{Time: base, Level: "INFO", Type: "incident.created"})
	_ = log.Write(Event{Time: base.Add(48 * time.Hour), Level: "INFO", Type: "incident.created"})

	m, err := NewMetricsCalculator(log).Calculate(base.Add(24 * time.Hour))
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if m.IncidentsCreated != 1 {
		t.Fatalf("expected only events inside the window, got %d", m.IncidentsCreated)
	}
}

func TestMetricsCalculator_EmptyLog(t *testing.T) {
	log, err := NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))
	if err != nil {
		t.Fatalf("NewJSONLEventLog failed: %v", err)
	}
	defer log.Close()

	m, err := NewMetricsCalculator(log).Calculate(time.Time{})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if m.EventCount != 0 || m.OldestEvent != nil || m.NewestEvent != nil {
		t.Fatalf("expected zero-valued metrics, got %+v", m)
	}
}
