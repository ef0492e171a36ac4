package observability

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"pgregory.net/rapid"
)

// TestProperty_MetricsCountEveryEvent verifies that for any mix of domain
// events, the per-category counters sum consistently with the event count.
func TestProperty_MetricsCountEveryEvent(t *testing.T) {
	eventTypes := []string{
		"incident.created",
		"incident.field_updated",
		"incident.action_completed",
		"incident.restored",
		"reminder.scheduled",
		"reminder.dismissed",
		"reminder.snoozed",
		"storage.write_failed",
	}
	incidentTypes := []string{"GSR", "CSR", "ASR", "RiskManagement", "PRL", "Other"}

	rapid.Check(t, func(rt *rapid.T) {
		log, err := NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))
		if err != nil {
			rt.Fatalf("NewJSONLEventLog failed: %v", err)
		}
		defer log.Close()

		base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
		numEvents := rapid.IntRange(1, 30).Draw(rt, "numEvents")
		counts := make(map[string]int)

		for i := 0; i < numEvents; i++ {
			eventType := rapid.SampledFrom(eventTypes).Draw(rt, fmt.Sprintf("eventType_%d", i))
			data := map[string]any{}
			if eventType == "incident.created" {
				data["type"] = rapid.SampledFrom(incidentTypes).Draw(rt, fmt.Sprintf("incType_%d", i))
			}
			event := Event{
				Time:  base.Add(time.Duration(i) * time.Minute),
				Level: "INFO",
				Type:  eventType,
				Data:  data,
			}
			if err := log.Write(event); err != nil {
				rt.Fatalf("Write failed: %v", err)
			}
			counts[eventType]++
		}

		m, err := NewMetricsCalculator(log).Calculate(base.Add(-time.Hour))
		if err != nil {
			rt.Fatalf("Calculate failed: %v", err)
		}

		if m.EventCount != numEvents {
			rt.Fatalf("EventCount = %d, want %d", m.EventCount, numEvents)
		}
		if m.IncidentsCreated != counts["incident.created"] {
			rt.Fatalf("IncidentsCreated = %d, want %d", m.IncidentsCreated, counts["incident.created"])
		}
		if m.FieldsUpdated != counts["incident.field_updated"] {
			rt.Fatalf("FieldsUpdated = %d, want %d", m.FieldsUpdated, counts["incident.field_updated"])
		}
		if m.ActionsCompleted != counts["incident.action_completed"] {
			rt.Fatalf("ActionsCompleted = %d, want %d", m.ActionsCompleted, counts["incident.action_completed"])
		}
		if m.RemindersScheduled != counts["reminder.scheduled"] {
			rt.Fatalf("RemindersScheduled = %d, want %d", m.RemindersScheduled, counts["reminder.scheduled"])
		}
		if m.WriteFailures != counts["storage.write_failed"] {
			rt.Fatalf("WriteFailures = %d, want %d", m.WriteFailures, counts["storage.write_failed"])
		}

		byType := 0
		for _, n := range m.IncidentsByType {
			byType += n
		}
		if byType != m.IncidentsCreated {
			rt.Fatalf("IncidentsByType sums to %d, want %d", byType, m.IncidentsCreated)
		}
	})
}
