package observability

import (
	"fmt"
	"time"
)

// Metrics holds calculated metrics derived from the event log.
type Metrics struct {
	IncidentsCreated   int            `json:"incidents_created"`
	IncidentsByType    map[string]int `json:"incidents_by_type"`
	FieldsUpdated      int            `json:"fields_updated"`
	ActionsCompleted   int            `json:"actions_completed"`
	ActionsByCode      map[string]int `json:"actions_by_code"`
	IncidentsArchived  int            `json:"incidents_archived"`
	IncidentsRestored  int            `json:"incidents_restored"`
	RemindersScheduled int            `json:"reminders_scheduled"`
	RemindersDismissed int            `json:"reminders_dismissed"`
	RemindersSnoozed   int            `json:"reminders_snoozed"`
	WriteFailures      int            `json:"write_failures"`
	EventCount         int            `json:"event_count"`
	OldestEvent        *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent        *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a MetricsCalculator that reads from the
// given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them
// into metrics.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{
		IncidentsByType: make(map[string]int),
		ActionsByCode:   make(map[string]int),
	}

	m.EventCount = len(events)

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case "incident.created":
			m.IncidentsCreated++
			if incType, ok := event.Data["type"].(string); ok {
				m.IncidentsByType[incType]++
			}
		case "incident.field_updated":
			m.FieldsUpdated++
		case "incident.action_completed":
			m.ActionsCompleted++
			if code, ok := event.Data["action"].(string); ok {
				m.ActionsByCode[code]++
			}
		case "incident.archived":
			if count, ok := event.Data["count"].(float64); ok {
				m.IncidentsArchived += int(count)
			} else {
				m.IncidentsArchived++
			}
		case "incident.restored":
			m.IncidentsRestored++
		case "reminder.scheduled":
			m.RemindersScheduled++
		case "reminder.dismissed":
			m.RemindersDismissed++
		case "reminder.snoozed":
			m.RemindersSnoozed++
		case "storage.write_failed":
			m.WriteFailures++
		}
	}

	return m, nil
}
