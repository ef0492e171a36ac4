package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/opsdesk/opsdesk/pkg/models"
)

// ReminderStore is the subset of storage.SnapshotStore the scheduler needs.
type ReminderStore interface {
	LoadReminders() ([]models.Reminder, error)
	SaveReminders([]models.Reminder) error
}

// DefaultSnooze is how far into the future a snoozed reminder is pushed.
const DefaultSnooze = 30 * time.Minute

// ReminderScheduler owns the reminder collection. Tick is the pure trigger
// predicate: it answers "which reminders are due right now" without
// mutating anything, so the timer plumbing stays separately testable.
type ReminderScheduler interface {
	Load() error
	Schedule(message, date, startTime, endTime string) (*models.Reminder, error)
	Reminders() []models.Reminder
	Get(id string) (*models.Reminder, bool)
	Dismiss(id string) error
	Snooze(id string) error
	Tick(now time.Time) []models.Reminder
}

type reminderScheduler struct {
	store  ReminderStore
	events EventLogger
	now    func() time.Time
	snooze time.Duration

	reminders []models.Reminder
}

// NewReminderScheduler creates a scheduler over the given store. now may
// be nil for wall-clock time, events may be nil, and snooze <= 0 selects
// DefaultSnooze. Call Load before use.
func NewReminderScheduler(store ReminderStore, events EventLogger, now func() time.Time, snooze time.Duration) ReminderScheduler {
	if now == nil {
		now = time.Now
	}
	if snooze <= 0 {
		snooze = DefaultSnooze
	}
	return &reminderScheduler{store: store, events: events, now: now, snooze: snooze}
}

// Load populates the collection from the store; absent or corrupt
// snapshots fall back to empty, with the error kept diagnostic only.
func (s *reminderScheduler) Load() error {
	reminders, err := s.store.LoadReminders()
	s.reminders = reminders
	if err != nil {
		return fmt.Errorf("loading reminders: %w", err)
	}
	return nil
}

// Schedule validates the inputs, combines date and start time into the
// trigger instant, and appends the new reminder. endTime may be empty; it
// is informational and never checked against the start, even when it
// precedes it.
func (s *reminderScheduler) Schedule(message, date, startTime, endTime string) (*models.Reminder, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("message must not be empty")
	}
	if strings.TrimSpace(date) == "" {
		return nil, fmt.Errorf("date must not be empty")
	}
	if strings.TrimSpace(startTime) == "" {
		return nil, fmt.Errorf("start time must not be empty")
	}

	start, err := CombineDateTime(date, startTime)
	if err != nil {
		return nil, fmt.Errorf("parsing trigger time: %w", err)
	}

	rem := models.Reminder{
		ID:       NewID(),
		Message:  message,
		Datetime: start,
	}
	if strings.TrimSpace(endTime) != "" {
		end, err := CombineDateTime(date, endTime)
		if err != nil {
			return nil, fmt.Errorf("parsing end time: %w", err)
		}
		rem.EndDatetime = &end
	}

	s.reminders = append(s.reminders, rem)
	s.persist()
	s.logEvent("reminder.scheduled", map[string]any{"reminder_id": rem.ID})
	return &rem, nil
}

// Reminders returns the collection sorted by ascending start time, the
// display order.
func (s *reminderScheduler) Reminders() []models.Reminder {
	out := append([]models.Reminder(nil), s.reminders...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Datetime.Before(out[j].Datetime)
	})
	return out
}

// Get looks a reminder up by ID.
func (s *reminderScheduler) Get(id string) (*models.Reminder, bool) {
	for _, r := range s.reminders {
		if r.ID == id {
			rem := r
			return &rem, true
		}
	}
	return nil, false
}

// Dismiss deletes a reminder unconditionally. Dismissal is permanent;
// there is no reminder archive.
func (s *reminderScheduler) Dismiss(id string) error {
	for i, r := range s.reminders {
		if r.ID == id {
			s.reminders = append(s.reminders[:i:i], s.reminders[i+1:]...)
			s.persist()
			s.logEvent("reminder.dismissed", map[string]any{"reminder_id": id})
			return nil
		}
	}
	return nil
}

// Snooze pushes a reminder's trigger time to now plus the snooze window,
// leaving message, end time, and identifier untouched. The end time may
// now precede the new start; that is accepted.
func (s *reminderScheduler) Snooze(id string) error {
	for i := range s.reminders {
		if s.reminders[i].ID == id {
			s.reminders[i].Datetime = s.now().Add(s.snooze)
			s.persist()
			s.logEvent("reminder.snoozed", map[string]any{"reminder_id": id})
			return nil
		}
	}
	return nil
}

// Tick returns the reminders whose start time has passed as of now. The
// predicate is level-sensitive: a due reminder stays in the result of
// every tick until it is dismissed or snoozed. Tick never mutates state.
func (s *reminderScheduler) Tick(now time.Time) []models.Reminder {
	var triggered []models.Reminder
	for _, r := range s.reminders {
		if !r.Datetime.After(now) {
			triggered = append(triggered, r)
		}
	}
	sort.SliceStable(triggered, func(i, j int) bool {
		return triggered[i].Datetime.Before(triggered[j].Datetime)
	})
	return triggered
}

func (s *reminderScheduler) persist() {
	if err := s.store.SaveReminders(s.reminders); err != nil {
		s.logEvent("storage.write_failed", map[string]any{
			"key":   "reminders",
			"error": err.Error(),
		})
	}
}

func (s *reminderScheduler) logEvent(eventType string, data map[string]any) {
	if s.events != nil {
		_ = s.events.LogEvent(eventType, data)
	}
}

// DefaultPollInterval is how often the trigger monitor re-evaluates the
// reminder collection.
const DefaultPollInterval = 10 * time.Second

// TriggerMonitor drives the polling contract: one tick immediately on
// start, then one per interval, each passing the full triggered set to the
// callback. The callback's view is replaced wholesale every tick; it is
// not an accumulating log.
type TriggerMonitor struct {
	scheduler ReminderScheduler
	interval  time.Duration
	onTick    func([]models.Reminder)
}

// NewTriggerMonitor creates a monitor over the given scheduler. interval
// <= 0 selects DefaultPollInterval.
func NewTriggerMonitor(scheduler ReminderScheduler, interval time.Duration, onTick func([]models.Reminder)) *TriggerMonitor {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &TriggerMonitor{scheduler: scheduler, interval: interval, onTick: onTick}
}

// Run blocks, ticking until the context is cancelled.
func (m *TriggerMonitor) Run(ctx context.Context) error {
	m.onTick(m.scheduler.Tick(time.Now()))

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			m.onTick(m.scheduler.Tick(now))
		}
	}
}
