package cli

import (
	"strings"
	"testing"
	"time"
)

func setReminderAddFlags(t *testing.T, message, date, start, end string) {
	t.Helper()
	origMessage, origDate, origTime, origEnd := reminderAddMessage, reminderAddDate, reminderAddTime, reminderAddEnd
	t.Cleanup(func() {
		reminderAddMessage, reminderAddDate, reminderAddTime, reminderAddEnd = origMessage, origDate, origTime, origEnd
	})
	reminderAddMessage = message
	reminderAddDate = date
	reminderAddTime = start
	reminderAddEnd = end
}

func TestReminderAddCmd(t *testing.T) {
	setupCLI(t)
	setReminderAddFlags(t, "Call the assessor", "2026-09-01", "09:30", "")

	if err := reminderAddCmd.RunE(reminderAddCmd, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reminders := Scheduler.Reminders()
	if len(reminders) != 1 {
		t.Fatalf("expected 1 reminder, got %d", len(reminders))
	}
	want := time.Date(2026, 9, 1, 9, 30, 0, 0, time.Local)
	if !reminders[0].Datetime.Equal(want) {
		t.Fatalf("expected trigger %v, got %v", want, reminders[0].Datetime)
	}
}

func TestReminderAddCmd_BadTime(t *testing.T) {
	setupCLI(t)
	setReminderAddFlags(t, "Call the assessor", "2026-09-01", "half past nine", "")

	if err := reminderAddCmd.RunE(reminderAddCmd, nil); err == nil {
		t.Fatal("expected error for malformed time")
	}
}

func TestReminderDismissCmd(t *testing.T) {
	setupCLI(t)
	rem, err := Scheduler.Schedule("msg", "2026-09-01", "09:30", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := reminderDismissCmd.RunE(reminderDismissCmd, []string{rem.ID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(Scheduler.Reminders()) != 0 {
		t.Fatal("expected reminder removed")
	}
}

func TestReminderSnoozeCmd(t *testing.T) {
	setupCLI(t)
	rem, err := Scheduler.Schedule("msg", "2020-01-01", "09:30", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	before := time.Now()
	if err := reminderSnoozeCmd.RunE(reminderSnoozeCmd, []string{rem.ID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snoozed, ok := Scheduler.Get(rem.ID)
	if !ok {
		t.Fatal("reminder disappeared after snooze")
	}
	if snoozed.Datetime.Before(before) {
		t.Fatalf("expected trigger pushed into the future, got %v", snoozed.Datetime)
	}
	if snoozed.Message != "msg" {
		t.Fatalf("expected message preserved, got %q", snoozed.Message)
	}
}

func TestReminderCmds_NilScheduler(t *testing.T) {
	orig := Scheduler
	defer func() { Scheduler = orig }()
	Scheduler = nil

	for _, run := range []func() error{
		func() error { return reminderAddCmd.RunE(reminderAddCmd, nil) },
		func() error { return reminderListCmd.RunE(reminderListCmd, nil) },
		func() error { return reminderDismissCmd.RunE(reminderDismissCmd, []string{"r-1"}) },
		func() error { return reminderSnoozeCmd.RunE(reminderSnoozeCmd, []string{"r-1"}) },
	} {
		if err := run(); err == nil || !strings.Contains(err.Error(), "not initialized") {
			t.Errorf("expected initialization error, got %v", err)
		}
	}
}
