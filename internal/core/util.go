package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewID returns a fresh opaque identifier for incidents and reminders.
func NewID() string {
	return uuid.NewString()
}

// Date and clock layouts used throughout the desk.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
	// logStampLayout is the locale-style timestamp embedded in completion
	// log entries, e.g. "10/24/2023 14:32".
	logStampLayout = "01/02/2006 15:04"
)

// CombineDateTime combines an ISO calendar date and a HH:MM clock value
// into a local-time instant.
func CombineDateTime(date, clock string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, date+" "+clock, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %q %q: %w", date, clock, err)
	}
	return t, nil
}

// FormatLogTimestamp renders the timestamp used in completion log entries.
func FormatLogTimestamp(t time.Time) string {
	return t.Format(logStampLayout)
}
