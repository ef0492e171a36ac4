package models

import "time"

// Reminder is a scheduled alert. Datetime is the trigger instant; a
// reminder is considered triggered from that moment until it is dismissed
// or snoozed. EndDatetime is informational only and plays no part in
// trigger evaluation.
type Reminder struct {
	ID          string     `yaml:"id"`
	Message     string     `yaml:"message"`
	Datetime    time.Time  `yaml:"datetime"`
	EndDatetime *time.Time `yaml:"end_datetime,omitempty"`
}
