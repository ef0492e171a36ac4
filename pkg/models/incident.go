// Package models defines the incident and reminder records shared by the
// engine, the storage layer, and the presentation front-ends.
package models

// IncidentType classifies an incident into one of the deployment's
// reporting categories.
type IncidentType string

const (
	TypeGSR            IncidentType = "GSR"
	TypeCSR            IncidentType = "CSR"
	TypeASR            IncidentType = "ASR"
	TypeRiskManagement IncidentType = "RiskManagement"
	TypePRL            IncidentType = "PRL"
	TypeOther          IncidentType = "Other"
)

// Responsible identifies who owns an incident. The roster is fixed for
// this deployment.
type Responsible string

const (
	Unassigned Responsible = "Unassigned"
	PersonA    Responsible = "PersonA"
	PersonB    Responsible = "PersonB"
	PersonC    Responsible = "PersonC"
	PersonD    Responsible = "PersonD"
)

// Priority represents the urgency level of an incident.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Status represents the current lifecycle state of an incident.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "InProgress"
	StatusCompleted  Status = "Completed"
)

// IncidentTypes lists all incident types in display order.
var IncidentTypes = []IncidentType{
	TypeGSR, TypeCSR, TypeASR, TypeRiskManagement, TypePRL, TypeOther,
}

// Responsibles lists the assignable parties, Unassigned first.
var Responsibles = []Responsible{
	Unassigned, PersonA, PersonB, PersonC, PersonD,
}

// Priorities lists the priority levels, highest first.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Statuses lists the lifecycle states in workflow order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// Incident is a tracked operational incident. Actions holds the pending
// remediation action codes in insertion order, without duplicates. Logs is
// the append-only record of completed actions; entries are never edited or
// removed.
type Incident struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name"`
	Date        string       `yaml:"date"` // ISO calendar date, YYYY-MM-DD
	Type        IncidentType `yaml:"type"`
	Subject     string       `yaml:"subject"`
	Actions     []string     `yaml:"actions"`
	Responsible Responsible  `yaml:"responsible"`
	Priority    Priority     `yaml:"priority"`
	Status      Status       `yaml:"status"`
	Comments    string       `yaml:"comments,omitempty"`
	Logs        []string     `yaml:"logs,omitempty"`
}

// IncidentDraft carries the caller-supplied fields for incident creation.
// Actions may be nil to request the type's default action set.
type IncidentDraft struct {
	Name        string
	Date        string
	Type        IncidentType
	Subject     string
	Actions     []string
	Responsible Responsible
	Priority    Priority
}

// Field names an editable incident field for UpdateField operations.
type Field string

const (
	FieldName        Field = "name"
	FieldDate        Field = "date"
	FieldType        Field = "type"
	FieldSubject     Field = "subject"
	FieldResponsible Field = "responsible"
	FieldPriority    Field = "priority"
	FieldStatus      Field = "status"
	FieldComments    Field = "comments"
)

// Fields lists every editable scalar field.
var Fields = []Field{
	FieldName, FieldDate, FieldType, FieldSubject,
	FieldResponsible, FieldPriority, FieldStatus, FieldComments,
}

// ValidField reports whether name refers to an editable incident field.
func ValidField(name Field) bool {
	for _, f := range Fields {
		if f == name {
			return true
		}
	}
	return false
}

// ValidType reports whether t is one of the closed incident types.
func ValidType(t IncidentType) bool {
	for _, known := range IncidentTypes {
		if known == t {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is a known lifecycle status.
func ValidStatus(s Status) bool {
	for _, known := range Statuses {
		if known == s {
			return true
		}
	}
	return false
}

// ValidPriority reports whether p is a known priority level.
func ValidPriority(p Priority) bool {
	for _, known := range Priorities {
		if known == p {
			return true
		}
	}
	return false
}

// ValidResponsible reports whether r is on the fixed roster.
func ValidResponsible(r Responsible) bool {
	for _, known := range Responsibles {
		if known == r {
			return true
		}
	}
	return false
}
