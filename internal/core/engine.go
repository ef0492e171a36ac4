// Package core contains the business logic of the incident desk: the
// incident lifecycle engine, the reminder scheduler with its trigger
// monitor, the per-type action-code rules, and configuration loading.
package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/opsdesk/opsdesk/pkg/models"
)

// IncidentStore is the subset of storage.SnapshotStore the engine needs.
// Defining it here keeps core independent of the storage package.
type IncidentStore interface {
	LoadActive() ([]models.Incident, error)
	LoadArchive() ([]models.Incident, error)
	SaveActive([]models.Incident) error
	SaveArchive([]models.Incident) error
}

// EventLogger records domain events. Implementations must tolerate being
// called on a hot path; failures are the logger's problem, not the engine's.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

// ErrNothingToMove is returned by MoveCompleted when no active incident
// has Completed status.
var ErrNothingToMove = errors.New("no completed incidents to move")

// SearchResult is one hit from a name search across both collections.
type SearchResult struct {
	Incident models.Incident
	Archived bool
}

// IncidentEngine owns the active and archived incident collections and
// applies every lifecycle operation against them. All mutations persist a
// snapshot best-effort: a failed write is logged and never fails the
// operation that triggered it. Operations referencing an unknown
// identifier are silent no-ops.
type IncidentEngine interface {
	Load() error
	Active() []models.Incident
	Archived() []models.Incident
	Get(id string) (*models.Incident, bool)
	Create(draft models.IncidentDraft) (*models.Incident, error)
	UpdateField(id string, field models.Field, value string) error
	UpdateArchivedField(id string, field models.Field, value string) error
	SetActions(id string, actions []string) error
	AddAction(id, code string) error
	CompleteAction(id, code string) error
	Delete(id string) error
	MoveCompleted() (int, error)
	Restore(id string) error
	Search(term string) []SearchResult
}

type incidentEngine struct {
	store  IncidentStore
	events EventLogger
	now    func() time.Time

	active   []models.Incident
	archived []models.Incident
}

// NewIncidentEngine creates an engine over the given store. now may be nil,
// in which case wall-clock time is used; events may be nil to disable
// event logging. Call Load before use.
func NewIncidentEngine(store IncidentStore, events EventLogger, now func() time.Time) IncidentEngine {
	if now == nil {
		now = time.Now
	}
	return &incidentEngine{store: store, events: events, now: now}
}

// Load populates both collections from the store. The store already falls
// back to seed/empty data on absent or corrupt snapshots; the returned
// error is diagnostic only and the engine is usable regardless.
func (e *incidentEngine) Load() error {
	active, activeErr := e.store.LoadActive()
	archived, archiveErr := e.store.LoadArchive()
	e.active = active
	e.archived = archived
	if activeErr != nil {
		return fmt.Errorf("loading active incidents: %w", activeErr)
	}
	if archiveErr != nil {
		return fmt.Errorf("loading archived incidents: %w", archiveErr)
	}
	return nil
}

// Active returns the active collection, most recent first.
func (e *incidentEngine) Active() []models.Incident {
	return append([]models.Incident(nil), e.active...)
}

// Archived returns the archive collection, most recently archived first.
func (e *incidentEngine) Archived() []models.Incident {
	return append([]models.Incident(nil), e.archived...)
}

// Get looks an incident up by ID in the active collection first, then the
// archive.
func (e *incidentEngine) Get(id string) (*models.Incident, bool) {
	if idx := indexByID(e.active, id); idx >= 0 {
		inc := e.active[idx]
		return &inc, true
	}
	if idx := indexByID(e.archived, id); idx >= 0 {
		inc := e.archived[idx]
		return &inc, true
	}
	return nil, false
}

// Create validates the draft, fills in defaults, and prepends the new
// incident to the active collection. Name and subject are required; a
// failed precondition creates nothing.
func (e *incidentEngine) Create(draft models.IncidentDraft) (*models.Incident, error) {
	if strings.TrimSpace(draft.Name) == "" {
		return nil, fmt.Errorf("name must not be empty")
	}
	if strings.TrimSpace(draft.Subject) == "" {
		return nil, fmt.Errorf("subject must not be empty")
	}

	incType := draft.Type
	if incType == "" {
		incType = models.TypeOther
	}
	date := draft.Date
	if date == "" {
		date = e.now().Format(DateLayout)
	}
	responsible := draft.Responsible
	if responsible == "" {
		responsible = models.Unassigned
	}
	priority := draft.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	actions := draft.Actions
	if actions == nil {
		actions = DefaultActionsFor(incType)
	}

	inc := models.Incident{
		ID:          NewID(),
		Name:        draft.Name,
		Date:        date,
		Type:        incType,
		Subject:     draft.Subject,
		Actions:     actions,
		Responsible: responsible,
		Priority:    priority,
		Status:      models.StatusPending,
		Comments:    "",
	}

	e.active = append([]models.Incident{inc}, e.active...)
	e.persistActive()
	e.logEvent("incident.created", map[string]any{
		"incident_id": inc.ID,
		"type":        string(inc.Type),
	})
	return &inc, nil
}

// UpdateField replaces the named field's value on an active incident.
// Unknown identifiers are a silent no-op. Values are stored permissively:
// beyond resolving the field name, no enumeration check is applied, which
// mirrors the reference behavior of inline table edits.
func (e *incidentEngine) UpdateField(id string, field models.Field, value string) error {
	if !models.ValidField(field) {
		return fmt.Errorf("unknown field %q", field)
	}
	idx := indexByID(e.active, id)
	if idx < 0 {
		return nil
	}
	setField(&e.active[idx], field, value)
	e.persistActive()
	e.logEvent("incident.field_updated", map[string]any{
		"incident_id": id,
		"field":       string(field),
	})
	return nil
}

// UpdateArchivedField edits an archived incident. Only name and comments
// remain editable after archival; every other field is immutable.
func (e *incidentEngine) UpdateArchivedField(id string, field models.Field, value string) error {
	if field != models.FieldName && field != models.FieldComments {
		return fmt.Errorf("field %q is immutable after archival", field)
	}
	idx := indexByID(e.archived, id)
	if idx < 0 {
		return nil
	}
	setField(&e.archived[idx], field, value)
	e.persistArchive()
	e.logEvent("incident.field_updated", map[string]any{
		"incident_id": id,
		"field":       string(field),
		"archived":    true,
	})
	return nil
}

// SetActions replaces the pending action list of an active incident,
// dropping duplicates while preserving first-occurrence order.
func (e *incidentEngine) SetActions(id string, actions []string) error {
	idx := indexByID(e.active, id)
	if idx < 0 {
		return nil
	}
	e.active[idx].Actions = dedupe(actions)
	e.persistActive()
	e.logEvent("incident.field_updated", map[string]any{
		"incident_id": id,
		"field":       "actions",
	})
	return nil
}

// AddAction appends an action code to an active incident's pending list.
// Codes already present are a no-op; codes outside the incident type's
// pool are rejected.
func (e *incidentEngine) AddAction(id, code string) error {
	idx := indexByID(e.active, id)
	if idx < 0 {
		return nil
	}
	inc := &e.active[idx]
	if !ActionAllowed(inc.Type, code) {
		return fmt.Errorf("code %q is not valid for type %s", code, inc.Type)
	}
	for _, a := range inc.Actions {
		if a == code {
			return nil
		}
	}
	inc.Actions = append(inc.Actions, code)
	e.persistActive()
	e.logEvent("incident.action_added", map[string]any{
		"incident_id": id,
		"action":      code,
	})
	return nil
}

// CompleteAction removes an action code from the pending list and appends
// a completion log entry. Removal and log append happen together or not at
// all; completing an already-absent code is a no-op and produces no
// duplicate log entry.
func (e *incidentEngine) CompleteAction(id, code string) error {
	idx := indexByID(e.active, id)
	if idx < 0 {
		return nil
	}
	inc := &e.active[idx]

	pos := -1
	for i, a := range inc.Actions {
		if a == code {
			pos = i
			break
		}
	}
	if pos < 0 {
		return nil
	}

	inc.Actions = append(inc.Actions[:pos:pos], inc.Actions[pos+1:]...)
	who := inc.Responsible
	if who == "" {
		who = models.Unassigned
	}
	entry := fmt.Sprintf("• %s completed %s (%s)", who, code, FormatLogTimestamp(e.now()))
	inc.Logs = append(inc.Logs, entry)

	e.persistActive()
	e.logEvent("incident.action_completed", map[string]any{
		"incident_id": id,
		"action":      code,
	})
	return nil
}

// Delete removes an incident from the active collection unconditionally.
func (e *incidentEngine) Delete(id string) error {
	idx := indexByID(e.active, id)
	if idx < 0 {
		return nil
	}
	e.active = append(e.active[:idx:idx], e.active[idx+1:]...)
	e.persistActive()
	e.logEvent("incident.deleted", map[string]any{"incident_id": id})
	return nil
}

// MoveCompleted moves every active incident with Completed status to the
// front of the archive, preserving their relative order, and returns how
// many moved. When none qualify it returns ErrNothingToMove and leaves
// both collections untouched.
func (e *incidentEngine) MoveCompleted() (int, error) {
	var completed, remaining []models.Incident
	for _, inc := range e.active {
		if inc.Status == models.StatusCompleted {
			completed = append(completed, inc)
		} else {
			remaining = append(remaining, inc)
		}
	}
	if len(completed) == 0 {
		return 0, ErrNothingToMove
	}

	e.active = remaining
	e.archived = append(completed, e.archived...)
	e.persistActive()
	e.persistArchive()
	e.logEvent("incident.archived", map[string]any{"count": len(completed)})
	return len(completed), nil
}

// Restore moves an archived incident back to the front of the active
// collection, regardless of its status.
func (e *incidentEngine) Restore(id string) error {
	idx := indexByID(e.archived, id)
	if idx < 0 {
		return nil
	}
	inc := e.archived[idx]
	e.archived = append(e.archived[:idx:idx], e.archived[idx+1:]...)
	e.active = append([]models.Incident{inc}, e.active...)
	e.persistActive()
	e.persistArchive()
	e.logEvent("incident.restored", map[string]any{"incident_id": id})
	return nil
}

// Search returns every incident, active or archived, whose name contains
// the term (case-insensitive). An empty term matches nothing.
func (e *incidentEngine) Search(term string) []SearchResult {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}
	var results []SearchResult
	for _, inc := range e.active {
		if strings.Contains(strings.ToLower(inc.Name), term) {
			results = append(results, SearchResult{Incident: inc})
		}
	}
	for _, inc := range e.archived {
		if strings.Contains(strings.ToLower(inc.Name), term) {
			results = append(results, SearchResult{Incident: inc, Archived: true})
		}
	}
	return results
}

// persistActive writes the active snapshot best-effort. Write failures
// never propagate into the operation that caused them.
func (e *incidentEngine) persistActive() {
	if err := e.store.SaveActive(e.active); err != nil {
		e.logEvent("storage.write_failed", map[string]any{
			"key":   "activeIncidents",
			"error": err.Error(),
		})
	}
}

func (e *incidentEngine) persistArchive() {
	if err := e.store.SaveArchive(e.archived); err != nil {
		e.logEvent("storage.write_failed", map[string]any{
			"key":   "historyIncidents",
			"error": err.Error(),
		})
	}
}

func (e *incidentEngine) logEvent(eventType string, data map[string]any) {
	if e.events != nil {
		_ = e.events.LogEvent(eventType, data)
	}
}

func indexByID(incidents []models.Incident, id string) int {
	for i, inc := range incidents {
		if inc.ID == id {
			return i
		}
	}
	return -1
}

func setField(inc *models.Incident, field models.Field, value string) {
	switch field {
	case models.FieldName:
		inc.Name = value
	case models.FieldDate:
		inc.Date = value
	case models.FieldType:
		inc.Type = models.IncidentType(value)
	case models.FieldSubject:
		inc.Subject = value
	case models.FieldResponsible:
		inc.Responsible = models.Responsible(value)
	case models.FieldPriority:
		inc.Priority = models.Priority(value)
	case models.FieldStatus:
		inc.Status = models.Status(value)
	case models.FieldComments:
		inc.Comments = value
	}
}

func dedupe(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
