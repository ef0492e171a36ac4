package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/opsdesk/opsdesk/internal/core"
	"github.com/opsdesk/opsdesk/internal/observability"
	"github.com/opsdesk/opsdesk/pkg/models"
)

// --- Fake implementations ---

// fakeStore is an in-memory snapshot store backing real engine and
// scheduler instances for the tool tests.
type fakeStore struct {
	active    []models.Incident
	archived  []models.Incident
	reminders []models.Reminder
}

func (f *fakeStore) LoadActive() ([]models.Incident, error)  { return f.active, nil }
func (f *fakeStore) LoadArchive() ([]models.Incident, error) { return f.archived, nil }
func (f *fakeStore) SaveActive(incidents []models.Incident) error {
	f.active = incidents
	return nil
}
func (f *fakeStore) SaveArchive(incidents []models.Incident) error {
	f.archived = incidents
	return nil
}
func (f *fakeStore) LoadReminders() ([]models.Reminder, error) { return f.reminders, nil }
func (f *fakeStore) SaveReminders(reminders []models.Reminder) error {
	f.reminders = reminders
	return nil
}

type fakeMetricsCalculator struct {
	metrics *observability.Metrics
}

func (f *fakeMetricsCalculator) Calculate(_ time.Time) (*observability.Metrics, error) {
	return f.metrics, nil
}

// --- Test helpers ---

func newTestServer(t *testing.T, seed []models.Incident, mc observability.MetricsCalculator) (*Server, core.IncidentEngine, core.ReminderScheduler) {
	t.Helper()
	store := &fakeStore{active: seed}
	engine := core.NewIncidentEngine(store, nil, nil)
	if err := engine.Load(); err != nil {
		t.Fatalf("engine load: %v", err)
	}
	scheduler := core.NewReminderScheduler(store, nil, nil, core.DefaultSnooze)
	if err := scheduler.Load(); err != nil {
		t.Fatalf("scheduler load: %v", err)
	}
	return NewServer(engine, scheduler, mc, "test"), engine, scheduler
}

func sampleIncident() models.Incident {
	return models.Incident{
		ID:          "inc-1",
		Name:        "Extinguisher check",
		Date:        "2026-08-20",
		Type:        models.TypePRL,
		Subject:     "Floor inspection",
		Actions:     []string{"VoluntaryInsuranceSlip", "5.1", "5.3", "R39", "OD"},
		Responsible: models.PersonB,
		Priority:    models.PriorityHigh,
		Status:      models.StatusPending,
	}
}

func sampleIncident2() models.Incident {
	return models.Incident{
		ID:          "inc-2",
		Name:        "Blocked exit",
		Date:        "2026-08-21",
		Type:        models.TypeCSR,
		Subject:     "Emergency exit obstructed",
		Actions:     []string{"R05", "R39", "R06", "OD"},
		Responsible: models.Unassigned,
		Priority:    models.PriorityMedium,
		Status:      models.StatusCompleted,
	}
}

// callTool is a helper that connects a client to the server and calls a tool.
func callTool(t *testing.T, srv *Server, toolName string, args map[string]any) *gomcp.CallToolResult {
	t.Helper()

	ctx := context.Background()
	client := gomcp.NewClient(&gomcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)

	t1, t2 := gomcp.NewInMemoryTransports()

	go func() {
		_ = srv.MCPServer().Run(ctx, t1)
	}()

	session, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer session.Close()

	result, err := session.CallTool(ctx, &gomcp.CallToolParams{
		Name:      toolName,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("call tool %s: %v", toolName, err)
	}

	return result
}

// decodeResult unmarshals a tool result from structured content or text.
func decodeResult(t *testing.T, result *gomcp.CallToolResult, out any) {
	t.Helper()
	if result.StructuredContent != nil {
		data, _ := json.Marshal(result.StructuredContent)
		if err := json.Unmarshal(data, out); err != nil {
			t.Fatalf("unmarshalling structured content: %v", err)
		}
		return
	}
	text := extractText(result)
	if err := json.Unmarshal([]byte(text), out); err != nil {
		t.Fatalf("unmarshalling result text: %v (text was: %s)", err, text)
	}
}

// --- Tests ---

func TestGetIncident(t *testing.T) {
	srv, _, _ := newTestServer(t, []models.Incident{sampleIncident()}, nil)

	result := callTool(t, srv, "get_incident", map[string]any{"incident_id": "inc-1"})

	if result.IsError {
		t.Fatalf("expected success, got error: %s", extractText(result))
	}

	var out incidentOutput
	decodeResult(t, result, &out)

	if out.ID != "inc-1" {
		t.Errorf("expected incident inc-1, got %s", out.ID)
	}
	if out.Type != "PRL" {
		t.Errorf("expected type PRL, got %s", out.Type)
	}
	if len(out.Actions) != 5 {
		t.Errorf("expected 5 pending actions, got %d", len(out.Actions))
	}
}

func TestGetIncidentNotFound(t *testing.T) {
	srv, _, _ := newTestServer(t, nil, nil)

	result := callTool(t, srv, "get_incident", map[string]any{"incident_id": "missing"})

	if !result.IsError {
		t.Fatal("expected error result for unknown incident")
	}
	if extractText(result) == "" {
		t.Fatal("expected error message in result content")
	}
}

func TestListIncidents(t *testing.T) {
	srv, _, _ := newTestServer(t, []models.Incident{sampleIncident(), sampleIncident2()}, nil)

	result := callTool(t, srv, "list_incidents", map[string]any{})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", extractText(result))
	}

	var out listIncidentsOutput
	decodeResult(t, result, &out)
	if out.Count != 2 {
		t.Errorf("expected 2 incidents, got %d", out.Count)
	}
}

func TestListIncidentsWithStatusFilter(t *testing.T) {
	srv, _, _ := newTestServer(t, []models.Incident{sampleIncident(), sampleIncident2()}, nil)

	result := callTool(t, srv, "list_incidents", map[string]any{"status": "Completed"})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", extractText(result))
	}

	var out listIncidentsOutput
	decodeResult(t, result, &out)
	if out.Count != 1 {
		t.Fatalf("expected 1 completed incident, got %d", out.Count)
	}
	if out.Incidents[0].ID != "inc-2" {
		t.Errorf("expected inc-2, got %s", out.Incidents[0].ID)
	}
}

func TestListIncidentsArchived(t *testing.T) {
	store := &fakeStore{archived: []models.Incident{sampleIncident2()}}
	engine := core.NewIncidentEngine(store, nil, nil)
	if err := engine.Load(); err != nil {
		t.Fatalf("engine load: %v", err)
	}
	scheduler := core.NewReminderScheduler(store, nil, nil, core.DefaultSnooze)
	if err := scheduler.Load(); err != nil {
		t.Fatalf("scheduler load: %v", err)
	}
	srv := NewServer(engine, scheduler, nil, "test")

	result := callTool(t, srv, "list_incidents", map[string]any{"archived": true})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", extractText(result))
	}

	var out listIncidentsOutput
	decodeResult(t, result, &out)
	if out.Count != 1 || out.Incidents[0].ID != "inc-2" {
		t.Errorf("expected the archived incident, got %+v", out)
	}
}

func TestCreateIncident(t *testing.T) {
	srv, engine, _ := newTestServer(t, nil, nil)

	result := callTool(t, srv, "create_incident", map[string]any{
		"name":    "Warehouse leak",
		"subject": "Water leak near rack 4",
		"type":    "GSR",
	})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", extractText(result))
	}

	var out createIncidentOutput
	decodeResult(t, result, &out)
	if out.Incident.Status != "Pending" {
		t.Errorf("expected Pending, got %s", out.Incident.Status)
	}
	if len(out.Incident.Actions) != 4 {
		t.Errorf("expected default GSR checklist, got %v", out.Incident.Actions)
	}
	if len(engine.Active()) != 1 {
		t.Error("expected incident in the active collection")
	}
}

func TestCreateIncidentMissingName(t *testing.T) {
	srv, _, _ := newTestServer(t, nil, nil)

	result := callTool(t, srv, "create_incident", map[string]any{
		"name":    "",
		"subject": "no name",
	})
	if !result.IsError {
		t.Fatal("expected error for empty name")
	}
}

func TestUpdateIncidentStatus(t *testing.T) {
	srv, engine, _ := newTestServer(t, []models.Incident{sampleIncident()}, nil)

	result := callTool(t, srv, "update_incident_status", map[string]any{
		"incident_id": "inc-1",
		"status":      "Completed",
	})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", extractText(result))
	}

	inc, _ := engine.Get("inc-1")
	if inc.Status != models.StatusCompleted {
		t.Errorf("expected Completed, got %s", inc.Status)
	}
}

func TestUpdateIncidentStatusInvalid(t *testing.T) {
	srv, _, _ := newTestServer(t, []models.Incident{sampleIncident()}, nil)

	result := callTool(t, srv, "update_incident_status", map[string]any{
		"incident_id": "inc-1",
		"status":      "Done",
	})
	if !result.IsError {
		t.Fatal("expected error for invalid status")
	}
}

func TestCompleteAction(t *testing.T) {
	srv, engine, _ := newTestServer(t, []models.Incident{sampleIncident()}, nil)

	result := callTool(t, srv, "complete_action", map[string]any{
		"incident_id": "inc-1",
		"action":      "5.3",
	})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", extractText(result))
	}

	inc, _ := engine.Get("inc-1")
	for _, a := range inc.Actions {
		if a == "5.3" {
			t.Fatal("expected 5.3 removed from the checklist")
		}
	}
	if len(inc.Logs) != 1 {
		t.Errorf("expected a completion log entry, got %v", inc.Logs)
	}
}

func TestListTriggeredReminders(t *testing.T) {
	srv, _, scheduler := newTestServer(t, nil, nil)
	if _, err := scheduler.Schedule("overdue", "2020-01-01", "09:00", ""); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if _, err := scheduler.Schedule("far future", "2099-01-01", "09:00", ""); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	result := callTool(t, srv, "list_triggered_reminders", map[string]any{})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", extractText(result))
	}

	var out listTriggeredRemindersOutput
	decodeResult(t, result, &out)
	if out.Count != 1 {
		t.Fatalf("expected 1 triggered reminder, got %d", out.Count)
	}
	if out.Reminders[0].Message != "overdue" {
		t.Errorf("expected the overdue reminder, got %+v", out.Reminders[0])
	}
}

func TestGetMetrics(t *testing.T) {
	now := time.Now().UTC()
	mc := &fakeMetricsCalculator{
		metrics: &observability.Metrics{
			IncidentsCreated: 5,
			IncidentsByType:  map[string]int{"GSR": 3, "PRL": 2},
			ActionsCompleted: 7,
			EventCount:       42,
			OldestEvent:      &now,
			NewestEvent:      &now,
		},
	}
	srv, _, _ := newTestServer(t, nil, mc)

	result := callTool(t, srv, "get_metrics", map[string]any{})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", extractText(result))
	}

	var m metricsOutput
	decodeResult(t, result, &m)
	if m.IncidentsCreated != 5 {
		t.Errorf("expected 5 incidents created, got %d", m.IncidentsCreated)
	}
	if m.EventCount != 42 {
		t.Errorf("expected 42 events, got %d", m.EventCount)
	}
}

func TestGetMetricsDisabled(t *testing.T) {
	srv, _, _ := newTestServer(t, nil, nil)

	result := callTool(t, srv, "get_metrics", map[string]any{})
	if !result.IsError {
		t.Fatal("expected error when metrics calculator is nil")
	}
	if extractText(result) == "" {
		t.Fatal("expected error message in result")
	}
}

func TestParseSince(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"7d", false},
		{"30d", false},
		{"24h", false},
		{"1h", false},
		{"", true},
		{"x", true},
		{"7x", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := parseSince(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseSince(%q) error = %v, wantErr = %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

// extractText extracts the text from the first TextContent in a CallToolResult.
func extractText(result *gomcp.CallToolResult) string {
	for _, c := range result.Content {
		if tc, ok := c.(*gomcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}
