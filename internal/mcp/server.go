// Package mcp provides an MCP (Model Context Protocol) server that exposes
// opsdesk functionality as MCP tools for AI assistants.
package mcp

import (
	"context"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/opsdesk/opsdesk/internal/core"
	"github.com/opsdesk/opsdesk/internal/observability"
	"github.com/opsdesk/opsdesk/pkg/models"
)

// Server wraps opsdesk services and exposes them as MCP tools.
type Server struct {
	server      *gomcp.Server
	engine      core.IncidentEngine
	scheduler   core.ReminderScheduler
	metricsCalc observability.MetricsCalculator
}

// NewServer creates an MCP server over the given services. metricsCalc may
// be nil if the event log is unavailable.
func NewServer(engine core.IncidentEngine, scheduler core.ReminderScheduler, metricsCalc observability.MetricsCalculator, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		engine:      engine,
		scheduler:   scheduler,
		metricsCalc: metricsCalc,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "opsdesk", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client
// disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type getIncidentInput struct {
	IncidentID string `json:"incident_id" jsonschema:"required,the unique incident identifier"`
}

type incidentOutput struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Date        string   `json:"date"`
	Type        string   `json:"type"`
	Subject     string   `json:"subject"`
	Actions     []string `json:"actions"`
	Responsible string   `json:"responsible"`
	Priority    string   `json:"priority"`
	Status      string   `json:"status"`
	Comments    string   `json:"comments,omitempty"`
	Logs        []string `json:"logs,omitempty"`
}

type listIncidentsInput struct {
	Archived bool   `json:"archived,omitempty" jsonschema:"list archived incidents instead of active ones"`
	Status   string `json:"status,omitempty" jsonschema:"filter by status (Pending, InProgress, Completed)"`
}

type listIncidentsOutput struct {
	Incidents []incidentOutput `json:"incidents"`
	Count     int              `json:"count"`
}

type createIncidentInput struct {
	Name     string `json:"name" jsonschema:"required,a short name identifying the incident"`
	Subject  string `json:"subject" jsonschema:"required,a brief summary of the incident"`
	Date     string `json:"date,omitempty" jsonschema:"incident date in YYYY-MM-DD format, defaults to today"`
	Type     string `json:"type,omitempty" jsonschema:"incident type (GSR, CSR, ASR, RiskManagement, PRL, Other)"`
	Priority string `json:"priority,omitempty" jsonschema:"priority (High, Medium, Low)"`
}

type createIncidentOutput struct {
	Incident incidentOutput `json:"incident"`
	Message  string         `json:"message"`
}

type updateIncidentStatusInput struct {
	IncidentID string `json:"incident_id" jsonschema:"required,the unique incident identifier"`
	Status     string `json:"status" jsonschema:"required,the new status (Pending, InProgress, Completed)"`
}

type updateIncidentStatusOutput struct {
	Message string `json:"message"`
}

type completeActionInput struct {
	IncidentID string `json:"incident_id" jsonschema:"required,the unique incident identifier"`
	Action     string `json:"action" jsonschema:"required,the pending action code to mark completed"`
}

type completeActionOutput struct {
	Message string `json:"message"`
}

type listTriggeredRemindersInput struct{}

type reminderOutput struct {
	ID       string `json:"id"`
	Message  string `json:"message"`
	Datetime string `json:"datetime"`
	End      string `json:"end,omitempty"`
}

type listTriggeredRemindersOutput struct {
	Reminders []reminderOutput `json:"reminders"`
	Count     int              `json:"count"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	IncidentsCreated   int            `json:"incidents_created"`
	IncidentsByType    map[string]int `json:"incidents_by_type"`
	ActionsCompleted   int            `json:"actions_completed"`
	IncidentsArchived  int            `json:"incidents_archived"`
	IncidentsRestored  int            `json:"incidents_restored"`
	RemindersScheduled int            `json:"reminders_scheduled"`
	EventCount         int            `json:"event_count"`
	OldestEvent        string         `json:"oldest_event,omitempty"`
	NewestEvent        string         `json:"newest_event,omitempty"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_incident",
		Description: "Get incident details by ID. Searches the active collection first, then the archive.",
	}, s.handleGetIncident)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_incidents",
		Description: "List active or archived incidents with an optional status filter.",
	}, s.handleListIncidents)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "create_incident",
		Description: "Create an incident. Name and subject are required; omitted fields take the type's defaults, including the default action checklist.",
	}, s.handleCreateIncident)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "update_incident_status",
		Description: "Update an incident's lifecycle status. Valid statuses: Pending, InProgress, Completed.",
	}, s.handleUpdateIncidentStatus)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "complete_action",
		Description: "Mark a pending action as completed: removes it from the checklist and appends a completion log entry.",
	}, s.handleCompleteAction)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_triggered_reminders",
		Description: "List reminders whose trigger instant is at or before the current time, oldest first.",
	}, s.handleListTriggeredReminders)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get aggregated metrics from the event log: incidents created, actions completed, archive and reminder activity.",
	}, s.handleGetMetrics)
}

// --- Tool handlers ---

func (s *Server) handleGetIncident(_ context.Context, _ *gomcp.CallToolRequest, input getIncidentInput) (*gomcp.CallToolResult, incidentOutput, error) {
	if input.IncidentID == "" {
		return errorResult("incident_id is required"), incidentOutput{}, nil
	}

	inc, ok := s.engine.Get(input.IncidentID)
	if !ok {
		return errorResult(fmt.Sprintf("incident %s not found", input.IncidentID)), incidentOutput{}, nil
	}

	return nil, incidentToOutput(*inc), nil
}

func (s *Server) handleListIncidents(_ context.Context, _ *gomcp.CallToolRequest, input listIncidentsInput) (*gomcp.CallToolResult, listIncidentsOutput, error) {
	var incidents []models.Incident
	if input.Archived {
		incidents = s.engine.Archived()
	} else {
		incidents = s.engine.Active()
	}

	out := listIncidentsOutput{Incidents: []incidentOutput{}}
	for _, inc := range incidents {
		if input.Status != "" && string(inc.Status) != input.Status {
			continue
		}
		out.Incidents = append(out.Incidents, incidentToOutput(inc))
	}
	out.Count = len(out.Incidents)

	return nil, out, nil
}

func (s *Server) handleCreateIncident(_ context.Context, _ *gomcp.CallToolRequest, input createIncidentInput) (*gomcp.CallToolResult, createIncidentOutput, error) {
	inc, err := s.engine.Create(models.IncidentDraft{
		Name:     input.Name,
		Subject:  input.Subject,
		Date:     input.Date,
		Type:     models.IncidentType(input.Type),
		Priority: models.Priority(input.Priority),
	})
	if err != nil {
		return errorResult(fmt.Sprintf("creating incident: %s", err)), createIncidentOutput{}, nil
	}

	out := createIncidentOutput{
		Incident: incidentToOutput(*inc),
		Message:  fmt.Sprintf("incident %s created", inc.ID),
	}
	return nil, out, nil
}

func (s *Server) handleUpdateIncidentStatus(_ context.Context, _ *gomcp.CallToolRequest, input updateIncidentStatusInput) (*gomcp.CallToolResult, updateIncidentStatusOutput, error) {
	if input.IncidentID == "" {
		return errorResult("incident_id is required"), updateIncidentStatusOutput{}, nil
	}
	if !models.ValidStatus(models.Status(input.Status)) {
		return errorResult(fmt.Sprintf("invalid status %q: must be one of Pending, InProgress, Completed", input.Status)), updateIncidentStatusOutput{}, nil
	}

	if err := s.engine.UpdateField(input.IncidentID, models.FieldStatus, input.Status); err != nil {
		return errorResult(fmt.Sprintf("updating incident %s status: %s", input.IncidentID, err)), updateIncidentStatusOutput{}, nil
	}

	out := updateIncidentStatusOutput{
		Message: fmt.Sprintf("incident %s status updated to %s", input.IncidentID, input.Status),
	}
	return nil, out, nil
}

func (s *Server) handleCompleteAction(_ context.Context, _ *gomcp.CallToolRequest, input completeActionInput) (*gomcp.CallToolResult, completeActionOutput, error) {
	if input.IncidentID == "" {
		return errorResult("incident_id is required"), completeActionOutput{}, nil
	}
	if input.Action == "" {
		return errorResult("action is required"), completeActionOutput{}, nil
	}

	if err := s.engine.CompleteAction(input.IncidentID, input.Action); err != nil {
		return errorResult(fmt.Sprintf("completing action %s on incident %s: %s", input.Action, input.IncidentID, err)), completeActionOutput{}, nil
	}

	out := completeActionOutput{
		Message: fmt.Sprintf("action %s completed on incident %s", input.Action, input.IncidentID),
	}
	return nil, out, nil
}

func (s *Server) handleListTriggeredReminders(_ context.Context, _ *gomcp.CallToolRequest, _ listTriggeredRemindersInput) (*gomcp.CallToolResult, listTriggeredRemindersOutput, error) {
	triggered := s.scheduler.Tick(time.Now())

	out := listTriggeredRemindersOutput{
		Reminders: make([]reminderOutput, len(triggered)),
		Count:     len(triggered),
	}
	for i, r := range triggered {
		out.Reminders[i] = reminderOutput{
			ID:       r.ID,
			Message:  r.Message,
			Datetime: r.Datetime.Format(time.RFC3339),
		}
		if r.EndDatetime != nil {
			out.Reminders[i].End = r.EndDatetime.Format(time.RFC3339)
		}
	}

	return nil, out, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (event log may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := parseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		IncidentsCreated:   metrics.IncidentsCreated,
		IncidentsByType:    metrics.IncidentsByType,
		ActionsCompleted:   metrics.ActionsCompleted,
		IncidentsArchived:  metrics.IncidentsArchived,
		IncidentsRestored:  metrics.IncidentsRestored,
		RemindersScheduled: metrics.RemindersScheduled,
		EventCount:         metrics.EventCount,
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

// --- Helpers ---

func incidentToOutput(inc models.Incident) incidentOutput {
	return incidentOutput{
		ID:          inc.ID,
		Name:        inc.Name,
		Date:        inc.Date,
		Type:        string(inc.Type),
		Subject:     inc.Subject,
		Actions:     inc.Actions,
		Responsible: string(inc.Responsible),
		Priority:    string(inc.Priority),
		Status:      string(inc.Status),
		Comments:    inc.Comments,
		Logs:        inc.Logs,
	}
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{
		IncidentsByType: make(map[string]int),
	}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// parseSince parses a human-friendly duration string like "7d", "30d", or
// "24h" into the corresponding time in the past.
func parseSince(s string) (time.Time, error) {
	now := time.Now().UTC()

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
