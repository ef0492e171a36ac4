package cli

import (
	"github.com/opsdesk/opsdesk/internal/core"
	"github.com/opsdesk/opsdesk/internal/integration"
	"github.com/opsdesk/opsdesk/internal/observability"
)

// Service instances, set during app initialization in app.go.
var (
	BasePath string
	Config   *core.Config

	Engine    core.IncidentEngine
	Scheduler core.ReminderScheduler
	SmartFill integration.SmartFill

	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
)
