// Package internal provides the App struct that wires all components of
// opsdesk together and initializes the CLI layer.
package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/opsdesk/opsdesk/internal/cli"
	"github.com/opsdesk/opsdesk/internal/core"
	"github.com/opsdesk/opsdesk/internal/integration"
	"github.com/opsdesk/opsdesk/internal/observability"
	"github.com/opsdesk/opsdesk/internal/storage"
)

// App holds all service dependencies for opsdesk.
type App struct {
	BasePath string
	Config   *core.Config

	// Storage layer
	KV        storage.KeyValueStore
	Snapshots *storage.SnapshotStore

	// Core services
	Engine    core.IncidentEngine
	Scheduler core.ReminderScheduler

	// Integration services
	SmartFill integration.SmartFill

	// Observability
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier

	closers []func() error
}

// NewApp creates and wires all components of opsdesk. basePath is the root
// directory where all data is stored (typically the directory containing
// .opsdesk.yaml).
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	cfg, err := core.LoadConfig(basePath)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	app.Config = cfg

	// --- Storage layer ---
	switch cfg.StorageBackend {
	case core.BackendSQLite:
		kv, closeDB, err := storage.OpenSQLiteKVStore(filepath.Join(basePath, cfg.SQLitePath))
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		app.KV = kv
		app.closers = append(app.closers, closeDB)
	default:
		app.KV = storage.NewFileKVStore(basePath)
	}
	app.Snapshots = storage.NewSnapshotStore(app.KV)

	// --- Observability ---
	eventLogPath := filepath.Join(basePath, ".opsdesk_events.jsonl")
	eventLog, err := observability.NewJSONLEventLog(eventLogPath)
	if err != nil {
		// Non-fatal: run without the event log if it can't be created.
		eventLog = nil
	}
	app.EventLog = eventLog

	var recorder core.EventLogger
	if app.EventLog != nil {
		recorder = observability.NewRecorder(app.EventLog, nil)
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
		app.closers = append(app.closers, app.EventLog.Close)
	}
	if cfg.Notifications.Enabled && cfg.Notifications.WebhookURL != "" {
		app.Notifier = observability.NewSlackNotifier(cfg.Notifications.WebhookURL)
	}

	// --- Core services ---
	app.Engine = core.NewIncidentEngine(app.Snapshots, recorder, nil)
	if err := app.Engine.Load(); err != nil {
		// The store already fell back to seed/empty collections.
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	app.Scheduler = core.NewReminderScheduler(app.Snapshots, recorder, nil, cfg.SnoozeDuration)
	if err := app.Scheduler.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	// --- Integration services ---
	app.SmartFill = integration.NewGeminiSmartFill(cfg.SmartFill)

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Config = app.Config
	cli.Engine = app.Engine
	cli.Scheduler = app.Scheduler
	cli.SmartFill = app.SmartFill
	cli.EventLog = app.EventLog
	cli.MetricsCalc = app.MetricsCalc
	cli.Notifier = app.Notifier

	return app, nil
}

// Close releases resources held by the app, in reverse acquisition order.
func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ResolveBasePath determines where opsdesk keeps its data: the OPSDESK_HOME
// environment variable if set, otherwise the nearest ancestor directory
// containing .opsdesk.yaml, otherwise the current directory.
func ResolveBasePath() string {
	if home := os.Getenv("OPSDESK_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".opsdesk.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}
