package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/opsdesk/opsdesk/internal/cli"
	"github.com/opsdesk/opsdesk/pkg/models"
)

func TestResolveBasePath_HomeSet(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("OPSDESK_HOME", tmpDir)

	got := ResolveBasePath()
	if got != tmpDir {
		t.Errorf("ResolveBasePath() = %q, want %q", got, tmpDir)
	}
}

func TestResolveBasePath_FindsConfig(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "sub", "nested")
	if err := os.MkdirAll(subDir, 0o755); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(tmpDir, ".opsdesk.yaml")
	if err := os.WriteFile(configPath, []byte("storage:\n  backend: file\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	origDir, _ := os.Getwd()
	defer func() { _ = os.Chdir(origDir) }()
	if err := os.Chdir(subDir); err != nil {
		t.Fatal(err)
	}
	os.Unsetenv("OPSDESK_HOME")

	got := ResolveBasePath()
	if got != tmpDir {
		t.Errorf("ResolveBasePath() = %q, want %q (should find .opsdesk.yaml in parent)", got, tmpDir)
	}
}

func TestNewApp_Success(t *testing.T) {
	tmpDir := t.TempDir()
	app, err := NewApp(tmpDir)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	defer app.Close()

	if app.BasePath != tmpDir {
		t.Errorf("app.BasePath = %q, want %q", app.BasePath, tmpDir)
	}
	if app.Engine == nil {
		t.Error("app.Engine is nil")
	}
	if app.Scheduler == nil {
		t.Error("app.Scheduler is nil")
	}
	if app.SmartFill == nil {
		t.Error("app.SmartFill is nil")
	}
	if app.EventLog == nil {
		t.Error("app.EventLog is nil")
	}
	if app.MetricsCalc == nil {
		t.Error("app.MetricsCalc is nil")
	}
	// Notifications are disabled by default.
	if app.Notifier != nil {
		t.Error("app.Notifier should be nil without a webhook")
	}

	// The engine starts with the seed incident on a fresh base path.
	if len(app.Engine.Active()) == 0 {
		t.Error("expected the seeded active collection")
	}
}

func TestNewApp_WiresCLI(t *testing.T) {
	tmpDir := t.TempDir()
	app, err := NewApp(tmpDir)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	defer app.Close()

	if cli.BasePath != tmpDir {
		t.Errorf("cli.BasePath = %q, want %q", cli.BasePath, tmpDir)
	}
	if cli.Engine == nil || cli.Scheduler == nil || cli.SmartFill == nil {
		t.Error("core CLI services not wired")
	}
	if cli.Config == nil || cli.MetricsCalc == nil {
		t.Error("config or metrics not wired")
	}
}

func TestNewApp_SQLiteBackend(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".opsdesk.yaml")
	cfgYAML := "storage:\n  backend: sqlite\n  sqlite_path: desk.db\n"
	if err := os.WriteFile(configPath, []byte(cfgYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	app, err := NewApp(tmpDir)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}

	inc, err := app.Engine.Create(models.IncidentDraft{Name: "db check", Subject: "s"})
	if err != nil {
		t.Fatalf("creating incident: %v", err)
	}
	if err := app.Close(); err != nil {
		t.Fatalf("closing app: %v", err)
	}

	// Reopen and confirm the incident survived in sqlite.
	reopened, err := NewApp(tmpDir)
	if err != nil {
		t.Fatalf("NewApp() reopen error = %v", err)
	}
	defer reopened.Close()

	if _, ok := reopened.Engine.Get(inc.ID); !ok {
		t.Errorf("incident %s not found after reopen", inc.ID)
	}
}

func TestNewApp_InvalidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".opsdesk.yaml")
	if err := os.WriteFile(configPath, []byte("storage:\n  backend: redis\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewApp(tmpDir); err == nil {
		t.Fatal("expected error for unsupported backend")
	}
}
