package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backend names accepted in configuration.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// SmartFillConfig configures the language-model smart-fill adapter.
type SmartFillConfig struct {
	Model     string
	Endpoint  string
	APIKeyEnv string
}

// NotificationsConfig configures the optional webhook notifier for newly
// triggered reminders.
type NotificationsConfig struct {
	Enabled    bool
	WebhookURL string
}

// Config holds the desk-wide settings read from .opsdesk.yaml.
type Config struct {
	StorageBackend string
	SQLitePath     string
	PollInterval   time.Duration
	SnoozeDuration time.Duration
	SmartFill      SmartFillConfig
	Notifications  NotificationsConfig
}

func defaultConfig() *Config {
	return &Config{
		StorageBackend: BackendFile,
		SQLitePath:     "opsdesk.db",
		PollInterval:   DefaultPollInterval,
		SnoozeDuration: DefaultSnooze,
		SmartFill: SmartFillConfig{
			Model:     "gemini-2.5-flash",
			Endpoint:  "https://generativelanguage.googleapis.com/v1beta",
			APIKeyEnv: "GEMINI_API_KEY",
		},
	}
}

// LoadConfig reads .opsdesk.yaml from the base path using Viper. A missing
// config file yields the defaults.
func LoadConfig(basePath string) (*Config, error) {
	cfg := defaultConfig()

	v := viper.New()
	v.SetConfigName(".opsdesk")
	v.SetConfigType("yaml")
	v.AddConfigPath(basePath)

	v.SetDefault("storage.backend", cfg.StorageBackend)
	v.SetDefault("storage.sqlite_path", cfg.SQLitePath)
	v.SetDefault("reminders.poll_interval_seconds", int(cfg.PollInterval/time.Second))
	v.SetDefault("reminders.snooze_minutes", int(cfg.SnoozeDuration/time.Minute))
	v.SetDefault("smartfill.model", cfg.SmartFill.Model)
	v.SetDefault("smartfill.endpoint", cfg.SmartFill.Endpoint)
	v.SetDefault("smartfill.api_key_env", cfg.SmartFill.APIKeyEnv)
	v.SetDefault("notifications.enabled", false)
	v.SetDefault("notifications.webhook_url", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading .opsdesk.yaml: %w", err)
	}

	cfg.StorageBackend = v.GetString("storage.backend")
	cfg.SQLitePath = v.GetString("storage.sqlite_path")
	cfg.PollInterval = time.Duration(v.GetInt("reminders.poll_interval_seconds")) * time.Second
	cfg.SnoozeDuration = time.Duration(v.GetInt("reminders.snooze_minutes")) * time.Minute
	cfg.SmartFill.Model = v.GetString("smartfill.model")
	cfg.SmartFill.Endpoint = v.GetString("smartfill.endpoint")
	cfg.SmartFill.APIKeyEnv = v.GetString("smartfill.api_key_env")
	cfg.Notifications.Enabled = v.GetBool("notifications.enabled")
	cfg.Notifications.WebhookURL = v.GetString("notifications.webhook_url")

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validateConfig checks the loaded configuration for invalid values.
func validateConfig(cfg *Config) error {
	var errs []string

	switch cfg.StorageBackend {
	case BackendFile, BackendSQLite:
	default:
		errs = append(errs, fmt.Sprintf(
			"storage.backend %q is invalid, must be %q or %q",
			cfg.StorageBackend, BackendFile, BackendSQLite,
		))
	}

	if cfg.PollInterval <= 0 {
		errs = append(errs, fmt.Sprintf(
			"reminders.poll_interval_seconds must be positive, got %d",
			int(cfg.PollInterval/time.Second),
		))
	}

	if cfg.SnoozeDuration <= 0 {
		errs = append(errs, fmt.Sprintf(
			"reminders.snooze_minutes must be positive, got %d",
			int(cfg.SnoozeDuration/time.Minute),
		))
	}

	if cfg.Notifications.Enabled && cfg.Notifications.WebhookURL == "" {
		errs = append(errs, "notifications.webhook_url must be set when notifications are enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
