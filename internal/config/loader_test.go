package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pulselog/pulselog/internal/config"
)

func TestLoadConfig_EnvOnly(t *testing.T) {
	t.Setenv("BOT_TELEGRAM_TOKEN", "123:abc")
	t.Setenv("BOT_TELEGRAM_ADMIN_ID", "42")

	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Telegram.Token != "123:abc" {
		t.Errorf("Telegram.Token = %q", cfg.Telegram.Token)
	}
	if cfg.Telegram.AdminUserID != 42 {
		t.Errorf("Telegram.AdminUserID = %d", cfg.Telegram.AdminUserID)
	}

	// Defaults fill in everything else.
	if cfg.Logger.Level != config.DefaultLogLevel {
		t.Errorf("Logger.Level = %q, want %q", cfg.Logger.Level, config.DefaultLogLevel)
	}
	if cfg.Poll.DefaultStartHour != config.DefaultPollStartHour ||
		cfg.Poll.DefaultEndHour != config.DefaultPollEndHour {
		t.Errorf("poll window = %d-%d, want %d-%d",
			cfg.Poll.DefaultStartHour, cfg.Poll.DefaultEndHour,
			config.DefaultPollStartHour, config.DefaultPollEndHour)
	}
	if cfg.Messages.ActivityPrompt == "" {
		t.Error("Messages.ActivityPrompt is empty")
	}

	task, ok := cfg.Scheduler.Tasks["activity_poll"]
	if !ok || !task.Enabled || task.Schedule != config.DefaultPollSchedule {
		t.Errorf("Scheduler.Tasks[activity_poll] = %+v", task)
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	t.Setenv("BOT_TELEGRAM_TOKEN", "123:abc")
	t.Setenv("BOT_TELEGRAM_ADMIN_ID", "42")

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := strings.Join([]string{
		"logger:",
		"  level: debug",
		"poll:",
		"  default_start_hour: 9",
		"  default_end_hour: 21",
	}, "\n")
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Logger.Level != "debug" {
		t.Errorf("Logger.Level = %q, want debug", cfg.Logger.Level)
	}
	if cfg.Poll.DefaultStartHour != 9 || cfg.Poll.DefaultEndHour != 21 {
		t.Errorf("poll window = %d-%d, want 9-21", cfg.Poll.DefaultStartHour, cfg.Poll.DefaultEndHour)
	}
}

func TestLoadConfig_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing token",
			env:  map[string]string{"BOT_TELEGRAM_ADMIN_ID": "42"},
		},
		{
			name: "missing admin id",
			env:  map[string]string{"BOT_TELEGRAM_TOKEN": "123:abc"},
		},
		{
			name: "bad log level",
			env: map[string]string{
				"BOT_TELEGRAM_TOKEN":    "123:abc",
				"BOT_TELEGRAM_ADMIN_ID": "42",
				"BOT_LOGGER_LEVEL":      "loud",
			},
		},
		{
			name: "inverted poll window",
			env: map[string]string{
				"BOT_TELEGRAM_TOKEN":          "123:abc",
				"BOT_TELEGRAM_ADMIN_ID":       "42",
				"BOT_POLL_DEFAULT_START_HOUR": "22",
				"BOT_POLL_DEFAULT_END_HOUR":   "8",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
				t.Error("LoadConfig() returned nil error for invalid configuration")
			}
		})
	}
}
