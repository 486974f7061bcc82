// Package config manages application configuration from default values,
// an optional config.yaml file, and BOT_* environment variables.
package config

import (
	"time"

	"github.com/go-telegram/bot/models"
)

// Config is the root application configuration.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Poll      PollConfig      `mapstructure:"poll"`
	Report    ReportConfig    `mapstructure:"report"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LoggerConfig controls log level and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds Telegram connection settings.
type TelegramConfig struct {
	Token              string `mapstructure:"token"    validate:"required"`
	AdminUserID        int64  `mapstructure:"admin_id" validate:"required,gt=0"`
	DropPendingUpdates bool   `mapstructure:"drop_pending_updates"`

	// BotInfo is populated at startup from GetMe, not from the config file.
	BotInfo *models.User `mapstructure:"-"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// SchedulerConfig holds the named scheduled task definitions.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig enables a scheduled task and sets its cron schedule.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// PollConfig controls the activity poll sweep. The default window is used when
// a user's stored window is missing or invalid.
type PollConfig struct {
	DefaultStartHour int           `mapstructure:"default_start_hour" validate:"min=0,max=23,ltfield=DefaultEndHour"`
	DefaultEndHour   int           `mapstructure:"default_end_hour"   validate:"min=0,max=23"`
	SendDelay        time.Duration `mapstructure:"send_delay"         validate:"min=0"`
}

// ReportConfig controls the daily report dispatch sweep.
type ReportConfig struct {
	DefaultHour int           `mapstructure:"default_hour" validate:"min=0,max=23"`
	SendDelay   time.Duration `mapstructure:"send_delay"   validate:"min=0"`
}

// MessagesConfig holds user-visible message templates. All are overridable
// from the config file.
type MessagesConfig struct {
	Welcome           string `mapstructure:"welcome"             validate:"required"`
	TimezonePrompt    string `mapstructure:"timezone_prompt"     validate:"required"`
	ActivityPrompt    string `mapstructure:"activity_prompt"     validate:"required"`
	Unauthorized      string `mapstructure:"unauthorized"        validate:"required"`
	GeneralError      string `mapstructure:"general_error"       validate:"required"`
	SaveFailed        string `mapstructure:"save_failed"         validate:"required"`
	SettingSaveFailed string `mapstructure:"setting_save_failed" validate:"required"`
	KeyboardHidden    string `mapstructure:"keyboard_hidden"     validate:"required"`
	NoRecords         string `mapstructure:"no_records"          validate:"required"`
	ReportCaption     string `mapstructure:"report_caption"      validate:"required"`
}
