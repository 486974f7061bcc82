package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// LoadConfig loads and validates configuration from, in order of precedence:
// BOT_* environment variables, the config file at path (optional), and
// built-in defaults.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults plus env vars may be enough.
		if !os.IsNotExist(err) {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if len(cfg.Scheduler.Tasks) == 0 {
		cfg.Scheduler.Tasks = DefaultTasks
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", DefaultLogJSON)

	// Required settings still need a registered key so environment variables
	// are picked up by Unmarshal.
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.admin_id", 0)
	v.SetDefault("telegram.drop_pending_updates", true)

	v.SetDefault("database.path", DefaultDBPath)

	v.SetDefault("poll.default_start_hour", DefaultPollStartHour)
	v.SetDefault("poll.default_end_hour", DefaultPollEndHour)
	v.SetDefault("poll.send_delay", DefaultPollSendDelay)

	v.SetDefault("report.default_hour", DefaultReportHour)
	v.SetDefault("report.send_delay", DefaultReportSendDelay)

	v.SetDefault("messages.welcome", DefaultMessages.Welcome)
	v.SetDefault("messages.timezone_prompt", DefaultMessages.TimezonePrompt)
	v.SetDefault("messages.activity_prompt", DefaultMessages.ActivityPrompt)
	v.SetDefault("messages.unauthorized", DefaultMessages.Unauthorized)
	v.SetDefault("messages.general_error", DefaultMessages.GeneralError)
	v.SetDefault("messages.save_failed", DefaultMessages.SaveFailed)
	v.SetDefault("messages.setting_save_failed", DefaultMessages.SettingSaveFailed)
	v.SetDefault("messages.keyboard_hidden", DefaultMessages.KeyboardHidden)
	v.SetDefault("messages.no_records", DefaultMessages.NoRecords)
	v.SetDefault("messages.report_caption", DefaultMessages.ReportCaption)
}
