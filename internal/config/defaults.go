package config

import "time"

// Default values for optional configuration parameters.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false

	DefaultDBPath = "./storage.db"

	// Activity prompts go out on the half hour; the report check runs hourly
	// at five past so clock skew around the hour boundary cannot miss it.
	DefaultPollSchedule        = "0,30 * * * *"
	DefaultReportSchedule      = "5 * * * *"
	DefaultMaintenanceSchedule = "0 3 * * 6"

	DefaultPollStartHour = 8
	DefaultPollEndHour   = 22
	DefaultPollSendDelay = 100 * time.Millisecond

	DefaultReportHour      = 8
	DefaultReportSendDelay = 300 * time.Millisecond
)

// DefaultMessages are the stock user-visible strings.
var DefaultMessages = MessagesConfig{
	Welcome: "Hello, %s! 👋 I'm your personal time and activity tracker.\n\n" +
		"I'll check in periodically to ask what you're up to. Just reply!\n\n" +
		"Use the menu below or type /help for commands.",
	TimezonePrompt: "⚠️ <b>Action needed: set your timezone!</b>\n\n" +
		"This helps me send prompts and reports at the correct local time.\n\n" +
		"Use: <code>/set_timezone Your/Timezone</code>\n" +
		"(e.g., <code>/set_timezone Europe/London</code>)\n\n" +
		"Find the name of your timezone <a href=\"https://en.wikipedia.org/wiki/List_of_tz_database_time_zones\">here</a>.",
	ActivityPrompt:    "🤔 What are you doing right now?",
	Unauthorized:      "🚫 Access denied. Please contact the administrator.",
	GeneralError:      "❌ An error occurred. Please try again later.",
	SaveFailed:        "😥 Sorry, error saving activity.",
	SettingSaveFailed: "😥 Failed to save setting.",
	KeyboardHidden:    "OK, custom keyboard hidden. Use /start or /help to bring it back.",
	NoRecords:         "I couldn't find any activity records for %s.",
	ReportCaption:     "Here's your activity report for %s.",
}

// DefaultTasks enables the three stock scheduled tasks.
var DefaultTasks = map[string]TaskConfig{
	"activity_poll":   {Enabled: true, Schedule: DefaultPollSchedule},
	"daily_report":    {Enabled: true, Schedule: DefaultReportSchedule},
	"sql_maintenance": {Enabled: true, Schedule: DefaultMaintenanceSchedule},
}
