package handlers

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewSetTimezoneHandler returns a handler for /set_timezone <IANA name>.
// The name is validated against the timezone database before anything is
// persisted.
func NewSetTimezoneHandler(deps HandlerDeps) bot.HandlerFunc {
	usage := "Please provide your timezone name (e.g., Europe/London).\n" +
		"Example: <code>/set_timezone Europe/London</code>\n\n" +
		"<a href=\"" + tzListURL + "\">List of timezone names</a>"

	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		log := deps.Logger.With("handler", "set_timezone")

		if update.Message == nil || update.Message.From == nil {
			return
		}
		userID := update.Message.From.ID
		chatID := update.Message.Chat.ID

		args := commandArgs(update.Message.Text)
		if len(args) != 1 {
			sendHTML(ctx, b, log, chatID, usage, nil)
			return
		}

		name := args[0]
		if _, err := time.LoadLocation(name); err != nil {
			log.WarnContext(ctx, "Rejected unknown timezone", "user_id", userID, "timezone", name)
			sendHTML(ctx, b, log, chatID, fmt.Sprintf("Unknown timezone: %q.\n\n%s", name, usage), nil)
			return
		}

		updated, err := deps.Store.UpdateUserTimezone(ctx, userID, name)
		if err != nil || !updated {
			log.ErrorContext(ctx, "Failed to persist timezone", "user_id", userID, "error", err)
			sendText(ctx, b, log, chatID, deps.Config.Messages.SettingSaveFailed)
			return
		}

		log.InfoContext(ctx, "Timezone updated", "user_id", userID, "timezone", name)
		sendText(ctx, b, log, chatID, "👍 Timezone set to: "+name)
	}
}

// NewSetPollWindowHandler returns a handler for /set_poll_window <start>
// <end>. Hours must be 0-23 with start strictly before end; invalid input is
// rejected before any store write.
func NewSetPollWindowHandler(deps HandlerDeps) bot.HandlerFunc {
	usage := "Provide start & end hours (0-23) for activity polling.\n" +
		"Example: <code>/set_poll_window 9 18</code> (polls 9:00 AM - 6:59 PM)"

	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		log := deps.Logger.With("handler", "set_poll_window")

		if update.Message == nil || update.Message.From == nil {
			return
		}
		userID := update.Message.From.ID
		chatID := update.Message.Chat.ID

		args := commandArgs(update.Message.Text)
		if len(args) != 2 {
			sendHTML(ctx, b, log, chatID, usage, nil)
			return
		}

		startHour, err1 := strconv.Atoi(args[0])
		endHour, err2 := strconv.Atoi(args[1])
		switch {
		case err1 != nil || err2 != nil,
			startHour < 0 || startHour > 23 || endHour < 0 || endHour > 23:
			sendHTML(ctx, b, log, chatID, "Invalid input: hours must be between 0 and 23.\n\n"+usage, nil)
			return
		case startHour >= endHour:
			sendHTML(ctx, b, log, chatID, "Invalid input: start hour must be less than end hour.\n\n"+usage, nil)
			return
		}

		updated, err := deps.Store.UpdateUserPollWindow(ctx, userID, startHour, endHour)
		if err != nil || !updated {
			log.ErrorContext(ctx, "Failed to persist poll window", "user_id", userID, "error", err)
			sendText(ctx, b, log, chatID, deps.Config.Messages.SettingSaveFailed)
			return
		}

		log.InfoContext(ctx, "Poll window updated", "user_id", userID, "start", startHour, "end", endHour)
		sendText(ctx, b, log, chatID,
			fmt.Sprintf("✅ Poll window set: %02d:00 - %02d:59.", startHour, endHour))
	}
}

// NewSetReportTimeHandler returns a handler for /set_report_time <hour>.
func NewSetReportTimeHandler(deps HandlerDeps) bot.HandlerFunc {
	usage := "Provide the hour (0-23) for daily report delivery.\n" +
		"Example: <code>/set_report_time 8</code> (for 8 AM local time)"

	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		log := deps.Logger.With("handler", "set_report_time")

		if update.Message == nil || update.Message.From == nil {
			return
		}
		userID := update.Message.From.ID
		chatID := update.Message.Chat.ID

		args := commandArgs(update.Message.Text)
		if len(args) != 1 {
			sendHTML(ctx, b, log, chatID, usage, nil)
			return
		}

		hour, err := strconv.Atoi(args[0])
		if err != nil || hour < 0 || hour > 23 {
			sendHTML(ctx, b, log, chatID, "Invalid input: hour must be between 0 and 23.\n\n"+usage, nil)
			return
		}

		updated, err := deps.Store.UpdateUserReportHour(ctx, userID, hour)
		if err != nil || !updated {
			log.ErrorContext(ctx, "Failed to persist report hour", "user_id", userID, "error", err)
			sendText(ctx, b, log, chatID, deps.Config.Messages.SettingSaveFailed)
			return
		}

		log.InfoContext(ctx, "Report hour updated", "user_id", userID, "hour", hour)
		sendText(ctx, b, log, chatID,
			fmt.Sprintf("✅ Daily report will be sent around %02d:00 local time.", hour))
	}
}

// NewTimezoneButtonHandler shows the current timezone and how to change it.
func NewTimezoneButtonHandler(deps HandlerDeps) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		log := deps.Logger.With("handler", "timezone_button")

		if update.Message == nil || update.Message.From == nil {
			return
		}
		userID := update.Message.From.ID

		current := "Your timezone is not set yet.\n\n"
		if settings, err := deps.Store.GetUserSettings(ctx, userID); err == nil &&
			settings != nil && settings.Timezone.Valid && settings.Timezone.String != "" {
			current = fmt.Sprintf("Your currently set timezone is: <code>%s</code>\n\n", settings.Timezone.String)
		}

		text := current +
			"To set or change it, use the command followed by the timezone name.\n" +
			"Example: <code>/set_timezone Europe/London</code>\n\n" +
			"Find standard names (IANA format) <a href=\"" + tzListURL + "\">here</a>."
		sendHTML(ctx, b, log, update.Message.Chat.ID, text, nil)
	}
}

// NewPollWindowButtonHandler shows the current poll window and how to change
// it.
func NewPollWindowButtonHandler(deps HandlerDeps) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		log := deps.Logger.With("handler", "poll_window_button")

		if update.Message == nil || update.Message.From == nil {
			return
		}
		userID := update.Message.From.ID

		startHour := deps.Config.Poll.DefaultStartHour
		endHour := deps.Config.Poll.DefaultEndHour
		if settings, err := deps.Store.GetUserSettings(ctx, userID); err == nil && settings != nil {
			startHour, endHour = settings.PollStartHour, settings.PollEndHour
		}

		text := fmt.Sprintf(
			"Your current polling window is set from <code>%02d:00</code> to <code>%02d:59</code> local time.\n\n"+
				"To change it, use the command followed by start and end hours (0-23).\n"+
				"Example: <code>/set_poll_window 9 18</code>", startHour, endHour)
		sendHTML(ctx, b, log, update.Message.Chat.ID, text, nil)
	}
}

// NewReportTimeButtonHandler shows the current report hour and how to change
// it.
func NewReportTimeButtonHandler(deps HandlerDeps) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		log := deps.Logger.With("handler", "report_time_button")

		if update.Message == nil || update.Message.From == nil {
			return
		}
		userID := update.Message.From.ID

		hour := deps.Config.Report.DefaultHour
		if settings, err := deps.Store.GetUserSettings(ctx, userID); err == nil && settings != nil {
			hour = settings.ReportHour
		}

		text := fmt.Sprintf(
			"Your daily report is currently scheduled around <code>%02d:00</code> local time.\n\n"+
				"To change it, use the command followed by the desired hour (0-23).\n"+
				"Example: <code>/set_report_time 7</code> (for 7 AM)", hour)
		sendHTML(ctx, b, log, update.Message.Chat.ID, text, nil)
	}
}
