package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Inline callback data prefixes.
const (
	callbackReportSelect   = "report_select:"
	callbackEditActivity   = "edit_activity:"
	callbackDownloadReport = "download_report:"
)

// callbackContext extracts the pieces every callback handler needs. The
// originating message can be inaccessible (too old); chat id falls back to
// the sender, which equals the chat in private conversations.
func callbackContext(update *models.Update) (userID, chatID int64, messageID int, ok bool) {
	if update.CallbackQuery == nil {
		return 0, 0, 0, false
	}
	query := update.CallbackQuery
	userID = query.From.ID
	chatID = userID
	if query.Message.Message != nil {
		chatID = query.Message.Message.Chat.ID
		messageID = query.Message.Message.ID
	}
	return userID, chatID, messageID, true
}

func answerCallback(ctx context.Context, b *bot.Bot, query *models.CallbackQuery, text string) {
	_, _ = b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: query.ID,
		Text:            text,
	})
}

// NewReportSelectCallback handles "report_select:<type>:<date>" and
// "report_select:cancel" presses from the date selection keyboard.
func NewReportSelectCallback(deps HandlerDeps) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		log := deps.Logger.With("handler", "report_select_callback")

		userID, chatID, messageID, ok := callbackContext(update)
		if !ok {
			return
		}
		query := update.CallbackQuery
		answerCallback(ctx, b, query, "")

		payload := strings.TrimPrefix(query.Data, callbackReportSelect)
		if payload == "cancel" {
			log.InfoContext(ctx, "Report selection cancelled", "user_id", userID)
			editOrSend(ctx, b, log, chatID, messageID, "OK, report selection cancelled.", nil)
			return
		}

		parts := strings.SplitN(payload, ":", 2)
		if len(parts) != 2 {
			log.ErrorContext(ctx, "Malformed report_select callback", "data", query.Data)
			sendText(ctx, b, log, chatID, deps.Config.Messages.GeneralError)
			return
		}
		reportType, date := ReportType(parts[0]), parts[1]
		log.InfoContext(ctx, "Report period selected",
			"user_id", userID, "type", reportType, "date", date)

		switch reportType {
		case ReportTypeActivity:
			showEditableReport(ctx, b, deps, log, userID, chatID, date, messageID)
		case ReportTypeTags:
			editOrSend(ctx, b, log, chatID, messageID, "Preparing tag report for "+date+"...", nil)
			sendReportDocument(ctx, b, deps, log, userID, chatID, date, ReportTypeTags)
		default:
			log.ErrorContext(ctx, "Unknown report type in callback", "data", query.Data)
			sendText(ctx, b, log, chatID, deps.Config.Messages.GeneralError)
		}
	}
}

// NewEditActivityCallback handles "edit_activity:<id>" presses: it arms the
// edit conversation so the user's next free-text message replaces that
// activity's description. "edit_activity:cancel" closes the list.
func NewEditActivityCallback(deps HandlerDeps) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		log := deps.Logger.With("handler", "edit_activity_callback")

		userID, chatID, messageID, ok := callbackContext(update)
		if !ok {
			return
		}
		query := update.CallbackQuery
		answerCallback(ctx, b, query, "")

		payload := strings.TrimPrefix(query.Data, callbackEditActivity)
		if payload == "cancel" {
			log.InfoContext(ctx, "Activity list closed", "user_id", userID)
			editOrSend(ctx, b, log, chatID, messageID, "OK, activity list closed.", nil)
			return
		}

		activityID, err := strconv.ParseInt(payload, 10, 64)
		if err != nil {
			log.ErrorContext(ctx, "Cannot parse activity id from callback", "data", query.Data)
			editOrSend(ctx, b, log, chatID, messageID, "Error: invalid edit request.", nil)
			return
		}

		deps.Sessions.BeginEdit(userID, activityID)
		log.InfoContext(ctx, "Edit armed", "user_id", userID, "activity_id", activityID)
		editOrSend(ctx, b, log, chatID, messageID,
			"Okay, please send the new description for this activity:", nil)
	}
}

// NewDownloadReportCallback handles "download_report:<date>" presses by
// sending the compressed day report as a document.
func NewDownloadReportCallback(deps HandlerDeps) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		log := deps.Logger.With("handler", "download_report_callback")

		userID, chatID, _, ok := callbackContext(update)
		if !ok {
			return
		}
		query := update.CallbackQuery
		answerCallback(ctx, b, query, "Preparing your report file...")

		date := strings.TrimPrefix(query.Data, callbackDownloadReport)
		log.InfoContext(ctx, "Report download requested", "user_id", userID, "date", date)
		sendReportDocument(ctx, b, deps, log, userID, chatID, date, ReportTypeActivity)
	}
}
