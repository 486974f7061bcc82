package handlers

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/pulselog/pulselog/internal/localtime"
	"github.com/pulselog/pulselog/internal/report"
)

// ReportType selects what a report renders: raw descriptions or tag sets.
type ReportType string

const (
	ReportTypeActivity ReportType = "activity"
	ReportTypeTags     ReportType = "tags"
)

// NewReportHandler returns a handler for /report [YYYY-MM-DD] and the report
// button. With a date it shows that day's editable activity list; without
// one it offers a date and report-type selection.
func NewReportHandler(deps HandlerDeps) bot.HandlerFunc {
	return reportHandler{deps}.Handle
}

type reportHandler struct {
	deps HandlerDeps
}

func (h reportHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "report")

	if update.Message == nil || update.Message.From == nil {
		return
	}
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	args := commandArgs(update.Message.Text)
	if len(args) > 0 {
		date := args[0]
		if _, err := time.Parse(localtime.DateLayout, date); err != nil {
			sendText(ctx, b, log, chatID, "Invalid date format. Please use YYYY-MM-DD.")
			return
		}
		log.InfoContext(ctx, "Report requested for specific date", "user_id", userID, "date", date)
		showEditableReport(ctx, b, h.deps, log, userID, chatID, date, 0)
		return
	}

	// Dates on the buttons follow the user's local calendar.
	loc := userLocation(ctx, h.deps, userID)
	today := localtime.DateIn(time.Now(), loc)
	yesterday := localtime.DateIn(time.Now().AddDate(0, 0, -1), loc)

	markup := &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "Today", CallbackData: reportSelectData(ReportTypeActivity, today)},
				{Text: "Yesterday", CallbackData: reportSelectData(ReportTypeActivity, yesterday)},
			},
			{
				{Text: "Tags: Today", CallbackData: reportSelectData(ReportTypeTags, today)},
				{Text: "Tags: Yesterday", CallbackData: reportSelectData(ReportTypeTags, yesterday)},
			},
			{
				{Text: "Cancel", CallbackData: callbackReportSelect + "cancel"},
			},
		},
	}

	log.InfoContext(ctx, "Report requested without date, sending options", "user_id", userID)
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        "🗓️ Select report period:",
		ReplyMarkup: markup,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send report options", "chat_id", chatID, "error", err)
	}
}

func reportSelectData(t ReportType, date string) string {
	return fmt.Sprintf("%s%s:%s", callbackReportSelect, t, date)
}

// showEditableReport lists a day's activities with per-entry edit buttons and
// a download/cancel row. When editMessageID is non-zero the existing inline
// message is edited in place, otherwise a new message is sent.
func showEditableReport(ctx context.Context, b *bot.Bot, deps HandlerDeps, log *slog.Logger,
	userID, chatID int64, date string, editMessageID int,
) {
	loc := userLocation(ctx, deps, userID)
	from, to, err := localtime.DayBoundsUTC(date, loc)
	if err != nil {
		sendText(ctx, b, log, chatID, "Invalid date format. Please use YYYY-MM-DD.")
		return
	}

	activities, err := deps.Store.ActivitiesInRange(ctx, userID, from, to)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load activities", "user_id", userID, "date", date, "error", err)
		sendText(ctx, b, log, chatID, deps.Config.Messages.GeneralError)
		return
	}
	if len(activities) == 0 {
		noData := fmt.Sprintf(deps.Config.Messages.NoRecords, date)
		if editMessageID != 0 {
			editOrSend(ctx, b, log, chatID, editMessageID, noData, nil)
		} else {
			sendText(ctx, b, log, chatID, noData)
		}
		return
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("Activities for %s (Click ✏️ to edit):", date))
	lines = append(lines, strings.Repeat("-", 30))

	var keyboard [][]models.InlineKeyboardButton
	for _, a := range activities {
		short := shortDescription(a.Description)
		lines = append(lines, fmt.Sprintf("%s - %s", localtime.FormatClock(a.RecordedAt, loc), short))
		keyboard = append(keyboard, []models.InlineKeyboardButton{
			{Text: "✏️ " + short, CallbackData: fmt.Sprintf("%s%d", callbackEditActivity, a.ID)},
		})
	}
	keyboard = append(keyboard, []models.InlineKeyboardButton{
		{Text: "⬇️ Download .txt", CallbackData: callbackDownloadReport + date},
		{Text: "Cancel", CallbackData: callbackEditActivity + "cancel"},
	})

	text := strings.Join(lines, "\n")
	markup := &models.InlineKeyboardMarkup{InlineKeyboard: keyboard}

	if editMessageID != 0 {
		editOrSend(ctx, b, log, chatID, editMessageID, text, markup)
		return
	}
	_, err = b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: markup,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send editable report", "chat_id", chatID, "error", err)
	}
}

// sendReportDocument builds the compressed report for one day and delivers it
// as a .txt attachment.
func sendReportDocument(ctx context.Context, b *bot.Bot, deps HandlerDeps, log *slog.Logger,
	userID, chatID int64, date string, reportType ReportType,
) {
	loc := userLocation(ctx, deps, userID)
	from, to, err := localtime.DayBoundsUTC(date, loc)
	if err != nil {
		sendText(ctx, b, log, chatID, "Invalid date format. Please use YYYY-MM-DD.")
		return
	}

	samples, filename, err := collectSamples(ctx, deps, userID, date, from, to, reportType)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load report samples",
			"user_id", userID, "date", date, "type", reportType, "error", err)
		sendText(ctx, b, log, chatID, deps.Config.Messages.GeneralError)
		return
	}

	blocks, err := report.Compress(samples)
	if err != nil {
		sendText(ctx, b, log, chatID, fmt.Sprintf(deps.Config.Messages.NoRecords, date))
		return
	}

	doc := report.BuildDocument(date, blocks, loc)
	_, err = b.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID: chatID,
		Document: &models.InputFileUpload{
			Filename: filename,
			Data:     bytes.NewReader([]byte(doc)),
		},
		Caption: fmt.Sprintf(deps.Config.Messages.ReportCaption, date),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send report document", "chat_id", chatID, "error", err)
		sendText(ctx, b, log, chatID, "😥 Sorry, I couldn't send the report file.")
		return
	}
	log.InfoContext(ctx, "Report document sent", "user_id", userID, "date", date, "type", reportType)
}

// collectSamples loads the day's samples for the requested report type.
func collectSamples(ctx context.Context, deps HandlerDeps, userID int64,
	date string, from, to time.Time, reportType ReportType,
) ([]report.Sample, string, error) {
	switch reportType {
	case ReportTypeTags:
		tagSamples, err := deps.Store.TagSamplesInRange(ctx, userID, from, to)
		if err != nil {
			return nil, "", err
		}
		samples := make([]report.Sample, 0, len(tagSamples))
		for _, ts := range tagSamples {
			value := report.Untagged
			if ts.TagNames != "" {
				value = report.CanonicalTags(strings.Split(ts.TagNames, ","))
			}
			samples = append(samples, report.Sample{At: ts.RecordedAt, Value: value})
		}
		return samples, "tag_report_" + date + ".txt", nil
	default:
		activities, err := deps.Store.ActivitiesInRange(ctx, userID, from, to)
		if err != nil {
			return nil, "", err
		}
		samples := make([]report.Sample, 0, len(activities))
		for _, a := range activities {
			samples = append(samples, report.Sample{At: a.RecordedAt, Value: a.Description})
		}
		return samples, report.Filename(date), nil
	}
}

// editOrSend edits an inline message in place, falling back to a fresh
// message when the original is gone.
func editOrSend(ctx context.Context, b *bot.Bot, log *slog.Logger,
	chatID int64, messageID int, text string, markup models.ReplyMarkup,
) {
	_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ReplyMarkup: markup,
	})
	if err == nil {
		return
	}
	log.WarnContext(ctx, "Failed to edit message, sending new one", "chat_id", chatID, "error", err)
	_, err = b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text, ReplyMarkup: markup})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send fallback message", "chat_id", chatID, "error", err)
	}
}

func shortDescription(desc string) string {
	desc = strings.TrimSpace(desc)
	runes := []rune(desc)
	if len(runes) <= 50 {
		return desc
	}
	return string(runes[:50]) + "..."
}
