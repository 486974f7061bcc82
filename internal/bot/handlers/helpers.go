package handlers

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/pulselog/pulselog/internal/localtime"
)

// commandArgs splits a command message into its arguments, dropping the
// command itself.
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	return fields[1:]
}

// sendText sends a plain text reply, logging delivery failures.
func sendText(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send message", "chat_id", chatID, "error", err)
	}
}

// sendHTML sends an HTML-formatted reply with link previews disabled.
func sendHTML(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, text string, markup models.ReplyMarkup) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:             chatID,
		Text:               text,
		ParseMode:          models.ParseModeHTML,
		ReplyMarkup:        markup,
		LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: bot.True()},
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send message", "chat_id", chatID, "error", err)
	}
}

// userLocation resolves the user's timezone from stored settings, falling
// back to UTC when unset or unknown.
func userLocation(ctx context.Context, deps HandlerDeps, userID int64) *time.Location {
	settings, err := deps.Store.GetUserSettings(ctx, userID)
	if err != nil || settings == nil {
		return time.UTC
	}
	return localtime.Location(settings.Timezone.String)
}
