package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewAskNowHandler returns a handler for the admin-only /asknow command,
// which runs an immediate activity poll sweep outside the fixed cadence.
func NewAskNowHandler(deps HandlerDeps) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		log := deps.Logger.With("handler", "asknow")

		if update.Message == nil || update.Message.From == nil {
			return
		}
		chatID := update.Message.Chat.ID

		log.InfoContext(ctx, "Manual activity poll triggered", "user_id", update.Message.From.ID)

		if err := deps.Sweeper.Sweep(ctx); err != nil {
			log.ErrorContext(ctx, "Manual poll sweep failed", "error", err)
			sendText(ctx, b, log, chatID, deps.Config.Messages.GeneralError)
			return
		}
		sendText(ctx, b, log, chatID, "Manual activity poll completed.")
	}
}
