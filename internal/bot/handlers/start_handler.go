package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewStartHandler returns a handler for the /start command. It registers the
// user with default settings, resets any pending conversation, and shows the
// main keyboard. Users without a timezone are prompted to set one.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return startHandler{deps}.Handle
}

type startHandler struct {
	deps HandlerDeps
}

func (h startHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Start handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	user := update.Message.From
	chatID := update.Message.Chat.ID

	log.InfoContext(ctx, "Handling /start command", "chat_id", chatID, "user_id", user.ID)

	if err := h.deps.Store.EnsureUser(ctx, user.ID, user.Username, user.FirstName); err != nil {
		log.ErrorContext(ctx, "Failed to register user", "user_id", user.ID, "error", err)
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.GeneralError)
		return
	}

	// A fresh /start always resets the conversation slot.
	h.deps.Sessions.Reset(user.ID)

	welcome := fmt.Sprintf(h.deps.Config.Messages.Welcome, user.FirstName)
	sendHTML(ctx, b, log, chatID, welcome, mainKeyboard())

	settings, err := h.deps.Store.GetUserSettings(ctx, user.ID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load settings after registration", "user_id", user.ID, "error", err)
		return
	}
	if settings == nil || !settings.Timezone.Valid || settings.Timezone.String == "" {
		log.InfoContext(ctx, "User has no timezone set, prompting", "user_id", user.ID)
		sendHTML(ctx, b, log, chatID, h.deps.Config.Messages.TimezonePrompt, nil)
	}
}
