package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const tzListURL = "https://en.wikipedia.org/wiki/List_of_tz_database_time_zones"

// NewHelpHandler returns a handler for the /help command and the help button.
func NewHelpHandler(deps HandlerDeps) bot.HandlerFunc {
	return helpHandler{deps}.Handle
}

type helpHandler struct {
	deps HandlerDeps
}

func (h helpHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "help")

	if update.Message == nil || update.Message.From == nil {
		return
	}
	log.InfoContext(ctx, "Handling /help command", "user_id", update.Message.From.ID)

	text := "Here's a summary:\n\n" +
		"➡️ I'll ask \"What are you doing?\". Just reply — add <code>#tags</code> to categorize.\n" +
		"➡️ Use the menu buttons or type commands:\n\n" +
		"<b>Commands:</b>\n" +
		"<code>/report [YYYY-MM-DD]</code> - Get activity report.\n" +
		"<code>/set_timezone &lt;IANA_Name&gt;</code> - Set your timezone " +
		"(names listed <a href=\"" + tzListURL + "\">here</a>).\n" +
		"<code>/set_poll_window &lt;start&gt; &lt;end&gt;</code> - Set polling hours (0-23).\n" +
		"<code>/set_report_time &lt;hour&gt;</code> - Set daily report hour (0-23).\n" +
		"<code>/newtag &lt;name&gt;</code> - Register a tag for #tagging activities.\n" +
		"<code>/deltag &lt;name&gt;</code> - Delete a registered tag.\n" +
		"<code>/tags</code> - List your registered tags.\n" +
		"<code>/help</code> - Show this summary.\n" +
		"<code>/hide_keyboard</code> - Hide menu buttons.\n"

	sendHTML(ctx, b, log, update.Message.Chat.ID, text, mainKeyboard())
}

// NewHideKeyboardHandler returns a handler for /hide_keyboard and the hide
// button.
func NewHideKeyboardHandler(deps HandlerDeps) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		log := deps.Logger.With("handler", "hide_keyboard")

		if update.Message == nil || update.Message.From == nil {
			return
		}
		log.InfoContext(ctx, "Hiding reply keyboard", "user_id", update.Message.From.ID)

		_, err := b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      update.Message.Chat.ID,
			Text:        deps.Config.Messages.KeyboardHidden,
			ReplyMarkup: &models.ReplyKeyboardRemove{RemoveKeyboard: true},
		})
		if err != nil {
			log.ErrorContext(ctx, "Failed to send message", "error", err)
		}
	}
}
