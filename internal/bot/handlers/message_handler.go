package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/pulselog/pulselog/internal/tracker"
)

// NewMessageHandler returns the default handler for free-text messages. The
// tracker decides what the text means: an activity reply, an edited
// description, or unexpected input that is quietly ignored.
func NewMessageHandler(deps HandlerDeps) bot.HandlerFunc {
	return messageHandler{deps}.Handle
}

type messageHandler struct {
	deps HandlerDeps
}

func (h messageHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "message")

	if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
		return
	}
	// Unrecognized commands fall through to the default handler; they are
	// not activity text.
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	result := h.deps.Tracker.HandleReply(ctx, userID, update.Message.Text)

	switch result.Kind {
	case tracker.KindEditApplied:
		if result.EditOK {
			sendText(ctx, b, log, chatID, "✅ Activity updated!")
		} else {
			sendText(ctx, b, log, chatID, "😕 Failed to update activity. Not found?")
		}

	case tracker.KindRecorded:
		if !result.Saved {
			sendText(ctx, b, log, chatID, h.deps.Config.Messages.SaveFailed)
			return
		}
		sendText(ctx, b, log, chatID, confirmation(result))

	case tracker.KindIgnored:
		// Nothing was pending; already logged by the tracker.
	}
}

// confirmation builds the reply for a recorded activity, listing linked and
// ignored tags separately.
func confirmation(result tracker.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ Got it! Logged: %q.", result.Description)
	if len(result.LinkedTags) > 0 {
		fmt.Fprintf(&sb, "\n🏷 Tags: %s", strings.Join(result.LinkedTags, ", "))
	}
	if len(result.IgnoredTags) > 0 {
		fmt.Fprintf(&sb, "\n🤷 Ignored (not registered): %s", strings.Join(result.IgnoredTags, ", "))
	}
	return sb.String()
}
