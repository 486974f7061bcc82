package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/pulselog/pulselog/internal/tracker"
)

// NewCreateTagHandler returns a handler for /newtag <name>... Hashtags in
// activity replies only link to registered tags, so this is how a tag comes
// into existence.
func NewCreateTagHandler(deps HandlerDeps) bot.HandlerFunc {
	usage := "Provide one or more tag names (letters, digits, underscores).\n" +
		"Example: <code>/newtag focus deepwork</code>"

	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		log := deps.Logger.With("handler", "newtag")

		if update.Message == nil || update.Message.From == nil {
			return
		}
		userID := update.Message.From.ID
		chatID := update.Message.Chat.ID

		args := commandArgs(update.Message.Text)
		if len(args) == 0 {
			sendHTML(ctx, b, log, chatID, usage, nil)
			return
		}

		var created, existing, invalid []string
		for _, name := range args {
			name = strings.TrimPrefix(name, "#")
			if !tracker.ValidTagName(name) {
				invalid = append(invalid, name)
				continue
			}
			if _, found, err := deps.Store.FindTagID(ctx, userID, name); err != nil {
				log.ErrorContext(ctx, "Failed to look up tag", "user_id", userID, "tag", name, "error", err)
				sendText(ctx, b, log, chatID, deps.Config.Messages.SettingSaveFailed)
				return
			} else if found {
				existing = append(existing, name)
				continue
			}
			if _, err := deps.Store.CreateTag(ctx, userID, name); err != nil {
				log.ErrorContext(ctx, "Failed to create tag", "user_id", userID, "tag", name, "error", err)
				sendText(ctx, b, log, chatID, deps.Config.Messages.SettingSaveFailed)
				return
			}
			created = append(created, name)
		}

		var lines []string
		if len(created) > 0 {
			lines = append(lines, "✅ Registered: "+strings.Join(created, ", "))
		}
		if len(existing) > 0 {
			lines = append(lines, "ℹ️ Already registered: "+strings.Join(existing, ", "))
		}
		if len(invalid) > 0 {
			lines = append(lines, "🚫 Invalid names: "+strings.Join(invalid, ", "))
		}
		sendText(ctx, b, log, chatID, strings.Join(lines, "\n"))
	}
}

// NewDeleteTagHandler returns a handler for /deltag <name>. Deleting a tag
// removes its links to activities; the activities themselves stay.
func NewDeleteTagHandler(deps HandlerDeps) bot.HandlerFunc {
	usage := "Provide the tag name to delete.\nExample: <code>/deltag focus</code>"

	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		log := deps.Logger.With("handler", "deltag")

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

		name := strings.TrimPrefix(args[0], "#")
		deleted, err := deps.Store.DeleteTag(ctx, userID, name)
		if err != nil {
			log.ErrorContext(ctx, "Failed to delete tag", "user_id", userID, "tag", name, "error", err)
			sendText(ctx, b, log, chatID, deps.Config.Messages.SettingSaveFailed)
			return
		}
		if !deleted {
			sendText(ctx, b, log, chatID, fmt.Sprintf("🤷 No tag named %q.", name))
			return
		}

		log.InfoContext(ctx, "Tag deleted", "user_id", userID, "tag", name)
		sendText(ctx, b, log, chatID, fmt.Sprintf("🗑 Tag %q deleted.", name))
	}
}

// NewListTagsHandler returns a handler for /tags.
func NewListTagsHandler(deps HandlerDeps) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		log := deps.Logger.With("handler", "tags")

		if update.Message == nil || update.Message.From == nil {
			return
		}
		userID := update.Message.From.ID
		chatID := update.Message.Chat.ID

		tags, err := deps.Store.ListTags(ctx, userID)
		if err != nil {
			log.ErrorContext(ctx, "Failed to list tags", "user_id", userID, "error", err)
			sendText(ctx, b, log, chatID, deps.Config.Messages.GeneralError)
			return
		}
		if len(tags) == 0 {
			sendHTML(ctx, b, log, chatID,
				"You have no registered tags yet. Create one with <code>/newtag name</code>.", nil)
			return
		}

		names := make([]string, 0, len(tags))
		for _, tag := range tags {
			names = append(names, "#"+tag.Name)
		}
		sendText(ctx, b, log, chatID, "🏷 Your tags: "+strings.Join(names, ", "))
	}
}
