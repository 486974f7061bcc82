package telegram

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Messenger delivers outbound messages and documents to users. It is the
// sending half of the transport, used by scheduled tasks that have no
// inbound update to reply to. In private chats the chat id equals the user
// id.
type Messenger struct {
	bot    *bot.Bot
	logger *slog.Logger
}

// NewMessenger creates a Messenger over a connected bot instance.
func NewMessenger(b *bot.Bot, logger *slog.Logger) *Messenger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Messenger{
		bot:    b,
		logger: logger.With("component", "messenger"),
	}
}

// SendText sends a plain text message to the user.
func (m *Messenger) SendText(ctx context.Context, userID int64, text string) error {
	_, err := m.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: userID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("failed to send message to user %d: %w", userID, err)
	}
	return nil
}

// SendDocument sends a file attachment with a caption to the user.
func (m *Messenger) SendDocument(ctx context.Context, userID int64, filename, caption string, content []byte) error {
	_, err := m.bot.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID: userID,
		Document: &models.InputFileUpload{
			Filename: filename,
			Data:     bytes.NewReader(content),
		},
		Caption: caption,
	})
	if err != nil {
		return fmt.Errorf("failed to send document to user %d: %w", userID, err)
	}
	m.logger.DebugContext(ctx, "Document sent", "user_id", userID, "filename", filename)
	return nil
}
