package handlers

import "github.com/go-telegram/bot/models"

// Reply keyboard button labels. Exact-match message handlers are registered
// on these strings, so they must stay in sync with the keyboard below.
const (
	ButtonReport        = "📊 Activity Report"
	ButtonSetTimezone   = "🌐 Set Timezone"
	ButtonSetPollWindow = "⏰ Set Poll Window"
	ButtonSetReportTime = "🗓️ Set Report Time"
	ButtonHelp          = "❓ Help / Show Menu"
	ButtonHideKeyboard  = "⌨️ Hide Keyboard"
)

// mainKeyboard builds the persistent reply keyboard shown by /start and /help.
func mainKeyboard() *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{
			{{Text: ButtonReport}},
			{{Text: ButtonSetTimezone}, {Text: ButtonSetPollWindow}},
			{{Text: ButtonSetReportTime}, {Text: ButtonHelp}},
			{{Text: ButtonHideKeyboard}},
		},
		ResizeKeyboard:        true,
		OneTimeKeyboard:       false,
		InputFieldPlaceholder: "Use menu or reply to questions...",
	}
}
