package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// RegisteredHandler represents a handler with its pattern and middleware.
// It encapsulates all information needed to register a command, button, or
// callback handler.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

// RegisterAllCommands initializes and returns a map of all bot handlers:
// slash commands, reply keyboard buttons, and inline callback prefixes.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	command := func(pattern string, h tgbot.HandlerFunc, mw ...tgbot.Middleware) {
		handlers["/"+pattern] = RegisteredHandler{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     pattern,
			Handler:     h,
			MatchType:   tgbot.MatchTypeCommandStartOnly,
			Middleware:  mw,
		}
	}
	button := func(label string, h tgbot.HandlerFunc) {
		handlers["button:"+label] = RegisteredHandler{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     label,
			Handler:     h,
			MatchType:   tgbot.MatchTypeExact,
		}
	}
	callback := func(prefix string, h tgbot.HandlerFunc) {
		handlers["callback:"+prefix] = RegisteredHandler{
			HandlerType: tgbot.HandlerTypeCallbackQueryData,
			Pattern:     prefix,
			Handler:     h,
			MatchType:   tgbot.MatchTypePrefix,
		}
	}

	command("start", NewStartHandler(deps))
	command("help", NewHelpHandler(deps))
	command("report", NewReportHandler(deps))
	command("hide_keyboard", NewHideKeyboardHandler(deps))
	command("set_timezone", NewSetTimezoneHandler(deps))
	command("set_poll_window", NewSetPollWindowHandler(deps))
	command("set_report_time", NewSetReportTimeHandler(deps))
	command("newtag", NewCreateTagHandler(deps))
	command("deltag", NewDeleteTagHandler(deps))
	command("tags", NewListTagsHandler(deps))
	command("asknow", NewAskNowHandler(deps), AdminOnly(deps))

	button(ButtonReport, NewReportHandler(deps))
	button(ButtonHelp, NewHelpHandler(deps))
	button(ButtonHideKeyboard, NewHideKeyboardHandler(deps))
	button(ButtonSetTimezone, NewTimezoneButtonHandler(deps))
	button(ButtonSetPollWindow, NewPollWindowButtonHandler(deps))
	button(ButtonSetReportTime, NewReportTimeButtonHandler(deps))

	callback(callbackReportSelect, NewReportSelectCallback(deps))
	callback(callbackEditActivity, NewEditActivityCallback(deps))
	callback(callbackDownloadReport, NewDownloadReportCallback(deps))

	return handlers
}
