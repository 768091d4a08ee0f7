// Package handler provides Telegram bot command handlers. Handlers parse
// command arguments, call into the ledger and render its replies; all
// betting semantics live in the ledger package.
package handler

import (
	"errors"

	tele "gopkg.in/telebot.v3"

	"telegram-betting-bot/internal/ledger"
)

// senderName picks the display name passed to the ledger, preferring the
// username over the first name.
func senderName(sender *tele.User) string {
	if sender == nil {
		return ""
	}
	if sender.Username != "" {
		return sender.Username
	}
	return sender.FirstName
}

// replyMono wraps ledger reports in a code block so table-style output
// keeps its alignment in chat.
func replyMono(c tele.Context, text string) error {
	return c.Reply("```\n"+text+"\n```", &tele.SendOptions{ParseMode: tele.ModeMarkdown})
}

// replyError renders a ledger error with a prefix per error category.
func replyError(c tele.Context, err error) error {
	prefix := "❌ "
	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds):
		prefix = "💸 "
	case errors.Is(err, ledger.ErrNotFound):
		prefix = "🤷 "
	case errors.Is(err, ledger.ErrStateConflict):
		prefix = "🔒 "
	}
	return c.Reply(prefix + err.Error())
}
