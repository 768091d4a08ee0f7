package handler

import (
	tele "gopkg.in/telebot.v3"

	"telegram-betting-bot/internal/ledger"
)

// AccountHandler handles balance and daily-reward commands.
type AccountHandler struct {
	ledger *ledger.Ledger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(l *ledger.Ledger) *AccountHandler {
	return &AccountHandler{ledger: l}
}

// HandleMoney handles the /money command, showing the current balance.
func (h *AccountHandler) HandleMoney(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	return replyMono(c, h.ledger.Money(sender.ID, senderName(sender)))
}

// HandleDaily handles the /daily command. The reward may be claimed once
// per calendar day.
func (h *AccountHandler) HandleDaily(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	granted, msg := h.ledger.DailyReward(sender.ID, senderName(sender))
	if granted {
		return replyMono(c, "✅ "+msg)
	}
	return replyMono(c, "⏰ "+msg)
}

// HandleBets handles the /bets command, listing the sender's live wagers.
func (h *AccountHandler) HandleBets(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	return replyMono(c, h.ledger.ListAccountOpenWagers(sender.ID, senderName(sender)))
}

// HandleHistory handles the /history command, listing settled wagers.
func (h *AccountHandler) HandleHistory(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	return replyMono(c, h.ledger.ListAccountSettledWagers(sender.ID, senderName(sender)))
}
