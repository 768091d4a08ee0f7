package handler

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v3"

	"telegram-betting-bot/internal/ledger"
)

// BettingHandler handles wager placement and cancellation.
type BettingHandler struct {
	ledger *ledger.Ledger
}

// NewBettingHandler creates a new BettingHandler.
func NewBettingHandler(l *ledger.Ledger) *BettingHandler {
	return &BettingHandler{ledger: l}
}

// HandleBet handles the /bet command.
// Format: /bet <marketId> <side> <amount>
func (h *BettingHandler) HandleBet(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	args := c.Args()
	if len(args) != 3 {
		return c.Reply("Usage: /bet <marketId> <yes/no> <amount>\ne.g. /bet 1 y 100")
	}

	marketID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return c.Reply(fmt.Sprintf("❌ invalid market id %q", args[0]))
	}
	amount, err := decimal.NewFromString(args[2])
	if err != nil {
		return c.Reply(fmt.Sprintf("❌ invalid amount %q", args[2]))
	}

	msg, err := h.ledger.PlaceWager(marketID, sender.ID, senderName(sender), args[1], amount)
	if err != nil {
		return replyError(c, err)
	}

	log.Info().
		Int64("user_id", sender.ID).
		Int64("market_id", marketID).
		Str("side", args[1]).
		Str("amount", amount.String()).
		Msg("Wager placed")

	return replyMono(c, msg)
}

// HandleCancel handles the /cancel command, refunding all of the sender's
// wagers on one unresolved market.
// Format: /cancel <marketId>
func (h *BettingHandler) HandleCancel(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	args := c.Args()
	if len(args) != 1 {
		return c.Reply("Usage: /cancel <marketId>")
	}

	marketID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return c.Reply(fmt.Sprintf("❌ invalid market id %q", args[0]))
	}

	msg, err := h.ledger.CancelWager(sender.ID, marketID)
	if err != nil {
		return replyError(c, err)
	}

	log.Info().
		Int64("user_id", sender.ID).
		Int64("market_id", marketID).
		Msg("Wagers cancelled")

	return replyMono(c, msg)
}
