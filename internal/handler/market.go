package handler

import (
	tele "gopkg.in/telebot.v3"

	"telegram-betting-bot/internal/ledger"
)

// MarketHandler handles the read-only market and leaderboard commands.
type MarketHandler struct {
	ledger *ledger.Ledger
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(l *ledger.Ledger) *MarketHandler {
	return &MarketHandler{ledger: l}
}

// HandleOngoing handles the /ongoing command, listing unresolved markets.
func (h *MarketHandler) HandleOngoing(c tele.Context) error {
	return replyMono(c, h.ledger.ListOpenMarkets())
}

// HandlePast handles the /past command, listing resolved markets.
func (h *MarketHandler) HandlePast(c tele.Context) error {
	return replyMono(c, h.ledger.ListPastMarkets())
}

// HandleLeaderboard handles the /leaderboard command, ranking everyone by
// balance plus escrowed stakes.
func (h *MarketHandler) HandleLeaderboard(c tele.Context) error {
	return replyMono(c, h.ledger.MoneyLeaderboard())
}

// HandlePnL handles the /pnl command, ranking everyone by settled
// profit/loss.
func (h *MarketHandler) HandlePnL(c tele.Context) error {
	return replyMono(c, h.ledger.PnLLeaderboard())
}
