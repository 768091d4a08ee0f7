package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v3"

	"telegram-betting-bot/internal/ledger"
	"telegram-betting-bot/internal/snapshot"
)

// AdminHandler handles the admin-gated market lifecycle commands. The
// caller's privilege has already been established by the admin middleware.
type AdminHandler struct {
	ledger      *ledger.Ledger
	store       snapshot.Store
	defaultOdds decimal.Decimal
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(l *ledger.Ledger, store snapshot.Store, defaultOdds decimal.Decimal) *AdminHandler {
	return &AdminHandler{
		ledger:      l,
		store:       store,
		defaultOdds: defaultOdds,
	}
}

// HandleEvent handles the /event command, opening a new market.
// Format: /event [odds] <description>
// Odds default to the configured value when the first argument is not a number.
func (h *AdminHandler) HandleEvent(c tele.Context) error {
	args := c.Args()
	if len(args) == 0 {
		return c.Reply("Usage: /event [odds] <description>\ne.g. /event 2.00 Oslo gets a penta this game")
	}

	odds := h.defaultOdds
	description := strings.Join(args, " ")
	if parsed, err := decimal.NewFromString(args[0]); err == nil && len(args) > 1 {
		odds = parsed
		description = strings.Join(args[1:], " ")
	}

	id, msg, err := h.ledger.CreateMarket(description, odds)
	if err != nil {
		return replyError(c, err)
	}

	log.Info().
		Int64("admin_id", c.Sender().ID).
		Int64("market_id", id).
		Str("odds", odds.String()).
		Msg("Market created")

	return replyMono(c, msg)
}

// HandleResolve handles the /resolve command, settling every wager on the
// market.
// Format: /resolve <marketId> <outcome>
func (h *AdminHandler) HandleResolve(c tele.Context) error {
	args := c.Args()
	if len(args) != 2 {
		return c.Reply("Usage: /resolve <marketId> <yes/no>\ne.g. /resolve 21 y")
	}

	marketID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return c.Reply(fmt.Sprintf("❌ invalid market id %q", args[0]))
	}

	report, err := h.ledger.ResolveMarket(marketID, args[1])
	if err != nil {
		return replyError(c, err)
	}

	log.Info().
		Int64("admin_id", c.Sender().ID).
		Int64("market_id", marketID).
		Str("outcome", args[1]).
		Msg("Market resolved")

	return replyMono(c, report)
}

// HandleLock handles the /lock command.
// Format: /lock <marketId>
func (h *AdminHandler) HandleLock(c tele.Context) error {
	return h.toggleLock(c, h.ledger.LockMarket, "/lock")
}

// HandleUnlock handles the /unlock command.
// Format: /unlock <marketId>
func (h *AdminHandler) HandleUnlock(c tele.Context) error {
	return h.toggleLock(c, h.ledger.UnlockMarket, "/unlock")
}

func (h *AdminHandler) toggleLock(c tele.Context, op func(int64) (string, error), usage string) error {
	args := c.Args()
	if len(args) != 1 {
		return c.Reply("Usage: " + usage + " <marketId>")
	}

	marketID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return c.Reply(fmt.Sprintf("❌ invalid market id %q", args[0]))
	}

	msg, err := op(marketID)
	if err != nil {
		return replyError(c, err)
	}
	return replyMono(c, msg)
}

// HandleSetMax handles the /setmax command, adjusting the global
// per-wager ceiling.
// Format: /setmax <amount>
func (h *AdminHandler) HandleSetMax(c tele.Context) error {
	args := c.Args()
	if len(args) != 1 {
		return c.Reply("Usage: /setmax <amount>")
	}

	newMax, err := decimal.NewFromString(args[0])
	if err != nil {
		return c.Reply(fmt.Sprintf("❌ invalid amount %q", args[0]))
	}

	msg, err := h.ledger.SetMaxWager(newMax)
	if err != nil {
		return replyError(c, err)
	}

	log.Info().
		Int64("admin_id", c.Sender().ID).
		Str("max_wager", newMax.String()).
		Msg("Maximum wager updated")

	return replyMono(c, msg)
}

// HandleSave handles the /save command, persisting a full ledger snapshot.
func (h *AdminHandler) HandleSave(c tele.Context) error {
	snap := h.ledger.TakeSnapshot()
	if err := h.store.Save(context.Background(), snap); err != nil {
		log.Error().Err(err).Msg("Snapshot save failed")
		return c.Reply("❌ failed to save ledger state")
	}
	return replyMono(c, "Data saved successfully")
}
