// Package bot provides the Telegram bot initialization and handler registration.
package bot

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v3"

	"telegram-betting-bot/internal/config"
	"telegram-betting-bot/internal/handler"
	"telegram-betting-bot/internal/ledger"
	"telegram-betting-bot/internal/snapshot"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot *tele.Bot
	cfg *config.Config

	accountHandler *handler.AccountHandler
	bettingHandler *handler.BettingHandler
	marketHandler  *handler.MarketHandler
	adminHandler   *handler.AdminHandler
}

// Dependencies holds everything the bot handlers need.
type Dependencies struct {
	Config      *config.Config
	Ledger      *ledger.Ledger
	Store       snapshot.Store
	DefaultOdds decimal.Decimal
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	pref := tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot: teleBot,
		cfg: deps.Config,
	}

	// Initialize handlers
	b.accountHandler = handler.NewAccountHandler(deps.Ledger)
	b.bettingHandler = handler.NewBettingHandler(deps.Ledger)
	b.marketHandler = handler.NewMarketHandler(deps.Ledger)
	b.adminHandler = handler.NewAdminHandler(deps.Ledger, deps.Store, deps.DefaultOdds)

	// Register middleware
	b.registerMiddleware()

	// Register handlers
	b.registerHandlers()

	return b, nil
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	// Whitelist middleware - check if chat is allowed
	b.bot.Use(WhitelistMiddleware(b.cfg))

	// Logging middleware
	b.bot.Use(LoggingMiddleware())

	// Settlement panics must not take down the poller
	b.bot.Use(RecoveryMiddleware())
}

// registerHandlers registers all command handlers.
func (b *Bot) registerHandlers() {
	// Account handlers
	b.bot.Handle("/money", b.accountHandler.HandleMoney)
	b.bot.Handle("/daily", b.accountHandler.HandleDaily)
	b.bot.Handle("/bets", b.accountHandler.HandleBets)
	b.bot.Handle("/history", b.accountHandler.HandleHistory)

	// Betting handlers
	b.bot.Handle("/bet", b.bettingHandler.HandleBet)
	b.bot.Handle("/cancel", b.bettingHandler.HandleCancel)

	// Market read handlers
	b.bot.Handle("/ongoing", b.marketHandler.HandleOngoing)
	b.bot.Handle("/past", b.marketHandler.HandlePast)
	b.bot.Handle("/leaderboard", b.marketHandler.HandleLeaderboard)
	b.bot.Handle("/pnl", b.marketHandler.HandlePnL)

	// Admin handlers (with admin middleware)
	adminGroup := b.bot.Group()
	adminGroup.Use(AdminMiddleware(b.cfg))
	adminGroup.Handle("/event", b.adminHandler.HandleEvent)
	adminGroup.Handle("/resolve", b.adminHandler.HandleResolve)
	adminGroup.Handle("/lock", b.adminHandler.HandleLock)
	adminGroup.Handle("/unlock", b.adminHandler.HandleUnlock)
	adminGroup.Handle("/setmax", b.adminHandler.HandleSetMax)
	adminGroup.Handle("/save", b.adminHandler.HandleSave)

	// Liveness check
	b.bot.Handle("/ping", func(c tele.Context) error {
		return c.Reply("pong 🏓")
	})
}

// Start starts the bot polling.
func (b *Bot) Start() {
	log.Info().Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}
