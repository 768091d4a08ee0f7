// Package main is the entry point for the Telegram betting bot.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"telegram-betting-bot/internal/bot"
	"telegram-betting-bot/internal/config"
	"telegram-betting-bot/internal/ledger"
	"telegram-betting-bot/internal/pkg/db"
	"telegram-betting-bot/internal/snapshot"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().Msg("Configuration loaded successfully")

	ledgerCfg, err := cfg.LedgerConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid betting configuration")
	}
	defaultOdds, err := cfg.DefaultOdds()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid default odds")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the snapshot store
	store, cleanup, err := newSnapshotStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize snapshot store")
	}
	defer cleanup()

	// Initialize the ledger, restoring the last snapshot if one exists
	book := ledger.New(ledgerCfg)
	snap, err := store.Load(ctx)
	switch {
	case err == nil:
		if err := book.Restore(snap); err != nil {
			log.Fatal().Err(err).Msg("Failed to restore ledger snapshot")
		}
		log.Info().Time("taken_at", snap.TakenAt).Msg("Ledger state restored")
	case errors.Is(err, snapshot.ErrNoSnapshot):
		log.Info().Msg("No snapshot found, starting with an empty ledger")
	default:
		log.Fatal().Err(err).Msg("Failed to load ledger snapshot")
	}

	// Initialize bot
	telegramBot, err := bot.New(&bot.Dependencies{
		Config:      cfg,
		Ledger:      book,
		Store:       store,
		DefaultOdds: defaultOdds,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	// Periodic autosave
	if cfg.Snapshot.SaveInterval > 0 {
		go autosave(ctx, cfg.Snapshot.SaveInterval, book, store)
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start bot in a goroutine
	go func() {
		log.Info().Msg("Bot is starting...")
		telegramBot.Start()
	}()

	// Wait for shutdown signal
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	// Graceful shutdown: stop polling, then persist a final snapshot
	telegramBot.Stop()
	if err := store.Save(context.Background(), book.TakeSnapshot()); err != nil {
		log.Error().Err(err).Msg("Final snapshot save failed")
	}
	log.Info().Msg("Bot stopped gracefully")
}

// newSnapshotStore builds the configured snapshot backend.
func newSnapshotStore(ctx context.Context, cfg *config.Config) (snapshot.Store, func(), error) {
	switch cfg.Snapshot.Backend {
	case "postgres":
		pool, err := db.NewPool(ctx, &cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		store := snapshot.NewPostgresStore(pool.Pool)
		if err := store.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil
	default:
		log.Info().Str("path", cfg.Snapshot.Path).Msg("Using file snapshot store")
		return snapshot.NewFileStore(cfg.Snapshot.Path), func() {}, nil
	}
}

// autosave persists a snapshot on a fixed interval until ctx is done.
func autosave(ctx context.Context, interval time.Duration, book *ledger.Ledger, store snapshot.Store) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := store.Save(ctx, book.TakeSnapshot()); err != nil {
				log.Error().Err(err).Msg("Autosave failed")
			}
		}
	}
}
