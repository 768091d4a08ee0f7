package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"telegram-betting-bot/internal/ledger"
)

// PostgresStore keeps snapshots as jsonb rows, newest row wins. Old rows
// are retained as save history.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed snapshot store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the snapshot table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS ledger_snapshots (
			id BIGSERIAL PRIMARY KEY,
			state JSONB NOT NULL,
			taken_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create ledger_snapshots table: %w", err)
	}
	return nil
}

// Load returns the most recently saved snapshot.
func (s *PostgresStore) Load(ctx context.Context) (*ledger.Snapshot, error) {
	const query = `
		SELECT state FROM ledger_snapshots
		ORDER BY id DESC
		LIMIT 1
	`

	var data []byte
	err := s.pool.QueryRow(ctx, query).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("failed to load snapshot row: %w", err)
	}

	var snap ledger.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot row: %w", err)
	}

	log.Info().Time("taken_at", snap.TakenAt).Msg("Snapshot loaded from postgres")
	return &snap, nil
}

// Save inserts a new snapshot row.
func (s *PostgresStore) Save(ctx context.Context, snap *ledger.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	const query = `
		INSERT INTO ledger_snapshots (state, taken_at)
		VALUES ($1, $2)
	`
	if _, err := s.pool.Exec(ctx, query, data, snap.TakenAt); err != nil {
		return fmt.Errorf("failed to insert snapshot row: %w", err)
	}

	log.Info().Int("bytes", len(data)).Msg("Snapshot saved to postgres")
	return nil
}
