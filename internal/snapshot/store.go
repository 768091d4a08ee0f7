// Package snapshot persists full ledger snapshots outside the ledger's
// mutation path. The ledger copies its state under its own mutex; stores
// only ever see the immutable copy.
package snapshot

import (
	"context"
	"errors"

	"telegram-betting-bot/internal/ledger"
)

// ErrNoSnapshot is returned by Load when no snapshot has been saved yet.
// Callers start with an empty ledger in that case.
var ErrNoSnapshot = errors.New("no snapshot available")

// Store loads and saves ledger snapshots.
type Store interface {
	Load(ctx context.Context) (*ledger.Snapshot, error)
	Save(ctx context.Context, snap *ledger.Snapshot) error
}
