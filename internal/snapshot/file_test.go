package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-betting-bot/internal/ledger"
)

func sampleSnapshot(t *testing.T) *ledger.Snapshot {
	t.Helper()
	l := ledger.New(ledger.DefaultConfig())
	_, _, err := l.CreateMarket("test market", decimal.NewFromInt(2))
	require.NoError(t, err)
	_, err = l.PlaceWager(1, 42, "alice", "yes", decimal.NewFromInt(500))
	require.NoError(t, err)
	return l.TakeSnapshot()
}

func TestFileStore_LoadMissing(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "snapshot.json"))

	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "snapshot.json")
	store := NewFileStore(path)
	ctx := context.Background()

	snap := sampleSnapshot(t)
	require.NoError(t, store.Save(ctx, snap))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Accounts, 1)
	assert.Equal(t, "alice", loaded.Accounts[0].Name)
	assert.True(t, loaded.Accounts[0].Balance.Equal(decimal.NewFromInt(9500)))
	require.Len(t, loaded.Wagers, 1)
	assert.Equal(t, ledger.SideYes, loaded.Wagers[0].Side)
	assert.Equal(t, snap.NextWagerID, loaded.NextWagerID)

	// restoring the loaded snapshot yields a working ledger
	restored := ledger.New(ledger.DefaultConfig())
	require.NoError(t, restored.Restore(loaded))
	assert.Contains(t, restored.Money(42, ""), "$9500.00")
}

func TestFileStore_SaveReplacesPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	store := NewFileStore(path)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleSnapshot(t)))

	l := ledger.New(ledger.DefaultConfig())
	l.Money(7, "bob")
	require.NoError(t, store.Save(ctx, l.TakeSnapshot()))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Accounts, 1)
	assert.Equal(t, "bob", loaded.Accounts[0].Name)

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileStore(path).Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSnapshot)
}
