package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"telegram-betting-bot/internal/ledger"
)

// FileStore keeps the snapshot as a single JSON file. Saves write to a
// temporary file and rename, so a crash mid-save never corrupts the
// previous snapshot.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed snapshot store at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads and decodes the snapshot file.
func (s *FileStore) Load(_ context.Context) (*ledger.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var snap ledger.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot file: %w", err)
	}

	log.Info().Str("path", s.path).Time("taken_at", snap.TakenAt).Msg("Snapshot loaded from file")
	return &snap, nil
}

// Save encodes the snapshot and atomically replaces the file.
func (s *FileStore) Save(_ context.Context, snap *ledger.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace snapshot file: %w", err)
	}

	log.Info().Str("path", s.path).Int("bytes", len(data)).Msg("Snapshot saved to file")
	return nil
}
