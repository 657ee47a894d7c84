// Package file persists the expense collection as a single JSON array on
// disk, the server-side counterpart of browser local storage.
package file

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/store"
)

type Store struct {
	mu   sync.Mutex
	path string
}

func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{path: path}, nil
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Load reads the collection. A missing file yields store.ErrNotFound; a
// file that is not a JSON array yields core.ErrMalformedCollection.
func (s *Store) Load(ctx context.Context) ([]core.RawRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", s.path, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	recs, err := core.DecodeRecords(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	slog.DebugContext(ctx, "Expenses loaded from file",
		log.FieldComponent, log.ComponentStorage,
		log.FieldOperation, log.OpLoad,
		"path", s.path,
		log.FieldCount, len(recs))
	return recs, nil
}

// Save atomically replaces the file: the collection is written to a
// temporary sibling, synced, renamed over the target and restricted to 0600.
func (s *Store) Save(ctx context.Context, expenses []core.Expense) error {
	data, err := core.EncodeExpenses(expenses)
	if err != nil {
		return fmt.Errorf("encode expenses: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	if err := os.Chmod(s.path, 0600); err != nil {
		return fmt.Errorf("chmod %s: %w", s.path, err)
	}

	slog.InfoContext(ctx, "Expenses saved to file",
		log.FieldComponent, log.ComponentStorage,
		log.FieldOperation, log.OpSave,
		"path", s.path,
		log.FieldCount, len(expenses))
	return nil
}
