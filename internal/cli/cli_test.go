package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tally/internal/config"
	"tally/internal/impulse"
	"tally/internal/log"
)

func warnDecision() impulse.Decision {
	return impulse.Decision{
		Existing: impulse.Stats{Count: 4, Total: 40},
		Pending:  impulse.Stats{Count: 5, Total: 55},
		Warn:     true,
	}
}

func TestPromptConfirmer(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    bool
		wantErr bool
		prompts int
	}{
		{"yes", "y\n", true, false, 1},
		{"no", "NO\n", false, false, 1},
		{"retry until valid", "maybe\n\nyes\n", true, false, 3},
		{"answer without newline", "n", false, false, 1},
		{"eof", "", false, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			c := PromptConfirmer(strings.NewReader(tt.input), &out)
			got, err := c.Confirm(context.Background(), warnDecision())
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, io.ErrUnexpectedEOF) {
				t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			if n := strings.Count(out.String(), "Are you sure you want to continue? [y/n]: "); n != tt.prompts {
				t.Fatalf("expected %d prompts, got %d: %q", tt.prompts, n, out.String())
			}
		})
	}
}

func TestPromptConfirmerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := PromptConfirmer(strings.NewReader("y\n"), io.Discard).Confirm(ctx, warnDecision())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()
	logger := log.Discard()

	for _, backend := range []string{config.BackendMemory, config.BackendFile, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := &config.Config{
				DataBackend:  backend,
				DataFile:     filepath.Join(dir, "expenses.json"),
				SQLiteDBPath: filepath.Join(dir, "tally.db"),
			}
			b, err := OpenStore(cfg, logger)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			defer b.Close()
			if err := b.Ready(context.Background()); err != nil {
				t.Fatalf("ready: %v", err)
			}
			if err := b.Store.Save(context.Background(), nil); err != nil {
				t.Fatalf("save: %v", err)
			}
		})
	}

	if _, err := OpenStore(&config.Config{DataBackend: "sheets"}, logger); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestSeedCategoriesAndAMQPDisabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.txt")
	if err := os.WriteFile(path, []byte("Gifts\nPets\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got := SeedCategories(&config.Config{CategoriesFile: path})
	if len(got) != 2 || got[0] != "gifts" {
		t.Fatalf("unexpected seed: %v", got)
	}
	if SeedCategories(&config.Config{}) != nil {
		t.Fatalf("expected no seed without file")
	}

	client, err := OpenAMQP(&config.Config{SyncEnabled: false}, log.Discard())
	if client != nil || err != nil {
		t.Fatalf("expected nil client when sync disabled, got %v %v", client, err)
	}
}

func TestRequirePersistentBackend(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr bool
	}{
		{"memory", config.Config{DataBackend: config.BackendMemory}, true},
		{"file", config.Config{DataBackend: config.BackendFile, DataFile: "./data/expenses.json"}, false},
		{"sqlite file", config.Config{DataBackend: config.BackendSQLite, SQLiteDBPath: "./data/tally.db"}, false},
		{"sqlite in memory", config.Config{DataBackend: config.BackendSQLite, SQLiteDBPath: ":memory:"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequirePersistentBackend(&tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
