// Package cli holds the start-up helpers shared by cmd/tally,
// cmd/tally-worker and cmd/tally-import.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"tally/internal/amqp"
	"tally/internal/config"
	"tally/internal/log"
	"tally/internal/store"
	"tally/internal/store/file"
	"tally/internal/store/memory"
	"tally/internal/store/sqlite"
)

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: component,
		Output:    os.Stdout,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads the configuration or exits on invalid input.
func LoadAndValidateConfig() *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cfg
}

// Backend is an opened store with its lifecycle hooks.
type Backend struct {
	Store store.Store
	// Ready reports whether the store can serve requests.
	Ready func(ctx context.Context) error
	Close func() error
}

// OpenStore opens the store selected by DATA_BACKEND.
func OpenStore(cfg *config.Config, logger *log.Logger) (*Backend, error) {
	noop := func() error { return nil }
	always := func(context.Context) error { return nil }

	switch cfg.DataBackend {
	case config.BackendMemory:
		logger.Info("Using in-memory store")
		return &Backend{Store: memory.New(), Ready: always, Close: noop}, nil
	case config.BackendFile:
		st, err := file.New(cfg.DataFile)
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		logger.Info("Using file store", "path", st.Path())
		return &Backend{Store: st, Ready: always, Close: noop}, nil
	case config.BackendSQLite:
		repo, err := OpenSQLite(cfg.SQLiteDBPath)
		if err != nil {
			return nil, err
		}
		logger.Info("Using SQLite store", "path", cfg.SQLiteDBPath)
		return &Backend{Store: repo, Ready: repo.Ping, Close: repo.Close}, nil
	default:
		return nil, fmt.Errorf("unknown data backend %q", cfg.DataBackend)
	}
}

// RequirePersistentBackend rejects backends whose data is lost when the
// process exits. One-shot commands such as tally-import need it.
func RequirePersistentBackend(cfg *config.Config) error {
	if cfg.DataBackend == config.BackendMemory {
		return fmt.Errorf("DATA_BACKEND=%s keeps data only for the life of the process; use %s or %s",
			cfg.DataBackend, config.BackendFile, config.BackendSQLite)
	}
	if cfg.DataBackend == config.BackendSQLite && cfg.SQLiteDBPath == sqlite.MemoryPath {
		return fmt.Errorf("SQLITE_DB_PATH=%s keeps data only for the life of the process", sqlite.MemoryPath)
	}
	return nil
}

func OpenSQLite(path string) (*sqlite.Repository, error) {
	repo, err := sqlite.NewRepository(path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store %s: %w", path, err)
	}
	return repo, nil
}

// SeedCategories reads the optional CATEGORIES_FILE.
func SeedCategories(cfg *config.Config) []string {
	if cfg.CategoriesFile == "" {
		return nil
	}
	return memory.ReadCategoryLines(cfg.CategoriesFile)
}

// OpenAMQP connects to the broker when sync is enabled. It returns nil,
// nil when sync is disabled.
func OpenAMQP(cfg *config.Config, logger *log.Logger) (*amqp.Client, error) {
	if !cfg.SyncEnabled {
		return nil, nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return nil, fmt.Errorf("connect to AMQP: %w", err)
	}
	logger.Info("Connected to AMQP broker", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
