// Command tally-worker consumes snapshot messages and mirrors the latest
// collection into SQLite.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"tally/internal/cli"
	"tally/internal/log"
	"tally/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentWorker)

	if !cfg.SyncEnabled {
		logger.Error("SYNC_ENABLED must be true to run the mirror worker")
		os.Exit(1)
	}

	mirror, err := cli.OpenSQLite(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open mirror database", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer mirror.Close()

	client, err := cli.OpenAMQP(cfg, logger)
	if err != nil {
		logger.Error("Failed to connect to AMQP", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	w := worker.NewMirrorWorker(mirror, logger)

	ctx, stop := cli.SignalContext()
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ConsumeSnapshots(gctx, w.HandleSnapshot)
	})
	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				counts, err := mirror.CategoryCounts(gctx)
				if err != nil {
					logger.Warn("Failed to read mirror stats", log.FieldError, err)
					continue
				}
				logger.Info("Mirror status", "snapshots_applied", w.Applied(), "categories", len(counts), "healthy", client.Healthy())
			}
		}
	})

	logger.Info("Starting tally-worker", log.FieldOperation, log.OpStartup, "queue", cfg.AMQPQueue, "mirror", cfg.SQLiteDBPath)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
