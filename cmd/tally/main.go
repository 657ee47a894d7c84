// Command tally serves the expense tracker HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"tally/internal/categories"
	"tally/internal/cli"
	apphttp "tally/internal/http"
	"tally/internal/log"
	"tally/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	backend, err := cli.OpenStore(cfg, logger)
	if err != nil {
		logger.Error("Failed to open store", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer backend.Close()

	opts := []services.Option{
		services.WithLogger(logger),
		services.WithSeedCategories(cli.SeedCategories(cfg)),
	}
	ready := backend.Ready

	amqpClient, err := cli.OpenAMQP(cfg, logger)
	if err != nil {
		// Sync is best-effort; the tracker works without it.
		logger.Warn("Snapshot sync disabled", log.FieldError, err)
	}
	if amqpClient != nil {
		defer amqpClient.Close()
		opts = append(opts, services.WithPublisher(amqpClient))
		ready = func(ctx context.Context) error {
			if !amqpClient.Healthy() {
				return errors.New("amqp circuit open")
			}
			return backend.Ready(ctx)
		}
	}

	svc := services.NewExpenseService(backend.Store, categories.New(), opts...)

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CacheTTL:           cfg.CacheTTL,
		CacheSize:          cfg.CacheSize,
		Logger:             logger,
		ReadyCheck:         ready,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, stop := cli.SignalContext()
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting tally server", log.FieldOperation, log.OpStartup, "port", cfg.Port, "backend", cfg.DataBackend, "sync", amqpClient != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", log.FieldOperation, log.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
