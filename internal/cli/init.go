// Package cli holds the start-up steps shared by cmd/facturas,
// cmd/facturas-worker and cmd/facturas-admin.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"facturas/internal/amqp"
	"facturas/internal/config"
	applog "facturas/internal/log"
	"facturas/internal/statement"
	"facturas/internal/storage"
)

// SetupLogger installs the process logger for component using the
// configured level and format.
func SetupLogger(component string, cfg *config.Config) *applog.Logger {
	return applog.Setup(component, cfg.LogFormat, cfg.LogLevel)
}

// LoadAndValidateConfig loads .env and the environment and exits the
// process when the result is invalid.
func LoadAndValidateConfig() *config.Config {
	config.LoadEnvFile()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite opens the repository, applying pending migrations, or exits.
func InitSQLite(logger *applog.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}

// InitPublisher connects to AMQP when it is configured. Without AMQP, or when
// the broker is unreachable, events are dropped and the returned close
// function does nothing.
func InitPublisher(logger *applog.Logger, cfg *config.Config) (amqp.Publisher, func()) {
	if !cfg.AMQPEnabled() {
		logger.Info("AMQP disabled, domain events will not be published")
		return amqp.NopPublisher{}, func() {}
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("AMQP unavailable, domain events will not be published", "error", err)
		return amqp.NopPublisher{}, func() {}
	}
	logger.Info("AMQP publisher connected", "exchange", cfg.AMQPExchange)
	return client, func() {
		if err := client.Close(); err != nil {
			logger.Warn("Failed to close AMQP client", "error", err)
		}
	}
}

// SheetsOpener returns a function opening the configured Google Sheets
// statement range, or nil when Sheets import is not configured.
func SheetsOpener(cfg *config.Config) func(context.Context) (statement.Reader, error) {
	if !cfg.SheetsEnabled() {
		return nil
	}
	return func(ctx context.Context) (statement.Reader, error) {
		return statement.NewSheetsReader(ctx, cfg.GoogleCredentialsFile, cfg.GoogleSpreadsheetID, cfg.GoogleStatementRange)
	}
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup ran.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
