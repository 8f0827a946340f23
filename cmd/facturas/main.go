package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"facturas/internal/cache"
	"facturas/internal/cli"
	"facturas/internal/config"
	apphttp "facturas/internal/http"
	applog "facturas/internal/log"
	"facturas/internal/middleware/ratelimit"
	"facturas/internal/services"
)

func main() {
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(applog.ComponentApp, cfg)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	settings, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		logger.Error("Failed to load settings", "error", err, "path", cfg.SettingsPath)
		os.Exit(1)
	}

	publisher, closePublisher := cli.InitPublisher(logger, cfg)
	defer closePublisher()

	stats := services.NewStatsService(repo, cfg.StatsCacheTTL)
	caches := cache.NewManager(logger.WithComponent(applog.ComponentCache).Logger)
	stats.Register(caches)
	caches.StartCleanup(cfg.StatsCacheTTL)
	defer caches.Stop()

	svc := apphttp.Services{
		Clients:   services.NewClientService(repo, stats),
		Catalog:   services.NewCatalogService(repo),
		Invoices:  services.NewInvoiceService(repo, settings, publisher, stats),
		Estimates: services.NewEstimateService(repo, settings, publisher),
		Finance:   services.NewFinanceService(repo),
		Imports:   services.NewImportService(repo, publisher, stats),
		Stats:     stats,
		Settings:  settings,
	}

	limit := ratelimit.DefaultConfig()
	limit.RequestsPerSecond = cfg.RateLimitRPS
	limit.Burst = cfg.RateLimitBurst

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:           ":" + cfg.Port,
		SessionSecret:  cfg.SessionSecret,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit:      limit,
		Logger:         logger.WithComponent(applog.ComponentHTTP),
		Sheets:         cli.SheetsOpener(cfg),
		Ping:           repo.Ping,
	}, svc)
	if err != nil {
		logger.Error("Failed to build HTTP server", "error", err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Starting facturas server",
		"port", cfg.Port,
		"database", cfg.SQLiteDBPath,
		"amqp", cfg.AMQPEnabled(),
		"sheets_import", cfg.SheetsEnabled())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
