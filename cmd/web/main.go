package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"food-dashboard/internal/config"
	"food-dashboard/internal/middleware"
	"food-dashboard/internal/observability"
	"food-dashboard/internal/server"
	"food-dashboard/internal/services"
)

const csvLoadTimeout = 30 * time.Second

// newHandler wraps the dashboard routes in the standard middleware chain.
func newHandler(cfg *config.Config, dashboard *services.Dashboard, logger *slog.Logger) http.Handler {
	srv := server.NewServer(dashboard, logger, cfg.Data.ChartColor)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	return middlewareChain(srv)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger, os.Stdout)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"config", cfg,
	)

	shutdownTracing, err := observability.SetupTracing(context.Background(), cfg.Telemetry)
	if err != nil {
		logger.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}

	dashboard := services.NewDashboard()
	ctx, cancel := context.WithTimeout(context.Background(), csvLoadTimeout)
	defer cancel()

	if err := dashboard.LoadFromCSV(ctx, cfg.Data.CSVFile); err != nil {
		logger.Error("failed to load CSV data", "error", err, "path", cfg.Data.CSVFile)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, dashboard, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)
	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("flushing traces")
		return shutdownTracing(ctx)
	})

	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
