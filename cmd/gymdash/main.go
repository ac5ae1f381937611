package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/gym-dashboard/internal/application"
	"github.com/example/gym-dashboard/internal/config"
	httptransport "github.com/example/gym-dashboard/internal/http"
	"github.com/example/gym-dashboard/internal/logging"
	"github.com/example/gym-dashboard/internal/persistence/migration"
	"github.com/example/gym-dashboard/internal/persistence/sqldb"
)

func main() {
	logger := logging.New(os.Stdout, "info")

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Error("failed to read .env file", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger = logging.New(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("gym dashboard stopped", "error", err)
		os.Exit(1)
	}
}

// dashboard bundles the wired HTTP handler with the resources it owns.
type dashboard struct {
	handler http.Handler
	pool    *sqldb.ConnectionPool
}

func (d *dashboard) Close() error {
	return d.pool.Close()
}

func newDashboard(cfg config.Config, logger *slog.Logger, now func() time.Time) (*dashboard, error) {
	if cfg.AutoMigrate {
		if err := migration.Run(cfg.Database, migration.Up, logger); err != nil {
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
	}

	pool, err := sqldb.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := sqldb.NewMetrics(registry)

	executor := sqldb.NewExecutor(pool, cfg.QueryTimeout, metrics)
	writer := sqldb.NewMemberWriter(pool, cfg.QueryTimeout, metrics)

	reportService := application.NewReportServiceWithLogger(executor, now, logger)
	memberService := application.NewMemberServiceWithLogger(writer, logger)

	handler := httptransport.NewRouter(httptransport.RouterConfig{
		Reports:        httptransport.NewReportHandler(reportService, logger),
		Members:        httptransport.NewMemberHandler(memberService, logger),
		Database:       pool,
		Metrics:        promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	})

	return &dashboard{handler: handler, pool: pool}, nil
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	app, err := newDashboard(cfg, logger, time.Now)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := app.Close(); cerr != nil {
			logger.Error("failed to close database", "error", cerr)
		}
	}()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := app.pool.Ping(pingCtx); err != nil {
		// keep serving; /healthz reports the outage and requests fail with 503
		logger.Warn("database unreachable at startup", "error", err, "driver", string(cfg.Database.Driver))
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("gym dashboard API listening", "addr", server.Addr, "driver", string(cfg.Database.Driver))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
