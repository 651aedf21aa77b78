// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

// Package main is the entry point for the MediaTiger analytics server.
//
// The server exposes the dashboard REST API over stored channel analytics
// and, when cron is enabled, runs the daily upsert job in-process.
//
// # Startup order
//
//  1. Configuration: Koanf v2 layered sources (defaults, config.yaml,
//     environment variables; highest priority wins)
//  2. Logging: zerolog, structured JSON by default
//  3. Database: PostgreSQL pool, schema migration on boot
//  4. Upstream client: circuit-breaker wrapped analytics API client
//  5. Supervisor tree: HTTP server plus the optional cron scheduler
//
// # Configuration
//
// Required:
//   - DATABASE_URL: PostgreSQL DSN
//   - UPSTREAM_BASE_URL: analytics API base URL
//
// Common overrides:
//   - SERVER_PORT (default 3000)
//   - CRON_ENABLED (default false), CRON_SCHEDULE (default "0 2 * * *")
//   - LOGGING_LEVEL, LOGGING_FORMAT
//
// # Signal handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the HTTP server drains
// in-flight requests within the configured timeout, an in-flight cron run
// finishes, then the database pool closes.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/mediatiger/analytics/internal/api"
	"github.com/mediatiger/analytics/internal/config"
	"github.com/mediatiger/analytics/internal/database"
	"github.com/mediatiger/analytics/internal/logging"
	"github.com/mediatiger/analytics/internal/scheduler"
	"github.com/mediatiger/analytics/internal/scraper"
	"github.com/mediatiger/analytics/internal/supervisor"
	"github.com/mediatiger/analytics/internal/upstream"
	"github.com/mediatiger/analytics/internal/version"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Server failed")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("version", version.Version).
		Msg("Starting MediaTiger analytics server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Warn().Err(err).Msg("Database close failed")
		}
	}()

	client := upstream.NewCircuitBreakerClient(upstream.NewClient(&cfg.Upstream))

	handler := api.NewHandler(db, &cfg.API)
	router := api.NewRouter(handler, &cfg.Server)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), cfg.Server.ShutdownTimeout)
	tree.Add(supervisor.NewHTTPService(server, cfg.Server.ShutdownTimeout))

	if cfg.Cron.Enabled {
		fetcher := scraper.New(client, scraper.Options{
			MaxDaysPerRequest: cfg.Scraper.MaxDaysPerRequest,
			Delay:             cfg.Scraper.Delay,
		})
		job, err := scheduler.NewJob(db, client, fetcher, cfg.Cron)
		if err != nil {
			return fmt.Errorf("failed to build cron job: %w", err)
		}
		tree.Add(supervisor.NewSchedulerService(job))
		logging.Info().Str("schedule", cfg.Cron.Schedule).Msg("Cron scheduler enabled")
	}

	logging.Info().
		Str("addr", server.Addr).
		Msg("HTTP server listening")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logging.Info().Msg("Shutdown complete")
	return nil
}
