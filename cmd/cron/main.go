// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

// Package main is the cron scheduler control CLI.
//
// Usage:
//
//	cron start     run the scheduler in the foreground (writes a PID file)
//	cron stop      signal a running scheduler to shut down
//	cron run-now   execute one upsert run inline and exit
//	cron status    report whether a scheduler is running
//
// The schedule comes from configuration (CRON_SCHEDULE, default "0 2 * * *"
// UTC). start and run-now need DATABASE_URL and UPSTREAM_BASE_URL; stop and
// status only need the PID file path.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/mediatiger/analytics/internal/config"
	"github.com/mediatiger/analytics/internal/database"
	"github.com/mediatiger/analytics/internal/logging"
	"github.com/mediatiger/analytics/internal/scheduler"
	"github.com/mediatiger/analytics/internal/scraper"
	"github.com/mediatiger/analytics/internal/upstream"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		logging.Error().Err(err).Msg("Cron command failed")
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: cron <start|stop|run-now|status>")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	switch args[0] {
	case "start":
		return cmdStart(cfg)
	case "stop":
		return cmdStop(cfg.Cron.PIDFile)
	case "run-now":
		return cmdRunNow(cfg)
	case "status":
		return cmdStatus(cfg.Cron.PIDFile)
	default:
		return fmt.Errorf("unknown subcommand %q", args[0])
	}
}

func cmdStart(cfg *config.Config) error {
	if pid, running := schedulerPID(cfg.Cron.PIDFile); running {
		return fmt.Errorf("scheduler already running (pid %d)", pid)
	}
	if err := writePIDFile(cfg.Cron.PIDFile); err != nil {
		return err
	}
	defer func() {
		if err := os.Remove(cfg.Cron.PIDFile); err != nil && !os.IsNotExist(err) {
			logging.Warn().Err(err).Msg("PID file cleanup failed")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	job, db, err := buildJob(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	logging.Info().
		Str("schedule", cfg.Cron.Schedule).
		Str("pid_file", cfg.Cron.PIDFile).
		Msg("Cron scheduler starting")

	if err := job.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func cmdStop(pidFile string) error {
	pid, running := schedulerPID(pidFile)
	if !running {
		return fmt.Errorf("no running scheduler (pid file %s)", pidFile)
	}
	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to signal pid %d: %w", pid, err)
	}
	fmt.Printf("Sent SIGTERM to scheduler (pid %d)\n", pid)
	return nil
}

func cmdRunNow(cfg *config.Config) error {
	// The in-process run guard cannot see a scheduler started in another
	// process. The upsert makes an overlapping run harmless, but warn so
	// operators know a scheduled run may write the same rows.
	if pid, running := schedulerPID(cfg.Cron.PIDFile); running {
		logging.Warn().
			Int("pid", pid).
			Msg("Scheduler process detected; this run may overlap a scheduled one")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	job, db, err := buildJob(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	report := job.TriggerRun(ctx)
	if report == nil {
		return fmt.Errorf("a run is already in progress")
	}
	fmt.Printf("Run complete: target=%s channels=%d succeeded=%d failed=%d (%s)\n",
		report.TargetDate, report.Channels, report.Succeeded, report.Failed, report.Duration)
	if report.Succeeded == 0 && report.Failed > 0 {
		return fmt.Errorf("every channel failed")
	}
	return nil
}

func cmdStatus(pidFile string) error {
	if pid, running := schedulerPID(pidFile); running {
		fmt.Printf("Scheduler running (pid %d)\n", pid)
		return nil
	}
	fmt.Println("Scheduler not running")
	return nil
}

func buildJob(ctx context.Context, cfg *config.Config) (*scheduler.Job, *database.DB, error) {
	db, err := database.New(ctx, &cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	client := upstream.NewCircuitBreakerClient(upstream.NewClient(&cfg.Upstream))
	fetcher := scraper.New(client, scraper.Options{
		MaxDaysPerRequest: cfg.Scraper.MaxDaysPerRequest,
		Delay:             cfg.Scraper.Delay,
	})
	job, err := scheduler.NewJob(db, client, fetcher, cfg.Cron)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return job, db, nil
}

// schedulerPID reads the PID file and checks the process is alive. A stale
// file from a crashed scheduler reports not-running.
func schedulerPID(pidFile string) (int, bool) {
	raw, err := os.ReadFile(pidFile)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	// Signal 0 probes existence without touching the process.
	if err := syscall.Kill(pid, 0); err != nil {
		return pid, false
	}
	return pid, true
}

func writePIDFile(pidFile string) error {
	return os.WriteFile(pidFile, []byte(strconv.Itoa(os.Getpid())), 0o644)
}
