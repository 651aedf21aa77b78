// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

// Package main is the ad-hoc scraping CLI.
//
// Usage:
//
//	scraper [flags] single <channelId> <start> <end>
//	scraper [flags] range  <channelId> <start> <end>
//	scraper [flags] batch  <start> <end> <channel>...
//
// single issues one upstream request for the exact range; range splits
// long spans into sequential chunks; batch runs range across channels.
// Dates are YYYY-MM-DD. Results are written as JSON artifacts unless
// --no-save is given. Exit code is 1 on any failure.
//
// Flags:
//
//	--no-save        skip artifact persistence
//	--delay <ms>     pause between sequential requests (default 1000)
//	--max-days <n>   chunk size cap for range/batch (default 30)
//	--output <dir>   artifact directory (default from config)
//	--verbose        console logging at debug level
//
// The upstream base URL comes from configuration (UPSTREAM_BASE_URL). No
// database connection is needed; the CLI only talks to the upstream API
// and the filesystem.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"

	"github.com/mediatiger/analytics/internal/config"
	"github.com/mediatiger/analytics/internal/logging"
	"github.com/mediatiger/analytics/internal/scraper"
	"github.com/mediatiger/analytics/internal/upstream"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		logging.Error().Err(err).Msg("Scrape failed")
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("scraper", flag.ExitOnError)
	var (
		noSave  = fs.Bool("no-save", false, "skip artifact persistence")
		delayMs = fs.Int("delay", 1000, "milliseconds between sequential requests")
		maxDays = fs.Int("max-days", 30, "maximum days per upstream request")
		output  = fs.String("output", "", "artifact output directory (default from config)")
		verbose = fs.Bool("verbose", false, "debug logging to the console")
	)
	fs.Usage = usage(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("missing subcommand")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level, format := cfg.Logging.Level, cfg.Logging.Format
	if *verbose {
		level, format = "debug", "console"
	}
	logging.Init(logging.Config{Level: level, Format: format})

	opts := scraper.Options{
		MaxDaysPerRequest: *maxDays,
		Delay:             time.Duration(*delayMs) * time.Millisecond,
		Persist:           !*noSave,
		OutputDir:         cfg.Scraper.OutputDir,
	}
	if *output != "" {
		opts.OutputDir = *output
	}

	client := upstream.NewCircuitBreakerClient(upstream.NewClient(&cfg.Upstream))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sub, rest := fs.Arg(0), fs.Args()[1:]
	switch sub {
	case "single":
		if len(rest) != 3 {
			return fmt.Errorf("usage: scraper single <channelId> <start> <end>")
		}
		// One request for the whole span regardless of its length.
		single := opts
		single.MaxDaysPerRequest = 1 << 20
		return printResult(scraper.New(client, single).FetchRange(ctx, rest[0], rest[1], rest[2]))

	case "range":
		if len(rest) != 3 {
			return fmt.Errorf("usage: scraper range <channelId> <start> <end>")
		}
		return printResult(scraper.New(client, opts).FetchRange(ctx, rest[0], rest[1], rest[2]))

	case "batch":
		if len(rest) < 3 {
			return fmt.Errorf("usage: scraper batch <start> <end> <channel>...")
		}
		runner := scraper.NewRunner(scraper.New(client, opts))
		outcome, err := runner.RunBatch(ctx, rest[2:], rest[0], rest[1])
		if err != nil {
			return err
		}
		if err := printJSON(outcome); err != nil {
			return err
		}
		if len(outcome.Errors) > 0 && len(outcome.Results) == 0 {
			return fmt.Errorf("every channel failed")
		}
		return nil

	default:
		fs.Usage()
		return fmt.Errorf("unknown subcommand %q", sub)
	}
}

func printResult(res *scraper.Result, err error) error {
	if err != nil {
		return err
	}
	return printJSON(res)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func usage(fs *flag.FlagSet) func() {
	return func() {
		fmt.Fprintln(fs.Output(), `MediaTiger analytics scraper

Usage:
  scraper [flags] single <channelId> <start> <end>
  scraper [flags] range  <channelId> <start> <end>
  scraper [flags] batch  <start> <end> <channel>...

Dates are YYYY-MM-DD.

Flags:`)
		fs.PrintDefaults()
	}
}
