// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/mediatiger/analytics/internal/config"
	"github.com/mediatiger/analytics/internal/logging"
	"github.com/mediatiger/analytics/internal/metrics"
	"github.com/mediatiger/analytics/internal/models"
	"github.com/mediatiger/analytics/internal/scraper"
	"github.com/mediatiger/analytics/internal/upstream"
)

// Store is the persistence surface the job writes through.
type Store interface {
	UpsertRecord(ctx context.Context, rec *models.AnalyticsRecord) error
}

// Fetcher fetches one channel's analytics range. Satisfied by
// *scraper.Scraper.
type Fetcher interface {
	FetchRange(ctx context.Context, channel, startDate, endDate string) (*scraper.Result, error)
}

// RunReport summarizes one completed job run.
type RunReport struct {
	TargetDate string    `json:"target_date"`
	Channels   int       `json:"channels"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	StartedAt  time.Time `json:"started_at"`
	Duration   string    `json:"duration"`
}

// Job scrapes every channel's previous-day (or same-day) analytics and
// upserts one single-day record per channel. At most one run executes at a
// time; triggers arriving mid-run are dropped, not queued.
type Job struct {
	store    Store
	api      upstream.API
	fetcher  Fetcher
	cfg      config.CronConfig
	schedule *Schedule
	// now is injectable so target-date selection tests without sleeping
	// to 06:00 UTC.
	now func() time.Time

	mu      sync.Mutex
	running bool

	statusMu sync.Mutex
	lastRun  *RunReport
}

// NewJob builds the daily upsert job. The schedule must already validate
// via config.Validate; a parse failure here is a programming error.
func NewJob(store Store, api upstream.API, fetcher Fetcher, cfg config.CronConfig) (*Job, error) {
	schedule, err := ParseSchedule(cfg.Schedule)
	if err != nil {
		return nil, err
	}
	return &Job{
		store:    store,
		api:      api,
		fetcher:  fetcher,
		cfg:      cfg,
		schedule: schedule,
		now:      time.Now,
	}, nil
}

// TriggerRun starts a run unless one is already in flight, in which case
// it logs and returns nil immediately. The returned report is nil exactly
// when the trigger was skipped.
func (j *Job) TriggerRun(ctx context.Context) *RunReport {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		metrics.CronRuns.WithLabelValues("skipped").Inc()
		log := logging.WithComponent("cron")
		log.Warn().Msg("Run already in progress, skipping trigger")
		return nil
	}
	j.running = true
	j.mu.Unlock()

	defer func() {
		j.mu.Lock()
		j.running = false
		j.mu.Unlock()
	}()

	report := j.run(ctx)

	j.statusMu.Lock()
	j.lastRun = report
	j.statusMu.Unlock()
	return report
}

// LastRun returns the most recent run report, or nil before the first run.
func (j *Job) LastRun() *RunReport {
	j.statusMu.Lock()
	defer j.statusMu.Unlock()
	return j.lastRun
}

// Running reports whether a run is currently in flight.
func (j *Job) Running() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}

func (j *Job) run(ctx context.Context) *RunReport {
	log := logging.WithComponent("cron")
	started := j.now()
	target := j.targetDate()
	channels := j.channels(ctx)

	log.Info().
		Str("target_date", target).
		Int("channels", len(channels)).
		Msg("Starting daily upsert run")

	report := &RunReport{
		TargetDate: target,
		Channels:   len(channels),
		StartedAt:  started.UTC(),
	}

	pacer := scraper.NewPacer(j.cfg.Delay)
	for _, channel := range channels {
		if err := pacer.Wait(ctx); err != nil {
			log.Warn().Err(err).Msg("Run aborted by context")
			break
		}

		res, err := j.fetcher.FetchRange(ctx, channel, target, target)
		if err != nil {
			report.Failed++
			log.Error().Err(err).Str("channel", channel).Msg("Daily fetch failed")
			continue
		}
		if err := j.store.UpsertRecord(ctx, res.ToRecord(j.now())); err != nil {
			report.Failed++
			log.Error().Err(err).Str("channel", channel).Msg("Daily upsert failed")
			continue
		}
		report.Succeeded++
	}

	report.Duration = j.now().Sub(started).Round(time.Millisecond).String()
	result := "success"
	if report.Failed > 0 {
		result = "partial"
	}
	if report.Succeeded == 0 && report.Failed > 0 {
		result = "error"
	}
	metrics.CronRuns.WithLabelValues(result).Inc()

	log.Info().
		Str("target_date", target).
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Str("duration", report.Duration).
		Msg("Daily upsert run complete")
	return report
}

// targetDate picks the UTC calendar day to scrape. Before 06:00 UTC the
// upstream API has not finalized the current day, so the job targets
// yesterday; from 06:00 on it targets today.
func (j *Job) targetDate() string {
	now := j.now().UTC()
	if now.Hour() < 6 {
		now = now.AddDate(0, 0, -1)
	}
	return now.Format("2006-01-02")
}

// channels refreshes the channel list from upstream, falling back to the
// configured static list when the list endpoint is unavailable.
func (j *Job) channels(ctx context.Context) []string {
	listed, err := j.api.ListChannels(ctx)
	if err != nil || len(listed) == 0 {
		log := logging.WithComponent("cron")
		log.Warn().
			Err(err).
			Int("fallback_channels", len(j.cfg.FallbackChannels)).
			Msg("Channel list refresh failed, using configured fallback")
		return j.cfg.FallbackChannels
	}
	ids := make([]string, 0, len(listed))
	for _, ch := range listed {
		ids = append(ids, ch.ID)
	}
	return ids
}

// Start blocks, firing TriggerRun at each schedule boundary until ctx is
// cancelled. Cancellation stops the loop; an in-flight run finishes on its
// own context.
func (j *Job) Start(ctx context.Context) error {
	log := logging.WithComponent("cron")
	for {
		next := j.schedule.Next(j.now())
		wait := next.Sub(j.now())
		log.Info().
			Time("next_run", next).
			Str("wait", wait.Round(time.Second).String()).
			Msg("Scheduler sleeping until next run")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Info().Msg("Scheduler stopped")
			return ctx.Err()
		case <-timer.C:
			j.TriggerRun(context.Background())
		}
	}
}
