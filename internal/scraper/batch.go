// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

package scraper

import (
	"context"

	"github.com/mediatiger/analytics/internal/logging"
	"github.com/mediatiger/analytics/internal/metrics"
)

// BatchResult is one channel's successful outcome in a batch run.
type BatchResult struct {
	Channel    string `json:"channel"`
	TotalViews int64  `json:"totalViews"`
	DataPoints int    `json:"dataPoints"`
	Artifact   string `json:"artifact,omitempty"`
}

// BatchError is one channel's failure in a batch run.
type BatchError struct {
	Channel string `json:"channel"`
	Err     string `json:"error"`
}

// BatchOutcome is the full outcome of a batch run. A batch never aborts on
// a channel failure; Results and Errors partition the input channels.
type BatchOutcome struct {
	StartDate string        `json:"startDate"`
	EndDate   string        `json:"endDate"`
	Results   []BatchResult `json:"results"`
	Errors    []BatchError  `json:"errors"`
}

// Runner runs a range fetch across many channels sequentially.
type Runner struct {
	scraper *Scraper
}

// NewRunner wraps a Scraper for batch use.
func NewRunner(s *Scraper) *Runner {
	return &Runner{scraper: s}
}

// RunBatch fetches [startDate, endDate] for each channel in order, one
// channel at a time with a pacer wait between channels. Individual channel
// failures are recorded and the batch continues. The only hard failures
// are context cancellation and a batch-summary persistence error.
func (r *Runner) RunBatch(ctx context.Context, channels []string, startDate, endDate string) (*BatchOutcome, error) {
	log := logging.WithComponent("batch")
	log.Info().
		Int("channels", len(channels)).
		Str("start_date", startDate).
		Str("end_date", endDate).
		Msg("Starting batch run")

	pacer := NewPacer(r.scraper.opts.Delay)
	outcome := &BatchOutcome{StartDate: startDate, EndDate: endDate}

	for _, channel := range channels {
		if err := pacer.Wait(ctx); err != nil {
			return nil, err
		}

		res, err := r.scraper.FetchRange(ctx, channel, startDate, endDate)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			metrics.ScrapeChannels.WithLabelValues("batch", "error").Inc()
			log.Error().Err(err).Str("channel", channel).Msg("Channel fetch failed")
			outcome.Errors = append(outcome.Errors, BatchError{Channel: channel, Err: err.Error()})
			continue
		}
		metrics.ScrapeChannels.WithLabelValues("batch", "success").Inc()
		outcome.Results = append(outcome.Results, BatchResult{
			Channel:    channel,
			TotalViews: res.Combined.Summary.TotalViews,
			DataPoints: res.Combined.Summary.DataPoints,
			Artifact:   res.ArtifactPath,
		})
	}

	if r.scraper.opts.Persist {
		if _, err := persistBatchSummary(r.scraper.opts.OutputDir, *outcome, r.scraper.now()); err != nil {
			return nil, err
		}
	}

	log.Info().
		Int("succeeded", len(outcome.Results)).
		Int("failed", len(outcome.Errors)).
		Msg("Batch run complete")
	return outcome, nil
}
