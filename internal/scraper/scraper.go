// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

// Package scraper fetches channel analytics from the upstream API over
// arbitrary date ranges. Ranges longer than the per-request cap are split
// into chunks fetched strictly sequentially with a pacer wait between
// requests; the upstream API rate-limits aggressively and concurrent
// chunk fetches trip it.
package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/mediatiger/analytics/internal/config"
	"github.com/mediatiger/analytics/internal/daterange"
	"github.com/mediatiger/analytics/internal/logging"
	"github.com/mediatiger/analytics/internal/metrics"
	"github.com/mediatiger/analytics/internal/models"
	"github.com/mediatiger/analytics/internal/upstream"
)

// Options tunes a scrape. The zero value is not useful; build one with
// OptionsFromConfig or set the fields explicitly.
type Options struct {
	// MaxDaysPerRequest caps the span of a single upstream call. Longer
	// ranges are split into chunks of at most this many days.
	MaxDaysPerRequest int
	// Delay is the minimum spacing between sequential upstream calls.
	Delay time.Duration
	// Persist writes a JSON artifact per completed fetch.
	Persist bool
	// OutputDir receives artifacts when Persist is set.
	OutputDir string
}

// OptionsFromConfig builds Options from the scraper configuration section.
func OptionsFromConfig(cfg *config.ScraperConfig) Options {
	return Options{
		MaxDaysPerRequest: cfg.MaxDaysPerRequest,
		Delay:             cfg.Delay,
		Persist:           cfg.Persist,
		OutputDir:         cfg.OutputDir,
	}
}

// ChunkError records one failed chunk of a chunked fetch.
type ChunkError struct {
	Chunk models.Chunk `json:"chunk"`
	Err   string       `json:"error"`
}

// Result is the outcome of one FetchRange call.
type Result struct {
	Channel      string                `json:"channel"`
	Combined     models.CombinedResult `json:"combined"`
	Chunks       int                   `json:"chunks"`
	FailedChunks []ChunkError          `json:"failedChunks,omitempty"`
	ArtifactPath string                `json:"artifactPath,omitempty"`
}

// Scraper fetches and combines analytics ranges.
type Scraper struct {
	api  upstream.API
	opts Options
	// now is injectable for artifact-name determinism in tests.
	now func() time.Time
}

// New creates a Scraper using the given upstream client.
func New(api upstream.API, opts Options) *Scraper {
	if opts.MaxDaysPerRequest <= 0 {
		opts.MaxDaysPerRequest = 30
	}
	return &Scraper{api: api, opts: opts, now: time.Now}
}

// FetchRange fetches [startDate, endDate] for a channel, chunking when the
// span exceeds MaxDaysPerRequest. Chunks are fetched one at a time in date
// order with a pacer wait before each request after the first. A failed
// chunk is recorded and skipped; the fetch only fails outright when the
// range is invalid, the context ends, or every chunk fails.
func (s *Scraper) FetchRange(ctx context.Context, channel, startDate, endDate string) (*Result, error) {
	span, err := daterange.Span(startDate, endDate)
	if err != nil {
		return nil, err
	}

	log := logging.WithComponent("scraper")
	log.Info().
		Str("channel", channel).
		Str("start_date", startDate).
		Str("end_date", endDate).
		Int("days", span).
		Msg("Starting range fetch")

	chunks, err := daterange.SplitRange(startDate, endDate, s.opts.MaxDaysPerRequest)
	if err != nil {
		return nil, err
	}
	pacer := NewPacer(s.opts.Delay)

	var (
		fetched  []ChunkData
		failed   []ChunkError
		firstErr error
	)
	for _, chunk := range chunks {
		// First permit is immediate; later ones block for the delay.
		if err := pacer.Wait(ctx); err != nil {
			return nil, err
		}

		data, err := s.api.FetchRange(ctx, channel, chunk.Start, chunk.End)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			metrics.ScrapeChunks.WithLabelValues("error").Inc()
			log.Warn().
				Err(err).
				Str("chunk_start", chunk.Start).
				Str("chunk_end", chunk.End).
				Msg("Chunk fetch failed, continuing")
			if firstErr == nil {
				firstErr = err
			}
			failed = append(failed, ChunkError{Chunk: chunk, Err: err.Error()})
			continue
		}
		metrics.ScrapeChunks.WithLabelValues("success").Inc()
		fetched = append(fetched, ChunkData{Chunk: chunk, Data: data})
	}

	if len(fetched) == 0 {
		// Keep the typed upstream error reachable via errors.As so callers
		// still see the HTTP status and body.
		return nil, fmt.Errorf("all %d chunks failed for channel %s [%s..%s]: %w",
			len(chunks), channel, startDate, endDate, firstErr)
	}

	combined := Combine(fetched, startDate, endDate)
	result := &Result{
		Channel:      channel,
		Combined:     combined,
		Chunks:       len(chunks),
		FailedChunks: failed,
	}

	if s.opts.Persist {
		path, err := persistResult(s.opts.OutputDir, s.endpoint(), channel, combined, s.now())
		if err != nil {
			return nil, err
		}
		result.ArtifactPath = path
	}

	log.Info().
		Str("channel", channel).
		Int("chunks", len(chunks)).
		Int("failed_chunks", len(failed)).
		Int64("total_views", combined.Summary.TotalViews).
		Msg("Range fetch complete")
	return result, nil
}

// endpoint names the upstream source for artifact metadata.
func (s *Scraper) endpoint() string {
	type baseURLer interface{ BaseURL() string }
	if b, ok := s.api.(baseURLer); ok {
		return b.BaseURL() + "/api/analytics/range"
	}
	return "/api/analytics/range"
}

// ToRecord converts a fetch result into the persisted record shape for the
// cron upsert path and ad-hoc saves.
func (r *Result) ToRecord(scrapedAt time.Time) *models.AnalyticsRecord {
	status := "success"
	var notice string
	if n := len(r.FailedChunks); n > 0 {
		status = "partial"
		notice = fmt.Sprintf("%d of %d chunks failed", n, r.Chunks)
	}
	// raw_data keeps the full combined payload alongside the extracted
	// columns so rows can be reprocessed without a re-scrape.
	rawData, _ := json.Marshal(r.Combined)
	return &models.AnalyticsRecord{
		ChannelID:         r.Channel,
		StartDate:         r.Combined.DateRange.StartDate,
		EndDate:           r.Combined.DateRange.EndDate,
		ScrapedAt:         scrapedAt.UTC(),
		TotalViews:        r.Combined.Summary.TotalViews,
		TotalPremiumViews: r.Combined.Summary.TotalPremiumViews,
		TotalRevenue:      r.Combined.Summary.TotalRevenue,
		AverageRPM:        r.Combined.Summary.AverageRPM,
		DataPoints:        r.Combined.Summary.DataPoints,
		DailyData:         r.Combined.DailyData,
		RawData:           rawData,
		Status:            status,
		Notice:            notice,
	}
}
