// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

package scraper

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/mediatiger/analytics/internal/logging"
	"github.com/mediatiger/analytics/internal/models"
)

// PersistenceError wraps an artifact write failure. Fetches still succeed
// when persistence fails; callers decide whether to surface or just log it.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist artifact %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// artifactMetadata records provenance inside every scrape artifact.
type artifactMetadata struct {
	ScrapedAt   string `json:"scrapedAt"`
	ChannelID   string `json:"channelId"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	APIEndpoint string `json:"apiEndpoint"`
}

type rangeArtifact struct {
	Metadata artifactMetadata      `json:"metadata"`
	Data     models.CombinedResult `json:"data"`
}

// persistResult writes a combined result to
// {outputDir}/analytics_{channel}_{start}_{end}_{epochMillis}.json.
func persistResult(outputDir, endpoint, channel string, result models.CombinedResult, now time.Time) (string, error) {
	artifact := rangeArtifact{
		Metadata: artifactMetadata{
			ScrapedAt:   now.UTC().Format(time.RFC3339),
			ChannelID:   channel,
			StartDate:   result.DateRange.StartDate,
			EndDate:     result.DateRange.EndDate,
			APIEndpoint: endpoint,
		},
		Data: result,
	}
	name := fmt.Sprintf("analytics_%s_%s_%s_%d.json",
		channel, result.DateRange.StartDate, result.DateRange.EndDate, now.UnixMilli())
	return writeArtifact(outputDir, name, artifact)
}

// batchArtifact is the summary file written after a batch run.
type batchArtifact struct {
	StartDate string        `json:"startDate"`
	EndDate   string        `json:"endDate"`
	RunAt     string        `json:"runAt"`
	Channels  int           `json:"channels"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Errors    []BatchError  `json:"errors"`
	Results   []BatchResult `json:"results"`
}

func persistBatchSummary(outputDir string, batch BatchOutcome, now time.Time) (string, error) {
	artifact := batchArtifact{
		StartDate: batch.StartDate,
		EndDate:   batch.EndDate,
		RunAt:     now.UTC().Format(time.RFC3339),
		Channels:  len(batch.Results) + len(batch.Errors),
		Succeeded: len(batch.Results),
		Failed:    len(batch.Errors),
		Errors:    batch.Errors,
		Results:   batch.Results,
	}
	name := fmt.Sprintf("batch_summary_%s_%s_%d.json",
		batch.StartDate, batch.EndDate, now.UnixMilli())
	return writeArtifact(outputDir, name, artifact)
}

func writeArtifact(outputDir, name string, v any) (string, error) {
	path := filepath.Join(outputDir, name)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", &PersistenceError{Path: path, Err: err}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", &PersistenceError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &PersistenceError{Path: path, Err: err}
	}
	logging.Debug().Str("path", path).Msg("Artifact written")
	return path, nil
}
