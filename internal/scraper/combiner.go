// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

package scraper

import (
	"math"

	"github.com/mediatiger/analytics/internal/models"
	"github.com/mediatiger/analytics/internal/upstream"
)

// ChunkData is one successfully fetched chunk awaiting combination.
type ChunkData struct {
	Chunk models.Chunk
	Data  *upstream.RangeData
}

// Combine merges chunk results for [start, end] into one result. Daily
// entries concatenate in chunk order, which is chronological because chunks
// are fetched in ascending date order. Totals are re-summed from the chunk
// summaries and averageRPM is recomputed revenue-weighted from the merged
// totals, so the combined figure is independent of how the range was split.
//
// The errors counter stays 0: failed chunks never reach Combine, so there
// is nothing to count here. Callers track failures separately.
func Combine(chunks []ChunkData, start, end string) models.CombinedResult {
	var (
		summary models.CombinedSummary
		daily   []models.DailyEntry
	)
	for _, c := range chunks {
		summary.TotalViews += c.Data.Summary.TotalViews
		summary.TotalPremiumViews += c.Data.Summary.TotalPremiumViews
		summary.TotalRevenue += c.Data.Summary.TotalRevenue
		summary.DataPoints += c.Data.Summary.DataPoints
		daily = append(daily, c.Data.DailyData...)
	}

	summary.TotalRevenue = round2(summary.TotalRevenue)
	if summary.TotalViews > 0 {
		summary.AverageRPM = round2(summary.TotalRevenue * 1000 / float64(summary.TotalViews))
	}

	days := len(daily)
	if days > 0 {
		summary.DataAvailability = int(math.Round(float64(summary.DataPoints) / float64(days) * 100))
		summary.SuccessRate = int(math.Round(float64(days-summary.Errors) / float64(days) * 100))
	}

	return models.CombinedResult{
		DateRange: models.DateRange{StartDate: start, EndDate: end, Days: days},
		Summary:   summary,
		DailyData: daily,
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
