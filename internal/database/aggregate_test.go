// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediatiger/analytics/internal/models"
)

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, models.Summary{}, s, "empty set must yield zeroes, not NaN")
}

func TestSummarizeUnweightedRPM(t *testing.T) {
	// Two rows, wildly different sizes. The mean must ignore the weight:
	// (10.00 + 2.00) / 2 = 6.00, not the revenue-weighted figure.
	records := []models.AnalyticsRecord{
		{ChannelID: "ch-a", TotalViews: 1_000_000, TotalRevenue: 10_000, AverageRPM: 10.00},
		{ChannelID: "ch-b", TotalViews: 100, TotalRevenue: 0.2, AverageRPM: 2.00},
	}

	s := Summarize(records)

	assert.Equal(t, int64(1_000_100), s.TotalViews)
	assert.InDelta(t, 10_000.2, s.TotalRevenue, 0.001)
	assert.InDelta(t, 6.00, s.AverageRPM, 0.001)
	assert.Equal(t, 2, s.DataPoints)
	assert.Equal(t, 2, s.Channels)
}

func TestSummarizeCountsRowsNotDays(t *testing.T) {
	records := []models.AnalyticsRecord{
		{ChannelID: "ch-a", DataPoints: 30, DailyData: make([]models.DailyEntry, 30)},
		{ChannelID: "ch-a", DataPoints: 7, DailyData: make([]models.DailyEntry, 7)},
	}
	s := Summarize(records)
	assert.Equal(t, 2, s.DataPoints)
	assert.Equal(t, 1, s.Channels)
}

func TestSummarizeChannelsWeightedRPM(t *testing.T) {
	records := []models.AnalyticsRecord{
		{ChannelID: "ch-a", StartDate: "2024-01-01", EndDate: "2024-01-31",
			TotalViews: 1000, TotalRevenue: 5, AverageRPM: 5.00},
		{ChannelID: "ch-a", StartDate: "2024-02-01", EndDate: "2024-02-29",
			TotalViews: 2000, TotalRevenue: 15, AverageRPM: 7.50},
	}

	out := SummarizeChannels(records)
	require.Len(t, out, 1)
	cs := out[0]

	assert.Equal(t, "ch-a", cs.ChannelID)
	assert.Equal(t, int64(3000), cs.TotalViews)
	assert.InDelta(t, 20.0, cs.TotalRevenue, 0.001)
	// 20 * 1000 / 3000 = 6.67, not the mean of stored RPMs (6.25).
	assert.InDelta(t, 6.67, cs.AverageRPM, 0.001)
	assert.Equal(t, 2, cs.DataPoints)
	assert.Equal(t, "2024-01-01", cs.FirstSeen)
	assert.Equal(t, "2024-02-29", cs.LastSeen)
}

func TestSummarizeChannelsZeroViews(t *testing.T) {
	records := []models.AnalyticsRecord{
		{ChannelID: "ch-dead", TotalViews: 0, TotalRevenue: 0},
	}
	out := SummarizeChannels(records)
	require.Len(t, out, 1)
	assert.Zero(t, out[0].AverageRPM)
}

func TestSummarizeChannelsSorted(t *testing.T) {
	records := []models.AnalyticsRecord{
		{ChannelID: "zeta"}, {ChannelID: "alpha"}, {ChannelID: "mid"},
	}
	out := SummarizeChannels(records)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"alpha", "mid", "zeta"},
		[]string{out[0].ChannelID, out[1].ChannelID, out[2].ChannelID})
}

func TestGroupDailyByDate(t *testing.T) {
	records := []models.AnalyticsRecord{
		{ChannelID: "ch-b", DailyData: []models.DailyEntry{
			{Date: "2024-01-02", Views: 200, Revenue: 2},
			{Date: "2024-01-01", Views: 100, Revenue: 1},
		}},
		{ChannelID: "ch-a", DailyData: []models.DailyEntry{
			{Date: "2024-01-01", Views: 50, Revenue: 0.5},
		}},
	}

	out := GroupDaily(records, "date")
	require.Len(t, out, 2)

	assert.Equal(t, "2024-01-01", out[0].Date)
	assert.Equal(t, int64(150), out[0].TotalViews)
	require.Len(t, out[0].Entries, 2)
	assert.Equal(t, "ch-a", out[0].Entries[0].ChannelID)
	assert.Equal(t, "ch-b", out[0].Entries[1].ChannelID)

	assert.Equal(t, "2024-01-02", out[1].Date)
	assert.Equal(t, int64(200), out[1].TotalViews)
}

func TestGroupDailyByChannel(t *testing.T) {
	records := []models.AnalyticsRecord{
		{ChannelID: "ch-a", DailyData: []models.DailyEntry{
			{Date: "2024-01-02", Views: 20},
			{Date: "2024-01-01", Views: 10},
		}},
	}

	out := GroupDaily(records, "channel")
	require.Len(t, out, 1)
	assert.Equal(t, "ch-a", out[0].ChannelID)
	assert.Empty(t, out[0].Date)
	require.Len(t, out[0].Entries, 2)
	assert.Equal(t, "2024-01-01", out[0].Entries[0].Date, "entries sorted by date")
	assert.Equal(t, int64(30), out[0].TotalViews)
}

func TestGroupDailyEmpty(t *testing.T) {
	assert.Empty(t, GroupDaily(nil, "date"))
}
