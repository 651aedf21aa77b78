// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

// Package models defines the analytics data model shared across the core.
//
// AnalyticsRecord is the only persisted type; everything else is derived per
// request or per scrape and discarded after the response is sent.
package models

import (
	"encoding/json"
	"time"
)

// AnalyticsRecord is one persisted row of scraped channel analytics,
// identified by the composite key (channel_id, start_date, end_date).
// At most one row exists per key; re-scraping the same range overwrites.
//
// Dates are YYYY-MM-DD strings in UTC calendar terms.
type AnalyticsRecord struct {
	ChannelID         string          `json:"channel_id"`
	StartDate         string          `json:"start_date"`
	EndDate           string          `json:"end_date"`
	ScrapedAt         time.Time       `json:"scraped_at"`
	TotalViews        int64           `json:"total_views"`
	TotalPremiumViews int64           `json:"total_premium_views"`
	TotalRevenue      float64         `json:"total_revenue"`
	AverageRPM        float64         `json:"average_rpm"`
	DataPoints        int             `json:"data_points"`
	DailyData         []DailyEntry    `json:"daily_data"`
	RawData           json.RawMessage `json:"raw_data,omitempty"`
	Status            string          `json:"status"`
	Notice            string          `json:"notice,omitempty"`
}

// DailyEntry is one per-day breakdown inside a record's daily data.
// Field names mirror the upstream analytics API payload.
type DailyEntry struct {
	Date         string  `json:"date"`
	Views        int64   `json:"views"`
	PremiumViews int64   `json:"premiumViews"`
	Revenue      float64 `json:"revenue"`
	RPM          float64 `json:"rpm"`
}

// Summary is the aggregate over a filtered record set.
//
// AverageRPM here is the arithmetic mean of each row's average_rpm, NOT
// revenue-weighted. ChannelSummary uses the weighted formula; the two
// policies intentionally differ (see DESIGN.md).
type Summary struct {
	TotalViews        int64   `json:"totalViews"`
	TotalPremiumViews int64   `json:"totalPremiumViews"`
	TotalRevenue      float64 `json:"totalRevenue"`
	AverageRPM        float64 `json:"averageRPM"`
	DataPoints        int     `json:"dataPoints"`
	Channels          int     `json:"channels"`
}

// ChannelSummary is the per-channel fold over all of a channel's records.
// AverageRPM is recomputed as revenue*1000/views from the channel's own
// totals, never averaged from stored per-row RPM values.
type ChannelSummary struct {
	ChannelID         string  `json:"channel_id"`
	TotalViews        int64   `json:"total_views"`
	TotalPremiumViews int64   `json:"total_premium_views"`
	TotalRevenue      float64 `json:"total_revenue"`
	AverageRPM        float64 `json:"average_rpm"`
	DataPoints        int     `json:"data_points"`
	FirstSeen         string  `json:"first_seen"`
	LastSeen          string  `json:"last_seen"`
}

// DailyAggregate is one group of a daily breakdown, grouped either by date
// (Date set, entries carry channel IDs) or by channel (ChannelID set,
// entries carry dates).
type DailyAggregate struct {
	Date              string              `json:"date,omitempty"`
	ChannelID         string              `json:"channel_id,omitempty"`
	TotalViews        int64               `json:"total_views"`
	TotalPremiumViews int64               `json:"total_premium_views"`
	TotalRevenue      float64             `json:"total_revenue"`
	Entries           []DailyContribution `json:"entries"`
}

// DailyContribution is one record's contribution inside a DailyAggregate.
type DailyContribution struct {
	ChannelID    string  `json:"channel_id,omitempty"`
	Date         string  `json:"date,omitempty"`
	Views        int64   `json:"views"`
	PremiumViews int64   `json:"premium_views"`
	Revenue      float64 `json:"revenue"`
	AverageRPM   float64 `json:"average_rpm"`
}

// Chunk is a bounded sub-range of dates, both bounds inclusive YYYY-MM-DD.
type Chunk struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DateRange describes the span a combined result covers.
type DateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Days      int    `json:"days"`
}

// CombinedSummary is the recomputed summary over merged chunk results.
type CombinedSummary struct {
	TotalViews        int64   `json:"totalViews"`
	TotalPremiumViews int64   `json:"totalPremiumViews"`
	TotalRevenue      float64 `json:"totalRevenue"`
	AverageRPM        float64 `json:"averageRPM"`
	DataPoints        int     `json:"dataPoints"`
	DataAvailability  int     `json:"dataAvailability"`
	Errors            int     `json:"errors"`
	SuccessRate       int     `json:"successRate"`
}

// CombinedResult merges N chunk results into one summary plus the
// concatenated daily data, ordered chronologically (chunk order).
type CombinedResult struct {
	DateRange DateRange       `json:"dateRange"`
	Summary   CombinedSummary `json:"summary"`
	DailyData []DailyEntry    `json:"dailyData"`
}
