// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

package models

import "time"

// Every REST response carries a success boolean and a server timestamp.
// Error responses use ErrorResponse; each read endpoint has its own
// success envelope so field names stay stable for dashboard clients.

// FilterEcho reflects the filters a request was served with.
type FilterEcho struct {
	ChannelID string `json:"channel_id,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// Pagination describes the page window of a list response.
type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
	Pages  int `json:"pages"`
}

// ListResponse is the envelope for GET /api/v1/analytics.
type ListResponse struct {
	Success    bool              `json:"success"`
	Data       []AnalyticsRecord `json:"data"`
	Pagination Pagination        `json:"pagination"`
	Filters    FilterEcho        `json:"filters"`
	Timestamp  time.Time         `json:"timestamp"`
}

// SummaryResponse is the envelope for GET /api/v1/analytics/summary.
type SummaryResponse struct {
	Success   bool       `json:"success"`
	Summary   Summary    `json:"summary"`
	Filters   FilterEcho `json:"filters"`
	Timestamp time.Time  `json:"timestamp"`
}

// DailyResponse is the envelope for GET /api/v1/analytics/daily.
type DailyResponse struct {
	Success   bool             `json:"success"`
	DailyData []DailyAggregate `json:"daily_data"`
	GroupBy   string           `json:"group_by"`
	Filters   FilterEcho       `json:"filters"`
	Timestamp time.Time        `json:"timestamp"`
}

// ChannelsResponse is the envelope for GET /api/v1/channels.
// Channels holds []string or []ChannelSummary depending on include_analytics.
type ChannelsResponse struct {
	Success   bool        `json:"success"`
	Channels  interface{} `json:"channels"`
	Total     int         `json:"total"`
	Timestamp time.Time   `json:"timestamp"`
}

// HealthResponse is the envelope for GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Database  string    `json:"database"`
}

// ErrorResponse is the envelope for every failure, including 404 and the
// catch-all 500 produced by the recovery middleware.
type ErrorResponse struct {
	Success            bool     `json:"success"`
	Error              string   `json:"error"`
	Details            string   `json:"details,omitempty"`
	AvailableEndpoints []string `json:"available_endpoints,omitempty"`
}
