// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

// Package upstream provides the client for the analytics-range API, the
// external source of per-channel revenue data. The API is a collaborator,
// not part of this system; the client only fetches and decodes.
//
// Two endpoints are used:
//
//	GET {base}/api/analytics/range?start_date&end_date&channel
//	GET {base}/api/analytics/channels/list
//
// A non-200 status or a success:false body both surface as *Error so callers
// can treat "the upstream refused" uniformly.
package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"

	"github.com/mediatiger/analytics/internal/config"
	"github.com/mediatiger/analytics/internal/models"
)

// maxErrorBodySize caps how much of an error response body is retained.
const maxErrorBodySize = 64 * 1024

// Error reports an upstream failure: a non-200 response or a response body
// with success set to false. Status carries the HTTP status code; Body a
// bounded excerpt of the response.
type Error struct {
	Status int
	Body   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("upstream analytics API error (status %d): %s", e.Status, e.Body)
}

// RangeSummary is the summary block of a range response.
type RangeSummary struct {
	TotalViews        int64   `json:"totalViews"`
	TotalPremiumViews int64   `json:"totalPremiumViews"`
	TotalRevenue      float64 `json:"totalRevenue"`
	AverageRPM        float64 `json:"averageRPM"`
	DataPoints        int     `json:"dataPoints"`
	DataAvailability  int     `json:"dataAvailability"`
	Errors            int     `json:"errors"`
	SuccessRate       int     `json:"successRate"`
}

// RangeData is the payload of GET /api/analytics/range.
type RangeData struct {
	Success   bool                `json:"success"`
	Summary   RangeSummary        `json:"summary"`
	DailyData []models.DailyEntry `json:"dailyData"`
}

// Channel is one entry of GET /api/analytics/channels/list.
type Channel struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// channelList is the payload of GET /api/analytics/channels/list.
type channelList struct {
	Success  bool      `json:"success"`
	Channels []Channel `json:"channels"`
}

// API is the upstream surface the scraper and cron job depend on.
// Implemented by Client and CircuitBreakerClient; tests substitute fakes.
type API interface {
	FetchRange(ctx context.Context, channel, startDate, endDate string) (*RangeData, error)
	ListChannels(ctx context.Context) ([]Channel, error)
}

// Client is the plain HTTP client for the analytics API.
// Safe for concurrent use.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates an analytics API client from configuration.
func NewClient(cfg *config.UpstreamConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// BaseURL returns the configured upstream base URL. Scrape artifacts record
// it so a stored result can be traced back to its source.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchRange fetches analytics for one channel over [startDate, endDate].
func (c *Client) FetchRange(ctx context.Context, channel, startDate, endDate string) (*RangeData, error) {
	q := url.Values{}
	q.Set("start_date", startDate)
	q.Set("end_date", endDate)
	q.Set("channel", channel)
	reqURL := fmt.Sprintf("%s/api/analytics/range?%s", c.baseURL, q.Encode())

	var data RangeData
	if err := c.getJSON(ctx, reqURL, &data); err != nil {
		return nil, err
	}
	if !data.Success {
		return nil, &Error{Status: http.StatusOK, Body: "upstream reported success=false"}
	}
	return &data, nil
}

// ListChannels fetches the active channel list.
func (c *Client) ListChannels(ctx context.Context) ([]Channel, error) {
	reqURL := c.baseURL + "/api/analytics/channels/list"

	var list channelList
	if err := c.getJSON(ctx, reqURL, &list); err != nil {
		return nil, err
	}
	if !list.Success {
		return nil, &Error{Status: http.StatusOK, Body: "upstream reported success=false"}
	}
	return list.Channels, nil
}

// getJSON performs a GET and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return &Error{Status: resp.StatusCode, Body: string(readBodyForError(resp.Body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode upstream response: %w", err)
	}
	return nil
}

// readBodyForError reads a bounded amount of the response body for error
// reporting, so a large error page never balloons memory.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("... (truncated)")...)
	}
	return body
}
