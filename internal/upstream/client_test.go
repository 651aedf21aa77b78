// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediatiger/analytics/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&config.UpstreamConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})
}

func TestFetchRange(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/analytics/range", r.URL.Path)
		assert.Equal(t, "2025-05-01", r.URL.Query().Get("start_date"))
		assert.Equal(t, "2025-05-07", r.URL.Query().Get("end_date"))
		assert.Equal(t, "UC123", r.URL.Query().Get("channel"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"summary": {"totalViews": 1000, "totalPremiumViews": 100, "totalRevenue": 5.5,
				"averageRPM": 5.5, "dataPoints": 7, "dataAvailability": 100, "errors": 0, "successRate": 100},
			"dailyData": [{"date": "2025-05-01", "views": 150, "premiumViews": 15, "revenue": 0.8, "rpm": 5.33}]
		}`))
	})

	data, err := client.FetchRange(context.Background(), "UC123", "2025-05-01", "2025-05-07")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), data.Summary.TotalViews)
	assert.Equal(t, 7, data.Summary.DataPoints)
	require.Len(t, data.DailyData, 1)
	assert.Equal(t, "2025-05-01", data.DailyData[0].Date)
}

func TestFetchRangeNon200(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("bad gateway"))
	})

	_, err := client.FetchRange(context.Background(), "UC123", "2025-05-01", "2025-05-07")
	require.Error(t, err)

	var upstreamErr *Error
	require.True(t, errors.As(err, &upstreamErr))
	assert.Equal(t, http.StatusBadGateway, upstreamErr.Status)
	assert.Contains(t, upstreamErr.Body, "bad gateway")
}

func TestFetchRangeSuccessFalse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": false}`))
	})

	_, err := client.FetchRange(context.Background(), "UC123", "2025-05-01", "2025-05-07")
	require.Error(t, err)

	var upstreamErr *Error
	require.True(t, errors.As(err, &upstreamErr))
	assert.Equal(t, http.StatusOK, upstreamErr.Status)
}

func TestListChannels(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/analytics/channels/list", r.URL.Path)
		_, _ = w.Write([]byte(`{"success": true, "channels": [
			{"id": "UC1", "name": "Channel One", "status": "active"},
			{"id": "UC2", "name": "Channel Two", "status": "active"}
		]}`))
	})

	channels, err := client.ListChannels(context.Background())
	require.NoError(t, err)
	require.Len(t, channels, 2)
	assert.Equal(t, "UC1", channels[0].ID)
	assert.Equal(t, "Channel Two", channels[1].Name)
}

func TestListChannelsUpstreamDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused

	client := NewClient(&config.UpstreamConfig{BaseURL: srv.URL, Timeout: time.Second})
	_, err := client.ListChannels(context.Background())
	require.Error(t, err)

	var upstreamErr *Error
	assert.False(t, errors.As(err, &upstreamErr), "transport errors are not upstream API errors")
}

func TestFetchRangeContextCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"success": true}`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.FetchRange(ctx, "UC123", "2025-05-01", "2025-05-07")
	assert.Error(t, err)
}
