// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediatiger/analytics/internal/config"
	"github.com/mediatiger/analytics/internal/database"
	"github.com/mediatiger/analytics/internal/models"
)

type fakeStore struct {
	records  []models.AnalyticsRecord
	channels []string
	pingErr  error
	queryErr error

	gotFilters    database.Filters
	gotPagination database.Pagination
	gotSort       database.Sort
}

func (s *fakeStore) ListRecords(_ context.Context, f database.Filters, p database.Pagination, sort database.Sort) ([]models.AnalyticsRecord, int, error) {
	s.gotFilters, s.gotPagination, s.gotSort = f, p, sort
	if s.queryErr != nil {
		return nil, 0, s.queryErr
	}
	end := min(p.Offset+p.Limit, len(s.records))
	if p.Offset >= len(s.records) {
		return nil, len(s.records), nil
	}
	return s.records[p.Offset:end], len(s.records), nil
}

func (s *fakeStore) FetchRecords(_ context.Context, f database.Filters) ([]models.AnalyticsRecord, error) {
	s.gotFilters = f
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.records, nil
}

func (s *fakeStore) DistinctChannels(context.Context) ([]string, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.channels, nil
}

func (s *fakeStore) Ping(context.Context) error { return s.pingErr }

func testServerConfig() *config.ServerConfig {
	return &config.ServerConfig{
		CORSOrigins:     []string{"*"},
		RateLimitReqs:   1000,
		RateLimitWindow: time.Minute,
	}
}

func newTestRouter(store Store) http.Handler {
	h := NewHandler(store, &config.APIConfig{DefaultPageSize: 100, MaxPageSize: 1000})
	return NewRouter(h, testServerConfig())
}

func doGet(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func someRecords(n int) []models.AnalyticsRecord {
	records := make([]models.AnalyticsRecord, n)
	for i := range records {
		records[i] = models.AnalyticsRecord{
			ChannelID:  fmt.Sprintf("ch-%03d", i),
			StartDate:  "2024-01-01",
			EndDate:    "2024-01-31",
			TotalViews: 100,
			AverageRPM: 2,
			Status:     "success",
		}
	}
	return records
}

func TestListAnalyticsDefaults(t *testing.T) {
	store := &fakeStore{records: someRecords(31)}
	router := newTestRouter(store)

	rec := doGet(t, router, "/api/v1/analytics")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[models.ListResponse](t, rec)
	assert.True(t, resp.Success)
	assert.Len(t, resp.Data, 31)
	assert.Equal(t, 100, resp.Pagination.Limit)
	assert.Equal(t, 0, resp.Pagination.Offset)
	assert.Equal(t, 31, resp.Pagination.Total)
	assert.Equal(t, 1, resp.Pagination.Pages, "31 rows at limit 100 is one page")
	assert.False(t, resp.Timestamp.IsZero())

	assert.Equal(t, database.Sort{Column: "scraped_at", Descending: true}, store.gotSort)
}

func TestListAnalyticsPagination(t *testing.T) {
	store := &fakeStore{records: someRecords(250)}
	router := newTestRouter(store)

	rec := doGet(t, router, "/api/v1/analytics?limit=50&offset=200&sort_by=start_date&sort_order=asc")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[models.ListResponse](t, rec)
	assert.Len(t, resp.Data, 50)
	assert.Equal(t, 250, resp.Pagination.Total)
	assert.Equal(t, 5, resp.Pagination.Pages)
	assert.Equal(t, database.Sort{Column: "start_date", Descending: false}, store.gotSort)
}

func TestListAnalyticsClampsLimit(t *testing.T) {
	store := &fakeStore{}
	router := newTestRouter(store)

	rec := doGet(t, router, "/api/v1/analytics?limit=99999")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1000, store.gotPagination.Limit)
}

func TestListAnalyticsFilterEcho(t *testing.T) {
	store := &fakeStore{records: someRecords(1)}
	router := newTestRouter(store)

	rec := doGet(t, router, "/api/v1/analytics?channel_id=ch-a&start_date=2024-01-01&end_date=2024-06-30")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[models.ListResponse](t, rec)
	assert.Equal(t, models.FilterEcho{
		ChannelID: "ch-a",
		StartDate: "2024-01-01",
		EndDate:   "2024-06-30",
	}, resp.Filters)
	assert.Equal(t, "ch-a", store.gotFilters.ChannelID)
}

func TestListAnalyticsBadParams(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	for _, path := range []string{
		"/api/v1/analytics?start_date=not-a-date",
		"/api/v1/analytics?end_date=2024-13-99",
		"/api/v1/analytics?limit=abc",
		"/api/v1/analytics?limit=0",
		"/api/v1/analytics?offset=-1",
		"/api/v1/analytics?sort_order=sideways",
		"/api/v1/analytics?sort_by=daily_data",
		"/api/v1/analytics?start_date=2024-06-01&end_date=2024-01-01",
	} {
		rec := doGet(t, router, path)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "path %s", path)
		resp := decode[models.ErrorResponse](t, rec)
		assert.False(t, resp.Success)
		assert.NotEmpty(t, resp.Error)
	}
}

func TestListAnalyticsStoreError(t *testing.T) {
	store := &fakeStore{queryErr: &database.QueryFailedError{Op: "list", Err: errors.New("down")}}
	router := newTestRouter(store)

	rec := doGet(t, router, "/api/v1/analytics")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decode[models.ErrorResponse](t, rec)
	assert.False(t, resp.Success)
}

func TestSummaryEmpty(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	rec := doGet(t, router, "/api/v1/analytics/summary")
	require.Equal(t, http.StatusOK, rec.Code, "no data is a success with zeroes")

	resp := decode[models.SummaryResponse](t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, models.Summary{}, resp.Summary)
}

func TestSummaryAggregates(t *testing.T) {
	store := &fakeStore{records: []models.AnalyticsRecord{
		{ChannelID: "ch-a", TotalViews: 1000, TotalRevenue: 5, AverageRPM: 5},
		{ChannelID: "ch-b", TotalViews: 2000, TotalRevenue: 15, AverageRPM: 7.5},
	}}
	router := newTestRouter(store)

	rec := doGet(t, router, "/api/v1/analytics/summary")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[models.SummaryResponse](t, rec)
	assert.Equal(t, int64(3000), resp.Summary.TotalViews)
	assert.InDelta(t, 6.25, resp.Summary.AverageRPM, 0.001, "unweighted mean of per-row RPM")
	assert.Equal(t, 2, resp.Summary.Channels)
}

func TestDailyGroupedByDate(t *testing.T) {
	store := &fakeStore{records: []models.AnalyticsRecord{
		{ChannelID: "ch-a", DailyData: []models.DailyEntry{
			{Date: "2024-01-01", Views: 100},
			{Date: "2024-01-02", Views: 200},
		}},
	}}
	router := newTestRouter(store)

	rec := doGet(t, router, "/api/v1/analytics/daily")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[models.DailyResponse](t, rec)
	assert.Equal(t, "date", resp.GroupBy)
	require.Len(t, resp.DailyData, 2)
	assert.Equal(t, "2024-01-01", resp.DailyData[0].Date)
}

func TestDailyGroupedByChannel(t *testing.T) {
	store := &fakeStore{records: []models.AnalyticsRecord{
		{ChannelID: "ch-a", DailyData: []models.DailyEntry{{Date: "2024-01-01", Views: 100}}},
	}}
	router := newTestRouter(store)

	rec := doGet(t, router, "/api/v1/analytics/daily?group_by=channel")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[models.DailyResponse](t, rec)
	assert.Equal(t, "channel", resp.GroupBy)
	require.Len(t, resp.DailyData, 1)
	assert.Equal(t, "ch-a", resp.DailyData[0].ChannelID)
}

func TestDailyRejectsUnknownGroupBy(t *testing.T) {
	router := newTestRouter(&fakeStore{})
	rec := doGet(t, router, "/api/v1/analytics/daily?group_by=hour")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChannelsPlainList(t *testing.T) {
	store := &fakeStore{channels: []string{"ch-a", "ch-b"}}
	router := newTestRouter(store)

	rec := doGet(t, router, "/api/v1/channels")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[models.ChannelsResponse](t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, []any{"ch-a", "ch-b"}, resp.Channels)
}

func TestChannelsWithAnalytics(t *testing.T) {
	store := &fakeStore{records: []models.AnalyticsRecord{
		{ChannelID: "ch-a", StartDate: "2024-01-01", EndDate: "2024-01-31",
			TotalViews: 1000, TotalRevenue: 5},
	}}
	router := newTestRouter(store)

	rec := doGet(t, router, "/api/v1/channels?include_analytics=true")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success  bool                    `json:"success"`
		Channels []models.ChannelSummary `json:"channels"`
		Total    int                     `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Channels, 1)
	assert.Equal(t, "ch-a", resp.Channels[0].ChannelID)
	assert.InDelta(t, 5.0, resp.Channels[0].AverageRPM, 0.001, "5 * 1000 / 1000")
}

func TestHealthOK(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	rec := doGet(t, router, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[models.HealthResponse](t, rec)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "connected", resp.Database)
	assert.NotEmpty(t, resp.Version)
}

func TestHealthDegraded(t *testing.T) {
	router := newTestRouter(&fakeStore{pingErr: errors.New("connection refused")})

	rec := doGet(t, router, "/health")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	resp := decode[models.HealthResponse](t, rec)
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "unreachable", resp.Database)
}

func TestNotFoundListsEndpoints(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	rec := doGet(t, router, "/api/v1/nope")
	require.Equal(t, http.StatusNotFound, rec.Code)

	resp := decode[models.ErrorResponse](t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.AvailableEndpoints, "GET /api/v1/analytics")
	assert.Contains(t, resp.AvailableEndpoints, "GET /health")
}

func TestRequestIDHeader(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	rec := doGet(t, router, "/health")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "upstream-id-123")
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req)
	assert.Equal(t, "upstream-id-123", rec2.Header().Get("X-Request-ID"), "inbound IDs propagate")
}

func TestPanicRecoveredAsJSON(t *testing.T) {
	panicking := recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	panicking.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decode[models.ErrorResponse](t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "Internal server error", resp.Error)
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(&fakeStore{})
	rec := doGet(t, router, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
