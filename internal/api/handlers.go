// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

// Package api serves the dashboard REST surface over the analytics store.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/mediatiger/analytics/internal/config"
	"github.com/mediatiger/analytics/internal/database"
	"github.com/mediatiger/analytics/internal/logging"
	"github.com/mediatiger/analytics/internal/models"
	"github.com/mediatiger/analytics/internal/version"
)

// Store is the persistence surface the handlers read from. Implemented by
// *database.DB; tests substitute fakes.
type Store interface {
	ListRecords(ctx context.Context, f database.Filters, p database.Pagination, s database.Sort) ([]models.AnalyticsRecord, int, error)
	FetchRecords(ctx context.Context, f database.Filters) ([]models.AnalyticsRecord, error)
	DistinctChannels(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}

// Handler carries the handler dependencies.
type Handler struct {
	store Store
	cfg   *config.APIConfig
}

// NewHandler creates the REST handler set.
func NewHandler(store Store, cfg *config.APIConfig) *Handler {
	return &Handler{store: store, cfg: cfg}
}

// ListAnalytics serves GET /api/v1/analytics: filtered, sorted, paginated
// records.
func (h *Handler) ListAnalytics(w http.ResponseWriter, r *http.Request) {
	p, err := parseListParams(r, h.cfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}

	filters := p.filters()
	sort := database.Sort{Column: p.SortBy, Descending: p.SortDesc}
	if err := firstErr(filters.Validate(), sort.Validate()); err != nil {
		writeFilterError(w, err)
		return
	}

	records, total, err := h.store.ListRecords(r.Context(), filters,
		database.Pagination{Limit: p.Limit, Offset: p.Offset}, sort)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	pages := 0
	if total > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	if records == nil {
		records = []models.AnalyticsRecord{}
	}
	writeJSON(w, http.StatusOK, models.ListResponse{
		Success: true,
		Data:    records,
		Pagination: models.Pagination{
			Limit:  p.Limit,
			Offset: p.Offset,
			Total:  total,
			Pages:  pages,
		},
		Filters:   filterEcho(filters),
		Timestamp: time.Now().UTC(),
	})
}

// Summary serves GET /api/v1/analytics/summary: the fold over every record
// matching the filters. An empty match is a success with a zeroed summary.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	p, err := parseListParams(r, h.cfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}
	filters := p.filters()
	if err := filters.Validate(); err != nil {
		writeFilterError(w, err)
		return
	}

	records, err := h.store.FetchRecords(r.Context(), filters)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.SummaryResponse{
		Success:   true,
		Summary:   database.Summarize(records),
		Filters:   filterEcho(filters),
		Timestamp: time.Now().UTC(),
	})
}

// Daily serves GET /api/v1/analytics/daily: daily entries regrouped by
// date (default) or by channel.
func (h *Handler) Daily(w http.ResponseWriter, r *http.Request) {
	p, err := parseListParams(r, h.cfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}
	filters := p.filters()
	if err := filters.Validate(); err != nil {
		writeFilterError(w, err)
		return
	}

	records, err := h.store.FetchRecords(r.Context(), filters)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	daily := database.GroupDaily(records, p.GroupBy)
	if daily == nil {
		daily = []models.DailyAggregate{}
	}
	writeJSON(w, http.StatusOK, models.DailyResponse{
		Success:   true,
		DailyData: daily,
		GroupBy:   p.GroupBy,
		Filters:   filterEcho(filters),
		Timestamp: time.Now().UTC(),
	})
}

// Channels serves GET /api/v1/channels. With include_analytics=true each
// channel carries its aggregated totals; otherwise the response is the
// bare ID list.
func (h *Handler) Channels(w http.ResponseWriter, r *http.Request) {
	includeAnalytics := r.URL.Query().Get("include_analytics") == "true"

	var (
		channels any
		total    int
	)
	if includeAnalytics {
		records, err := h.store.FetchRecords(r.Context(), database.Filters{})
		if err != nil {
			h.writeStoreError(w, r, err)
			return
		}
		summaries := database.SummarizeChannels(records)
		if summaries == nil {
			summaries = []models.ChannelSummary{}
		}
		channels, total = summaries, len(summaries)
	} else {
		ids, err := h.store.DistinctChannels(r.Context())
		if err != nil {
			h.writeStoreError(w, r, err)
			return
		}
		if ids == nil {
			ids = []string{}
		}
		channels, total = ids, len(ids)
	}

	writeJSON(w, http.StatusOK, models.ChannelsResponse{
		Success:   true,
		Channels:  channels,
		Total:     total,
		Timestamp: time.Now().UTC(),
	})
}

// Health serves GET /health. Degrades to 503 when the database is down;
// the process itself is still alive so the body stays informative.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status, dbStatus := "ok", "connected"
	code := http.StatusOK
	if err := h.store.Ping(r.Context()); err != nil {
		status, dbStatus = "degraded", "unreachable"
		code = http.StatusServiceUnavailable
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Health check database ping failed")
	}
	writeJSON(w, code, models.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Version:   version.Version,
		Database:  dbStatus,
	})
}

// NotFound serves every unmatched route with the endpoint directory.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, models.ErrorResponse{
		Success: false,
		Error:   "Endpoint not found",
		AvailableEndpoints: []string{
			"GET /api/v1/analytics",
			"GET /api/v1/analytics/summary",
			"GET /api/v1/analytics/daily",
			"GET /api/v1/channels",
			"GET /health",
			"GET /metrics",
		},
	})
}

func (h *Handler) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	logging.Ctx(r.Context()).Error().Err(err).Msg("Store query failed")
	writeError(w, http.StatusInternalServerError, "Failed to query analytics data", "")
}

func writeFilterError(w http.ResponseWriter, err error) {
	var ferr *database.InvalidFilterError
	if errors.As(err, &ferr) {
		writeError(w, http.StatusBadRequest, "Invalid filter", ferr.Error())
		return
	}
	writeError(w, http.StatusBadRequest, "Invalid filter", err.Error())
}

func filterEcho(f database.Filters) models.FilterEcho {
	return models.FilterEcho{
		ChannelID: f.ChannelID,
		StartDate: f.StartDate,
		EndDate:   f.EndDate,
	}
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
