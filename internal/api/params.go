// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/mediatiger/analytics/internal/config"
	"github.com/mediatiger/analytics/internal/database"
)

var validate = validator.New()

// listParams are the query parameters of GET /api/v1/analytics.
type listParams struct {
	ChannelID string `validate:"omitempty,max=128"`
	StartDate string `validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `validate:"omitempty,datetime=2006-01-02"`
	Limit     int    `validate:"min=1"`
	Offset    int    `validate:"min=0"`
	SortBy    string
	SortDesc  bool
	GroupBy   string `validate:"omitempty,oneof=date channel"`
}

// parseListParams reads and validates query parameters, applying the
// configured defaults and clamping limit to the configured maximum.
func parseListParams(r *http.Request, cfg *config.APIConfig) (*listParams, error) {
	q := r.URL.Query()

	p := &listParams{
		ChannelID: q.Get("channel_id"),
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
		Limit:     cfg.DefaultPageSize,
		Offset:    0,
		SortBy:    q.Get("sort_by"),
		GroupBy:   q.Get("group_by"),
	}

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("limit must be an integer, got %q", raw)
		}
		p.Limit = n
	}
	if p.Limit > cfg.MaxPageSize {
		p.Limit = cfg.MaxPageSize
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("offset must be an integer, got %q", raw)
		}
		p.Offset = n
	}

	switch q.Get("sort_order") {
	case "", "desc":
		p.SortDesc = true
	case "asc":
		p.SortDesc = false
	default:
		return nil, fmt.Errorf("sort_order must be asc or desc")
	}
	if p.SortBy == "" {
		p.SortBy = "scraped_at"
	}
	if p.GroupBy == "" {
		p.GroupBy = "date"
	}

	if err := validate.Struct(p); err != nil {
		return nil, validationMessage(err)
	}
	return p, nil
}

// validationMessage flattens a validator error into one client-safe line.
func validationMessage(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err
	}
	field := verrs[0]
	switch field.Tag() {
	case "datetime":
		return fmt.Errorf("%s must be YYYY-MM-DD", snakeParam(field.Field()))
	case "oneof":
		return fmt.Errorf("%s must be one of: %s", snakeParam(field.Field()), field.Param())
	default:
		return fmt.Errorf("%s is invalid", snakeParam(field.Field()))
	}
}

func snakeParam(field string) string {
	switch field {
	case "ChannelID":
		return "channel_id"
	case "StartDate":
		return "start_date"
	case "EndDate":
		return "end_date"
	case "SortBy":
		return "sort_by"
	case "GroupBy":
		return "group_by"
	default:
		return field
	}
}

func (p *listParams) filters() database.Filters {
	return database.Filters{
		ChannelID: p.ChannelID,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
	}
}
