// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

package database

import (
	"fmt"
	"strings"

	"github.com/mediatiger/analytics/internal/daterange"
)

// Filters narrows analytics queries. All fields are optional; empty fields
// are omitted from the generated WHERE clause. Date filters compare against
// the stored range bounds, not against daily entries: StartDate keeps rows
// whose start_date is on or after it, EndDate keeps rows whose end_date is
// on or before it.
type Filters struct {
	ChannelID string
	StartDate string
	EndDate   string
}

// Validate checks date syntax without touching the database. Errors are
// *InvalidFilterError so the API layer can map them to 400s.
func (f Filters) Validate() error {
	if f.StartDate != "" {
		if _, err := daterange.ParseDate(f.StartDate); err != nil {
			return &InvalidFilterError{Field: "start_date", Reason: "must be YYYY-MM-DD"}
		}
	}
	if f.EndDate != "" {
		if _, err := daterange.ParseDate(f.EndDate); err != nil {
			return &InvalidFilterError{Field: "end_date", Reason: "must be YYYY-MM-DD"}
		}
	}
	if f.StartDate != "" && f.EndDate != "" && f.StartDate > f.EndDate {
		return &InvalidFilterError{Field: "date_range", Reason: "start_date is after end_date"}
	}
	return nil
}

// whereClause renders the filters into a WHERE fragment with positional
// placeholders starting at $1. Returns an empty string when no filters are
// set.
func (f Filters) whereClause() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.ChannelID != "" {
		args = append(args, f.ChannelID)
		conds = append(conds, fmt.Sprintf("channel_id = $%d", len(args)))
	}
	if f.StartDate != "" {
		args = append(args, f.StartDate)
		conds = append(conds, fmt.Sprintf("start_date >= $%d", len(args)))
	}
	if f.EndDate != "" {
		args = append(args, f.EndDate)
		conds = append(conds, fmt.Sprintf("end_date <= $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Pagination bounds a list query.
type Pagination struct {
	Limit  int
	Offset int
}

// Sort orders a list query. Column names pass through a whitelist so user
// input never reaches the SQL text.
type Sort struct {
	Column     string
	Descending bool
}

var sortableColumns = map[string]bool{
	"scraped_at":    true,
	"start_date":    true,
	"end_date":      true,
	"total_views":   true,
	"total_revenue": true,
	"average_rpm":   true,
	"channel_id":    true,
}

// Validate rejects sort columns outside the whitelist.
func (s Sort) Validate() error {
	if s.Column == "" {
		return nil
	}
	if !sortableColumns[s.Column] {
		return &InvalidFilterError{Field: "sort", Reason: fmt.Sprintf("unsupported sort column %q", s.Column)}
	}
	return nil
}

// orderClause renders the ORDER BY fragment. Defaults to newest scrape
// first when no column is requested.
func (s Sort) orderClause() string {
	col := s.Column
	if col == "" {
		return " ORDER BY scraped_at DESC"
	}
	dir := "ASC"
	if s.Descending {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s", col, dir)
}
