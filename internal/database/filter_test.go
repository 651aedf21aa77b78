// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

package database

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiltersValidate(t *testing.T) {
	tests := []struct {
		name    string
		filters Filters
		wantErr string // empty means valid; otherwise the offending field
	}{
		{name: "empty", filters: Filters{}},
		{name: "full", filters: Filters{ChannelID: "ch-a", StartDate: "2024-01-01", EndDate: "2024-12-31"}},
		{name: "bad start", filters: Filters{StartDate: "01/15/2024"}, wantErr: "start_date"},
		{name: "bad end", filters: Filters{EndDate: "2024-13-40"}, wantErr: "end_date"},
		{name: "not a date", filters: Filters{StartDate: "yesterday"}, wantErr: "start_date"},
		{name: "inverted range", filters: Filters{StartDate: "2024-06-01", EndDate: "2024-01-01"}, wantErr: "date_range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filters.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var ferr *InvalidFilterError
			require.ErrorAs(t, err, &ferr)
			assert.Equal(t, tt.wantErr, ferr.Field)
		})
	}
}

func TestWhereClause(t *testing.T) {
	t.Run("no filters", func(t *testing.T) {
		where, args := Filters{}.whereClause()
		assert.Empty(t, where)
		assert.Empty(t, args)
	})

	t.Run("channel only", func(t *testing.T) {
		where, args := Filters{ChannelID: "ch-a"}.whereClause()
		assert.Equal(t, " WHERE channel_id = $1", where)
		assert.Equal(t, []any{"ch-a"}, args)
	})

	t.Run("all filters numbered in order", func(t *testing.T) {
		where, args := Filters{ChannelID: "ch-a", StartDate: "2024-01-01", EndDate: "2024-01-31"}.whereClause()
		assert.Equal(t, " WHERE channel_id = $1 AND start_date >= $2 AND end_date <= $3", where)
		assert.Equal(t, []any{"ch-a", "2024-01-01", "2024-01-31"}, args)
	})

	t.Run("dates without channel renumber", func(t *testing.T) {
		where, args := Filters{StartDate: "2024-01-01", EndDate: "2024-01-31"}.whereClause()
		assert.Equal(t, " WHERE start_date >= $1 AND end_date <= $2", where)
		assert.Len(t, args, 2)
	})
}

func TestSortWhitelist(t *testing.T) {
	assert.NoError(t, Sort{}.Validate())
	assert.NoError(t, Sort{Column: "total_revenue"}.Validate())

	err := Sort{Column: "daily_data; DROP TABLE analytics_records"}.Validate()
	var ferr *InvalidFilterError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, "sort", ferr.Field)
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, " ORDER BY scraped_at DESC", Sort{}.orderClause())
	assert.Equal(t, " ORDER BY total_views ASC", Sort{Column: "total_views"}.orderClause())
	assert.Equal(t, " ORDER BY start_date DESC", Sort{Column: "start_date", Descending: true}.orderClause())
}
