// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

package database

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/mediatiger/analytics/internal/logging"
	"github.com/mediatiger/analytics/internal/metrics"
	"github.com/mediatiger/analytics/internal/models"
)

const recordColumns = `channel_id, start_date::text, end_date::text, scraped_at,
	total_views, total_premium_views, total_revenue, average_rpm,
	data_points, daily_data, raw_data, status, COALESCE(notice, '')`

// UpsertRecord inserts the record or, when a row with the same
// (channel_id, start_date, end_date) already exists, replaces every
// mutable column with the new scrape. Re-running a scrape for a range is
// therefore always safe and always wins.
func (db *DB) UpsertRecord(ctx context.Context, rec *models.AnalyticsRecord) error {
	dailyJSON, err := json.Marshal(rec.DailyData)
	if err != nil {
		return &QueryFailedError{Op: "upsert", Err: err}
	}
	var rawJSON any
	if len(rec.RawData) > 0 {
		// lib/pq sends []byte as bytea; JSONB columns want text.
		rawJSON = string(rec.RawData)
	}

	scrapedAt := rec.ScrapedAt
	if scrapedAt.IsZero() {
		scrapedAt = time.Now().UTC()
	}

	const q = `
	INSERT INTO analytics_records (
		channel_id, start_date, end_date, scraped_at,
		total_views, total_premium_views, total_revenue, average_rpm,
		data_points, daily_data, raw_data, status, notice
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NULLIF($13, ''))
	ON CONFLICT ON CONSTRAINT analytics_records_channel_range_key DO UPDATE SET
		scraped_at          = EXCLUDED.scraped_at,
		total_views         = EXCLUDED.total_views,
		total_premium_views = EXCLUDED.total_premium_views,
		total_revenue       = EXCLUDED.total_revenue,
		average_rpm         = EXCLUDED.average_rpm,
		data_points         = EXCLUDED.data_points,
		daily_data          = EXCLUDED.daily_data,
		raw_data            = EXCLUDED.raw_data,
		status              = EXCLUDED.status,
		notice              = EXCLUDED.notice`

	_, err = db.conn.ExecContext(ctx, q,
		rec.ChannelID, rec.StartDate, rec.EndDate, scrapedAt,
		rec.TotalViews, rec.TotalPremiumViews, rec.TotalRevenue, rec.AverageRPM,
		rec.DataPoints, string(dailyJSON), rawJSON, rec.Status, rec.Notice,
	)
	if err != nil {
		metrics.RecordUpserts.WithLabelValues("error").Inc()
		metrics.DBQueryErrors.WithLabelValues("upsert").Inc()
		return &QueryFailedError{Op: "upsert", Err: err}
	}
	metrics.RecordUpserts.WithLabelValues("success").Inc()
	logging.Debug().
		Str("channel_id", rec.ChannelID).
		Str("start_date", rec.StartDate).
		Str("end_date", rec.EndDate).
		Msg("Record upserted")
	return nil
}

// ListRecords returns one page of records matching the filters plus the
// total match count. The count rides along as a window aggregate so one
// round trip serves both; when the requested offset lands past the last
// row the window result is empty and a count-only query fills in the
// total.
func (db *DB) ListRecords(ctx context.Context, f Filters, p Pagination, s Sort) ([]models.AnalyticsRecord, int, error) {
	where, args := f.whereClause()

	q := "SELECT " + recordColumns + ", COUNT(*) OVER() AS total FROM analytics_records" +
		where + s.orderClause()
	args = append(args, p.Limit)
	q += " LIMIT $" + strconv.Itoa(len(args))
	args = append(args, p.Offset)
	q += " OFFSET $" + strconv.Itoa(len(args))

	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		metrics.DBQueryErrors.WithLabelValues("list").Inc()
		return nil, 0, &QueryFailedError{Op: "list", Err: err}
	}
	defer rows.Close()

	var (
		records []models.AnalyticsRecord
		total   int
	)
	for rows.Next() {
		rec, err := scanRecord(rows, &total)
		if err != nil {
			return nil, 0, &QueryFailedError{Op: "list", Err: err}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		metrics.DBQueryErrors.WithLabelValues("list").Inc()
		return nil, 0, &QueryFailedError{Op: "list", Err: err}
	}

	if len(records) == 0 {
		whereOnly, countArgs := f.whereClause()
		countQ := "SELECT COUNT(*) FROM analytics_records" + whereOnly
		if err := db.conn.QueryRowContext(ctx, countQ, countArgs...).Scan(&total); err != nil {
			metrics.DBQueryErrors.WithLabelValues("count").Inc()
			return nil, 0, &QueryFailedError{Op: "count", Err: err}
		}
	}
	return records, total, nil
}

// FetchRecords returns every record matching the filters, unpaginated.
// The summary and daily endpoints aggregate over the full match set.
func (db *DB) FetchRecords(ctx context.Context, f Filters) ([]models.AnalyticsRecord, error) {
	where, args := f.whereClause()
	q := "SELECT " + recordColumns + ", 0 FROM analytics_records" + where +
		" ORDER BY start_date ASC, channel_id ASC"

	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		metrics.DBQueryErrors.WithLabelValues("fetch").Inc()
		return nil, &QueryFailedError{Op: "fetch", Err: err}
	}
	defer rows.Close()

	var records []models.AnalyticsRecord
	var discard int
	for rows.Next() {
		rec, err := scanRecord(rows, &discard)
		if err != nil {
			return nil, &QueryFailedError{Op: "fetch", Err: err}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		metrics.DBQueryErrors.WithLabelValues("fetch").Inc()
		return nil, &QueryFailedError{Op: "fetch", Err: err}
	}
	return records, nil
}

// DistinctChannels returns the channel IDs present in storage, sorted.
func (db *DB) DistinctChannels(ctx context.Context) ([]string, error) {
	const q = `SELECT DISTINCT channel_id FROM analytics_records ORDER BY channel_id ASC`
	rows, err := db.conn.QueryContext(ctx, q)
	if err != nil {
		metrics.DBQueryErrors.WithLabelValues("channels").Inc()
		return nil, &QueryFailedError{Op: "channels", Err: err}
	}
	defer rows.Close()

	var channels []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, &QueryFailedError{Op: "channels", Err: err}
		}
		channels = append(channels, id)
	}
	if err := rows.Err(); err != nil {
		metrics.DBQueryErrors.WithLabelValues("channels").Inc()
		return nil, &QueryFailedError{Op: "channels", Err: err}
	}
	return channels, nil
}

func scanRecord(rows *sql.Rows, total *int) (models.AnalyticsRecord, error) {
	var (
		rec       models.AnalyticsRecord
		dailyJSON []byte
		rawJSON   sql.NullString
	)
	if err := rows.Scan(
		&rec.ChannelID, &rec.StartDate, &rec.EndDate, &rec.ScrapedAt,
		&rec.TotalViews, &rec.TotalPremiumViews, &rec.TotalRevenue, &rec.AverageRPM,
		&rec.DataPoints, &dailyJSON, &rawJSON, &rec.Status, &rec.Notice,
		total,
	); err != nil {
		return models.AnalyticsRecord{}, err
	}
	if len(dailyJSON) > 0 {
		if err := json.Unmarshal(dailyJSON, &rec.DailyData); err != nil {
			return models.AnalyticsRecord{}, err
		}
	}
	if rawJSON.Valid {
		rec.RawData = []byte(rawJSON.String)
	}
	return rec, nil
}

