// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

// Package database provides the Postgres persistence layer for analytics
// records plus the pure aggregation folds the dashboard endpoints use.
//
// One table, analytics_records, keyed (channel_id, start_date, end_date).
// Writes go through UpsertRecord only; reads are filtered selects. The
// grouping and averaging policies live in aggregate.go as pure functions so
// they reproduce the original reduction semantics exactly and unit-test
// without a live database.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/mediatiger/analytics/internal/config"
	"github.com/mediatiger/analytics/internal/logging"
)

// DB wraps the Postgres connection pool.
type DB struct {
	conn *sql.DB
}

// New opens the Postgres pool and ensures the schema exists.
func New(ctx context.Context, cfg *config.DatabaseConfig) (*DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database.url is required (DATABASE_URL)")
	}

	conn, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingTimeout := cfg.ConnectTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	logging.Info().Msg("Database initialized")
	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping verifies the database is reachable. Used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// migrate creates the analytics_records table and its composite unique key.
// The UNIQUE constraint is what enforces at-most-one-row-per-range; the
// upsert path depends on it as its ON CONFLICT target.
func (db *DB) migrate(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS analytics_records (
		id                  BIGSERIAL PRIMARY KEY,
		channel_id          TEXT        NOT NULL,
		start_date          DATE        NOT NULL,
		end_date            DATE        NOT NULL,
		scraped_at          TIMESTAMPTZ NOT NULL,
		total_views         BIGINT      NOT NULL DEFAULT 0,
		total_premium_views BIGINT      NOT NULL DEFAULT 0,
		total_revenue       NUMERIC(14,2) NOT NULL DEFAULT 0,
		average_rpm         NUMERIC(10,2) NOT NULL DEFAULT 0,
		data_points         INTEGER     NOT NULL DEFAULT 0,
		daily_data          JSONB       NOT NULL DEFAULT '[]'::jsonb,
		raw_data            JSONB,
		status              TEXT        NOT NULL DEFAULT 'success',
		notice              TEXT,
		CONSTRAINT analytics_records_channel_range_key
			UNIQUE (channel_id, start_date, end_date)
	);
	CREATE INDEX IF NOT EXISTS idx_analytics_records_channel
		ON analytics_records (channel_id);
	CREATE INDEX IF NOT EXISTS idx_analytics_records_start_date
		ON analytics_records (start_date);`

	if _, err := db.conn.ExecContext(ctx, schema); err != nil {
		return err
	}
	return nil
}
