// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

// Package metrics provides Prometheus instrumentation for the analytics core:
// API latency and throughput, upstream request outcomes, circuit breaker
// state, scrape job progress, and datastore upserts.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks dashboard API latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestsTotal counts dashboard API requests.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// UpstreamRequests counts analytics API calls by outcome (success, failure, rejected).
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total number of upstream analytics API requests",
		},
		[]string{"endpoint", "outcome"},
	)

	// CircuitBreakerState reports breaker state (0 closed, 1 half-open, 2 open).
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state: 0=closed, 1=half-open, 2=open",
		},
		[]string{"name"},
	)

	// CircuitBreakerTransitions counts breaker state changes.
	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// ScrapeChunks counts per-chunk scrape outcomes.
	ScrapeChunks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrape_chunks_total",
			Help: "Total number of scraped date-range chunks",
		},
		[]string{"outcome"},
	)

	// ScrapeChannels counts per-channel scrape outcomes in batch and cron runs.
	ScrapeChannels = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrape_channels_total",
			Help: "Total number of per-channel scrape attempts",
		},
		[]string{"job", "outcome"},
	)

	// CronRuns counts cron job executions by result (completed, skipped, failed).
	CronRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cron_runs_total",
			Help: "Total number of cron upsert job triggers",
		},
		[]string{"result"},
	)

	// RecordUpserts counts analytics record upserts by outcome.
	RecordUpserts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "record_upserts_total",
			Help: "Total number of analytics record upserts",
		},
		[]string{"outcome"},
	)

	// DBQueryErrors counts datastore query failures.
	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_query_errors_total",
			Help: "Total number of datastore query errors",
		},
		[]string{"operation"},
	)
)
