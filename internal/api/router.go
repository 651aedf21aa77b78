// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mediatiger/analytics/internal/config"
)

// NewRouter assembles the HTTP surface: dashboard API under /api/v1 plus
// health and metrics at the root.
func NewRouter(h *Handler, cfg *config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(cfg.RateLimitReqs, cfg.RateLimitWindow))

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/", h.ListAnalytics)
			r.Get("/summary", h.Summary)
			r.Get("/daily", h.Daily)
		})
		r.Get("/channels", h.Channels)
	})

	// Health and metrics stay outside the rate limit so monitoring is
	// never throttled.
	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.NotFound)

	return r
}
