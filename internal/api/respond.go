// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/mediatiger/analytics/internal/logging"
	"github.com/mediatiger/analytics/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already out; nothing to do but log.
		logging.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, models.ErrorResponse{
		Success: false,
		Error:   message,
		Details: details,
	})
}
