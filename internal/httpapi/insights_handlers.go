// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Equanimity Contributors

package httpapi

import (
	"net/http"

	"github.com/equanimity/equanimity/internal/insights"
)

// handleInsights aggregates the authenticated user's activity log into daily
// chart data and a correlation insight.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	username, ok := s.bearerUsername(w, r)
	if !ok {
		return
	}

	entries, err := s.profiles.Entries(r.Context(), username)
	if err != nil {
		s.logger.Error("insights data retrieval failed", "username", username, "error", err)
		writeText(w, http.StatusInternalServerError, "Server error fetching insights data.")
		return
	}

	report := insights.BuildReport(insights.Decode(entries))
	writeJSON(w, http.StatusOK, report)
}
