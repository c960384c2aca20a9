// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/mediamirror/internal/models"
)

func (h *Handler) healthResponse(status string) models.HealthResponse {
	return models.HealthResponse{
		Status:       status,
		Seeded:       h.catalog.Seeded(),
		ConnectionOK: h.sync.ConnectionOK(),
		LocalObjects: h.catalog.Len(),
		Uptime:       time.Since(h.startTime).Seconds(),
		Version:      h.version,
	}
}

// HealthLive reports that the process is up. It never checks dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, h.healthResponse("alive"))
}

// HealthReady returns 200 once the local store has been seeded from disk and
// 503 before. Remote connectivity is reported but does not affect readiness,
// since local media can be served while the object store is unreachable.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if !h.catalog.Seeded() {
		writeJSON(w, http.StatusServiceUnavailable, &models.APIResponse{
			Status: "error",
			Data:   h.healthResponse("starting"),
			Metadata: models.Metadata{
				Timestamp: time.Now(),
			},
			Error: &models.APIError{
				Code:    models.ErrCodeUnavailable,
				Message: "local store is still seeding",
			},
		})
		return
	}
	status := "ready"
	if !h.sync.ConnectionOK() {
		status = "degraded"
	}
	respondJSON(w, r, http.StatusOK, h.healthResponse(status))
}
