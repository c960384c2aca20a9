// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/mediamirror/internal/logging"
	"github.com/tomtom215/mediamirror/internal/models"
	syncpkg "github.com/tomtom215/mediamirror/internal/sync"
)

// SyncStatus reports the sync engine, cache and breaker state.
//
// GET /api/v1/sync/status
func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	st := h.sync.Status()
	cs := h.media.CacheStats()

	resp := models.SyncStatusResponse{
		ConnectionOK: st.ConnectionOK,
		Syncing:      st.Syncing,
		LastPass:     timePtr(st.LastPass),
		LastSuccess:  timePtr(st.LastSuccess),
		LastError:    st.LastError,
		Passes:       st.Passes,
		Downloaded:   st.Downloaded,
		Failed:       st.Failed,
		LocalObjects: h.catalog.Len(),
		Cache: models.CacheSummary{
			Size:      cs.Size,
			Capacity:  cs.Capacity,
			Hits:      cs.Hits,
			Misses:    cs.Misses,
			Evictions: cs.Evictions,
			HitRate:   cs.HitRate,
		},
		DownloadLatency: make([]models.LatencySummary, 0, len(st.DownloadLatency)),
	}
	if h.breakerState != nil {
		resp.BreakerState = h.breakerState()
	}
	for _, l := range st.DownloadLatency {
		resp.DownloadLatency = append(resp.DownloadLatency, models.LatencySummary{
			Operation: l.Operation,
			Count:     l.Count,
			MinMS:     l.Min,
			P50MS:     l.P50,
			P90MS:     l.P90,
			P99MS:     l.P99,
			MaxMS:     l.Max,
		})
	}

	respondJSON(w, r, http.StatusOK, resp)
}

// SyncTrigger starts a pass in the background. If a pass is running the
// request is folded into one follow-up pass.
//
// POST /api/v1/sync
func (h *Handler) SyncTrigger(w http.ResponseWriter, r *http.Request) {
	h.sync.TriggerAsync(syncpkg.SourceManual)
	logging.Ctx(r.Context()).Info().Str("remote_addr", r.RemoteAddr).Msg("Manual sync requested")

	respondJSON(w, r, http.StatusAccepted, models.SyncTriggerResponse{
		Accepted: true,
		Source:   syncpkg.SourceManual,
	})
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
