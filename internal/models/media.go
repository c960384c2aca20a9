// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package models

import "time"

// VideosListResponse is the body of GET /videos-list. Field names are part of
// the player's contract and use camelCase.
type VideosListResponse struct {
	Videos         []string `json:"videos"`
	IsConnectionOK bool     `json:"isConnectionOk"`
}

// DefaultVideoResponse is the body of GET /default-video-name. The name is
// null when nothing has been mirrored yet.
type DefaultVideoResponse struct {
	DefaultVideoName *string `json:"defaultVideoName"`
}

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status       string  `json:"status"`
	Seeded       bool    `json:"seeded"`
	ConnectionOK bool    `json:"connection_ok"`
	LocalObjects int     `json:"local_objects"`
	Uptime       float64 `json:"uptime"`
	Version      string  `json:"version,omitempty"`
}

// LatencySummary is one operation's latency quantiles in milliseconds.
type LatencySummary struct {
	Operation string  `json:"operation"`
	Count     int64   `json:"count"`
	MinMS     float64 `json:"min_ms"`
	P50MS     float64 `json:"p50_ms"`
	P90MS     float64 `json:"p90_ms"`
	P99MS     float64 `json:"p99_ms"`
	MaxMS     float64 `json:"max_ms"`
}

// CacheSummary reports media cache activity.
type CacheSummary struct {
	Size      int     `json:"size"`
	Capacity  int     `json:"capacity"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	HitRate   float64 `json:"hit_rate"`
}

// SyncStatusResponse is the body of GET /api/v1/sync/status.
type SyncStatusResponse struct {
	ConnectionOK bool       `json:"connection_ok"`
	Syncing      bool       `json:"syncing"`
	LastPass     *time.Time `json:"last_pass,omitempty"`
	LastSuccess  *time.Time `json:"last_success,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
	Passes       int64      `json:"passes"`
	Downloaded   int64      `json:"downloaded"`
	Failed       int64      `json:"failed"`
	BreakerState string     `json:"breaker_state,omitempty"`
	LocalObjects int        `json:"local_objects"`

	Cache           CacheSummary     `json:"cache"`
	DownloadLatency []LatencySummary `json:"download_latency"`
}

// SyncTriggerResponse is returned by POST /api/v1/sync.
type SyncTriggerResponse struct {
	Accepted bool   `json:"accepted"`
	Source   string `json:"source"`
}
