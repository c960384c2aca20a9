// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package api

import (
	"time"

	"github.com/tomtom215/mediamirror/internal/cache"
	"github.com/tomtom215/mediamirror/internal/store"
	syncpkg "github.com/tomtom215/mediamirror/internal/sync"
)

// MediaSource returns loaded media, reading from disk on a cache miss.
type MediaSource interface {
	Get(name string) (*store.MediaEntry, error)
	CacheStats() cache.Stats
}

// Catalog lists the locally mirrored names.
type Catalog interface {
	Names() []string
	FirstName() (string, bool)
	Len() int
	Seeded() bool
}

// SyncController exposes the sync engine to HTTP.
type SyncController interface {
	ConnectionOK() bool
	Status() syncpkg.Status
	TriggerAsync(source string)
}

// Handler serves the media and operational endpoints.
type Handler struct {
	media     MediaSource
	catalog   Catalog
	sync      SyncController
	blockSize int64
	version   string
	startTime time.Time

	// breakerState reports the object-store circuit breaker; optional.
	breakerState func() string
}

// NewHandler creates a handler. blockSize is the partial response size used
// when a Range header has no end.
func NewHandler(media MediaSource, catalog Catalog, syncCtl SyncController, blockSize int64) *Handler {
	return &Handler{
		media:     media,
		catalog:   catalog,
		sync:      syncCtl,
		blockSize: blockSize,
		startTime: time.Now(),
	}
}

// SetBreakerState wires the circuit breaker state into the sync status endpoint.
func (h *Handler) SetBreakerState(fn func() string) {
	h.breakerState = fn
}

// SetVersion sets the version reported by the health endpoints.
func (h *Handler) SetVersion(v string) {
	h.version = v
}
