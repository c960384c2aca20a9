// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIBytesServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_media_bytes_served_total",
			Help: "Total media bytes written to clients",
		},
		[]string{"kind", "status_code"}, // kind: "video", "metadata"
	)

	// Sync Pass Metrics
	SyncPassDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sync_pass_duration_seconds",
			Help:    "Duration of remote sync passes in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		},
	)

	SyncPassesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_passes_total",
			Help: "Total number of sync passes",
		},
		[]string{"result"}, // "success", "failure"
	)

	SyncTriggersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_triggers_total",
			Help: "Total number of sync triggers by source",
		},
		[]string{"source", "outcome"}, // outcome: "ran", "coalesced"
	)

	SyncErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_errors_total",
			Help: "Total number of sync errors",
		},
		[]string{"error_type"}, // "list", "download", "lock", "other"
	)

	SyncLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sync_last_success_timestamp",
			Help: "Unix timestamp of last successful sync pass",
		},
	)

	SyncConnectionOK = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sync_connection_ok",
			Help: "1 when the last sync pass reached the object store without errors",
		},
	)

	SyncObjectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_objects_total",
			Help: "Objects seen by sync passes, by outcome",
		},
		[]string{"outcome"}, // "downloaded", "repaired", "skipped", "failed"
	)

	// Object Store Metrics
	ObjectStoreRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "objectstore_request_duration_seconds",
			Help:    "Duration of object store requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "list", "download"
	)

	ObjectStoreBytesDownloaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "objectstore_bytes_downloaded_total",
			Help: "Total bytes downloaded from the object store",
		},
	)

	// Media Cache Metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_cache_hits_total",
			Help: "Total number of media cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_cache_misses_total",
			Help: "Total number of media cache misses",
		},
	)

	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_cache_evictions_total",
			Help: "Total number of media cache capacity evictions",
		},
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_cache_entries",
			Help: "Current number of cached media entries",
		},
	)

	MediaLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_loads_total",
			Help: "Disk loads into the media cache, by result",
		},
		[]string{"result"}, // "success", "not_found", "error"
	)

	LocalObjects = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "local_objects",
			Help: "Number of media objects registered in the local store index",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Notification Metrics
	NotificationsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_received_total",
			Help: "Total number of change notifications received",
		},
		[]string{"provider"},
	)

	NotificationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_errors_total",
			Help: "Total number of notification receive or ack errors",
		},
		[]string{"provider", "operation"}, // operation: "receive", "ack"
	)

	NotificationTriggersDelayed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_triggers_delayed_total",
			Help: "Notification batches whose sync trigger was delayed by the rate limiter",
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordSyncPass records the outcome of one sync pass.
// errorType is consulted only when err is non-nil.
func RecordSyncPass(duration time.Duration, err error, errorType string) {
	SyncPassDuration.Observe(duration.Seconds())
	if err != nil {
		SyncPassesTotal.WithLabelValues("failure").Inc()
		if errorType == "" {
			errorType = "other"
		}
		SyncErrors.WithLabelValues(errorType).Inc()
		SyncConnectionOK.Set(0)
		return
	}
	SyncPassesTotal.WithLabelValues("success").Inc()
	SyncLastSuccess.Set(float64(time.Now().Unix()))
	SyncConnectionOK.Set(1)
}

// RecordSyncTrigger counts a trigger and whether it started a pass or was folded into one.
func RecordSyncTrigger(source string, coalesced bool) {
	outcome := "ran"
	if coalesced {
		outcome = "coalesced"
	}
	SyncTriggersTotal.WithLabelValues(source, outcome).Inc()
}

// RecordSyncObject counts one object handled by a pass.
func RecordSyncObject(outcome string) {
	SyncObjectsTotal.WithLabelValues(outcome).Inc()
}

// RecordObjectStoreRequest records an object store call.
func RecordObjectStoreRequest(operation string, duration time.Duration, bytes int64) {
	ObjectStoreRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if bytes > 0 {
		ObjectStoreBytesDownloaded.Add(float64(bytes))
	}
}

// RecordCacheLookup counts a media cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		CacheHits.Inc()
	} else {
		CacheMisses.Inc()
	}
}

// RecordCacheEviction counts a capacity eviction.
func RecordCacheEviction() {
	CacheEvictions.Inc()
}

// UpdateCacheSize sets the media cache entry gauge.
func UpdateCacheSize(n int) {
	CacheEntries.Set(float64(n))
}

// RecordMediaLoad records a disk load. notFound distinguishes a missing object from an I/O failure.
func RecordMediaLoad(err error, notFound bool) {
	switch {
	case err == nil:
		MediaLoads.WithLabelValues("success").Inc()
	case notFound:
		MediaLoads.WithLabelValues("not_found").Inc()
	default:
		MediaLoads.WithLabelValues("error").Inc()
	}
}

// UpdateLocalObjects sets the local index size gauge.
func UpdateLocalObjects(n int) {
	LocalObjects.Set(float64(n))
}

// RecordMediaBytes counts media bytes served.
func RecordMediaBytes(kind, statusCode string, n int) {
	APIBytesServed.WithLabelValues(kind, statusCode).Add(float64(n))
}

// RecordNotifications counts a received batch.
func RecordNotifications(provider string, n int) {
	if n > 0 {
		NotificationsReceived.WithLabelValues(provider).Add(float64(n))
	}
}

// RecordNotificationError counts a receive or ack failure. Context cancellation is not an error.
func RecordNotificationError(provider, operation string, err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	NotificationErrors.WithLabelValues(provider, operation).Inc()
}
