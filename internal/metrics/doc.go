// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

/*
Package metrics provides Prometheus metrics collection and export for observability.

Collectors are registered on the default registry through promauto and exposed
at /metrics by the API router:

	curl http://localhost:8080/metrics

# Available Metrics

HTTP Metrics:
  - api_requests_total: requests by method, endpoint and status code (counter)
  - api_request_duration_seconds: request latency (histogram)
  - api_active_requests: in-flight requests (gauge)
  - api_media_bytes_served_total: video and metadata bytes written (counter)

Sync Metrics:
  - sync_pass_duration_seconds: pass duration (histogram)
  - sync_passes_total: passes by result (counter)
  - sync_triggers_total: triggers by source, ran or coalesced (counter)
  - sync_errors_total: failures by type: list, download, lock (counter)
  - sync_objects_total: objects by outcome (counter)
  - sync_connection_ok: the connectivity flag as 0 or 1 (gauge)
  - sync_last_success_timestamp: unix time of the last clean pass (gauge)

Object Store Metrics:
  - objectstore_request_duration_seconds: list and download latency (histogram)
  - objectstore_bytes_downloaded_total: bytes fetched (counter)
  - circuit_breaker_state, circuit_breaker_requests_total,
    circuit_breaker_state_transitions_total

Cache Metrics:
  - media_cache_hits_total, media_cache_misses_total, media_cache_evictions_total
  - media_cache_entries: current cache size (gauge)
  - media_loads_total: disk loads by result (counter)
  - local_objects: names registered in the local store index (gauge)

Notification Metrics:
  - notifications_received_total: messages by provider (counter)
  - notification_errors_total: receive and ack failures (counter)
  - notification_triggers_rate_limited_total: batches not forwarded (counter)

# Latency Quantiles

LatencyTracker keeps DDSketch summaries per operation for the quantiles
shown in GET /api/v1/sync/status. Histograms above remain the source for
alerting.
*/
package metrics
