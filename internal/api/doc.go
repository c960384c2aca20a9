// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

/*
Package api serves mirrored media over HTTP.

Endpoints:

	GET  /video?videoName=<name>     video bytes, single Range supported (200, 206, 416)
	GET  /metadata?videoName=<name>  metadata document (application/json)
	GET  /videos-list                {"videos": [...], "isConnectionOk": bool}
	GET  /default-video-name         {"defaultVideoName": string|null}
	GET  /api/v1/health/live         process liveness
	GET  /api/v1/health/ready        200 once the local store is seeded
	GET  /api/v1/sync/status         sync engine, cache and breaker state
	POST /api/v1/sync                start a sync pass (202)
	GET  /metrics                    Prometheus exposition

HEAD is accepted on /video and /metadata.

Middleware order: request ID, real IP, panic recovery, CORS, access log,
Prometheus metrics, then per-group rate limits and security headers. Errors
use the models.APIResponse envelope:

	{"status":"error","data":null,"metadata":{...},"error":{"code":"NOT_FOUND","message":"media not found"}}

Store errors map to statuses in errors.go: store.ErrInvalidName is 400,
store.ErrNotFound is 404 and anything else is 500.
*/
package api
