// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

/*
Package middleware provides HTTP middleware shared by the API router.

Key Components:

  - RequestID: X-Request-ID propagation and generation, stored in the logging context
  - AccessLog: one zerolog line per request
  - PrometheusMetrics: request count, latency and in-flight gauge labeled by route pattern
  - Compression: gzip for JSON routes such as /metadata

All middleware uses the http.HandlerFunc signature. The api package adapts
them to chi's func(http.Handler) http.Handler form:

	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chiMiddleware(middleware.AccessLog))
	r.Use(chiMiddleware(middleware.PrometheusMetrics))

CORS and rate limiting come from go-chi/cors and go-chi/httprate and are
configured in the api package.
*/
package middleware
