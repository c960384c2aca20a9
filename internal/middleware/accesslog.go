// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/mediamirror/internal/logging"
)

// AccessLog writes one structured log line per request. Server errors log at
// warn, everything else at debug. Place it after RequestID so the line carries
// the request ID.
func AccessLog(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next(rec, r)

		var event *zerolog.Event
		if rec.statusCode >= http.StatusInternalServerError {
			event = logging.Ctx(r.Context()).Warn()
		} else {
			event = logging.Ctx(r.Context()).Debug()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("query", r.URL.RawQuery).
			Int("status", rec.statusCode).
			Int64("bytes", rec.bytes).
			Dur("duration", time.Since(start)).
			Str("remote_addr", r.RemoteAddr).
			Msg("HTTP request")
	}
}
