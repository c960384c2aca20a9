// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	passIDKey    contextKey = "pass_id"
)

// GenerateRequestID returns a UUIDv4 string.
func GenerateRequestID() string {
	return uuid.New().String()
}

// GeneratePassID returns a short identifier for one sync pass.
func GeneratePassID() string {
	return uuid.New().String()[:8]
}

// ContextWithRequestID attaches an HTTP request ID to ctx.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request ID or "".
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithPassID attaches a sync pass ID to ctx.
func ContextWithPassID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, passIDKey, id)
}

// PassIDFromContext returns the sync pass ID or "".
func PassIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(passIDKey).(string); ok {
		return id
	}
	return ""
}

// Ctx returns the global logger enriched with any IDs found in ctx.
//
//	logging.Ctx(ctx).Info().Str("name", name).Msg("Downloaded")
func Ctx(ctx context.Context) *zerolog.Logger {
	lc := Logger().With()
	if id := RequestIDFromContext(ctx); id != "" {
		lc = lc.Str("request_id", id)
	}
	if id := PassIDFromContext(ctx); id != "" {
		lc = lc.Str("pass_id", id)
	}
	l := lc.Logger()
	return &l
}
