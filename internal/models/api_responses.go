// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package models

import (
	"time"
)

// APIResponse is the envelope for /api/v1 endpoints and for every error.
//
// Example success:
//
//	{
//	  "status": "success",
//	  "data": {"connection_ok": true, ...},
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z"}
//	}
//
// Example error:
//
//	{
//	  "status": "error",
//	  "data": null,
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z"},
//	  "error": {"code": "NOT_FOUND", "message": "media not found"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response bookkeeping.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// APIError is the machine-readable part of an error response.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error codes returned in APIError.Code.
const (
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeRangeNotSatisfy = "RANGE_NOT_SATISFIABLE"
	ErrCodeUnavailable     = "SERVICE_UNAVAILABLE"
	ErrCodeConflict        = "CONFLICT"
)
