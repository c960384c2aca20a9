// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package store

import "errors"

var (
	// ErrNotFound is returned when the video or metadata file of a name is absent.
	ErrNotFound = errors.New("media not found")

	// ErrIO wraps filesystem failures other than absence.
	ErrIO = errors.New("media I/O error")

	// ErrInvalidName is returned for names that are empty or would leave the staging directory.
	ErrInvalidName = errors.New("invalid media name")
)
