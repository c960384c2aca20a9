// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package sync

import "errors"

var (
	// ErrRemoteList means the object store listing failed (or the breaker was open).
	ErrRemoteList = errors.New("remote listing failed")

	// ErrRemoteDownload means at least one object download failed.
	ErrRemoteDownload = errors.New("remote download failed")

	// ErrDirectoryLocked means another process holds the staging directory lock.
	ErrDirectoryLocked = errors.New("staging directory locked by another process")
)
