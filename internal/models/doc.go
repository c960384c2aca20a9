// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

// Package models defines the JSON bodies of the HTTP API.
//
// The player-facing endpoints (/videos-list, /default-video-name) return
// their bodies directly. Everything under /api/v1 and every error uses the
// APIResponse envelope.
package models
