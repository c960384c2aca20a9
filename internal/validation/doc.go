// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

// Package validation checks HTTP request parameters with go-playground/validator.
//
// Request types declare their rules in struct tags. The custom "medianame"
// rule accepts exactly the names the local store accepts, so a name that
// passes validation can never resolve outside the media directory.
//
//	req, verr := validation.ParseMediaRequest(r.URL.Query())
//	if verr != nil {
//	    // 400 with verr.Error()
//	}
package validation
