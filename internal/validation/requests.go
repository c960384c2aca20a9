// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package validation

import "net/url"

// MaxNameLength bounds media names accepted from clients.
const MaxNameLength = 255

// MediaRequest is the query of /video and /metadata.
type MediaRequest struct {
	VideoName string `query:"videoName" validate:"required,max=255,medianame"`
}

// ParseMediaRequest reads and validates the videoName query parameter.
func ParseMediaRequest(q url.Values) (MediaRequest, *RequestValidationError) {
	req := MediaRequest{VideoName: q.Get("videoName")}
	if err := ValidateStruct(&req); err != nil {
		return MediaRequest{}, err
	}
	return req, nil
}
