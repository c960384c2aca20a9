// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/mediamirror/internal/models"
	"github.com/tomtom215/mediamirror/internal/store"
)

// statusForError maps store errors to an HTTP status, error code and client message.
func statusForError(err error) (int, string, string) {
	switch {
	case errors.Is(err, store.ErrInvalidName):
		return http.StatusBadRequest, models.ErrCodeValidation, "videoName must be a plain file name"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, models.ErrCodeNotFound, "media not found"
	default:
		return http.StatusInternalServerError, models.ErrCodeInternal, "failed to read media"
	}
}

func respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := statusForError(err)
	respondError(w, r, status, code, message, err)
}
