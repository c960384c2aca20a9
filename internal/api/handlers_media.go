// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package api

import (
	"net/http"
	"strconv"

	"github.com/tomtom215/mediamirror/internal/byterange"
	"github.com/tomtom215/mediamirror/internal/logging"
	"github.com/tomtom215/mediamirror/internal/metrics"
	"github.com/tomtom215/mediamirror/internal/models"
	"github.com/tomtom215/mediamirror/internal/validation"
)

const (
	contentTypeVideo    = "video/mp4"
	contentTypeMetadata = "application/json"
)

// mediaName validates the videoName query parameter. On failure it writes
// the 400 response and returns false.
func (h *Handler) mediaName(w http.ResponseWriter, r *http.Request) (string, bool) {
	req, verr := validation.ParseMediaRequest(r.URL.Query())
	if verr != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, verr.Error(), nil)
		return "", false
	}
	return req.VideoName, true
}

// Video serves the video bytes of videoName, honoring a single Range header.
//
// GET /video?videoName=<name>
//
// Responses:
//   - 200: the whole body (no Range, a malformed Range, or a range covering everything)
//   - 206: the requested slice, with Content-Range
//   - 416: start beyond the end, with Content-Range: bytes */<total>
//   - 400, 404, 500: JSON error envelope
func (h *Handler) Video(w http.ResponseWriter, r *http.Request) {
	name, ok := h.mediaName(w, r)
	if !ok {
		return
	}

	entry, err := h.media.Get(name)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	rng := byterange.Resolve(r.Header.Get("Range"), entry.VideoLength, h.blockSize)

	w.Header().Set("Accept-Ranges", "bytes")
	if rng.Unsatisfiable || rng.Length() > 0 {
		w.Header().Set("Content-Range", rng.ContentRange())
	}

	if rng.Unsatisfiable {
		respondError(w, r, http.StatusRequestedRangeNotSatisfiable, models.ErrCodeRangeNotSatisfy,
			"requested range is beyond the end of the video", nil)
		return
	}

	body := rng.Slice(entry.Video)
	status := rng.Status()

	w.Header().Set("Content-Type", contentTypeVideo)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)

	if r.Method == http.MethodHead {
		return
	}
	n, err := w.Write(body)
	metrics.RecordMediaBytes("video", strconv.Itoa(status), n)
	if err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Str("video", name).Msg("Client went away during video write")
	}
}

// Metadata serves the metadata document paired with videoName.
//
// GET /metadata?videoName=<name>
func (h *Handler) Metadata(w http.ResponseWriter, r *http.Request) {
	name, ok := h.mediaName(w, r)
	if !ok {
		return
	}

	entry, err := h.media.Get(name)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentTypeMetadata)
	w.Header().Set("Content-Length", strconv.Itoa(len(entry.Metadata)))
	w.WriteHeader(http.StatusOK)

	if r.Method == http.MethodHead {
		return
	}
	n, err := w.Write(entry.Metadata)
	metrics.RecordMediaBytes("metadata", "200", n)
	if err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Str("video", name).Msg("Client went away during metadata write")
	}
}

// VideosList returns every locally mirrored name and the connectivity flag.
//
// GET /videos-list
func (h *Handler) VideosList(w http.ResponseWriter, r *http.Request) {
	names := h.catalog.Names()
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, &models.VideosListResponse{
		Videos:         names,
		IsConnectionOK: h.sync.ConnectionOK(),
	})
}

// DefaultVideoName returns the lowest-sorting local name, or null.
//
// GET /default-video-name
func (h *Handler) DefaultVideoName(w http.ResponseWriter, r *http.Request) {
	resp := models.DefaultVideoResponse{}
	if name, ok := h.catalog.FirstName(); ok {
		resp.DefaultVideoName = &name
	}
	writeJSON(w, http.StatusOK, &resp)
}
