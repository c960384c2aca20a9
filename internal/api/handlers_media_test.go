// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package api

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/mediamirror/internal/models"
	"github.com/tomtom215/mediamirror/internal/store"
)

func TestVideo_Ranges(t *testing.T) {
	env := newTestEnv(t)
	full := env.media.entries["clip-b.mp4"].Video

	tests := []struct {
		name         string
		rangeHeader  string
		wantStatus   int
		wantStart    int
		wantEnd      int
		contentRange string
	}{
		{
			name:         "no range",
			wantStatus:   http.StatusOK,
			wantStart:    0,
			wantEnd:      1000,
			contentRange: "bytes 0-999/1000",
		},
		{
			name:         "first half",
			rangeHeader:  "bytes=0-499",
			wantStatus:   http.StatusPartialContent,
			wantStart:    0,
			wantEnd:      500,
			contentRange: "bytes 0-499/1000",
		},
		{
			name:         "open end uses block size",
			rangeHeader:  "bytes=100-",
			wantStatus:   http.StatusPartialContent,
			wantStart:    100,
			wantEnd:      356,
			contentRange: "bytes 100-355/1000",
		},
		{
			name:         "open end clamped to total",
			rangeHeader:  "bytes=900-",
			wantStatus:   http.StatusPartialContent,
			wantStart:    900,
			wantEnd:      1000,
			contentRange: "bytes 900-999/1000",
		},
		{
			name:         "whole body range is full content",
			rangeHeader:  "bytes=0-999",
			wantStatus:   http.StatusOK,
			wantStart:    0,
			wantEnd:      1000,
			contentRange: "bytes 0-999/1000",
		},
		{
			name:         "end past total clamped",
			rangeHeader:  "bytes=990-5000",
			wantStatus:   http.StatusPartialContent,
			wantStart:    990,
			wantEnd:      1000,
			contentRange: "bytes 990-999/1000",
		},
		{
			name:         "malformed range serves full body",
			rangeHeader:  "items=0-10",
			wantStatus:   http.StatusOK,
			wantStart:    0,
			wantEnd:      1000,
			contentRange: "bytes 0-999/1000",
		},
		{
			name:         "multiple ranges serve full body",
			rangeHeader:  "bytes=0-1,5-6",
			wantStatus:   http.StatusOK,
			wantStart:    0,
			wantEnd:      1000,
			contentRange: "bytes 0-999/1000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.rangeHeader != "" {
				headers["Range"] = tt.rangeHeader
			}
			rec := env.do(http.MethodGet, "/video?videoName=clip-b.mp4", headers)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Content-Type"); got != "video/mp4" {
				t.Errorf("Content-Type = %q", got)
			}
			if got := rec.Header().Get("Accept-Ranges"); got != "bytes" {
				t.Errorf("Accept-Ranges = %q", got)
			}
			if got := rec.Header().Get("Content-Range"); got != tt.contentRange {
				t.Errorf("Content-Range = %q, want %q", got, tt.contentRange)
			}
			wantLen := fmt.Sprint(tt.wantEnd - tt.wantStart)
			if got := rec.Header().Get("Content-Length"); got != wantLen {
				t.Errorf("Content-Length = %q, want %s", got, wantLen)
			}
			if !bytes.Equal(rec.Body.Bytes(), full[tt.wantStart:tt.wantEnd]) {
				t.Errorf("body mismatch: got %d bytes", rec.Body.Len())
			}
		})
	}
}

func TestVideo_Unsatisfiable(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/video?videoName=clip-b.mp4", map[string]string{"Range": "bytes=1000-"})

	if rec.Code != http.StatusRequestedRangeNotSatisfiable {
		t.Fatalf("status = %d, want 416", rec.Code)
	}
	if got := rec.Header().Get("Content-Range"); got != "bytes */1000" {
		t.Errorf("Content-Range = %q, want bytes */1000", got)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Error == nil || resp.Error.Code != models.ErrCodeRangeNotSatisfy {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestVideo_EmptyBody(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/video?videoName=empty.mp4", map[string]string{"Range": "bytes=0-"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("Content-Length") != "0" {
		t.Errorf("Content-Length = %q, want 0", rec.Header().Get("Content-Length"))
	}
	if rec.Header().Get("Content-Range") != "" {
		t.Errorf("Content-Range = %q, want none for an empty body", rec.Header().Get("Content-Range"))
	}
}

func TestVideo_Head(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodHead, "/video?videoName=clip-b.mp4", map[string]string{"Range": "bytes=0-99"})

	if rec.Code != http.StatusPartialContent {
		t.Fatalf("status = %d, want 206", rec.Code)
	}
	if rec.Header().Get("Content-Length") != "100" {
		t.Errorf("Content-Length = %q, want 100", rec.Header().Get("Content-Length"))
	}
	if rec.Body.Len() != 0 {
		t.Errorf("HEAD wrote %d body bytes", rec.Body.Len())
	}
}

func TestVideo_Errors(t *testing.T) {
	env := newTestEnv(t)
	env.media.errs["broken.mp4"] = fmt.Errorf("load broken.mp4 video: %w", store.ErrIO)
	env.media.errs["sneaky.mp4"] = fmt.Errorf("%w: sneaky", store.ErrInvalidName)

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantCode   string
	}{
		{"missing name", "/video", http.StatusBadRequest, models.ErrCodeValidation},
		{"empty name", "/video?videoName=", http.StatusBadRequest, models.ErrCodeValidation},
		{"traversal", "/video?videoName=" + url.QueryEscape("../secret.mp4"), http.StatusBadRequest, models.ErrCodeValidation},
		{"unknown", "/video?videoName=nope.mp4", http.StatusNotFound, models.ErrCodeNotFound},
		{"io failure", "/video?videoName=broken.mp4", http.StatusInternalServerError, models.ErrCodeInternal},
		{"store rejects name", "/video?videoName=sneaky.mp4", http.StatusBadRequest, models.ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodGet, tt.target, nil)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			resp := decodeEnvelope(t, rec)
			if resp.Status != "error" {
				t.Errorf("status field = %q, want error", resp.Status)
			}
			if resp.Error == nil || resp.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", resp.Error, tt.wantCode)
			}
		})
	}
}

func TestVideo_InternalErrorDoesNotLeakDetail(t *testing.T) {
	env := newTestEnv(t)
	env.media.errs["broken.mp4"] = fmt.Errorf("open /data/media/broken.mp4: %w", store.ErrIO)

	rec := env.do(http.MethodGet, "/video?videoName=broken.mp4", nil)
	if bytes.Contains(rec.Body.Bytes(), []byte("/data/media")) {
		t.Errorf("response leaks filesystem path: %s", rec.Body.String())
	}
}

func TestMetadata(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/metadata?videoName=clip-b.mp4", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	want := env.media.entries["clip-b.mp4"].Metadata
	if !bytes.Equal(rec.Body.Bytes(), want) {
		t.Errorf("body = %s, want %s", rec.Body.String(), want)
	}
	if rec.Header().Get("Content-Length") != fmt.Sprint(len(want)) {
		t.Errorf("Content-Length = %q", rec.Header().Get("Content-Length"))
	}
}

func TestMetadata_NotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/metadata?videoName=missing.mp4", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestVideosList(t *testing.T) {
	env := newTestEnv(t)
	env.sync.ok = false

	rec := env.do(http.MethodGet, "/videos-list", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp models.VideosListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []string{"clip-a.mp4", "clip-b.mp4", "empty.mp4"}
	if fmt.Sprint(resp.Videos) != fmt.Sprint(want) {
		t.Errorf("videos = %v, want %v", resp.Videos, want)
	}
	if resp.IsConnectionOK {
		t.Error("isConnectionOk = true, want false")
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"isConnectionOk":false`)) {
		t.Errorf("body uses wrong field name: %s", rec.Body.String())
	}
}

func TestVideosList_EmptyIsArray(t *testing.T) {
	env := newTestEnv(t)
	env.catalog.names = nil

	rec := env.do(http.MethodGet, "/videos-list", nil)
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"videos":[]`)) {
		t.Errorf("empty list should encode as [], got %s", rec.Body.String())
	}
}

func TestDefaultVideoName(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/default-video-name", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Body.String(); got != `{"defaultVideoName":"clip-a.mp4"}` {
		t.Errorf("body = %s", got)
	}

	env.catalog.names = nil
	rec = env.do(http.MethodGet, "/default-video-name", nil)
	if got := rec.Body.String(); got != `{"defaultVideoName":null}` {
		t.Errorf("empty store body = %s", got)
	}
}
