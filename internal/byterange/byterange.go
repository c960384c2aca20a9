// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

// Package byterange maps an HTTP Range header onto a body of known length.
//
// Only single "bytes=<start>-<end>" ranges are honored. Anything else is
// served as the full body, which RFC 9110 permits for ranges a server
// chooses to ignore.
package byterange

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

var (
	// ErrMalformedRange is returned by Parse for headers it cannot honor.
	ErrMalformedRange = errors.New("malformed range header")

	// ErrUnsatisfiable marks a start offset at or past the end of the body.
	ErrUnsatisfiable = errors.New("range not satisfiable")
)

const unitPrefix = "bytes="

// Spec is a parsed Range header. End is inclusive and is -1 when omitted.
type Spec struct {
	Start int64
	End   int64
}

// Range is a resolved window [Start, End) over a body of Total bytes.
type Range struct {
	Start int64
	End   int64
	Total int64

	// Unsatisfiable is set when the requested start lies beyond the body.
	Unsatisfiable bool
}

// Parse reads a "bytes=<start>-<end?>" header.
func Parse(header string) (Spec, error) {
	h := strings.TrimSpace(header)
	if !strings.HasPrefix(h, unitPrefix) {
		return Spec{}, fmt.Errorf("%w: missing %q unit", ErrMalformedRange, unitPrefix)
	}
	h = strings.TrimSpace(h[len(unitPrefix):])
	if strings.Contains(h, ",") {
		return Spec{}, fmt.Errorf("%w: multiple ranges", ErrMalformedRange)
	}

	startText, endText, ok := strings.Cut(h, "-")
	if !ok {
		return Spec{}, fmt.Errorf("%w: missing '-'", ErrMalformedRange)
	}
	startText = strings.TrimSpace(startText)
	endText = strings.TrimSpace(endText)

	// Suffix ranges ("bytes=-500") are not supported.
	start, err := parseOffset(startText)
	if err != nil {
		return Spec{}, fmt.Errorf("%w: start: %v", ErrMalformedRange, err)
	}

	spec := Spec{Start: start, End: -1}
	if endText == "" {
		return spec, nil
	}
	end, err := parseOffset(endText)
	if err != nil {
		return Spec{}, fmt.Errorf("%w: end: %v", ErrMalformedRange, err)
	}
	if end < start {
		return Spec{}, fmt.Errorf("%w: end %d before start %d", ErrMalformedRange, end, start)
	}
	spec.End = end
	return spec, nil
}

func parseOffset(s string) (int64, error) {
	if s == "" {
		return 0, errors.New("empty offset")
	}
	// ParseInt accepts a leading sign; offsets are plain digits.
	if s[0] < '0' || s[0] > '9' {
		return 0, fmt.Errorf("invalid offset %q", s)
	}
	return strconv.ParseInt(s, 10, 64)
}

// Resolve turns a Range header into a window over total bytes.
//
// An empty or malformed header yields the full body. An omitted end yields
// defaultBlock bytes from start. The end is clamped to total.
func Resolve(header string, total, defaultBlock int64) Range {
	full := Range{Start: 0, End: total, Total: total}
	if strings.TrimSpace(header) == "" {
		return full
	}
	spec, err := Parse(header)
	if err != nil {
		return full
	}
	if total > 0 && spec.Start >= total {
		return Range{Total: total, Unsatisfiable: true}
	}
	if total == 0 {
		return full
	}

	var end int64
	if spec.End < 0 {
		if defaultBlock <= 0 {
			end = total
		} else {
			end = addClamped(spec.Start, defaultBlock)
		}
	} else {
		end = addClamped(spec.End, 1)
	}
	if end > total {
		end = total
	}
	return Range{Start: spec.Start, End: end, Total: total}
}

func addClamped(a, b int64) int64 {
	if a > (1<<63-1)-b {
		return 1<<63 - 1
	}
	return a + b
}

// Length returns the number of bytes in the window.
func (r Range) Length() int64 {
	return r.End - r.Start
}

// IsFull reports whether the window covers the whole body.
func (r Range) IsFull() bool {
	return !r.Unsatisfiable && r.Length() == r.Total
}

// Status returns 200, 206 or 416.
func (r Range) Status() int {
	switch {
	case r.Unsatisfiable:
		return http.StatusRequestedRangeNotSatisfiable
	case r.IsFull():
		return http.StatusOK
	default:
		return http.StatusPartialContent
	}
}

// Err returns ErrUnsatisfiable for unsatisfiable ranges and nil otherwise.
func (r Range) Err() error {
	if r.Unsatisfiable {
		return fmt.Errorf("%w: body is %d bytes", ErrUnsatisfiable, r.Total)
	}
	return nil
}

// ContentRange renders the Content-Range header value.
func (r Range) ContentRange() string {
	if r.Unsatisfiable || r.Length() == 0 {
		return fmt.Sprintf("bytes */%d", r.Total)
	}
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End-1, r.Total)
}

// Slice returns the window of body. body must be Total bytes long.
func (r Range) Slice(body []byte) []byte {
	if r.Unsatisfiable {
		return nil
	}
	return body[r.Start:r.End]
}
