// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

// Package objectstore lists and downloads media objects from S3-compatible storage.
package objectstore

import (
	"context"
	"errors"
	"time"
)

// ErrObjectNotFound is returned by Download when the key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ObjectInfo describes one listed object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	ETag         string
}

// Store is the subset of object storage the mirror needs.
type Store interface {
	// List returns the direct children of prefix (delimiter "/").
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// Download writes the object at key to dstPath and returns the byte count.
	// dstPath is replaced atomically; on error it is left untouched.
	Download(ctx context.Context, key, dstPath string) (int64, error)
}
