// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/tomtom215/mediamirror/internal/logging"
	"github.com/tomtom215/mediamirror/internal/metrics"
)

// Index is the set of object names staged in the local directory.
// The set only grows; the lowest name in sort order is the default object.
type Index struct {
	dir         string
	videoExt    string
	metadataExt string

	mu    sync.RWMutex
	names map[string]struct{}

	seeded atomic.Bool
}

// Preloader loads a staged object into memory.
type Preloader interface {
	Load(name string) (*MediaEntry, error)
}

// NewIndex creates an index over dir, creating the directory if needed.
func NewIndex(dir, videoExt, metadataExt string) (*Index, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("%w: create staging dir: %v", ErrIO, err)
	}
	return &Index{
		dir:         dir,
		videoExt:    videoExt,
		metadataExt: metadataExt,
		names:       make(map[string]struct{}),
	}, nil
}

// Dir returns the staging directory.
func (x *Index) Dir() string { return x.dir }

// VideoExt returns the video file extension, including the dot.
func (x *Index) VideoExt() string { return x.videoExt }

// MetadataExt returns the metadata file extension, including the dot.
func (x *Index) MetadataExt() string { return x.metadataExt }

// ValidateName rejects names that are empty or could resolve outside the
// directory. A single path component cannot escape, so dots inside a name
// ("match..final.mp4") are fine.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// VideoPath returns the on-disk path of the video half of name.
func (x *Index) VideoPath(name string) string {
	return filepath.Join(x.dir, name)
}

// MetadataPath returns the on-disk path of the metadata half of name.
func (x *Index) MetadataPath(name string) string {
	return filepath.Join(x.dir, strings.TrimSuffix(name, x.videoExt)+x.metadataExt)
}

// IsDownloaded reports whether both files of name exist on disk.
func (x *Index) IsDownloaded(name string) bool {
	if ValidateName(name) != nil {
		return false
	}
	return fileExists(x.VideoPath(name)) && fileExists(x.MetadataPath(name))
}

// HasVideo reports whether the video file of name exists on disk.
func (x *Index) HasVideo(name string) bool {
	if ValidateName(name) != nil {
		return false
	}
	return fileExists(x.VideoPath(name))
}

// Register adds name to the index. Registering a known name is a no-op.
func (x *Index) Register(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	x.mu.Lock()
	x.names[name] = struct{}{}
	n := len(x.names)
	x.mu.Unlock()

	metrics.UpdateLocalObjects(n)
	return nil
}

// Contains reports whether name has been registered.
func (x *Index) Contains(name string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	_, ok := x.names[name]
	return ok
}

// Names returns a sorted snapshot of registered names.
func (x *Index) Names() []string {
	x.mu.RLock()
	out := make([]string, 0, len(x.names))
	for name := range x.names {
		out = append(out, name)
	}
	x.mu.RUnlock()

	sort.Strings(out)
	return out
}

// FirstName returns the lowest registered name.
func (x *Index) FirstName() (string, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	first, found := "", false
	for name := range x.names {
		if !found || name < first {
			first, found = name, true
		}
	}
	return first, found
}

// Len returns the number of registered names.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.names)
}

// Seeded reports whether Seed has completed.
func (x *Index) Seeded() bool {
	return x.seeded.Load()
}

// Seed registers every video file already in the directory and removes
// leftover temp files from interrupted writes. When preload is non-nil each
// registered name is loaded; load failures are logged and skipped.
// It returns the number of names registered.
func (x *Index) Seed(ctx context.Context, preload Preloader) (int, error) {
	defer x.seeded.Store(true)

	entries, err := os.ReadDir(x.dir)
	if err != nil {
		return 0, fmt.Errorf("%w: scan staging dir: %v", ErrIO, err)
	}

	var found []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		if isTempFile(name) {
			if rmErr := os.Remove(filepath.Join(x.dir, name)); rmErr != nil {
				logging.Warn().Err(rmErr).Str("file", name).Msg("Failed to remove stale temp file")
			}
			continue
		}
		if !strings.HasSuffix(name, x.videoExt) {
			continue
		}
		if err := x.Register(name); err != nil {
			continue
		}
		found = append(found, name)
	}

	logging.Info().Int("objects", len(found)).Str("dir", x.dir).Msg("Seeded local store index")

	if preload == nil {
		return len(found), nil
	}
	sort.Strings(found)
	for _, name := range found {
		if ctx.Err() != nil {
			return len(found), ctx.Err()
		}
		if _, err := preload.Load(name); err != nil {
			logging.Warn().Err(err).Str("name", name).Msg("Preload failed")
		}
	}
	return len(found), nil
}

// InstallDefault copies a bundled video and metadata pair into the directory
// unless the object is already complete there. It returns the installed name,
// which is the base name of videoSrc.
func (x *Index) InstallDefault(videoSrc, metadataSrc string) (string, error) {
	name := filepath.Base(videoSrc)
	if !strings.HasSuffix(name, x.videoExt) {
		return "", fmt.Errorf("%w: seed video %q lacks extension %s", ErrInvalidName, name, x.videoExt)
	}
	if x.IsDownloaded(name) {
		return name, nil
	}
	if _, err := CopyFile(videoSrc, x.VideoPath(name)); err != nil {
		return "", fmt.Errorf("%w: copy seed video: %v", ErrIO, err)
	}
	if _, err := CopyFile(metadataSrc, x.MetadataPath(name)); err != nil {
		return "", fmt.Errorf("%w: copy seed metadata: %v", ErrIO, err)
	}
	return name, nil
}
