// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package sync

import (
	"strings"

	"github.com/tomtom215/mediamirror/internal/logging"
	"github.com/tomtom215/mediamirror/internal/store"
)

// Target is one object pair to mirror.
type Target struct {
	VideoKey    string
	MetadataKey string
	// Name is the video key without the prefix, e.g. "clip.mp4".
	Name string
}

// DeriveTarget maps a listed key to its pair. ok is false for keys outside
// prefix, keys without the video extension and keys below a sub-prefix.
// Keys whose name is unusable on disk are logged and skipped.
func DeriveTarget(key, prefix, videoExt, metadataExt string) (Target, bool) {
	if !strings.HasPrefix(key, prefix) || !strings.HasSuffix(key, videoExt) {
		return Target{}, false
	}
	name := strings.TrimPrefix(key, prefix)
	if name == videoExt {
		return Target{}, false
	}
	if err := store.ValidateName(name); err != nil {
		if !strings.Contains(name, "/") {
			logging.Warn().Err(err).Str("key", key).Msg("Skipping remote object with unusable name")
		}
		return Target{}, false
	}
	return Target{
		VideoKey:    key,
		MetadataKey: strings.TrimSuffix(key, videoExt) + metadataExt,
		Name:        name,
	}, true
}
