// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package store

import (
	"os"
	"testing"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewIndex(t.TempDir(), ".mp4", ".json")
	if err != nil {
		t.Fatalf("NewIndex() error: %v", err)
	}
	return idx
}

// writePair writes the video and metadata files for name. Empty content skips that half.
func writePair(t *testing.T, idx *Index, name, video, meta string) {
	t.Helper()
	if video != "" {
		if err := os.WriteFile(idx.VideoPath(name), []byte(video), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if meta != "" {
		if err := os.WriteFile(idx.MetadataPath(name), []byte(meta), 0o600); err != nil {
			t.Fatal(err)
		}
	}
}
