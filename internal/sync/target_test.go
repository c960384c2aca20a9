// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package sync

import "testing"

func TestDeriveTarget(t *testing.T) {
	tests := []struct {
		key    string
		prefix string
		want   Target
		ok     bool
	}{
		{"output/clip.mp4", "output/", Target{"output/clip.mp4", "output/clip.json", "clip.mp4"}, true},
		{"clip.mp4", "", Target{"clip.mp4", "clip.json", "clip.mp4"}, true},
		{"output/clip.json", "output/", Target{}, false},
		{"other/clip.mp4", "output/", Target{}, false},
		{"output/sub/clip.mp4", "output/", Target{}, false},
		{"output/.mp4", "output/", Target{}, false},
		{"output/../clip.mp4", "output/", Target{}, false},
		{"output/clip..v2.mp4", "output/", Target{"output/clip..v2.mp4", "output/clip..v2.json", "clip..v2.mp4"}, true},
		{`output/a\b.mp4`, "output/", Target{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := DeriveTarget(tt.key, tt.prefix, ".mp4", ".json")
			if ok != tt.ok || got != tt.want {
				t.Errorf("DeriveTarget(%q) = %+v, %v; want %+v, %v", tt.key, got, ok, tt.want, tt.ok)
			}
		})
	}
}
