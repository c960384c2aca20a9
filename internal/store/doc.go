// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

/*
Package store manages the local staging directory that mirrors the object store.

An object is a pair of files sharing a name: the video ("clip.mp4") and its
metadata document ("clip.json"). Names include the video extension, so the
metadata path is derived by swapping the extension.

# Components

Index tracks which names exist locally. It is seeded once from the directory
at startup and only grows afterwards. Whether an object is complete is always
answered from disk, never from memory.

Loader reads a pair from disk into a MediaEntry and keeps it in a bounded LRU
cache. Concurrent misses for the same name share one read.

# Files

Downloads and seed copies are written to a temporary sibling file and renamed
into place, so readers never observe a partially written video.
*/
package store
