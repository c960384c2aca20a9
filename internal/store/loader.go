// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package store

import (
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/mediamirror/internal/cache"
	"github.com/tomtom215/mediamirror/internal/logging"
	"github.com/tomtom215/mediamirror/internal/metrics"
)

// MediaEntry is one object read fully into memory. It is not modified after construction.
type MediaEntry struct {
	Name        string
	Video       []byte
	VideoLength int64
	Metadata    []byte
}

// Loader reads objects from the staging directory into the media cache.
type Loader struct {
	index *Index
	cache *cache.LRU[string, *MediaEntry]
	group singleflight.Group
}

// NewLoader creates a loader caching at most capacity entries.
func NewLoader(index *Index, capacity int) *Loader {
	c := cache.NewLRU[string, *MediaEntry](capacity)
	c.OnEvict(func(name string, _ *MediaEntry) {
		metrics.RecordCacheEviction()
		logging.Debug().Str("name", name).Msg("Evicted media entry")
	})
	return &Loader{index: index, cache: c}
}

// Load reads both files of name from disk, registers the name and caches the
// entry, replacing any previous one. ErrNotFound means a file is absent.
func (l *Loader) Load(name string) (*MediaEntry, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	entry, err := l.read(name)
	metrics.RecordMediaLoad(err, errors.Is(err, ErrNotFound))
	if err != nil {
		return nil, err
	}

	if err := l.index.Register(name); err != nil {
		return nil, err
	}
	l.cache.Put(name, entry)
	metrics.UpdateCacheSize(l.cache.Len())
	return entry, nil
}

func (l *Loader) read(name string) (*MediaEntry, error) {
	video, err := readFile(l.index.VideoPath(name))
	if err != nil {
		return nil, fmt.Errorf("load %s video: %w", name, err)
	}
	meta, err := readFile(l.index.MetadataPath(name))
	if err != nil {
		return nil, fmt.Errorf("load %s metadata: %w", name, err)
	}
	return &MediaEntry{
		Name:        name,
		Video:       video,
		VideoLength: int64(len(video)),
		Metadata:    meta,
	}, nil
}

// Get returns the cached entry for name, loading it from disk on a miss.
// Concurrent misses for the same name share one disk read.
func (l *Loader) Get(name string) (*MediaEntry, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if entry, ok := l.cache.Get(name); ok {
		metrics.RecordCacheLookup(true)
		return entry, nil
	}
	metrics.RecordCacheLookup(false)

	v, err, _ := l.group.Do(name, func() (interface{}, error) {
		return l.Load(name)
	})
	if err != nil {
		return nil, err
	}
	return v.(*MediaEntry), nil
}

// Invalidate drops the cached entry for name so the next Get rereads disk.
func (l *Loader) Invalidate(name string) {
	l.group.Forget(name)
	l.cache.Remove(name)
	metrics.UpdateCacheSize(l.cache.Len())
}

// Cached reports whether name is currently in the cache, without touching recency.
func (l *Loader) Cached(name string) bool {
	return l.cache.Contains(name)
}

// CacheStats returns the media cache counters.
func (l *Loader) CacheStats() cache.Stats {
	return l.cache.Stats()
}
