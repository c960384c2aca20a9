// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

/*
Package cache provides a bounded, thread-safe LRU cache used to keep decoded
media pairs in memory.

# Overview

LRU is generic over key and value. It holds at most Capacity() entries and
evicts the least recently used entry when a new key is added to a full cache.
Get refreshes recency, Contains does not.

# Layout

Entries are stored in a slice of slots. The recency list is a doubly linked
list whose links are slice indexes, and a map resolves keys to slot indexes.
Removed slots go on a free list and are reused by later puts.

# Usage

	c := cache.NewLRU[string, *store.MediaEntry](100)
	c.OnEvict(func(name string, _ *store.MediaEntry) {
	    logging.Debug().Str("name", name).Msg("evicted")
	})

	c.Put("clip-001", entry)
	if e, ok := c.Get("clip-001"); ok {
	    serve(e)
	}

# Thread Safety

All methods are safe for concurrent use. One mutex guards both the key map
and the recency list.
*/
package cache
