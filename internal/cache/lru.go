// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package cache

import (
	"sync"
)

// nilSlot marks the absence of a neighbour in the recency list.
const nilSlot = -1

// slot is one arena cell. prev and next are indexes into LRU.slots, not pointers.
type slot[K comparable, V any] struct {
	key   K
	value V
	prev  int
	next  int
}

// LRU is a fixed-capacity, thread-safe Least Recently Used cache.
//
// Entries live in an arena of slots addressed by index, with a parallel
// key->index map. The recency list is threaded through the slots via
// prev/next indexes, so there are no node pointers to alias:
//
//   - O(1) Get, Put, Remove, Contains
//   - O(1) eviction of the least recently used entry
//   - freed slots are recycled through a free list
//
// A single mutex guards the map and the list together. A Get racing an
// eviction of the same key therefore sees the entry either fully present or
// fully gone.
type LRU[K comparable, V any] struct {
	mu sync.Mutex

	capacity int
	slots    []slot[K, V]
	index    map[K]int
	free     []int

	// head is the most recently used slot, tail the least recently used.
	head int
	tail int

	onEvict func(key K, value V)

	hits      int64
	misses    int64
	evictions int64
}

// NewLRU creates an LRU cache holding at most capacity entries.
// A capacity below 1 is raised to 1.
func NewLRU[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &LRU[K, V]{
		capacity: capacity,
		slots:    make([]slot[K, V], 0, capacity),
		index:    make(map[K]int, capacity),
		head:     nilSlot,
		tail:     nilSlot,
	}
}

// OnEvict registers fn to be called after an entry is evicted for capacity.
// fn runs outside the cache lock and may call back into the cache.
// Explicit Remove and Clear do not invoke it.
func (c *LRU[K, V]) OnEvict(fn func(key K, value V)) {
	c.mu.Lock()
	c.onEvict = fn
	c.mu.Unlock()
}

// Get returns the value for key and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}

	c.hits++
	c.moveToFront(i)
	return c.slots[i].value, true
}

// Put stores value under key and marks it most recently used. Putting an
// existing key replaces its value. Putting a new key into a full cache evicts
// exactly the least recently used entry.
func (c *LRU[K, V]) Put(key K, value V) {
	var (
		evicted      bool
		evictedKey   K
		evictedValue V
		fn           func(K, V)
	)

	c.mu.Lock()
	if i, ok := c.index[key]; ok {
		c.slots[i].value = value
		c.moveToFront(i)
		c.mu.Unlock()
		return
	}

	var i int
	switch {
	case len(c.index) >= c.capacity:
		// Reuse the tail slot in place.
		i = c.tail
		evicted = true
		evictedKey, evictedValue = c.slots[i].key, c.slots[i].value
		c.unlink(i)
		delete(c.index, evictedKey)
		c.evictions++
		fn = c.onEvict
	case len(c.free) > 0:
		i = c.free[len(c.free)-1]
		c.free = c.free[:len(c.free)-1]
	default:
		c.slots = append(c.slots, slot[K, V]{})
		i = len(c.slots) - 1
	}

	c.slots[i] = slot[K, V]{key: key, value: value, prev: nilSlot, next: nilSlot}
	c.pushFront(i)
	c.index[key] = i
	c.mu.Unlock()

	if evicted && fn != nil {
		fn(evictedKey, evictedValue)
	}
}

// Remove deletes key from the cache. It is a no-op if key is absent.
func (c *LRU[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[key]
	if !ok {
		return
	}
	c.unlink(i)
	delete(c.index, key)
	c.slots[i] = slot[K, V]{prev: nilSlot, next: nilSlot}
	c.free = append(c.free, i)
}

// Contains reports whether key is cached without touching its recency.
func (c *LRU[K, V]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.index[key]
	return ok
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index)
}

// Capacity returns the configured maximum number of entries.
func (c *LRU[K, V]) Capacity() int {
	return c.capacity
}

// Clear drops every entry. Concurrent callers observe the cache either
// before or after the clear, never in between.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.slots = make([]slot[K, V], 0, c.capacity)
	c.index = make(map[K]int, c.capacity)
	c.free = nil
	c.head = nilSlot
	c.tail = nilSlot
}

// Keys returns the cached keys ordered from most to least recently used.
func (c *LRU[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]K, 0, len(c.index))
	for i := c.head; i != nilSlot; i = c.slots[i].next {
		keys = append(keys, c.slots[i].key)
	}
	return keys
}

// Stats returns a snapshot of cache counters.
func (c *LRU[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      len(c.index),
		Capacity:  c.capacity,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// Internal list operations (must be called with lock held)

func (c *LRU[K, V]) pushFront(i int) {
	c.slots[i].prev = nilSlot
	c.slots[i].next = c.head
	if c.head != nilSlot {
		c.slots[c.head].prev = i
	}
	c.head = i
	if c.tail == nilSlot {
		c.tail = i
	}
}

func (c *LRU[K, V]) unlink(i int) {
	prev, next := c.slots[i].prev, c.slots[i].next
	if prev != nilSlot {
		c.slots[prev].next = next
	} else {
		c.head = next
	}
	if next != nilSlot {
		c.slots[next].prev = prev
	} else {
		c.tail = prev
	}
	c.slots[i].prev = nilSlot
	c.slots[i].next = nilSlot
}

func (c *LRU[K, V]) moveToFront(i int) {
	if c.head == i {
		return
	}
	c.unlink(i)
	c.pushFront(i)
}
