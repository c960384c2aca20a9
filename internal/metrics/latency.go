// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package metrics

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/DataDog/sketches-go/ddsketch"
)

// LatencyTracker keeps per-operation latency quantiles in DDSketches.
// Prometheus histograms give bucketed rates; the sketches back the
// p50/p99 figures reported by the sync status endpoint.
type LatencyTracker struct {
	mu               sync.Mutex
	sketches         map[string]*ddsketch.DDSketch
	relativeAccuracy float64
}

// LatencyStats summarizes one operation, in milliseconds.
type LatencyStats struct {
	Operation string  `json:"operation"`
	Count     int64   `json:"count"`
	Min       float64 `json:"min_ms"`
	P50       float64 `json:"p50_ms"`
	P90       float64 `json:"p90_ms"`
	P99       float64 `json:"p99_ms"`
	Max       float64 `json:"max_ms"`
}

// NewLatencyTracker creates a tracker. relativeAccuracy of 0.01 means 1% error on quantiles.
func NewLatencyTracker(relativeAccuracy float64) *LatencyTracker {
	if relativeAccuracy <= 0 || relativeAccuracy >= 1 {
		relativeAccuracy = 0.01
	}
	return &LatencyTracker{
		sketches:         make(map[string]*ddsketch.DDSketch),
		relativeAccuracy: relativeAccuracy,
	}
}

// Record adds one observation for operation.
func (lt *LatencyTracker) Record(operation string, d time.Duration) {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	sketch, ok := lt.sketches[operation]
	if !ok {
		var err error
		sketch, err = ddsketch.LogUnboundedDenseDDSketch(lt.relativeAccuracy)
		if err != nil {
			sketch, _ = ddsketch.NewDefaultDDSketch(lt.relativeAccuracy)
		}
		lt.sketches[operation] = sketch
	}
	// DDSketch only accepts non-negative values.
	ms := float64(d.Microseconds()) / 1000.0
	if ms < 0 {
		ms = 0
	}
	_ = sketch.Add(ms)
}

// Quantile returns the value at q (0..1) for operation, in milliseconds.
func (lt *LatencyTracker) Quantile(operation string, q float64) (float64, error) {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	sketch, ok := lt.sketches[operation]
	if !ok {
		return 0, fmt.Errorf("no data for operation: %s", operation)
	}
	return sketch.GetValueAtQuantile(q)
}

// Stats returns the summary for operation.
func (lt *LatencyTracker) Stats(operation string) (LatencyStats, error) {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	sketch, ok := lt.sketches[operation]
	if !ok {
		return LatencyStats{}, fmt.Errorf("no data for operation: %s", operation)
	}
	return summarize(operation, sketch), nil
}

// AllStats returns summaries for every operation, sorted by name.
func (lt *LatencyTracker) AllStats() []LatencyStats {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	out := make([]LatencyStats, 0, len(lt.sketches))
	for op, sketch := range lt.sketches {
		out = append(out, summarize(op, sketch))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Operation < out[j].Operation })
	return out
}

// Reset drops all recorded data.
func (lt *LatencyTracker) Reset() {
	lt.mu.Lock()
	lt.sketches = make(map[string]*ddsketch.DDSketch)
	lt.mu.Unlock()
}

func summarize(op string, sketch *ddsketch.DDSketch) LatencyStats {
	count := sketch.GetCount()
	if count == 0 {
		return LatencyStats{Operation: op}
	}
	lowest, _ := sketch.GetMinValue()
	p50, _ := sketch.GetValueAtQuantile(0.50)
	p90, _ := sketch.GetValueAtQuantile(0.90)
	p99, _ := sketch.GetValueAtQuantile(0.99)
	highest, _ := sketch.GetMaxValue()
	return LatencyStats{
		Operation: op,
		Count:     int64(count),
		Min:       lowest,
		P50:       p50,
		P90:       p90,
		P99:       p99,
		Max:       highest,
	}
}
