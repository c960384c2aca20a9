// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package metrics

import (
	"math"
	"sync"
	"testing"
	"time"
)

func TestLatencyTrackerQuantiles(t *testing.T) {
	lt := NewLatencyTracker(0.01)
	for i := 1; i <= 100; i++ {
		lt.Record("download", time.Duration(i)*time.Millisecond)
	}

	stats, err := lt.Stats("download")
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}
	if stats.Count != 100 {
		t.Errorf("Count = %d, want 100", stats.Count)
	}
	// 1% relative accuracy, allow a little slack.
	if math.Abs(stats.P50-50) > 1.5 {
		t.Errorf("P50 = %v, want ~50", stats.P50)
	}
	if math.Abs(stats.P99-99) > 2 {
		t.Errorf("P99 = %v, want ~99", stats.P99)
	}
	if stats.Min > stats.P50 || stats.P50 > stats.Max {
		t.Errorf("quantiles out of order: %+v", stats)
	}
}

func TestLatencyTrackerUnknownOperation(t *testing.T) {
	lt := NewLatencyTracker(0.01)
	if _, err := lt.Stats("list"); err == nil {
		t.Error("expected error for operation with no data")
	}
	if _, err := lt.Quantile("list", 0.5); err == nil {
		t.Error("expected error for operation with no data")
	}
}

func TestLatencyTrackerAllStatsSorted(t *testing.T) {
	lt := NewLatencyTracker(0)
	lt.Record("list", time.Millisecond)
	lt.Record("download", time.Millisecond)

	all := lt.AllStats()
	if len(all) != 2 || all[0].Operation != "download" || all[1].Operation != "list" {
		t.Errorf("AllStats() = %+v", all)
	}

	lt.Reset()
	if len(lt.AllStats()) != 0 {
		t.Error("Reset() should drop all sketches")
	}
}

func TestLatencyTrackerConcurrent(t *testing.T) {
	lt := NewLatencyTracker(0.02)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 250; i++ {
				lt.Record("download", time.Duration(i)*time.Microsecond)
			}
		}()
	}
	wg.Wait()

	stats, err := lt.Stats("download")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Count != 2000 {
		t.Errorf("Count = %d, want 2000", stats.Count)
	}
}
