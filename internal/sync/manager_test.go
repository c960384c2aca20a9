// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package sync

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"
)

func TestTriggerDownloadsMissingPairs(t *testing.T) {
	f := newFixture(t)
	f.remote.putPair("b.mp4")
	f.remote.putPair("a.mp4")
	f.remote.put(testPrefix+"notes.txt", "ignored")
	f.remote.put(testPrefix+"nested/c.mp4", "ignored")

	if f.mgr.ConnectionOK() {
		t.Error("connectivity flag must start false")
	}

	if err := f.mgr.Trigger(context.Background(), SourceManual); err != nil {
		t.Fatalf("Trigger() error: %v", err)
	}

	if got, want := f.index.Names(), []string{"a.mp4", "b.mp4"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	for _, n := range []string{"a.mp4", "b.mp4"} {
		if !f.index.IsDownloaded(n) {
			t.Errorf("%s not downloaded", n)
		}
	}
	if !f.mgr.ConnectionOK() {
		t.Error("connectivity flag should be true after a clean pass")
	}
	if len(f.remote.requested()) != 4 {
		t.Errorf("requests = %v, want 4", f.remote.requested())
	}

	st := f.mgr.Status()
	if st.Passes != 1 || st.Downloaded != 2 || st.Failed != 0 || st.LastError != "" {
		t.Errorf("unexpected status: %+v", st)
	}
	if st.LastSuccess.IsZero() || len(st.DownloadLatency) != 1 {
		t.Errorf("status missing success time or latency: %+v", st)
	}
}

func TestTriggerMirrorsNamesWithDoubleDots(t *testing.T) {
	f := newFixture(t)
	f.remote.putPair("a.mp4")
	f.remote.putPair("match..final.mp4")

	if err := f.mgr.Trigger(context.Background(), SourceManual); err != nil {
		t.Fatalf("Trigger() error: %v", err)
	}

	if got, want := f.index.Names(), []string{"a.mp4", "match..final.mp4"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	entry, err := f.loader.Get("match..final.mp4")
	if err != nil {
		t.Fatalf("Get(match..final.mp4) error: %v", err)
	}
	if string(entry.Video) != "video:match..final.mp4" {
		t.Errorf("video = %q", entry.Video)
	}
}

func TestTriggerIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.remote.putPair("a.mp4")
	f.remote.putPair("b.mp4")

	if err := f.mgr.Trigger(context.Background(), SourceTimer); err != nil {
		t.Fatal(err)
	}
	f.remote.resetRequests()

	if err := f.mgr.Trigger(context.Background(), SourceTimer); err != nil {
		t.Fatal(err)
	}
	if reqs := f.remote.requested(); len(reqs) != 0 {
		t.Errorf("second pass downloaded %v, want nothing", reqs)
	}
	if f.index.Len() != 2 {
		t.Errorf("index size = %d, want 2", f.index.Len())
	}
}

func TestTriggerIsolatesFailures(t *testing.T) {
	f := newFixture(t)
	f.remote.putPair("a.mp4")
	f.remote.putPair("b.mp4")
	f.remote.fail(testPrefix + "b.mp4")

	err := f.mgr.Trigger(context.Background(), SourceNotification)
	if !errors.Is(err, ErrRemoteDownload) {
		t.Fatalf("Trigger() error = %v, want ErrRemoteDownload", err)
	}
	if f.mgr.ConnectionOK() {
		t.Error("connectivity flag should be false after a failed download")
	}

	if !f.index.Contains("a.mp4") || f.index.Contains("b.mp4") {
		t.Errorf("Names() = %v, want only a.mp4", f.index.Names())
	}
	if _, err := f.loader.Get("a.mp4"); err != nil {
		t.Errorf("a.mp4 should be loadable: %v", err)
	}
	for _, key := range f.remote.requested() {
		if key == testPrefix+"b.json" {
			t.Error("metadata requested although its video failed")
		}
	}

	st := f.mgr.Status()
	if st.Failed != 1 || st.Downloaded != 1 || st.LastError == "" {
		t.Errorf("unexpected status: %+v", st)
	}
}

func TestTriggerVideoBeforeMetadata(t *testing.T) {
	f := newFixture(t)
	for _, n := range []string{"a.mp4", "b.mp4", "c.mp4", "d.mp4", "e.mp4"} {
		f.remote.putPair(n)
	}
	if err := f.mgr.Trigger(context.Background(), SourceManual); err != nil {
		t.Fatal(err)
	}

	seen := map[string]int{}
	for i, key := range f.remote.requested() {
		seen[key] = i
	}
	for _, n := range []string{"a", "b", "c", "d", "e"} {
		v, okV := seen[testPrefix+n+".mp4"]
		m, okM := seen[testPrefix+n+".json"]
		if !okV || !okM || v > m {
			t.Errorf("%s: video at %d (%v), metadata at %d (%v)", n, v, okV, m, okM)
		}
	}
}

func TestTriggerRepairsMissingMetadata(t *testing.T) {
	f := newFixture(t)
	f.remote.putPair("a.mp4")
	if err := os.WriteFile(f.index.VideoPath("a.mp4"), []byte("local video"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := f.mgr.Trigger(context.Background(), SourceManual); err != nil {
		t.Fatal(err)
	}
	if got := f.remote.requested(); !reflect.DeepEqual(got, []string{testPrefix + "a.json"}) {
		t.Errorf("requests = %v, want only the metadata", got)
	}
	if !f.index.IsDownloaded("a.mp4") {
		t.Error("a.mp4 should be complete after repair")
	}
	if b, _ := os.ReadFile(f.index.VideoPath("a.mp4")); string(b) != "local video" {
		t.Errorf("existing video was replaced: %q", b)
	}
}

func TestTriggerListFailure(t *testing.T) {
	f := newFixture(t)
	f.remote.putPair("a.mp4")
	if err := f.mgr.Trigger(context.Background(), SourceManual); err != nil {
		t.Fatal(err)
	}

	f.remote.mu.Lock()
	f.remote.listErr = errors.New("connection refused")
	f.remote.mu.Unlock()

	err := f.mgr.Trigger(context.Background(), SourceManual)
	if !errors.Is(err, ErrRemoteList) {
		t.Fatalf("Trigger() error = %v, want ErrRemoteList", err)
	}
	if f.mgr.ConnectionOK() {
		t.Error("connectivity flag should be false after a listing failure")
	}
	if !f.index.Contains("a.mp4") {
		t.Error("index must not shrink")
	}
}

func TestTriggerPreloadAfterDownload(t *testing.T) {
	f := newFixture(t)
	f.cfg.Sync.PreloadAfterDownload = true
	f.remote.putPair("a.mp4")

	if err := f.mgr.Trigger(context.Background(), SourceManual); err != nil {
		t.Fatal(err)
	}
	if !f.loader.Cached("a.mp4") {
		t.Error("a.mp4 should be cached after download with preload enabled")
	}
}

func TestTriggerInvalidatesStaleEntry(t *testing.T) {
	f := newFixture(t)
	f.remote.putPair("a.mp4")
	// A cached entry from a previous copy whose metadata was since removed.
	if err := os.WriteFile(f.index.VideoPath("a.mp4"), []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(f.index.MetadataPath("a.mp4"), []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := f.loader.Get("a.mp4"); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(f.index.MetadataPath("a.mp4")); err != nil {
		t.Fatal(err)
	}

	if err := f.mgr.Trigger(context.Background(), SourceManual); err != nil {
		t.Fatal(err)
	}
	if f.loader.Cached("a.mp4") {
		t.Error("repaired object should be dropped from the cache")
	}
	e, err := f.loader.Get("a.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(e.Metadata), "a.mp4") {
		t.Errorf("metadata = %q, want the remote copy", e.Metadata)
	}
}

func TestTriggerCoalescesDuringPass(t *testing.T) {
	f := newFixture(t)
	f.remote.putPair("a.mp4")
	gate := make(chan struct{})
	f.remote.listGate = gate
	f.remote.listing = make(chan struct{}, 1)

	done := make(chan error, 1)
	go func() { done <- f.mgr.Trigger(context.Background(), SourceTimer) }()

	select {
	case <-f.remote.listing:
	case <-time.After(5 * time.Second):
		t.Fatal("first pass never started listing")
	}

	for i := 0; i < 5; i++ {
		if err := f.mgr.Trigger(context.Background(), SourceNotification); err != nil {
			t.Errorf("coalesced Trigger() error = %v", err)
		}
	}
	if !f.mgr.Status().Syncing {
		t.Error("Status().Syncing should be true during a pass")
	}

	close(gate)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("first Trigger() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("first Trigger() did not return")
	}

	f.remote.mu.Lock()
	calls := f.remote.listCalls
	f.remote.mu.Unlock()
	if calls != 2 {
		t.Errorf("list calls = %d, want 2 (one pass plus one coalesced follow-up)", calls)
	}
	if st := f.mgr.Status(); st.Passes != 2 || st.Syncing {
		t.Errorf("status after coalescing: %+v", st)
	}
}

func TestTriggerFollowUpSurvivesCallerCancel(t *testing.T) {
	f := newFixture(t)
	f.remote.putPair("a.mp4")
	gate := make(chan struct{})
	f.remote.listGate = gate
	f.remote.listing = make(chan struct{}, 1)

	if err := f.mgr.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer func() { _ = f.mgr.Stop() }()

	callerCtx, cancelCaller := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.mgr.Trigger(callerCtx, SourceNotification) }()

	select {
	case <-f.remote.listing:
	case <-time.After(5 * time.Second):
		t.Fatal("first pass never started listing")
	}

	// Coalesced into a follow-up of the running pass.
	if err := f.mgr.Trigger(context.Background(), SourceManual); err != nil {
		t.Fatalf("coalesced Trigger() error = %v", err)
	}
	cancelCaller()

	select {
	case <-f.remote.listing:
	case <-time.After(5 * time.Second):
		t.Fatal("follow-up pass never started listing")
	}
	close(gate)

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Trigger() = %v, want the follow-up pass to succeed", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Trigger() did not return")
	}

	if !f.index.IsDownloaded("a.mp4") {
		t.Error("follow-up pass should have mirrored a.mp4")
	}
	if !f.mgr.ConnectionOK() {
		t.Error("connectivity flag should reflect the successful follow-up")
	}
}

func TestTriggerDirectoryLocked(t *testing.T) {
	f := newFixture(t)
	f.remote.putPair("a.mp4")

	other := flock.New(filepath.Join(f.index.Dir(), LockFileName))
	locked, err := other.TryLock()
	if err != nil || !locked {
		t.Fatalf("TryLock() = %v, %v", locked, err)
	}

	if err := f.mgr.Trigger(context.Background(), SourceManual); !errors.Is(err, ErrDirectoryLocked) {
		t.Errorf("Trigger() error = %v, want ErrDirectoryLocked", err)
	}
	if len(f.remote.requested()) != 0 {
		t.Error("no downloads expected while locked")
	}

	if err := other.Unlock(); err != nil {
		t.Fatal(err)
	}
	if err := f.mgr.Trigger(context.Background(), SourceManual); err != nil {
		t.Errorf("Trigger() after unlock error = %v", err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestManagerStartRunsStartupPass(t *testing.T) {
	f := newFixture(t)
	f.cfg.Sync.OnStart = true
	f.remote.putPair("a.mp4")

	if err := f.mgr.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := f.mgr.Start(context.Background()); err == nil {
		t.Error("second Start() should fail")
	}

	waitFor(t, func() bool { return f.mgr.Status().Passes == 1 })
	if !f.index.IsDownloaded("a.mp4") {
		t.Error("startup pass should download a.mp4")
	}

	if err := f.mgr.Stop(); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	if err := f.mgr.Stop(); err == nil {
		t.Error("second Stop() should fail")
	}
}

func TestManagerTimer(t *testing.T) {
	f := newFixture(t)
	f.cfg.Sync.InitialDelay = 10 * time.Millisecond
	f.cfg.Sync.Interval = 20 * time.Millisecond
	f.remote.putPair("a.mp4")

	if err := f.mgr.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.mgr.Stop() }()

	waitFor(t, func() bool { return f.mgr.Status().Passes >= 3 })
	if !f.mgr.ConnectionOK() {
		t.Error("connectivity flag should be true")
	}
}

func TestManagerTimerDisabled(t *testing.T) {
	f := newFixture(t)
	f.cfg.Sync.InitialDelay = 0
	f.cfg.Sync.Interval = 10 * time.Millisecond

	if err := f.mgr.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	if err := f.mgr.Stop(); err != nil {
		t.Fatal(err)
	}
	if p := f.mgr.Status().Passes; p != 0 {
		t.Errorf("passes = %d, want 0 with timer and startup pass disabled", p)
	}
}

func TestManagerTriggerAsync(t *testing.T) {
	f := newFixture(t)
	f.remote.putPair("a.mp4")
	if err := f.mgr.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	f.mgr.TriggerAsync(SourceManual)
	waitFor(t, func() bool { return f.index.IsDownloaded("a.mp4") })

	if err := f.mgr.Stop(); err != nil {
		t.Fatal(err)
	}
}
