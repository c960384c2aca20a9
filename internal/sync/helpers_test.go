// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package sync

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/tomtom215/mediamirror/internal/config"
	"github.com/tomtom215/mediamirror/internal/objectstore"
	"github.com/tomtom215/mediamirror/internal/store"
)

const testPrefix = "output/"

// fakeRemote is an in-memory ObjectStore that records every request.
type fakeRemote struct {
	mu        sync.Mutex
	objects   map[string]string
	failKeys  map[string]bool
	listErr   error
	requests  []string
	listCalls int

	// listGate, when set, blocks List until it is closed.
	listGate chan struct{}
	// listing is signalled once List has been entered.
	listing chan struct{}
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		objects:  make(map[string]string),
		failKeys: make(map[string]bool),
	}
}

func (f *fakeRemote) put(key, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = body
}

func (f *fakeRemote) putPair(name string) {
	base := strings.TrimSuffix(name, ".mp4")
	f.put(testPrefix+name, "video:"+name)
	f.put(testPrefix+base+".json", `{"name":"`+name+`"}`)
}

func (f *fakeRemote) fail(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failKeys[key] = true
}

func (f *fakeRemote) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	f.mu.Lock()
	f.listCalls++
	gate, listing := f.listGate, f.listing
	f.mu.Unlock()

	if listing != nil {
		select {
		case listing <- struct{}{}:
		default:
		}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []ObjectInfo
	for k, v := range f.objects {
		if !strings.HasPrefix(k, prefix) || strings.Contains(strings.TrimPrefix(k, prefix), "/") {
			continue
		}
		out = append(out, ObjectInfo{Key: k, Size: int64(len(v))})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (f *fakeRemote) Download(ctx context.Context, key, dstPath string) (int64, error) {
	f.mu.Lock()
	f.requests = append(f.requests, key)
	body, ok := f.objects[key]
	failing := f.failKeys[key]
	f.mu.Unlock()

	if failing {
		return 0, errors.New("injected download failure")
	}
	if !ok {
		return 0, objectstore.ErrObjectNotFound
	}
	return store.WriteFileAtomic(dstPath, strings.NewReader(body))
}

func (f *fakeRemote) requested() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeRemote) resetRequests() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = nil
}

func testConfig(dir string) *config.Config {
	return &config.Config{
		Storage: config.StorageConfig{Dir: dir, VideoExt: ".mp4", MetadataExt: ".json"},
		Cache:   config.CacheConfig{Capacity: 10, DefaultBlockSize: 1 << 20},
		Remote: config.RemoteConfig{
			Bucket:                 "heatmap-demo",
			Prefix:                 testPrefix,
			MaxConcurrentDownloads: 4,
		},
	}
}

type fixture struct {
	remote *fakeRemote
	index  *store.Index
	loader *store.Loader
	cfg    *config.Config
	mgr    *Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	idx, err := store.NewIndex(dir, ".mp4", ".json")
	if err != nil {
		t.Fatal(err)
	}
	cfg := testConfig(dir)
	loader := store.NewLoader(idx, cfg.Cache.Capacity)
	remote := newFakeRemote()
	return &fixture{
		remote: remote,
		index:  idx,
		loader: loader,
		cfg:    cfg,
		mgr:    NewManager(remote, idx, loader, cfg),
	}
}
