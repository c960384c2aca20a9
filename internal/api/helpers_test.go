// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/mediamirror/internal/cache"
	"github.com/tomtom215/mediamirror/internal/models"
	"github.com/tomtom215/mediamirror/internal/store"
	syncpkg "github.com/tomtom215/mediamirror/internal/sync"
)

type fakeMedia struct {
	entries map[string]*store.MediaEntry
	errs    map[string]error
	gets    int
}

func (f *fakeMedia) Get(name string) (*store.MediaEntry, error) {
	f.gets++
	if err, ok := f.errs[name]; ok {
		return nil, err
	}
	e, ok := f.entries[name]
	if !ok {
		return nil, fmt.Errorf("load %s video: %w", name, store.ErrNotFound)
	}
	return e, nil
}

func (f *fakeMedia) CacheStats() cache.Stats {
	return cache.Stats{Hits: 3, Misses: 1, Size: len(f.entries), Capacity: 100, HitRate: 0.75}
}

type fakeCatalog struct {
	names  []string
	seeded bool
}

func (f *fakeCatalog) Names() []string {
	out := append([]string(nil), f.names...)
	sort.Strings(out)
	return out
}

func (f *fakeCatalog) FirstName() (string, bool) {
	n := f.Names()
	if len(n) == 0 {
		return "", false
	}
	return n[0], true
}

func (f *fakeCatalog) Len() int     { return len(f.names) }
func (f *fakeCatalog) Seeded() bool { return f.seeded }

type fakeSync struct {
	mu       sync.Mutex
	ok       bool
	status   syncpkg.Status
	triggers []string
}

func (f *fakeSync) ConnectionOK() bool { return f.ok }

func (f *fakeSync) Status() syncpkg.Status { return f.status }

func (f *fakeSync) TriggerAsync(source string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.triggers = append(f.triggers, source)
}

// videoBody returns n bytes whose value is the index mod 256.
func videoBody(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 256)
	}
	return b
}

type testEnv struct {
	media   *fakeMedia
	catalog *fakeCatalog
	sync    *fakeSync
	handler *Handler
	server  http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	media := &fakeMedia{
		entries: map[string]*store.MediaEntry{
			"clip-b.mp4": {
				Name:        "clip-b.mp4",
				Video:       videoBody(1000),
				VideoLength: 1000,
				Metadata:    []byte(`{"frames":[{"t":0,"points":[]}]}`),
			},
			"clip-a.mp4": {
				Name:        "clip-a.mp4",
				Video:       videoBody(10),
				VideoLength: 10,
				Metadata:    []byte(`{}`),
			},
			"empty.mp4": {
				Name:     "empty.mp4",
				Video:    []byte{},
				Metadata: []byte(`{}`),
			},
		},
		errs: map[string]error{},
	}
	catalog := &fakeCatalog{names: []string{"clip-b.mp4", "clip-a.mp4", "empty.mp4"}, seeded: true}
	syncCtl := &fakeSync{ok: true}

	h := NewHandler(media, catalog, syncCtl, 256)
	mw := NewChiMiddleware(&ChiMiddlewareConfig{RateLimitDisabled: true})

	return &testEnv{
		media:   media,
		catalog: catalog,
		sync:    syncCtl,
		handler: h,
		server:  NewRouter(h, mw).SetupChi(),
	}
}

func (e *testEnv) do(method, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
	}
	return resp
}

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
