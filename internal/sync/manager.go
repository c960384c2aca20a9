// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package sync

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"github.com/tomtom215/mediamirror/internal/config"
	"github.com/tomtom215/mediamirror/internal/logging"
	"github.com/tomtom215/mediamirror/internal/metrics"
	"github.com/tomtom215/mediamirror/internal/objectstore"
	"github.com/tomtom215/mediamirror/internal/store"
)

// LockFileName is created in the staging directory and locked during a pass.
const LockFileName = ".mediamirror.lock"

// Trigger sources, used for logging and metrics.
const (
	SourceStartup      = "startup"
	SourceTimer        = "timer"
	SourceNotification = "notification"
	SourceManual       = "manual"
)

// ObjectInfo describes one listed remote object.
type ObjectInfo = objectstore.ObjectInfo

// ObjectStore lists and downloads remote objects.
type ObjectStore interface {
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Download(ctx context.Context, key, dstPath string) (int64, error)
}

// Status is a snapshot of the manager's state.
type Status struct {
	ConnectionOK bool      `json:"connection_ok"`
	Syncing      bool      `json:"syncing"`
	LastPass     time.Time `json:"last_pass,omitempty"`
	LastSuccess  time.Time `json:"last_success,omitempty"`
	LastError    string    `json:"last_error,omitempty"`
	Passes       int64     `json:"passes"`
	Downloaded   int64     `json:"downloaded"`
	Failed       int64     `json:"failed"`

	DownloadLatency []metrics.LatencyStats `json:"download_latency,omitempty"`
}

// Manager mirrors the remote prefix into the local store.
type Manager struct {
	remote  ObjectStore
	index   *store.Index
	loader  *store.Loader
	cfg     *config.Config
	latency *metrics.LatencyTracker
	dirLock *flock.Flock

	// connectionOK is false until the first pass completes cleanly.
	connectionOK atomic.Bool
	pending      atomic.Bool
	passMu       sync.Mutex
	syncing      atomic.Bool

	statsMu     sync.RWMutex
	lastPass    time.Time
	lastSuccess time.Time
	lastError   string
	passes      int64
	downloaded  int64
	failed      int64

	mu       sync.Mutex
	running  bool
	baseCtx  context.Context
	cancel   context.CancelFunc
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewManager creates a sync manager. loader may be nil when preloading is disabled.
func NewManager(remote ObjectStore, index *store.Index, loader *store.Loader, cfg *config.Config) *Manager {
	m := &Manager{
		remote:  remote,
		index:   index,
		loader:  loader,
		cfg:     cfg,
		latency: metrics.NewLatencyTracker(0.01),
		dirLock: flock.New(filepath.Join(index.Dir(), LockFileName)),
		baseCtx: context.Background(),
	}
	metrics.SyncConnectionOK.Set(0)

	logging.Info().
		Str("bucket", cfg.Remote.Bucket).
		Str("prefix", cfg.Remote.Prefix).
		Dur("initial_delay", cfg.Sync.InitialDelay).
		Dur("interval", cfg.Sync.Interval).
		Int("max_concurrent", cfg.Remote.MaxConcurrentDownloads).
		Msg("Sync manager config loaded")

	return m
}

// Start runs the startup pass (when enabled) and the periodic timer (when enabled).
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("sync manager is already running")
	}
	m.running = true
	m.baseCtx, m.cancel = context.WithCancel(ctx)
	m.stopChan = make(chan struct{})
	runCtx := m.baseCtx
	m.mu.Unlock()

	logging.Info().Msg("Starting sync manager...")

	if m.cfg.Sync.OnStart {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			if err := m.Trigger(runCtx, SourceStartup); err != nil {
				logging.Warn().Err(err).Msg("Initial sync failed (will retry)")
			}
		}()
	}

	if m.cfg.SyncTimerEnabled() {
		m.wg.Add(1)
		go m.syncLoop(runCtx)
		logging.Info().Dur("interval", m.cfg.Sync.Interval).Msg("Periodic sync enabled")
	} else {
		logging.Info().Msg("Periodic sync disabled (initial delay or interval is zero)")
	}
	return nil
}

// Stop cancels in-flight work and waits for background goroutines.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return fmt.Errorf("sync manager is not running")
	}
	m.running = false
	cancel := m.cancel
	close(m.stopChan)
	m.mu.Unlock()

	logging.Info().Msg("Stopping sync manager...")
	cancel()
	m.wg.Wait()
	_ = m.dirLock.Close()
	logging.Info().Msg("Sync manager stopped")
	return nil
}

// syncLoop waits the initial delay, then runs a pass and waits the interval
// after each pass completes.
func (m *Manager) syncLoop(ctx context.Context) {
	defer m.wg.Done()

	m.mu.Lock()
	stop := m.stopChan
	m.mu.Unlock()

	timer := time.NewTimer(m.cfg.Sync.InitialDelay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-timer.C:
			if err := m.Trigger(ctx, SourceTimer); err != nil {
				logging.Error().Err(err).Msg("Sync failed")
			}
			timer.Reset(m.cfg.Sync.Interval)
		}
	}
}

// Trigger requests a pass. If no pass is running it runs one (plus any
// follow-up requested meanwhile) and returns the error of the last pass run.
// If a pass is already running it marks a follow-up and returns nil at once.
//
// Only the first pass runs under ctx. Follow-ups serve other callers whose
// triggers were coalesced, so they run under the manager's context and
// survive cancellation of the caller that happens to hold the pass lock.
func (m *Manager) Trigger(ctx context.Context, source string) error {
	m.pending.Store(true)

	var err error
	passCtx := ctx
	for {
		if !m.passMu.TryLock() {
			metrics.RecordSyncTrigger(source, true)
			logging.Debug().Str("source", source).Msg("Sync pass in progress, trigger coalesced")
			return nil
		}
		metrics.RecordSyncTrigger(source, false)
		for m.pending.Swap(false) {
			err = m.runPass(passCtx, source)
			passCtx = m.followUpContext(ctx)
		}
		m.passMu.Unlock()

		// A trigger may have set pending after the last Swap but failed its
		// TryLock before Unlock; pick it up here.
		if !m.pending.Load() {
			return err
		}
	}
}

// followUpContext returns the manager's context while it is running and live,
// otherwise fallback (Trigger called on a manager that was never started).
func (m *Manager) followUpContext(fallback context.Context) context.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running && m.baseCtx != nil && m.baseCtx.Err() == nil {
		return m.baseCtx
	}
	return fallback
}

// TriggerAsync starts Trigger in the background using the manager's context.
func (m *Manager) TriggerAsync(source string) {
	m.mu.Lock()
	ctx := m.baseCtx
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.Trigger(ctx, source); err != nil {
			logging.Warn().Err(err).Str("source", source).Msg("Sync failed")
		}
	}()
}

// ConnectionOK reports the connectivity flag.
func (m *Manager) ConnectionOK() bool {
	return m.connectionOK.Load()
}

// Status returns a snapshot for the status endpoint.
func (m *Manager) Status() Status {
	m.statsMu.RLock()
	s := Status{
		LastPass:    m.lastPass,
		LastSuccess: m.lastSuccess,
		LastError:   m.lastError,
		Passes:      m.passes,
		Downloaded:  m.downloaded,
		Failed:      m.failed,
	}
	m.statsMu.RUnlock()

	s.ConnectionOK = m.connectionOK.Load()
	s.Syncing = m.syncing.Load()
	s.DownloadLatency = m.latency.AllStats()
	return s
}

func (m *Manager) recordPass(started time.Time, res passResult, err error) {
	m.statsMu.Lock()
	defer m.statsMu.Unlock()

	m.passes++
	m.lastPass = started
	m.downloaded += res.downloaded + res.repaired
	m.failed += res.failed
	if err != nil {
		m.lastError = err.Error()
		return
	}
	m.lastError = ""
	m.lastSuccess = started
}
