// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package sync

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/mediamirror/internal/logging"
	"github.com/tomtom215/mediamirror/internal/metrics"
	"github.com/tomtom215/mediamirror/internal/objectstore"
)

type passResult struct {
	listed     int
	downloaded int64
	repaired   int64
	skipped    int64
	failed     int64
}

// runPass performs one list-diff-download cycle. The caller holds passMu.
func (m *Manager) runPass(ctx context.Context, source string) error {
	passID := logging.GeneratePassID()
	ctx = logging.ContextWithPassID(ctx, passID)
	log := logging.Ctx(ctx)

	locked, err := m.dirLock.TryLock()
	if err != nil {
		metrics.SyncErrors.WithLabelValues("lock").Inc()
		return fmt.Errorf("lock staging directory: %w", err)
	}
	if !locked {
		metrics.SyncErrors.WithLabelValues("lock").Inc()
		log.Warn().Str("lock", m.dirLock.Path()).Msg("Skipping sync pass, staging directory is locked")
		return ErrDirectoryLocked
	}
	defer func() {
		if err := m.dirLock.Unlock(); err != nil {
			log.Warn().Err(err).Msg("Failed to release staging directory lock")
		}
	}()

	m.syncing.Store(true)
	defer m.syncing.Store(false)

	started := time.Now()
	log.Info().Str("source", source).Msg("Sync pass started")

	res, errorType, err := m.pass(ctx, log)

	if err == nil {
		m.connectionOK.Store(true)
	} else if errorType != "canceled" {
		m.connectionOK.Store(false)
	}
	metrics.RecordSyncPass(time.Since(started), err, errorType)
	m.recordPass(started, res, err)

	event := log.Info()
	if err != nil {
		event = log.Warn().Err(err)
	}
	event.
		Str("source", source).
		Int("listed", res.listed).
		Int64("downloaded", res.downloaded).
		Int64("repaired", res.repaired).
		Int64("skipped", res.skipped).
		Int64("failed", res.failed).
		Dur("duration", time.Since(started)).
		Bool("connection_ok", m.connectionOK.Load()).
		Msg("Sync pass finished")

	return err
}

func (m *Manager) pass(ctx context.Context, log *zerolog.Logger) (passResult, string, error) {
	var res passResult
	prefix := m.cfg.Remote.Prefix

	objects, err := m.remote.List(ctx, prefix)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return res, "canceled", err
		}
		if objectstore.IsBreakerOpen(err) {
			log.Warn().Msg("Object store circuit breaker is open, skipping pass")
		}
		return res, "list", fmt.Errorf("%w: %v", ErrRemoteList, err)
	}

	var targets []Target
	for _, obj := range objects {
		if t, ok := DeriveTarget(obj.Key, prefix, m.cfg.Storage.VideoExt, m.cfg.Storage.MetadataExt); ok {
			targets = append(targets, t)
		}
	}
	res.listed = len(targets)

	var downloaded, repaired, skipped, failed atomic.Int64

	// No WithContext: one failed object must not cancel its siblings.
	var g errgroup.Group
	g.SetLimit(max(1, m.cfg.Remote.MaxConcurrentDownloads))
	for _, t := range targets {
		g.Go(func() error {
			outcome, err := m.syncObject(ctx, t)
			metrics.RecordSyncObject(outcome)
			switch outcome {
			case outcomeDownloaded:
				downloaded.Add(1)
			case outcomeRepaired:
				repaired.Add(1)
			case outcomeSkipped:
				skipped.Add(1)
			default:
				failed.Add(1)
				log.Warn().Err(err).Str("name", t.Name).Msg("Failed to mirror object")
			}
			return err
		})
	}
	firstErr := g.Wait()

	res.downloaded = downloaded.Load()
	res.repaired = repaired.Load()
	res.skipped = skipped.Load()
	res.failed = failed.Load()

	if firstErr != nil {
		if ctx.Err() != nil {
			return res, "canceled", ctx.Err()
		}
		return res, "download", fmt.Errorf("%w: %d of %d objects failed, first: %v",
			ErrRemoteDownload, res.failed, len(targets), firstErr)
	}
	return res, "", nil
}

const (
	outcomeDownloaded = "downloaded"
	outcomeRepaired   = "repaired"
	outcomeSkipped    = "skipped"
	outcomeFailed     = "failed"
)

// syncObject brings one pair up to date. The metadata object is requested only
// after the video is present locally.
func (m *Manager) syncObject(ctx context.Context, t Target) (string, error) {
	if m.index.IsDownloaded(t.Name) {
		if err := m.index.Register(t.Name); err != nil {
			return outcomeFailed, err
		}
		return outcomeSkipped, nil
	}

	outcome := outcomeRepaired
	if !m.index.HasVideo(t.Name) {
		outcome = outcomeDownloaded
		if err := m.download(ctx, t.VideoKey, m.index.VideoPath(t.Name)); err != nil {
			return outcomeFailed, err
		}
	}
	if err := m.download(ctx, t.MetadataKey, m.index.MetadataPath(t.Name)); err != nil {
		return outcomeFailed, err
	}

	if err := m.index.Register(t.Name); err != nil {
		return outcomeFailed, err
	}
	if m.loader != nil {
		m.loader.Invalidate(t.Name)
		if m.cfg.Sync.PreloadAfterDownload {
			if _, err := m.loader.Load(t.Name); err != nil {
				logging.Ctx(ctx).Warn().Err(err).Str("name", t.Name).Msg("Preload after download failed")
			}
		}
	}

	logging.Ctx(ctx).Info().Str("name", t.Name).Str("outcome", outcome).Msg("Mirrored object")
	return outcome, nil
}

func (m *Manager) download(ctx context.Context, key, dst string) error {
	start := time.Now()
	n, err := m.remote.Download(ctx, key, dst)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrRemoteDownload, key, err)
	}
	m.latency.Record("download", time.Since(start))
	logging.Ctx(ctx).Debug().Str("key", key).Int64("bytes", n).Msg("Downloaded object")
	return nil
}
