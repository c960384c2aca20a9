// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package services

import (
	"context"
	"fmt"

	"github.com/tomtom215/mediamirror/internal/logging"
)

// SyncEngine is the mirror engine as seen by the tree: sync.Manager in production.
type SyncEngine interface {
	Start(ctx context.Context) error
	Stop() error
	ConnectionOK() bool
}

// SyncService owns the mirror engine's startup pass and periodic timer. It
// lives in the storage layer so the engine is stopped after the API layer
// has drained, and a restart re-runs the startup pass against the bucket.
type SyncService struct {
	engine SyncEngine
}

// NewSyncService wraps engine.
func NewSyncService(engine SyncEngine) *SyncService {
	return &SyncService{engine: engine}
}

// Serve implements suture.Service.
func (s *SyncService) Serve(ctx context.Context) error {
	if err := s.engine.Start(ctx); err != nil {
		return fmt.Errorf("start mirror engine: %w", err)
	}

	<-ctx.Done()

	stopErr := s.engine.Stop()
	logging.Info().
		Bool("connection_ok", s.engine.ConnectionOK()).
		Msg("Mirror engine stopped")
	if stopErr != nil {
		return fmt.Errorf("stop mirror engine: %w", stopErr)
	}
	return ctx.Err()
}

func (s *SyncService) String() string {
	return "storage-layer/mirror-sync"
}
