// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/mediamirror/internal/logging"
)

// EmbeddedServer is a started in-process broker, such as notify.EmbeddedServer.
type EmbeddedServer interface {
	Shutdown(ctx context.Context) error
	IsRunning() bool
	ClientURL() string
}

// EmbeddedNATSService ties an embedded NATS server's lifetime to the tree.
// The server is started before the tree so the listener knows its URL; this
// service watches it and shuts it down when the tree stops.
type EmbeddedNATSService struct {
	server          EmbeddedServer
	shutdownTimeout time.Duration
	checkInterval   time.Duration
	name            string
}

// NewEmbeddedNATSService wraps server. A non-positive timeout means 10s.
func NewEmbeddedNATSService(server EmbeddedServer, shutdownTimeout time.Duration) *EmbeddedNATSService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &EmbeddedNATSService{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		checkInterval:   5 * time.Second,
		name:            "embedded-nats",
	}
}

// Serve implements suture.Service. A server that stops on its own cannot be
// restarted from here, so the service reports it and asks not to be restarted.
func (s *EmbeddedNATSService) Serve(ctx context.Context) error {
	logging.Info().Str("url", s.server.ClientURL()).Msg("Embedded NATS server supervised")

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
			defer cancel()
			if err := s.server.Shutdown(shutdownCtx); err != nil {
				logging.Warn().Err(err).Msg("Embedded NATS server shutdown incomplete")
			}
			return ctx.Err()
		case <-ticker.C:
			if !s.server.IsRunning() {
				logging.Error().Msg("Embedded NATS server stopped unexpectedly")
				return fmt.Errorf("embedded NATS server stopped: %w", suture.ErrDoNotRestart)
			}
		}
	}
}

func (s *EmbeddedNATSService) String() string {
	return s.name
}
