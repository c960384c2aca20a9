// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package services

import (
	"context"
	"fmt"
)

// Runner blocks until ctx is done, such as notify.Listener.
type Runner interface {
	Serve(ctx context.Context) error
}

// ListenerService runs the notification listener.
type ListenerService struct {
	listener Runner
	name     string
}

// NewListenerService wraps listener; provider is used in the service name.
func NewListenerService(listener Runner, provider string) *ListenerService {
	return &ListenerService{
		listener: listener,
		name:     "notification-listener-" + provider,
	}
}

// Serve implements suture.Service.
func (s *ListenerService) Serve(ctx context.Context) error {
	err := s.listener.Serve(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("notification listener failed: %w", err)
	}
	return fmt.Errorf("notification listener exited unexpectedly")
}

func (s *ListenerService) String() string {
	return s.name
}
