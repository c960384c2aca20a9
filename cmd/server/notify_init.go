// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/mediamirror/internal/config"
	"github.com/tomtom215/mediamirror/internal/logging"
	"github.com/tomtom215/mediamirror/internal/notify"
	"github.com/tomtom215/mediamirror/internal/supervisor"
	"github.com/tomtom215/mediamirror/internal/supervisor/services"
)

// initNotifications builds the configured notification receiver and adds the
// listener to the tree. The returned func releases the receiver and is never nil.
func initNotifications(ctx context.Context, cfg *config.Config, trigger notify.Triggerer, tree *supervisor.SupervisorTree) (func(), error) {
	noop := func() {}

	if !cfg.ListenerEnabled() {
		logging.Info().Str("provider", cfg.Queue.Provider).Msg("Notification listener disabled")
		return noop, nil
	}

	var (
		receiver notify.Receiver
		closeFn  = noop
	)

	switch cfg.Queue.Provider {
	case "sqs":
		r, err := notify.NewSQSReceiverFromConfig(ctx, cfg.Queue)
		if err != nil {
			return noop, fmt.Errorf("create SQS receiver: %w", err)
		}
		receiver = r
		logging.Info().Str("queue_url", cfg.Queue.SQS.QueueURL).Msg("SQS notification receiver configured")

	case "nats":
		url := cfg.Queue.NATS.URL
		if cfg.Queue.NATS.EmbeddedServer {
			es, err := notify.NewEmbeddedServer(cfg.Queue.NATS)
			if err != nil {
				return noop, fmt.Errorf("start embedded NATS: %w", err)
			}
			url = es.ClientURL()
			tree.AddStorageService(services.NewEmbeddedNATSService(es, cfg.Supervisor.ShutdownTimeout))
		}
		r := notify.NewJetStreamReceiver(url, cfg.Queue)
		receiver = r
		closeFn = func() {
			if err := r.Close(); err != nil {
				logging.Warn().Err(err).Msg("Failed to close JetStream receiver")
			}
		}
		logging.Info().
			Str("url", url).
			Str("stream", cfg.Queue.NATS.Stream).
			Strs("subjects", cfg.Queue.NATS.Subjects).
			Msg("JetStream notification receiver configured")

	default:
		return noop, fmt.Errorf("unknown queue provider %q", cfg.Queue.Provider)
	}

	listener := notify.NewListener(receiver, trigger, cfg.Queue)
	tree.AddMessagingService(services.NewListenerService(listener, cfg.Queue.Provider))
	return closeFn, nil
}
