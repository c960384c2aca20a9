// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/mediamirror/internal/config"
	"github.com/tomtom215/mediamirror/internal/logging"
	"github.com/tomtom215/mediamirror/internal/metrics"
)

// SourceNotification is the trigger source reported to the sync manager.
const SourceNotification = "notification"

// Listener polls a Receiver and triggers a sync pass per non-empty batch.
type Listener struct {
	receiver     Receiver
	trigger      Triggerer
	provider     string
	initialDelay time.Duration
	interval     time.Duration
	limiter      *rate.Limiter
}

// NewListener creates a listener for the configured provider.
func NewListener(r Receiver, t Triggerer, cfg config.QueueConfig) *Listener {
	return &Listener{
		receiver:     r,
		trigger:      t,
		provider:     cfg.Provider,
		initialDelay: cfg.InitialDelay,
		interval:     cfg.Interval,
		limiter:      rate.NewLimiter(rate.Limit(cfg.TriggerRate), cfg.TriggerBurst),
	}
}

// Serve runs the poll loop until ctx is done. The first poll happens after the
// initial delay; later polls start one interval after the previous poll ends.
// It returns nil on cancellation.
func (l *Listener) Serve(ctx context.Context) error {
	logging.Info().
		Str("provider", l.provider).
		Dur("initial_delay", l.initialDelay).
		Dur("interval", l.interval).
		Msg("Notification listener started")

	timer := time.NewTimer(l.initialDelay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Str("provider", l.provider).Msg("Notification listener stopped")
			return nil
		case <-timer.C:
			if _, err := l.Poll(ctx); err != nil && ctx.Err() == nil {
				logging.Warn().Err(err).Str("provider", l.provider).Msg("Notification poll failed")
			}
			timer.Reset(l.interval)
		}
	}
}

// Poll performs one receive/trigger/ack cycle and returns the number of
// messages received. Messages are left unacknowledged when the trigger fails so
// the provider redelivers them.
func (l *Listener) Poll(ctx context.Context) (int, error) {
	msgs, err := l.receiver.Receive(ctx)
	if err != nil {
		metrics.RecordNotificationError(l.provider, "receive", err)
		return 0, fmt.Errorf("receive notifications: %w", err)
	}
	if len(msgs) == 0 {
		return 0, nil
	}
	metrics.RecordNotifications(l.provider, len(msgs))

	for i := range msgs {
		l.logMessage(&msgs[i])
	}

	if !l.limiter.Allow() {
		metrics.NotificationTriggersDelayed.Inc()
		if err := l.limiter.Wait(ctx); err != nil {
			return len(msgs), fmt.Errorf("wait for trigger budget: %w", err)
		}
	}

	if err := l.trigger.Trigger(ctx, SourceNotification); err != nil {
		return len(msgs), fmt.Errorf("trigger sync: %w", err)
	}

	if err := l.receiver.Ack(ctx, msgs); err != nil {
		metrics.RecordNotificationError(l.provider, "ack", err)
		return len(msgs), fmt.Errorf("ack notifications: %w", err)
	}
	return len(msgs), nil
}

func (l *Listener) logMessage(m *Message) {
	n, err := DecodeNotification(m.Body)
	if err != nil {
		level := logging.Warn()
		if errors.Is(err, ErrEmptyNotification) {
			level = logging.Debug()
		}
		level.Err(err).Str("message_id", m.ID).Msg("Unrecognized notification body")
		return
	}
	logging.Info().
		Str("message_id", m.ID).
		Str("video", n.Video).
		Str("metadata", n.JSON).
		Msg("Upload notification received")
}
