// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package objectstore

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/mediamirror/internal/config"
	"github.com/tomtom215/mediamirror/internal/logging"
	"github.com/tomtom215/mediamirror/internal/metrics"
)

// BreakerName labels the object store breaker in metrics.
const BreakerName = "object-store"

// BreakerStore wraps a Store with a circuit breaker. While the breaker is
// open calls fail fast with gobreaker.ErrOpenState.
//
// Missing objects and caller cancellation are not counted as failures.
type BreakerStore struct {
	next Store
	cb   *gobreaker.CircuitBreaker[int64]
	name string
}

// NewBreakerStore wraps next using the breaker settings in cfg.
func NewBreakerStore(next Store, cfg config.RemoteConfig) *BreakerStore {
	minRequests := cfg.BreakerMinRequests
	ratio := cfg.BreakerFailureRatio

	metrics.CircuitBreakerState.WithLabelValues(BreakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[int64](gobreaker.Settings{
		Name:        BreakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= ratio
			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrObjectNotFound) ||
				errors.Is(err, context.Canceled)
		},
	})

	return &BreakerStore{next: next, cb: cb, name: BreakerName}
}

// List lists through the breaker.
func (b *BreakerStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	_, err := b.execute(func() (int64, error) {
		var err error
		out, err = b.next.List(ctx, prefix)
		return int64(len(out)), err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Download downloads through the breaker.
func (b *BreakerStore) Download(ctx context.Context, key, dstPath string) (int64, error) {
	return b.execute(func() (int64, error) {
		return b.next.Download(ctx, key, dstPath)
	})
}

// State returns the breaker state as a string: "closed", "half-open" or "open".
func (b *BreakerStore) State() string {
	return b.cb.State().String()
}

func (b *BreakerStore) execute(fn func() (int64, error)) (int64, error) {
	n, err := b.cb.Execute(fn)
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
	}
	return n, err
}

// IsBreakerOpen reports whether err came from a rejecting breaker.
func IsBreakerOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
