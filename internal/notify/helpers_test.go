// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package notify

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/mediamirror/internal/config"
)

// fakeReceiver hands out queued batches, one per Receive call.
type fakeReceiver struct {
	mu         sync.Mutex
	batches    [][]Message
	receiveErr error
	ackErr     error
	acked      []Message
	receives   int
}

func (f *fakeReceiver) Receive(ctx context.Context) ([]Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receives++
	if f.receiveErr != nil {
		return nil, f.receiveErr
	}
	if len(f.batches) == 0 {
		return nil, nil
	}
	b := f.batches[0]
	f.batches = f.batches[1:]
	return b, nil
}

func (f *fakeReceiver) Ack(ctx context.Context, msgs []Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ackErr != nil {
		return f.ackErr
	}
	f.acked = append(f.acked, msgs...)
	return nil
}

func (f *fakeReceiver) ackedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.acked)
}

func (f *fakeReceiver) receiveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.receives
}

type fakeTrigger struct {
	mu      sync.Mutex
	sources []string
	err     error
}

func (f *fakeTrigger) Trigger(ctx context.Context, source string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sources = append(f.sources, source)
	return f.err
}

func (f *fakeTrigger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sources)
}

func testQueueConfig() config.QueueConfig {
	return config.QueueConfig{
		Provider:     "test",
		WaitTime:     100 * time.Millisecond,
		MaxMessages:  10,
		InitialDelay: 5 * time.Millisecond,
		Interval:     5 * time.Millisecond,
		TriggerRate:  1000,
		TriggerBurst: 10,
	}
}

func msg(id, body string) Message {
	return Message{ID: id, Body: []byte(body), handle: "rh-" + id}
}
