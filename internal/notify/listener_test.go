// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/mediamirror/internal/metrics"
)

func TestPoll_EmptyBatchDoesNotTrigger(t *testing.T) {
	r := &fakeReceiver{}
	tr := &fakeTrigger{}
	l := NewListener(r, tr, testQueueConfig())

	n, err := l.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if n != 0 {
		t.Errorf("received = %d, want 0", n)
	}
	if tr.count() != 0 {
		t.Errorf("triggers = %d, want 0", tr.count())
	}
}

func TestPoll_BatchTriggersOnceThenAcks(t *testing.T) {
	r := &fakeReceiver{batches: [][]Message{{
		msg("1", `{"video":"a.mp4","json":"a.json"}`),
		msg("2", `not json`),
		msg("3", `{}`),
	}}}
	tr := &fakeTrigger{}
	l := NewListener(r, tr, testQueueConfig())

	n, err := l.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if n != 3 {
		t.Errorf("received = %d, want 3", n)
	}
	if tr.count() != 1 {
		t.Fatalf("triggers = %d, want 1", tr.count())
	}
	if tr.sources[0] != SourceNotification {
		t.Errorf("source = %q, want %q", tr.sources[0], SourceNotification)
	}
	if r.ackedCount() != 3 {
		t.Errorf("acked = %d, want 3", r.ackedCount())
	}
}

func TestPoll_TriggerFailureLeavesMessagesUnacked(t *testing.T) {
	r := &fakeReceiver{batches: [][]Message{{msg("1", `{"video":"a.mp4"}`)}}}
	tr := &fakeTrigger{err: errors.New("remote down")}
	l := NewListener(r, tr, testQueueConfig())

	if _, err := l.Poll(context.Background()); err == nil {
		t.Fatal("expected error from failed trigger")
	}
	if r.ackedCount() != 0 {
		t.Errorf("acked = %d, want 0", r.ackedCount())
	}
}

func TestPoll_ReceiveError(t *testing.T) {
	r := &fakeReceiver{receiveErr: errors.New("queue unavailable")}
	tr := &fakeTrigger{}
	l := NewListener(r, tr, testQueueConfig())

	before := testutil.ToFloat64(metrics.NotificationErrors.WithLabelValues("test", "receive"))
	if _, err := l.Poll(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	after := testutil.ToFloat64(metrics.NotificationErrors.WithLabelValues("test", "receive"))
	if after-before != 1 {
		t.Errorf("receive errors delta = %v, want 1", after-before)
	}
	if tr.count() != 0 {
		t.Errorf("triggers = %d, want 0", tr.count())
	}
}

func TestPoll_AckError(t *testing.T) {
	r := &fakeReceiver{
		batches: [][]Message{{msg("1", `{}`)}},
		ackErr:  errors.New("ack failed"),
	}
	tr := &fakeTrigger{}
	l := NewListener(r, tr, testQueueConfig())

	if _, err := l.Poll(context.Background()); err == nil {
		t.Fatal("expected ack error")
	}
	if tr.count() != 1 {
		t.Errorf("triggers = %d, want 1", tr.count())
	}
}

func TestPoll_RateLimitDelaysTrigger(t *testing.T) {
	cfg := testQueueConfig()
	cfg.TriggerRate = 0.001
	cfg.TriggerBurst = 1

	r := &fakeReceiver{batches: [][]Message{
		{msg("1", `{}`)},
		{msg("2", `{}`)},
	}}
	tr := &fakeTrigger{}
	l := NewListener(r, tr, cfg)

	if _, err := l.Poll(context.Background()); err != nil {
		t.Fatalf("first Poll() error = %v", err)
	}

	before := testutil.ToFloat64(metrics.NotificationTriggersDelayed)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := l.Poll(ctx); err == nil {
		t.Fatal("expected the second trigger to be held by the limiter")
	}
	if delta := testutil.ToFloat64(metrics.NotificationTriggersDelayed) - before; delta != 1 {
		t.Errorf("delayed delta = %v, want 1", delta)
	}
	if tr.count() != 1 {
		t.Errorf("triggers = %d, want 1", tr.count())
	}
	if r.ackedCount() != 1 {
		t.Errorf("acked = %d, want 1", r.ackedCount())
	}
}

func TestServe_PollsUntilCanceled(t *testing.T) {
	r := &fakeReceiver{batches: [][]Message{
		{msg("1", `{}`)},
		{msg("2", `{}`)},
	}}
	tr := &fakeTrigger{}
	l := NewListener(r, tr, testQueueConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for r.receiveCount() < 4 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	if r.receiveCount() < 4 {
		t.Errorf("receives = %d, want at least 4", r.receiveCount())
	}
	if tr.count() != 2 {
		t.Errorf("triggers = %d, want 2", tr.count())
	}
}

func TestServe_WaitsInitialDelay(t *testing.T) {
	cfg := testQueueConfig()
	cfg.InitialDelay = time.Hour

	r := &fakeReceiver{}
	l := NewListener(r, &fakeTrigger{}, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	if err := l.Serve(ctx); err != nil {
		t.Fatalf("Serve() error = %v", err)
	}
	if r.receiveCount() != 0 {
		t.Errorf("receives = %d before initial delay elapsed, want 0", r.receiveCount())
	}
}
