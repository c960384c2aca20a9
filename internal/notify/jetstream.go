// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/mediamirror/internal/config"
	"github.com/tomtom215/mediamirror/internal/logging"
)

// JetStreamReceiver pulls notifications from a durable JetStream consumer.
// The connection, stream and consumer are set up on first use so a broker
// that is not yet reachable only delays the listener.
type JetStreamReceiver struct {
	url         string
	cfg         config.NATSConfig
	waitTime    time.Duration
	maxMessages int
	ackWait     time.Duration

	mu       sync.Mutex
	nc       *nats.Conn
	consumer jetstream.Consumer
	closed   bool
}

// NewJetStreamReceiver creates a receiver for the stream and durable consumer
// in cfg. url overrides cfg.NATS.URL when non-empty (used for the embedded server).
func NewJetStreamReceiver(url string, cfg config.QueueConfig) *JetStreamReceiver {
	if url == "" {
		url = cfg.NATS.URL
	}
	return &JetStreamReceiver{
		url:         url,
		cfg:         cfg.NATS,
		waitTime:    cfg.WaitTime,
		maxMessages: cfg.MaxMessages,
		// Long enough to cover the sync pass that runs before the ack.
		ackWait: 10 * time.Minute,
	}
}

func (r *JetStreamReceiver) connect(ctx context.Context) (jetstream.Consumer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, fmt.Errorf("receiver is closed")
	}
	if r.consumer != nil {
		return r.consumer, nil
	}

	nc, err := nats.Connect(r.url,
		nats.Name("mediamirror"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	if err := r.ensureStream(ctx, js); err != nil {
		nc.Close()
		return nil, err
	}

	consumer, err := js.CreateOrUpdateConsumer(ctx, r.cfg.Stream, jetstream.ConsumerConfig{
		Durable:       r.cfg.Durable,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       r.ackWait,
		DeliverPolicy: jetstream.DeliverAllPolicy,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create consumer %s: %w", r.cfg.Durable, err)
	}

	logging.Info().
		Str("url", nc.ConnectedUrlRedacted()).
		Str("stream", r.cfg.Stream).
		Str("durable", r.cfg.Durable).
		Msg("JetStream notification consumer ready")

	r.nc = nc
	r.consumer = consumer
	return consumer, nil
}

// ensureStream creates the notification stream when it does not exist. An
// existing stream is used as-is, since its retention policy cannot be changed.
func (r *JetStreamReceiver) ensureStream(ctx context.Context, js jetstream.JetStream) error {
	_, err := js.Stream(ctx, r.cfg.Stream)
	if err == nil {
		return nil
	}
	if !errors.Is(err, jetstream.ErrStreamNotFound) {
		return fmt.Errorf("check stream %s: %w", r.cfg.Stream, err)
	}

	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:      r.cfg.Stream,
		Subjects:  r.cfg.Subjects,
		Retention: jetstream.WorkQueuePolicy,
		Storage:   jetstream.FileStorage,
		Discard:   jetstream.DiscardOld,
		MaxAge:    24 * time.Hour,
	})
	if err != nil {
		return fmt.Errorf("create stream %s: %w", r.cfg.Stream, err)
	}
	logging.Info().Str("stream", r.cfg.Stream).Strs("subjects", r.cfg.Subjects).Msg("Created notification stream")
	return nil
}

// Receive fetches up to the configured batch, waiting at most the configured
// wait time. A timeout with no messages is an empty batch.
func (r *JetStreamReceiver) Receive(ctx context.Context) ([]Message, error) {
	consumer, err := r.connect(ctx)
	if err != nil {
		return nil, err
	}

	batch, err := consumer.Fetch(r.maxMessages, jetstream.FetchMaxWait(r.waitTime))
	if err != nil {
		if isEmptyFetch(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("jetstream fetch: %w", err)
	}

	var msgs []Message
	for m := range batch.Messages() {
		msgs = append(msgs, Message{
			ID:     jetStreamMessageID(m),
			Body:   m.Data(),
			handle: m,
		})
	}
	if err := batch.Error(); err != nil && !isEmptyFetch(err) {
		// Messages already delivered are returned so they can still be acked.
		if len(msgs) == 0 {
			return nil, fmt.Errorf("jetstream fetch: %w", err)
		}
		logging.Warn().Err(err).Int("received", len(msgs)).Msg("JetStream fetch ended early")
	}
	return msgs, nil
}

// Ack acknowledges each message individually.
func (r *JetStreamReceiver) Ack(_ context.Context, msgs []Message) error {
	var errs []error
	for _, m := range msgs {
		jm, ok := m.handle.(jetstream.Msg)
		if !ok {
			errs = append(errs, fmt.Errorf("message %s is not a JetStream message", m.ID))
			continue
		}
		if err := jm.Ack(); err != nil {
			errs = append(errs, fmt.Errorf("ack %s: %w", m.ID, err))
		}
	}
	return errors.Join(errs...)
}

// Close drains the connection.
func (r *JetStreamReceiver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	if r.nc == nil {
		return nil
	}
	err := r.nc.Drain()
	r.nc = nil
	r.consumer = nil
	return err
}

func isEmptyFetch(err error) bool {
	return errors.Is(err, nats.ErrTimeout) ||
		errors.Is(err, jetstream.ErrNoMessages) ||
		errors.Is(err, context.DeadlineExceeded)
}

func jetStreamMessageID(m jetstream.Msg) string {
	if id := m.Headers().Get(nats.MsgIdHdr); id != "" {
		return id
	}
	if meta, err := m.Metadata(); err == nil {
		return strconv.FormatUint(meta.Sequence.Stream, 10)
	}
	return m.Subject()
}
