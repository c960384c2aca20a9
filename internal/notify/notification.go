// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// Message is one received notification.
type Message struct {
	ID   string
	Body []byte

	// handle is the provider's ack token: an SQS receipt handle or a jetstream.Msg.
	handle any
}

// Receiver fetches and acknowledges notifications.
type Receiver interface {
	// Receive waits up to the configured long-poll time and returns zero or more messages.
	Receive(ctx context.Context) ([]Message, error)

	// Ack acknowledges messages returned by Receive.
	Ack(ctx context.Context, msgs []Message) error
}

// Triggerer starts a sync pass.
type Triggerer interface {
	Trigger(ctx context.Context, source string) error
}

// Notification is the body posted by the upload pipeline once an object pair
// has been written.
type Notification struct {
	Video string `json:"video"`
	JSON  string `json:"json"`
}

// ErrEmptyNotification is returned for bodies that decode but carry no keys.
var ErrEmptyNotification = errors.New("notification names no objects")

// DecodeNotification parses a message body.
func DecodeNotification(body []byte) (Notification, error) {
	var n Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return Notification{}, fmt.Errorf("decode notification: %w", err)
	}
	if n.Video == "" && n.JSON == "" {
		return Notification{}, ErrEmptyNotification
	}
	return n, nil
}
