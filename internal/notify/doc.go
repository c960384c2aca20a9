// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

/*
Package notify turns upload notifications into sync passes.

A Listener long-polls a Receiver on a fixed-delay schedule. Any non-empty
batch triggers a sync pass; message content is decoded only for logging.
Messages are acknowledged after the trigger returns. Delivery is
at-least-once, which is safe because a pass is idempotent.

Receivers:

  - SQSReceiver: Amazon SQS ReceiveMessage with long polling, DeleteMessageBatch to ack
  - JetStreamReceiver: NATS JetStream durable pull consumer, explicit ack

EmbeddedServer runs an in-process NATS server with JetStream for single-node
deployments that do not have a broker.
*/
package notify
