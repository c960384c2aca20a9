// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

/*
Package main is the entry point for the mediamirror server.

Mediamirror mirrors video and metadata objects from an S3 bucket into a local
staging directory and streams them to players with HTTP byte-range support.

# Application Architecture

	RootSupervisor ("mediamirror")
	├── StorageSupervisor ("storage-layer")
	│   ├── Sync Manager (startup pass + periodic timer)
	│   └── Embedded NATS (optional)
	├── MessagingSupervisor ("messaging-layer")
	│   └── Notification Listener (SQS or NATS JetStream)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Startup order:

 1. Configuration: koanf defaults, YAML file, environment
 2. Logging: zerolog
 3. Local store: install the bundled default pair, seed the index, optional preload
 4. Object store: S3 client behind a circuit breaker
 5. Sync manager
 6. Notification listener (queue.provider sqs or nats)
 7. HTTP server: chi router
 8. Supervisor tree, until SIGINT or SIGTERM

The index is seeded before the HTTP server is added to the tree, so the
readiness probe never reports an unseeded store as ready.

# Example

	export STORAGE_DIR=/var/lib/mediamirror
	export S3_BUCKET=videos
	export S3_REGION=eu-west-1
	export QUEUE_PROVIDER=sqs
	export SQS_QUEUE_URL=https://sqs.eu-west-1.amazonaws.com/123456789012/uploads
	./mediamirror
*/
package main
