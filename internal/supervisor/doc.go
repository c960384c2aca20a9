// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

/*
Package supervisor runs the long-lived services under a suture v4 tree.

	mediamirror
	├── storage-layer
	│   └── sync-manager
	├── messaging-layer
	│   ├── embedded-nats (queue.nats.embedded_server)
	│   └── notification-listener (queue.provider != none)
	└── api-layer
	    └── http-server

Each layer has its own failure counter, so a listener that keeps failing
against an unreachable broker backs off without restarting the HTTP server.
Supervisor events go to zerolog through sutureslog and the logging package's
slog handler.

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(),
	    supervisor.TreeConfigFromConfig(cfg.Supervisor))
	tree.AddStorageService(services.NewSyncService(syncManager))
	tree.AddAPIService(services.NewHTTPServerService(httpServer, cfg.Supervisor.ShutdownTimeout))
	err = tree.Serve(ctx)
*/
package supervisor
