// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

/*
Package services adapts mediamirror components to suture.Service.

  - SyncService: sync.Manager Start/Stop
  - ListenerService: notify.Listener poll loop
  - HTTPServerService: *http.Server ListenAndServe/Shutdown
  - EmbeddedNATSService: keeps an embedded NATS server alive for the tree's lifetime

Every wrapper returns ctx.Err() after a clean shutdown and a wrapped error
when the component fails, so suture restarts only real failures.
*/
package services
