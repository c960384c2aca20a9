// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

/*
Package sync mirrors media objects from the object store into the local staging directory.

Key Components:

  - Manager: runs sync passes on a fixed-delay timer, on notifications and on demand
  - Target: the video key, metadata key and local name derived from one listed object
  - ObjectStore: the List/Download contract implemented by internal/objectstore

Pass Lifecycle:

A pass lists the direct children of the configured prefix, keeps keys ending in
the video extension and handles each one in its own goroutine (bounded by
remote.max_concurrent_downloads):

 1. Complete locally (video and metadata on disk): re-register the name.
 2. Video present, metadata missing: download the metadata only.
 3. Otherwise: download the video, then the metadata. The metadata request is
    never issued unless the video download succeeded.

A failed object does not cancel its siblings. Any failure marks the pass failed
and clears the connectivity flag; a pass without failures sets it. Nothing is
retried within a pass; the next trigger retries naturally because completed
objects are skipped.

Triggering:

Passes never overlap. A trigger that arrives while a pass is running sets a
pending flag and returns immediately; the running caller performs exactly one
follow-up pass for any number of such triggers. Across processes the staging
directory is guarded by a lock file held for the duration of a pass.

Usage Example:

	mgr := sync.NewManager(breakerStore, index, loader, cfg)
	if err := mgr.Start(ctx); err != nil {
	    return err
	}
	defer mgr.Stop()

	// From the notification listener or the API:
	_ = mgr.Trigger(ctx, sync.SourceNotification)
*/
package sync
