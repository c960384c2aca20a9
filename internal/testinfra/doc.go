// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

// Package testinfra starts containers for integration tests.
//
// Everything here is behind the integration build tag:
//
//	go test -tags integration ./...
//
// LocalStack provides S3 and SQS:
//
//	ls := testinfra.StartLocalStack(t)
//	store, _ := objectstore.NewFromConfig(ctx, config.RemoteConfig{
//	    Endpoint:     ls.Endpoint,
//	    UsePathStyle: true,
//	}, ls.Credentials())
//
// Set LOCALSTACK_ENDPOINT to reuse an already running LocalStack instead of
// starting a container. Tests are skipped when Docker is unavailable.
package testinfra
