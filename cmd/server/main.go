// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/tomtom215/mediamirror/internal/api"
	"github.com/tomtom215/mediamirror/internal/config"
	"github.com/tomtom215/mediamirror/internal/logging"
	"github.com/tomtom215/mediamirror/internal/objectstore"
	"github.com/tomtom215/mediamirror/internal/store"
	"github.com/tomtom215/mediamirror/internal/supervisor"
	"github.com/tomtom215/mediamirror/internal/supervisor/services"
	"github.com/tomtom215/mediamirror/internal/sync"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

//nolint:gocyclo // sequential startup wiring
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("version", version).
		Str("dir", cfg.Storage.Dir).
		Str("bucket", cfg.Remote.Bucket).
		Str("prefix", cfg.Remote.Prefix).
		Str("queue", cfg.Queue.Provider).
		Msg("Starting mediamirror")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Local store
	index, err := store.NewIndex(cfg.Storage.Dir, cfg.Storage.VideoExt, cfg.Storage.MetadataExt)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open staging directory")
	}
	if cfg.Storage.SeedVideo != "" && cfg.Storage.SeedMetadata != "" {
		name, err := index.InstallDefault(cfg.Storage.SeedVideo, cfg.Storage.SeedMetadata)
		if err != nil {
			logging.Warn().Err(err).Msg("Failed to install default media")
		} else {
			logging.Info().Str("name", name).Msg("Default media installed")
		}
	}

	loader := store.NewLoader(index, cfg.Cache.Capacity)
	var preload store.Preloader
	if cfg.Storage.PreloadOnStart {
		preload = loader
	}
	if _, err := index.Seed(ctx, preload); err != nil {
		logging.Fatal().Err(err).Msg("Failed to seed local store")
	}

	// Object store
	s3Store, err := objectstore.NewFromConfig(ctx, cfg.Remote)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create S3 client")
	}
	remote := objectstore.NewBreakerStore(s3Store, cfg.Remote)

	syncManager := sync.NewManager(remote, index, loader, cfg)

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFromConfig(cfg.Supervisor))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddStorageService(services.NewSyncService(syncManager))

	closeListener, err := initNotifications(ctx, cfg, syncManager, tree)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize notification listener")
	}
	defer closeListener()

	// HTTP
	handler := api.NewHandler(loader, index, syncManager, cfg.Cache.DefaultBlockSize)
	handler.SetBreakerState(remote.State)
	handler.SetVersion(version)

	router := api.NewRouter(handler, api.NewChiMiddleware(api.NewChiMiddlewareConfig(cfg.Server)))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Supervisor.ShutdownTimeout))

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Mediamirror stopped")
}
