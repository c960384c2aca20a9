// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package config

import (
	"fmt"
	"strings"
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateRemote(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	if err := c.validateQueue(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if !c.Server.RateLimitDisabled && c.Server.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive when rate limiting is enabled")
	}
	return nil
}

func (c *Config) validateStorage() error {
	if c.Storage.Dir == "" {
		return fmt.Errorf("STORAGE_DIR is required")
	}
	if !strings.HasPrefix(c.Storage.VideoExt, ".") || !strings.HasPrefix(c.Storage.MetadataExt, ".") {
		return fmt.Errorf("VIDEO_EXT and METADATA_EXT must start with a dot")
	}
	if c.Storage.VideoExt == c.Storage.MetadataExt {
		return fmt.Errorf("VIDEO_EXT and METADATA_EXT must differ")
	}
	if (c.Storage.SeedVideo == "") != (c.Storage.SeedMetadata == "") {
		return fmt.Errorf("SEED_VIDEO_PATH and SEED_METADATA_PATH must be set together")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.Capacity < 1 {
		return fmt.Errorf("CACHE_CAPACITY must be at least 1")
	}
	if c.Cache.DefaultBlockSize < 1 {
		return fmt.Errorf("CACHE_DEFAULT_BLOCK must be positive")
	}
	return nil
}

func (c *Config) validateRemote() error {
	if c.Remote.Bucket == "" {
		return fmt.Errorf("S3_BUCKET is required")
	}
	if c.Remote.Prefix != "" && !strings.HasSuffix(c.Remote.Prefix, "/") {
		return fmt.Errorf("S3_PREFIX must end with '/'")
	}
	if c.Remote.MaxConcurrentDownloads < 1 {
		return fmt.Errorf("S3_MAX_CONCURRENT must be at least 1")
	}
	if c.Remote.BreakerFailureRatio <= 0 || c.Remote.BreakerFailureRatio > 1 {
		return fmt.Errorf("S3_BREAKER_RATIO must be in (0, 1]")
	}
	return nil
}

func (c *Config) validateSync() error {
	if c.Sync.InitialDelay < 0 || c.Sync.Interval < 0 {
		return fmt.Errorf("SYNC_INITIAL_DELAY and SYNC_INTERVAL must not be negative")
	}
	return nil
}

func (c *Config) validateQueue() error {
	switch c.Queue.Provider {
	case "none":
		return nil
	case "sqs":
		if c.Queue.SQS.QueueURL == "" {
			return fmt.Errorf("SQS_QUEUE_URL is required when QUEUE_PROVIDER=sqs")
		}
		// SQS long polling accepts 0-20 seconds and 1-10 messages.
		if c.Queue.WaitTime.Seconds() > 20 {
			return fmt.Errorf("QUEUE_WAIT_TIME must not exceed 20s for SQS")
		}
		if c.Queue.MaxMessages > 10 {
			return fmt.Errorf("QUEUE_MAX_MESSAGES must not exceed 10 for SQS")
		}
	case "nats":
		if c.Queue.NATS.Stream == "" || c.Queue.NATS.Durable == "" {
			return fmt.Errorf("NATS_STREAM and NATS_DURABLE are required when QUEUE_PROVIDER=nats")
		}
		if len(c.Queue.NATS.Subjects) == 0 {
			return fmt.Errorf("NATS_SUBJECTS is required when QUEUE_PROVIDER=nats")
		}
		if !c.Queue.NATS.EmbeddedServer && c.Queue.NATS.URL == "" {
			return fmt.Errorf("NATS_URL is required unless NATS_EMBEDDED=true")
		}
	default:
		return fmt.Errorf("QUEUE_PROVIDER must be one of sqs, nats, none (got %q)", c.Queue.Provider)
	}

	if c.Queue.MaxMessages < 1 {
		return fmt.Errorf("QUEUE_MAX_MESSAGES must be at least 1")
	}
	if c.Queue.WaitTime <= 0 {
		return fmt.Errorf("QUEUE_WAIT_TIME must be positive")
	}
	if c.Queue.TriggerRate <= 0 || c.Queue.TriggerBurst < 1 {
		return fmt.Errorf("QUEUE_TRIGGER_RATE and QUEUE_TRIGGER_BURST must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console")
	}
	return nil
}

// SyncTimerEnabled reports whether the periodic sync timer should run.
func (c *Config) SyncTimerEnabled() bool {
	return c.Sync.InitialDelay > 0 && c.Sync.Interval > 0
}

// ListenerEnabled reports whether a notification listener is configured.
func (c *Config) ListenerEnabled() bool {
	return c.Queue.Provider != "none" && c.Queue.Interval > 0
}
