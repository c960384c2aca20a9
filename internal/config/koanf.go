// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/mediamirror/config.yaml",
	"/etc/mediamirror/config.yml",
}

// ConfigPathEnvVar names an explicit config file.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              8080,
			Host:              "0.0.0.0",
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      5 * time.Minute, // whole-file video responses can be large
			IdleTimeout:       60 * time.Second,
			CORSOrigins:       []string{},
			RateLimitReqs:     600,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Storage: StorageConfig{
			Dir:            filepath.Join(os.TempDir(), "video.analytics.tmp"),
			VideoExt:       ".mp4",
			MetadataExt:    ".json",
			PreloadOnStart: false,
		},
		Cache: CacheConfig{
			Capacity:         100,
			DefaultBlockSize: 1 << 20,
		},
		Remote: RemoteConfig{
			Region:                 "us-east-1",
			Bucket:                 "heatmap-demo",
			Prefix:                 "output/",
			MaxConcurrentDownloads: 4,
			BreakerFailureRatio:    0.6,
			BreakerMinRequests:     5,
			BreakerOpenTimeout:     time.Minute,
		},
		Sync: SyncConfig{
			InitialDelay:         0, // periodic sync off unless configured
			Interval:             15 * time.Second,
			OnStart:              true,
			PreloadAfterDownload: false,
		},
		Queue: QueueConfig{
			Provider:     "none",
			WaitTime:     20 * time.Second,
			MaxMessages:  5,
			InitialDelay: 5 * time.Second,
			Interval:     5 * time.Second,
			TriggerRate:  1,
			TriggerBurst: 1,
			SQS: SQSConfig{
				Region: "us-east-1",
			},
			NATS: NATSConfig{
				URL:            "nats://127.0.0.1:4222",
				Stream:         "MEDIA_UPLOADS",
				Subjects:       []string{"media.uploaded.>"},
				Durable:        "mediamirror",
				EmbeddedServer: false,
				StoreDir:       "/data/nats",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5,
			FailureDecay:     30,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
	}
}

// LoadWithKoanf merges defaults, the config file and the environment, then
// validates the result.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths accept comma-separated strings from the environment.
var sliceConfigPaths = []string{
	"server.cors_origins",
	"queue.nats.subjects",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		var parts []string
		for _, p := range strings.Split(strVal, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf keys.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	"http_port":           "server.port",
	"http_host":           "server.host",
	"http_read_timeout":   "server.read_timeout",
	"http_write_timeout":  "server.write_timeout",
	"http_idle_timeout":   "server.idle_timeout",
	"cors_origins":        "server.cors_origins",
	"rate_limit_requests": "server.rate_limit_reqs",
	"rate_limit_window":   "server.rate_limit_window",
	"disable_rate_limit":  "server.rate_limit_disabled",

	"storage_dir":          "storage.dir",
	"video_ext":            "storage.video_ext",
	"metadata_ext":         "storage.metadata_ext",
	"preload_on_start":     "storage.preload_on_start",
	"seed_video_path":      "storage.seed_video",
	"seed_metadata_path":   "storage.seed_metadata",
	"cache_capacity":       "cache.capacity",
	"cache_default_block":  "cache.default_block_size",
	"s3_region":            "remote.region",
	"s3_bucket":            "remote.bucket",
	"s3_prefix":            "remote.prefix",
	"s3_endpoint":          "remote.endpoint",
	"s3_use_path_style":    "remote.use_path_style",
	"s3_max_concurrent":    "remote.max_concurrent_downloads",
	"s3_breaker_ratio":     "remote.breaker_failure_ratio",
	"s3_breaker_min":       "remote.breaker_min_requests",
	"s3_breaker_timeout":   "remote.breaker_open_timeout",
	"sync_initial_delay":   "sync.initial_delay",
	"sync_interval":        "sync.interval",
	"sync_on_start":        "sync.on_start",
	"preload_on_download":  "sync.preload_after_download",
	"queue_provider":       "queue.provider",
	"queue_wait_time":      "queue.wait_time",
	"queue_max_messages":   "queue.max_messages",
	"queue_initial_delay":  "queue.initial_delay",
	"queue_interval":       "queue.interval",
	"queue_trigger_rate":   "queue.trigger_rate",
	"queue_trigger_burst":  "queue.trigger_burst",
	"sqs_region":           "queue.sqs.region",
	"sqs_queue_url":        "queue.sqs.queue_url",
	"sqs_endpoint":         "queue.sqs.endpoint",
	"nats_url":             "queue.nats.url",
	"nats_stream":          "queue.nats.stream",
	"nats_subjects":        "queue.nats.subjects",
	"nats_durable":         "queue.nats.durable",
	"nats_embedded":        "queue.nats.embedded_server",
	"nats_store_dir":       "queue.nats.store_dir",
	"log_level":            "logging.level",
	"log_format":           "logging.format",
	"log_caller":           "logging.caller",
	"supervisor_threshold": "supervisor.failure_threshold",
	"supervisor_backoff":   "supervisor.failure_backoff",
	"shutdown_timeout":     "supervisor.shutdown_timeout",
}

func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
