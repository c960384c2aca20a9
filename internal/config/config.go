// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

// Package config loads mediamirror configuration with koanf.
//
// Sources are layered, later ones winning:
//
//  1. built-in defaults (defaultConfig)
//  2. a YAML file (CONFIG_PATH or the first of DefaultConfigPaths that exists)
//  3. environment variables listed in envMappings
//
// The merged result is validated before it is returned.
package config

import (
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Storage    StorageConfig    `koanf:"storage"`
	Cache      CacheConfig      `koanf:"cache"`
	Remote     RemoteConfig     `koanf:"remote"`
	Sync       SyncConfig       `koanf:"sync"`
	Queue      QueueConfig      `koanf:"queue"`
	Logging    LoggingConfig    `koanf:"logging"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port         int           `koanf:"port"`
	Host         string        `koanf:"host"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`

	// CORSOrigins lists allowed browser origins. Empty disables CORS headers.
	CORSOrigins []string `koanf:"cors_origins"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// StorageConfig describes the local staging directory.
type StorageConfig struct {
	// Dir holds one video file and one metadata file per object.
	Dir string `koanf:"dir"`

	VideoExt    string `koanf:"video_ext"`
	MetadataExt string `koanf:"metadata_ext"`

	// PreloadOnStart loads every seeded pair into the cache at startup.
	PreloadOnStart bool `koanf:"preload_on_start"`

	// SeedVideo and SeedMetadata, when both set, are copied into Dir at
	// startup under the video file's base name unless already present.
	SeedVideo    string `koanf:"seed_video"`
	SeedMetadata string `koanf:"seed_metadata"`
}

// CacheConfig sizes the in-memory media cache.
type CacheConfig struct {
	// Capacity is the maximum number of media pairs held in memory.
	Capacity int `koanf:"capacity"`

	// DefaultBlockSize is the response size for open-ended byte ranges.
	DefaultBlockSize int64 `koanf:"default_block_size"`
}

// RemoteConfig points at the S3 bucket being mirrored.
type RemoteConfig struct {
	Region string `koanf:"region"`
	Bucket string `koanf:"bucket"`
	Prefix string `koanf:"prefix"`

	// Endpoint overrides the S3 endpoint (LocalStack, MinIO).
	Endpoint     string `koanf:"endpoint"`
	UsePathStyle bool   `koanf:"use_path_style"`

	MaxConcurrentDownloads int `koanf:"max_concurrent_downloads"`

	// Circuit breaker around the object store.
	BreakerFailureRatio float64       `koanf:"breaker_failure_ratio"`
	BreakerMinRequests  uint32        `koanf:"breaker_min_requests"`
	BreakerOpenTimeout  time.Duration `koanf:"breaker_open_timeout"`
}

// SyncConfig schedules periodic sync passes.
type SyncConfig struct {
	// InitialDelay and Interval drive the periodic timer. The timer is
	// disabled when either is zero.
	InitialDelay time.Duration `koanf:"initial_delay"`
	Interval     time.Duration `koanf:"interval"`

	// OnStart runs one pass as soon as the engine starts.
	OnStart bool `koanf:"on_start"`

	// PreloadAfterDownload loads freshly downloaded pairs into the cache.
	PreloadAfterDownload bool `koanf:"preload_after_download"`
}

// QueueConfig selects and configures the change notification source.
type QueueConfig struct {
	// Provider is "sqs", "nats" or "none".
	Provider string `koanf:"provider"`

	WaitTime     time.Duration `koanf:"wait_time"`
	MaxMessages  int           `koanf:"max_messages"`
	InitialDelay time.Duration `koanf:"initial_delay"`
	Interval     time.Duration `koanf:"interval"`

	// TriggerRate caps sync triggers per second from notifications.
	TriggerRate  float64 `koanf:"trigger_rate"`
	TriggerBurst int     `koanf:"trigger_burst"`

	SQS  SQSConfig  `koanf:"sqs"`
	NATS NATSConfig `koanf:"nats"`
}

// SQSConfig configures the Amazon SQS receiver.
type SQSConfig struct {
	Region   string `koanf:"region"`
	QueueURL string `koanf:"queue_url"`
	Endpoint string `koanf:"endpoint"`
}

// NATSConfig configures the JetStream pull receiver.
type NATSConfig struct {
	URL      string   `koanf:"url"`
	Stream   string   `koanf:"stream"`
	Subjects []string `koanf:"subjects"`
	Durable  string   `koanf:"durable"`

	// EmbeddedServer starts an in-process NATS server with JetStream.
	EmbeddedServer bool   `koanf:"embedded_server"`
	StoreDir       string `koanf:"store_dir"`
}

// LoggingConfig configures zerolog output.
type LoggingConfig struct {
	// Level is trace, debug, info, warn or error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`

	Caller bool `koanf:"caller"`
}

// SupervisorConfig tunes the suture restart policy.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}

// Load reads configuration from defaults, file and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
