// Package config provides the configuration schema, loader, and provider
// registry for the scenecraft video generation pipeline.
package config

import "time"

// Config is the root configuration structure for scenecraft.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader],
// then overlaid with environment variables via [ApplyEnv].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Retention RetentionConfig `yaml:"retention"`
}

// ServerConfig holds network and logging settings for the HTTP API.
type ServerConfig struct {
	// Port is the TCP port the HTTP server listens on. Overridden by the
	// PORT environment variable.
	Port int `yaml:"port"`

	// LogLevel controls slog verbosity. Valid values: "debug", "info",
	// "warn", "error".
	LogLevel LogLevel `yaml:"log_level"`

	// Environment names the deployment environment, surfaced in logs and
	// overridden by the NODE_ENV environment variable.
	Environment string `yaml:"environment"`
}

// LogLevel is the closed set of recognized slog verbosity names.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// IsValid reports whether l is one of the four recognized levels or empty
// (which newLogger treats as info).
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError, "":
		return true
	default:
		return false
	}
}

// ProvidersConfig declares which provider implementation to use for each
// pipeline stage. Each field selects a named provider registered in the
// [Registry], mirroring the teacher's provider-per-concern shape.
type ProvidersConfig struct {
	Oracle  OracleConfig  `yaml:"oracle"`
	TTS     ProviderEntry `yaml:"tts"`
	Stock   ProviderEntry `yaml:"stock"`
}

// OracleConfig configures the primary/secondary LLM oracle backends plus
// the rate limiter shared across both.
type OracleConfig struct {
	Primary         ProviderEntry `yaml:"primary"`
	Secondary       ProviderEntry `yaml:"secondary"`
	MinIntervalMS   int           `yaml:"min_interval_ms"`
	AllowFallback   bool          `yaml:"allow_fallback"`
}

// MinInterval returns the configured minimum inter-call interval, defaulting
// to 1 second when unset, matching spec.md's GEMINI_MIN_INTERVAL_MS default.
func (o OracleConfig) MinInterval() time.Duration {
	if o.MinIntervalMS <= 0 {
		return time.Second
	}
	return time.Duration(o.MinIntervalMS) * time.Millisecond
}

// ProviderEntry is the common configuration block shared by all provider
// types: a registered name plus its credentials.
type ProviderEntry struct {
	// Name selects the registered provider implementation (e.g., "gemini",
	// "groq", "elevenlabs", "pexels", "mock").
	Name string `yaml:"name"`

	// APIKey is the primary authentication key for the provider's API.
	APIKey string `yaml:"api_key"`

	// ExtraKeys holds additional rotation keys (GEMINI_API_KEY_2.._5).
	ExtraKeys []string `yaml:"extra_keys"`

	// Model selects a specific model within the provider.
	Model string `yaml:"model"`

	// Enabled is read only for the primary oracle: buildOracle creates the
	// primary only when Enabled is true (GEMINI_ENABLED sets it). Other
	// providers ignore it.
	Enabled bool `yaml:"enabled"`
}

// PipelineConfig holds worker pool and directory layout settings.
type PipelineConfig struct {
	// MaxConcurrentJobs caps how many jobs may be in PROCESSING at once.
	// Defaults to 3 when unset.
	MaxConcurrentJobs int `yaml:"max_concurrent_jobs"`

	// OutputDir is the root directory under which each job's per-scene and
	// final renders are written.
	OutputDir string `yaml:"output_dir"`

	// ScratchDir is where the render adapter writes temporary filter-graph
	// and concat-list scripts.
	ScratchDir string `yaml:"scratch_dir"`

	// CacheDir is the root of the stock-asset cache.
	CacheDir string `yaml:"cache_dir"`

	// FFmpegPath is the external renderer binary. Defaults to "ffmpeg"
	// (resolved via PATH) when unset.
	FFmpegPath string `yaml:"ffmpeg_path"`
}

// MaxConcurrent returns the configured job concurrency, defaulting to 3.
func (p PipelineConfig) MaxConcurrent() int {
	if p.MaxConcurrentJobs <= 0 {
		return 3
	}
	return p.MaxConcurrentJobs
}

// RetentionConfig holds cleanup-sweep settings.
type RetentionConfig struct {
	// MarksFile is the path to the JSON array persisting marked job IDs.
	MarksFile string `yaml:"marks_file"`

	// SweepIntervalHours sets how often the periodic sweep runs; defaults
	// to 24 when unset.
	SweepIntervalHours int `yaml:"sweep_interval_hours"`
}

// SweepInterval returns the configured sweep interval, defaulting to 24h.
func (r RetentionConfig) SweepInterval() time.Duration {
	if r.SweepIntervalHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(r.SweepIntervalHours) * time.Hour
}
