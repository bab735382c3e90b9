package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path, overlays recognized
// environment variables (which always win, since they carry secrets that
// should never live in a checked-in YAML file), then validates the result.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies the environment
// overlay, and validates the result. Useful in tests where configs are
// constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}

	ApplyEnv(cfg, os.Environ())

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays the recognized environment variables from spec.md §6
// onto cfg: PORT, NODE_ENV, GEMINI_API_KEY, GEMINI_API_KEY_2..5,
// GEMINI_ENABLED, GEMINI_MIN_INTERVAL_MS, GROQ_API_KEY, ELEVENLABS_API_KEY,
// PEXELS_API_KEY. environ is the raw "KEY=VALUE" slice (os.Environ()'s
// shape) so tests can supply a fixed set without mutating process state.
func ApplyEnv(cfg *Config, environ []string) {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}

	if v, ok := env["PORT"]; ok {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v, ok := env["NODE_ENV"]; ok {
		cfg.Server.Environment = v
	}

	if v, ok := env["GEMINI_API_KEY"]; ok {
		cfg.Providers.Oracle.Primary.Name = "gemini"
		cfg.Providers.Oracle.Primary.APIKey = v
	}
	var extra []string
	for i := 2; i <= 5; i++ {
		if v, ok := env[fmt.Sprintf("GEMINI_API_KEY_%d", i)]; ok && v != "" {
			extra = append(extra, v)
		}
	}
	if len(extra) > 0 {
		cfg.Providers.Oracle.Primary.ExtraKeys = extra
	}
	if v, ok := env["GEMINI_ENABLED"]; ok {
		cfg.Providers.Oracle.Primary.Enabled = v == "true" || v == "1"
	}
	if v, ok := env["GEMINI_MIN_INTERVAL_MS"]; ok {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.Providers.Oracle.MinIntervalMS = ms
		}
	}
	if v, ok := env["GROQ_API_KEY"]; ok {
		cfg.Providers.Oracle.Secondary.Name = "groq"
		cfg.Providers.Oracle.Secondary.APIKey = v
	}
	if v, ok := env["ELEVENLABS_API_KEY"]; ok {
		cfg.Providers.TTS.Name = "elevenlabs"
		cfg.Providers.TTS.APIKey = v
	}
	if v, ok := env["PEXELS_API_KEY"]; ok {
		cfg.Providers.Stock.Name = "pexels"
		cfg.Providers.Stock.APIKey = v
	}
}

// Validate checks that cfg contains a coherent set of values, returning a
// joined error listing every failure found.
func Validate(cfg *Config) error {
	var errs []error

	if !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range [0,65535]", cfg.Server.Port))
	}

	if cfg.Pipeline.MaxConcurrentJobs < 0 {
		errs = append(errs, fmt.Errorf("pipeline.max_concurrent_jobs %d must be >= 0", cfg.Pipeline.MaxConcurrentJobs))
	}
	if cfg.Retention.SweepIntervalHours < 0 {
		errs = append(errs, fmt.Errorf("retention.sweep_interval_hours %d must be >= 0", cfg.Retention.SweepIntervalHours))
	}

	return errors.Join(errs...)
}
