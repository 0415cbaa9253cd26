package config

import (
	"fmt"
	"strings"
)

// Validate checks the config for out-of-range values. Defaults are applied
// at load time, so zero values only appear here when set explicitly.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Telemetry.LocalPath == "" {
		errs = append(errs, "telemetry.local_path must not be empty")
	}
	if cfg.Telemetry.ReadLimit < 0 || cfg.Telemetry.ReadLimit > MaxReadLimit {
		errs = append(errs, fmt.Sprintf("telemetry.read_limit must be in (0, %d], got %d", MaxReadLimit, cfg.Telemetry.ReadLimit))
	}
	if cfg.Telemetry.ProbeTimeoutMs < 0 {
		errs = append(errs, "telemetry.probe_timeout_ms must not be negative")
	}
	if cfg.Redis.DB < 0 {
		errs = append(errs, fmt.Sprintf("redis.db must not be negative, got %d", cfg.Redis.DB))
	}
	if cfg.Redis.TimeoutMs < 0 {
		errs = append(errs, "redis.timeout_ms must not be negative")
	}
	if cfg.Ingest.WriteWorkers < 0 {
		errs = append(errs, "ingest.write_workers must not be negative")
	}
	if cfg.Ingest.QueueDepth < 0 {
		errs = append(errs, "ingest.queue_depth must not be negative")
	}
	if cfg.Ingest.WriteTimeoutMs < 0 {
		errs = append(errs, "ingest.write_timeout_ms must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
