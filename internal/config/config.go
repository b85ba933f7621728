// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers defaults, an optional YAML file, and environment variables.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// DBPath is the sqlite file holding organisation scoring context.
	DBPath string `koanf:"db_path" validate:"required"`

	// ServiceAURL is the base URL of the culture-fit prediction service.
	ServiceAURL string `koanf:"service_a_url" validate:"required,url"`

	// ServiceBURL is the base URL of the transcript prediction service.
	ServiceBURL string `koanf:"service_b_url" validate:"required,url"`

	// PredictTimeoutMS bounds a single prediction attempt.
	PredictTimeoutMS int `koanf:"predict_timeout_ms" validate:"gt=0"`

	// PredictMaxRetries is the number of retries after the first attempt.
	PredictMaxRetries int `koanf:"predict_max_retries" validate:"gte=0,lte=10"`

	// PredictBackoffBaseMS is multiplied by 2^retry between attempts.
	PredictBackoffBaseMS int `koanf:"predict_backoff_base_ms" validate:"gte=0"`

	// PredictRateLimit caps outbound prediction calls per second; 0 disables it.
	PredictRateLimit float64 `koanf:"predict_rate_limit" validate:"gte=0"`
	PredictRateBurst int     `koanf:"predict_rate_burst" validate:"gte=0"`

	// HealthTimeoutMS bounds each predictor health probe.
	HealthTimeoutMS int `koanf:"health_timeout_ms" validate:"gt=0"`

	// RequestTimeoutMS bounds one scoring request end to end.
	RequestTimeoutMS int `koanf:"request_timeout_ms" validate:"gt=0"`
}

// New creates a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		DBPath:               "fitscore.db",
		ServiceAURL:          "http://localhost:8001",
		ServiceBURL:          "http://localhost:8002",
		PredictTimeoutMS:     30_000,
		PredictMaxRetries:    3,
		PredictBackoffBaseMS: 1_000,
		PredictRateLimit:     0,
		PredictRateBurst:     10,
		HealthTimeoutMS:      5_000,
		RequestTimeoutMS:     180_000,
	}
}

// PredictTimeout returns the per-attempt prediction timeout.
func (c *Config) PredictTimeout() time.Duration {
	return time.Duration(c.PredictTimeoutMS) * time.Millisecond
}

// PredictBackoffBase returns the base backoff delay.
func (c *Config) PredictBackoffBase() time.Duration {
	return time.Duration(c.PredictBackoffBaseMS) * time.Millisecond
}

// HealthTimeout returns the health probe timeout.
func (c *Config) HealthTimeout() time.Duration {
	return time.Duration(c.HealthTimeoutMS) * time.Millisecond
}

// RequestTimeout returns the end-to-end scoring timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}
