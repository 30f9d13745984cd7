// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - All loading functions accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"
	"time"

	"github.com/campuslink/matchengine/internal/domain/signals"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// WorkerCount sets the number of recompute workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueCapacity bounds the in-memory recompute backlog.
	QueueCapacity int `koanf:"queue_capacity"`

	// MaxAttempts is the retry ceiling before an item is marked failed.
	MaxAttempts int `koanf:"max_attempts"`

	// Lease is how long a claimed item stays owned by a worker.
	Lease time.Duration `koanf:"lease"`

	// RetryBackoff and RetryBackoffMax bound the retry delay growth.
	RetryBackoff    time.Duration `koanf:"retry_backoff"`
	RetryBackoffMax time.Duration `koanf:"retry_backoff_max"`

	// ScoreTTL is how long a fresh score stays valid.
	ScoreTTL time.Duration `koanf:"score_ttl"`

	// TTLSweepInterval is how often expired scores are collected.
	TTLSweepInterval time.Duration `koanf:"ttl_sweep_interval"`

	// WeeklyCapacityHours is the base weekly availability capacity.
	WeeklyCapacityHours float64 `koanf:"weekly_capacity_hours"`

	// AvailabilityLowHours and AvailabilityMediumHours are the window
	// classification cut-offs.
	AvailabilityLowHours    float64 `koanf:"availability_low_hours"`
	AvailabilityMediumHours float64 `koanf:"availability_medium_hours"`

	// Weights is the signal weight profile; it must sum to 1.
	Weights signals.Weights `koanf:"weights"`

	// PostgresDSN switches the source store to Postgres when set.
	PostgresDSN string `koanf:"postgres_dsn"`

	// SeedDemo loads deterministic demo fixtures into the in-memory
	// source store. Ignored when PostgresDSN is set.
	SeedDemo bool `koanf:"seed_demo"`
}

// New creates a Config with defaults. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:                "info",
		Addr:                    ":9080",
		WorkerCount:             runtime.NumCPU() * 2,
		QueueCapacity:           100_000,
		MaxAttempts:             3,
		Lease:                   30 * time.Second,
		RetryBackoff:            2 * time.Second,
		RetryBackoffMax:         5 * time.Minute,
		ScoreTTL:                24 * time.Hour,
		TTLSweepInterval:        time.Minute,
		WeeklyCapacityHours:     40,
		AvailabilityLowHours:    10,
		AvailabilityMediumHours: 30,
		Weights:                 signals.DefaultWeights(),
	}
}
