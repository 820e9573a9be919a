// Package config manages Stoker configuration: viper-backed TOML loading
// with defaults, validation, persistence and hot-reload watching.
package config

import "time"

// Config represents the Stoker configuration
type Config struct {
	Engine EngineConfig `mapstructure:"engine"`
	Log    LogConfig    `mapstructure:"log"`
}

// EngineConfig configures the job scheduling engine
type EngineConfig struct {
	// Worker concurrency configuration
	Workers int `mapstructure:"workers"` // Number of concurrent dispatch workers (default: 5)

	// Dispatch loop configuration
	PollIntervalSeconds int `mapstructure:"poll_interval_seconds"` // How often idle workers rescan for ready jobs (default: 1)

	// Result history retention
	MaxHistory int `mapstructure:"max_history"` // Max JobResults kept before oldest-first eviction (default: 1000)

	// Retry policy defaults for callers wrapping failed executions
	MaxRetries    int     `mapstructure:"max_retries"`    // Default retry budget per job (default: 3)
	BackoffFactor float64 `mapstructure:"backoff_factor"` // Exponential backoff base in seconds (default: 2.0)

	// Shutdown behavior
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds"` // Bounded wait for workers on Stop (default: 5)

	// Claim rate limiting. 0 = unlimited.
	ClaimsPerMinute int `mapstructure:"claims_per_minute"`
}

// LogConfig configures logging output
type LogConfig struct {
	JSON      bool `mapstructure:"json"`      // JSON structured output instead of console
	Verbosity int  `mapstructure:"verbosity"` // 0 = warn, 1 = info, 2+ = debug
}

// PollInterval returns the dispatch poll interval as a duration.
func (e EngineConfig) PollInterval() time.Duration {
	return time.Duration(e.PollIntervalSeconds) * time.Second
}

// ShutdownTimeout returns the Stop() bounded wait as a duration.
func (e EngineConfig) ShutdownTimeout() time.Duration {
	return time.Duration(e.ShutdownTimeoutSeconds) * time.Second
}
