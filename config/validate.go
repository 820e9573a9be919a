package config

import "github.com/emberworks/stoker/errors"

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Workers: 0 = no background workers (registry-only use), negative = invalid
	if c.Engine.Workers < 0 {
		return errors.Newf("engine.workers must be >= 0, got %d", c.Engine.Workers)
	}

	if c.Engine.PollIntervalSeconds <= 0 {
		return errors.Newf("engine.poll_interval_seconds must be > 0, got %d", c.Engine.PollIntervalSeconds)
	}

	if c.Engine.MaxHistory <= 0 {
		return errors.Newf("engine.max_history must be > 0, got %d", c.Engine.MaxHistory)
	}

	if c.Engine.MaxRetries < 0 {
		return errors.Newf("engine.max_retries must be >= 0, got %d", c.Engine.MaxRetries)
	}

	// Backoff below 1 would shrink delays on every attempt
	if c.Engine.BackoffFactor < 1 {
		return errors.Newf("engine.backoff_factor must be >= 1, got %f", c.Engine.BackoffFactor)
	}

	if c.Engine.ShutdownTimeoutSeconds <= 0 {
		return errors.Newf("engine.shutdown_timeout_seconds must be > 0, got %d", c.Engine.ShutdownTimeoutSeconds)
	}

	// 0 = unlimited claims, negative = invalid
	if c.Engine.ClaimsPerMinute < 0 {
		return errors.Newf("engine.claims_per_minute must be >= 0, got %d", c.Engine.ClaimsPerMinute)
	}

	if c.Log.Verbosity < 0 {
		return errors.Newf("log.verbosity must be >= 0, got %d", c.Log.Verbosity)
	}

	return nil
}
