package config

import "github.com/spf13/viper"

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Engine defaults
	v.SetDefault("engine.workers", 5)
	v.SetDefault("engine.poll_interval_seconds", 1)
	v.SetDefault("engine.max_history", 1000)
	v.SetDefault("engine.max_retries", 3)
	v.SetDefault("engine.backoff_factor", 2.0)
	v.SetDefault("engine.shutdown_timeout_seconds", 5)
	v.SetDefault("engine.claims_per_minute", 0) // 0 = unlimited

	// Log defaults
	v.SetDefault("log.json", false)
	v.SetDefault("log.verbosity", 1)
}
