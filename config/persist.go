package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/emberworks/stoker/errors"
)

// persistedConfig mirrors Config with toml tags for serialization.
// Viper reads mapstructure tags; go-toml writes toml tags.
type persistedConfig struct {
	Engine persistedEngine `toml:"engine"`
	Log    persistedLog    `toml:"log"`
}

type persistedEngine struct {
	Workers                int     `toml:"workers"`
	PollIntervalSeconds    int     `toml:"poll_interval_seconds"`
	MaxHistory             int     `toml:"max_history"`
	MaxRetries             int     `toml:"max_retries"`
	BackoffFactor          float64 `toml:"backoff_factor"`
	ShutdownTimeoutSeconds int     `toml:"shutdown_timeout_seconds"`
	ClaimsPerMinute        int     `toml:"claims_per_minute"`
}

type persistedLog struct {
	JSON      bool `toml:"json"`
	Verbosity int  `toml:"verbosity"`
}

// Save writes the configuration as TOML to the given path.
// The write is atomic: a temp file in the same directory is renamed over
// the target so a crash mid-write never leaves a truncated config.
func Save(cfg *Config, configPath string) error {
	out := persistedConfig{
		Engine: persistedEngine{
			Workers:                cfg.Engine.Workers,
			PollIntervalSeconds:    cfg.Engine.PollIntervalSeconds,
			MaxHistory:             cfg.Engine.MaxHistory,
			MaxRetries:             cfg.Engine.MaxRetries,
			BackoffFactor:          cfg.Engine.BackoffFactor,
			ShutdownTimeoutSeconds: cfg.Engine.ShutdownTimeoutSeconds,
			ClaimsPerMinute:        cfg.Engine.ClaimsPerMinute,
		},
		Log: persistedLog{
			JSON:      cfg.Log.JSON,
			Verbosity: cfg.Log.Verbosity,
		},
	}

	data, err := toml.Marshal(out)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create config directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".stoker-*.toml")
	if err != nil {
		return errors.Wrap(err, "failed to create temp config file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "failed to write temp config file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "failed to close temp config file")
	}

	if err := os.Rename(tmpName, configPath); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "failed to replace config file %s", configPath)
	}

	return nil
}
