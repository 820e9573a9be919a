package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/emberworks/stoker/config"
)

// ConfigCmd groups configuration subcommands.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		if path := config.Path(); path != "" {
			fmt.Printf("Config file: %s\n\n", path)
		} else {
			fmt.Printf("Config file: (none, defaults + STOKER_* env)\n\n")
		}

		fmt.Println("[engine]")
		fmt.Printf("workers = %d\n", cfg.Engine.Workers)
		fmt.Printf("poll_interval_seconds = %d\n", cfg.Engine.PollIntervalSeconds)
		fmt.Printf("max_history = %d\n", cfg.Engine.MaxHistory)
		fmt.Printf("max_retries = %d\n", cfg.Engine.MaxRetries)
		fmt.Printf("backoff_factor = %.1f\n", cfg.Engine.BackoffFactor)
		fmt.Printf("shutdown_timeout_seconds = %d\n", cfg.Engine.ShutdownTimeoutSeconds)
		fmt.Printf("claims_per_minute = %d\n", cfg.Engine.ClaimsPerMinute)
		fmt.Println("\n[log]")
		fmt.Printf("json = %t\n", cfg.Log.JSON)
		fmt.Printf("verbosity = %d\n", cfg.Log.Verbosity)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default stoker.toml",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("path")
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			path = filepath.Join(home, ".stoker", "stoker.toml")
		}

		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists at %s", path)
		}

		if err := config.Save(config.Default(), path); err != nil {
			return err
		}
		fmt.Printf("Wrote default config to %s\n", path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().String("path", "", "Destination file (default ~/.stoker/stoker.toml)")
	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configInitCmd)
}
