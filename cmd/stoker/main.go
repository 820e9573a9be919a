package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/emberworks/stoker/cmd/stoker/commands"
	"github.com/emberworks/stoker/logger"
)

var rootCmd = &cobra.Command{
	Use:   "stoker",
	Short: "Stoker - background job scheduling daemon",
	Long: `Stoker - in-process background job scheduling.

Stoker runs a registry of jobs against a pool of polling workers:
one-shot and recurring work, retries with exponential backoff, a
bounded execution history, and read-only metrics.

Available commands:
  run     - Start the scheduler daemon
  config  - Inspect or initialize configuration
  version - Show version information

Examples:
  stoker run                  # Start daemon with config defaults
  stoker run --workers 3      # Start with 3 concurrent workers
  stoker config show          # Show effective configuration
  stoker config init          # Write a default stoker.toml`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")
		verbosity, _ := cmd.Flags().GetCount("verbose")
		if err := logger.InitializeWithVerbosity(jsonOutput, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().Bool("json", false, "Emit logs as JSON")

	rootCmd.AddCommand(commands.RunCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
