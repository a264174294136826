package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "signals",
	Short: "Daily trading signal generator",
	Long: `Multi-strategy daily signal generator.

Runs momentum rotation, mean reversion, and intraday limit strategies
against end-of-day market data, reconciles the results with open
positions, resolves cross-strategy conflicts, and writes one order
file per trading day.

Usage:
  go run ./cmd/signals [command]

Examples:
  go run ./cmd/signals run
  go run ./cmd/signals scan MWT_MR_L
  go run ./cmd/signals schedule
  go run ./cmd/signals check-data`,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
