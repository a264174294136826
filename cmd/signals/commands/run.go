package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full daily pipeline once",
	Long: `Runs the complete pipeline: account snapshot, every strategy scan in
priority order, position reconciliation, conflict resolution, and
order emission to the output directory.

Example:
  go run ./cmd/signals run`,
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	p, err := buildPipeline()
	if err != nil {
		return err
	}
	defer p.Close()

	runTime := time.Now().In(p.cfg.ExchangeLocation())
	result, err := p.runner.Run(context.Background(), runTime)
	if err != nil {
		return fmt.Errorf("run pipeline: %w", err)
	}

	fmt.Printf("Run %s completed in %s\n", result.RunID, result.Duration.Round(time.Millisecond))
	fmt.Printf("Usable capital: %.2f\n", result.UsableCapital)
	fmt.Printf("Orders: %d\n", len(result.Orders))
	for name, count := range result.OrdersByStrategy {
		fmt.Printf("  %-12s %d\n", name, count)
	}
	for _, w := range result.Warnings {
		fmt.Printf("WARNING: %s\n", w)
	}
	return nil
}
