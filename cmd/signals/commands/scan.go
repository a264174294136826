package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mwt/signals/internal/broker"
	"github.com/mwt/signals/internal/capital"
	"github.com/mwt/signals/internal/scanner"
	"github.com/mwt/signals/internal/strategy"
	"github.com/mwt/signals/internal/universe"
	"github.com/mwt/signals/pkg/logger"
)

var scanCmd = &cobra.Command{
	Use:   "scan [strategy]",
	Short: "Scan one strategy without emitting orders",
	Long: `Runs a single strategy's scan and prints the ranked candidates.
Nothing is reconciled or written; held positions are not considered.

Example:
  go run ./cmd/signals scan MWT_MR_L`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	name := strings.ToUpper(args[0])

	all := strategy.All()
	var cfg *strategy.Config
	for i := range all {
		if all[i].Name == name {
			cfg = &all[i]
			break
		}
	}
	if cfg == nil {
		names := make([]string, 0, len(all))
		for _, c := range all {
			names = append(names, c.Name)
		}
		return fmt.Errorf("unknown strategy %s (have: %s)", name, strings.Join(names, ", "))
	}

	p, err := buildPipeline()
	if err != nil {
		return err
	}
	defer p.Close()

	ctx := context.Background()
	account := broker.NewClient(p.cfg.Broker, p.log)
	summary, err := account.AccountSummary(ctx)
	if err != nil {
		return fmt.Errorf("account summary: %w", err)
	}
	positions, err := account.OpenPositions(ctx)
	if err != nil {
		return fmt.Errorf("open positions: %w", err)
	}
	alloc := capital.NewAllocator(summary.BuyingPower, broker.OpenPositionCost(positions), capital.DefaultBufferFraction)

	scanLog := logger.Nop()
	if verbose {
		scanLog = p.log
	}
	sc := scanner.New(p.market, universe.NewProvider(p.cfg.MarketData, p.log), scanLog, scanWorkers)

	start := time.Now()
	candidates, err := sc.Scan(ctx, *cfg, alloc, nil, time.Now().In(p.cfg.ExchangeLocation()))
	if err != nil {
		return fmt.Errorf("scan %s: %w", name, err)
	}

	fmt.Printf("%s: %d candidates in %s (usable capital %.2f)\n\n",
		name, len(candidates), time.Since(start).Round(time.Millisecond), alloc.UsableCapital())
	if len(candidates) == 0 {
		return nil
	}

	fmt.Printf("%-4s %-8s %10s %6s %10s %s\n", "#", "SYMBOL", "SCORE", "QTY", "PRICE", "DIR")
	for i, c := range candidates {
		fmt.Printf("%-4d %-8s %10.3f %6d %10.2f %s\n",
			i+1, c.Symbol, c.Score, c.Quantity, c.Price, c.Direction)
	}
	return nil
}
