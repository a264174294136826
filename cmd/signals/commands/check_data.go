package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var checkSymbol string

var checkDataCmd = &cobra.Command{
	Use:   "check-data",
	Short: "Check market data freshness",
	Long: `Verifies the data provider has a bar for the expected last trading
day of a reference symbol. Exits non-zero when the data is stale, so
the check can gate a scheduled run.

Example:
  go run ./cmd/signals check-data
  go run ./cmd/signals check-data --symbol QQQ`,
	RunE: runCheckData,
}

func init() {
	rootCmd.AddCommand(checkDataCmd)
	checkDataCmd.Flags().StringVar(&checkSymbol, "symbol", "SPY", "reference symbol")
}

func runCheckData(cmd *cobra.Command, args []string) error {
	p, err := buildPipeline()
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now().In(p.cfg.ExchangeLocation())
	fresh, lastBar, err := p.market.Fresh(ctx, checkSymbol, now)
	if err != nil {
		return fmt.Errorf("freshness check: %w", err)
	}

	fmt.Printf("Reference symbol: %s\n", checkSymbol)
	fmt.Printf("Latest bar:       %s\n", lastBar.Format("2006-01-02"))
	if !fresh {
		return fmt.Errorf("market data is stale (latest bar %s)", lastBar.Format("2006-01-02"))
	}
	fmt.Println("Data is fresh")
	return nil
}
