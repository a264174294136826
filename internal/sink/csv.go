// Package sink holds the order output boundaries: the upload CSV for
// the trading application, the daily email report, and the Postgres
// history store. Sinks receive the final resolved order list and
// never modify it.
package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mwt/signals/internal/contracts"
	"github.com/mwt/signals/pkg/logger"
)

// csvHeader is the column contract of the trading application's batch
// order upload. Column order matters.
var csvHeader = []string{
	"Symbol", "Action", "Quantity", "OrderType", "LimitPrice", "StopPrice",
	"SecurityType", "Exchange", "Timezone", "TimeInForce", "GoodTillDate",
	"AttachMOC", "Strategy", "OutsideRTH", "AllOrNone", "Hidden",
	"DisplaySize", "DisplaySizeIsPercentage",
}

const defaultExchange = "SMART"

// CSVWriter writes one order file per run into the output directory.
type CSVWriter struct {
	dir    string
	logger *logger.Logger
}

func NewCSVWriter(dir string, log *logger.Logger) *CSVWriter {
	return &CSVWriter{dir: dir, logger: log}
}

// Emit writes daily_orders_<date>.csv. An empty order list still
// produces a file with just the header, so a quiet day is
// distinguishable from a failed run.
func (w *CSVWriter) Emit(_ context.Context, _ string, date time.Time, orders []contracts.Order) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(w.dir, fmt.Sprintf("daily_orders_%s.csv", date.Format("2006-01-02")))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create order file: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, o := range orders {
		if err := cw.Write(orderRow(o)); err != nil {
			return fmt.Errorf("write order row for %s: %w", o.Symbol, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush order file: %w", err)
	}

	w.logger.WithFields(map[string]interface{}{
		"file":   path,
		"orders": len(orders),
	}).Info("Order CSV written")
	return nil
}

func orderRow(o contracts.Order) []string {
	limit := ""
	if o.OrderType == contracts.OrderTypeLimit {
		limit = fmt.Sprintf("%.2f", o.LimitPrice)
	}
	return []string{
		o.Symbol,
		string(o.Action),
		fmt.Sprintf("%d", o.Quantity),
		strings.ToUpper(string(o.OrderType)),
		limit,
		"", // StopPrice
		o.SecurityType,
		defaultExchange,
		"", // Timezone: the application applies its account default
		string(o.TimeInForce),
		o.GoodTillDate,
		yesNo(o.AttachMOC),
		o.Strategy,
		"NO", // OutsideRTH
		"NO", // AllOrNone
		"NO", // Hidden
		"0",  // DisplaySize
		"NO", // DisplaySizeIsPercentage
	}
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}
