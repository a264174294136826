package contracts

import (
	"context"
	"time"
)

// BarProvider returns trailing daily bars for a symbol, most recent
// bar last. Implementations return at most count bars and fail with
// ErrNotFound / ErrDataFetch; a short series is returned as-is and
// callers enforce their own minimum bar counts.
type BarProvider interface {
	// Bars returns up to count bars ending at the latest close.
	Bars(ctx context.Context, symbol string, count int) ([]PriceBar, error)

	// BarsEndingAt returns up to count bars ending at or before end.
	BarsEndingAt(ctx context.Context, symbol string, count int, end time.Time) ([]PriceBar, error)
}

// UniverseProvider lists the tradable symbols of a named index or
// watchlist.
type UniverseProvider interface {
	Symbols(ctx context.Context, universe string) ([]string, error)
}

// AccountClient reads the broker account snapshot at run start.
type AccountClient interface {
	AccountSummary(ctx context.Context) (AccountSummary, error)
	OpenPositions(ctx context.Context) ([]Position, error)
}

// OrderSink receives the final order list of a run.
type OrderSink interface {
	Emit(ctx context.Context, runID string, date time.Time, orders []Order) error
}
