// Package strategy defines the immutable per-strategy configuration
// values. A Config is built once at startup, validated, and passed by
// value into the scanner that runs it; nothing mutates a Config after
// that.
package strategy

import "github.com/mwt/signals/internal/contracts"

// Family selects the scan algorithm a Config is run with.
type Family string

const (
	// FamilyRotation ranks a universe by a blend of two ROC windows
	// and rotates holdings through the top ranks on a monthly data
	// anchor.
	FamilyRotation Family = "rotation"
	// FamilyMeanReversion fades RSI extremes with limit entries
	// stretched off the day's range, exiting at the prior bar's
	// high/low.
	FamilyMeanReversion Family = "mean_reversion"
	// FamilyHFT places intraday limit entries with a same-day
	// good-till time and a market-on-close attachment.
	FamilyHFT Family = "hft"
)

// Config is the full parameter set for one strategy instance. Fields
// not used by a family are left at their zero value.
type Config struct {
	Name   string
	Family Family

	// Direction of positions this strategy opens.
	Direction contracts.Direction

	// Allocation is this strategy's fraction of usable capital.
	Allocation float64

	// MaxPositions caps held + newly entered positions.
	MaxPositions int

	// HoldRank is the wider rank cutoff for rotation strategies: a
	// held symbol is kept while it ranks inside HoldRank even though
	// only the top MaxPositions generate fresh entries.
	HoldRank int

	// Universe is the named index or watchlist to scan. Symbols, if
	// set, is a fixed list used instead of a universe lookup.
	Universe string
	Symbols  []string

	// Exclusions are symbols never traded by this strategy, e.g.
	// duplicate share classes in an index.
	Exclusions []string

	// MinBars is the minimum history required per symbol; shorter
	// series are skipped.
	MinBars int

	// EntryAllowed gates new entries; exits are always generated.
	EntryAllowed bool

	// SizeMinOne lifts a floored quantity of zero to one share.
	SizeMinOne bool

	// Rotation parameters.
	ROCPeriod1    int
	ROCPeriod2    int
	ROCWeight1    float64
	ROCWeight2    float64
	TrendPeriod   int    // close > SMA(TrendPeriod) filter; 0 disables
	SinceTrue     int    // factor must be positive for this many bars; 0 disables
	IndexSymbol   string // market regime reference series; empty disables
	IndexPeriod   int    // regime filter: index close > close IndexPeriod bars ago
	MonthlyAnchor bool   // fetch bars ending at the monthly rebalance anchor

	// Mean-reversion / HFT parameters.
	RSIPeriod    int
	RSIThreshold float64
	IBRThreshold float64
	ADXPeriod    int
	ADXThreshold float64
	ATRPeriod    int
	Stretch      float64
	MinPrice     float64
	MaxPrice     float64
	VolumePeriod int
	VolumeFloor  float64
	VolumeEMA    bool // smooth volume with EMA instead of SMA
}

// Validate reports the first malformed field as a ConfigError. A
// failed validation aborts the run before any scan starts.
func (c Config) Validate() error {
	fail := func(reason string) error {
		return &contracts.ConfigError{Strategy: c.Name, Reason: reason}
	}

	if c.Name == "" {
		return fail("name is required")
	}
	switch c.Family {
	case FamilyRotation, FamilyMeanReversion, FamilyHFT:
	default:
		return fail("unknown family " + string(c.Family))
	}
	if c.Direction != contracts.DirectionLong && c.Direction != contracts.DirectionShort {
		return fail("direction must be long or short")
	}
	if c.Allocation <= 0 || c.Allocation > 1 {
		return fail("allocation must be in (0, 1]")
	}
	if c.MaxPositions <= 0 {
		return fail("max positions must be positive")
	}
	if c.Universe == "" && len(c.Symbols) == 0 {
		return fail("either universe or symbols is required")
	}
	if c.MinBars <= 0 {
		return fail("min bars must be positive")
	}

	switch c.Family {
	case FamilyRotation:
		if c.Direction != contracts.DirectionLong {
			return fail("rotation strategies are long only")
		}
		if c.ROCPeriod1 <= 0 || c.ROCPeriod2 <= 0 {
			return fail("both roc periods must be positive")
		}
		if c.HoldRank < c.MaxPositions {
			return fail("hold rank must be at least max positions")
		}
		if c.IndexSymbol != "" && c.IndexPeriod <= 0 {
			return fail("index period must be positive when an index symbol is set")
		}
	case FamilyMeanReversion:
		if c.RSIPeriod <= 0 {
			return fail("rsi period must be positive")
		}
		if c.ADXPeriod <= 0 || c.ATRPeriod <= 0 {
			return fail("adx and atr periods must be positive")
		}
		if c.Stretch <= 0 {
			return fail("stretch must be positive")
		}
	case FamilyHFT:
		if c.IBRThreshold <= 0 || c.IBRThreshold >= 1 {
			return fail("ibr threshold must be in (0, 1)")
		}
		if c.ADXPeriod <= 0 || c.ATRPeriod <= 0 {
			return fail("adx and atr periods must be positive")
		}
		if c.Stretch <= 0 {
			return fail("stretch must be positive")
		}
		if c.MaxPrice > 0 && c.MaxPrice <= c.MinPrice {
			return fail("max price must exceed min price")
		}
	}
	return nil
}

// Excluded reports whether symbol is in the strategy's exclusion set.
func (c Config) Excluded(symbol string) bool {
	for _, s := range c.Exclusions {
		if s == symbol {
			return true
		}
	}
	return false
}
