package contracts

import "errors"

// Per-symbol errors are recovered locally: the symbol is dropped from
// that scan and the run continues. Only configuration and
// account-summary failures abort a run.
var (
	// ErrInsufficientHistory means a series has fewer bars than an
	// indicator or scanner requires.
	ErrInsufficientHistory = errors.New("insufficient history")

	// ErrNotFound means the provider has no record of the symbol.
	ErrNotFound = errors.New("symbol not found")

	// ErrDataFetch is a transient provider failure.
	ErrDataFetch = errors.New("data fetch failed")

	// ErrIndicator is an indicator computation failure (bad window,
	// degenerate input).
	ErrIndicator = errors.New("indicator computation failed")
)

// ConfigError is a fatal strategy or runtime configuration problem.
// It aborts the run before any scan starts.
type ConfigError struct {
	Strategy string
	Reason   string
}

func (e *ConfigError) Error() string {
	if e.Strategy == "" {
		return "config error: " + e.Reason
	}
	return "config error in " + e.Strategy + ": " + e.Reason
}

// SkipSymbol reports whether err is a per-symbol condition that the
// scan should absorb by dropping the symbol.
func SkipSymbol(err error) bool {
	return errors.Is(err, ErrInsufficientHistory) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrDataFetch) ||
		errors.Is(err, ErrIndicator)
}
