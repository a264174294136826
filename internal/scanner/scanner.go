// Package scanner turns a universe of price series into a ranked,
// sized candidate list for one strategy. Symbol evaluation is
// independent per symbol, so it fans out across a bounded worker
// pool; the final sort happens only after every worker has joined.
package scanner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mwt/signals/internal/calendar"
	"github.com/mwt/signals/internal/capital"
	"github.com/mwt/signals/internal/contracts"
	"github.com/mwt/signals/internal/strategy"
	"github.com/mwt/signals/pkg/logger"
)

const defaultWorkers = 8

// Scanner evaluates strategy configs against market data.
type Scanner struct {
	bars     contracts.BarProvider
	universe contracts.UniverseProvider
	logger   *logger.Logger
	workers  int
}

// New creates a scanner. workers <= 0 selects the default pool size.
func New(bars contracts.BarProvider, universe contracts.UniverseProvider, log *logger.Logger, workers int) *Scanner {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Scanner{
		bars:     bars,
		universe: universe,
		logger:   log,
		workers:  workers,
	}
}

// evalResult carries one symbol's outcome back from a worker.
type evalResult struct {
	symbol    string
	candidate *contracts.Candidate
	err       error
}

// Scan evaluates every symbol in the strategy's universe and returns
// the passing candidates sorted by rank score descending (symbol
// ascending on ties), truncated to the strategy's rank cutoff. held
// lists symbols the strategy currently holds; entry-only scans skip
// them because their exits are generated separately, while rotation
// scans must rank them to decide holds.
func (s *Scanner) Scan(ctx context.Context, cfg strategy.Config, alloc *capital.Allocator, held map[string]struct{}, asOf time.Time) ([]contracts.Candidate, error) {
	symbols, err := s.resolveSymbols(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve universe for %s: %w", cfg.Name, err)
	}

	eval, err := s.evaluator(ctx, cfg, alloc, asOf)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"strategy": cfg.Name,
		"symbols":  len(symbols),
	}).Info("Starting scan")

	jobs := make(chan string, len(symbols))
	results := make(chan evalResult, len(symbols))

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range jobs {
				cand, err := eval(symbol)
				results <- evalResult{symbol: symbol, candidate: cand, err: err}
			}
		}()
	}

	for _, symbol := range symbols {
		if cfg.Excluded(symbol) {
			continue
		}
		if _, ok := held[symbol]; ok && cfg.Family != strategy.FamilyRotation {
			continue
		}
		jobs <- symbol
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	var candidates []contracts.Candidate
	skipped := 0
	for res := range results {
		switch {
		case res.err != nil && contracts.SkipSymbol(res.err):
			skipped++
			s.logger.WithField("symbol", res.symbol).WithError(res.err).Debug("Skipping symbol")
		case res.err != nil:
			skipped++
			s.logger.WithField("symbol", res.symbol).WithError(res.err).Warn("Symbol evaluation failed")
		case res.candidate != nil:
			candidates = append(candidates, *res.candidate)
		}
	}

	contracts.SortCandidates(candidates)
	cutoff := cfg.MaxPositions
	if cfg.Family == strategy.FamilyRotation {
		cutoff = cfg.HoldRank
	}
	if len(candidates) > cutoff {
		candidates = candidates[:cutoff]
	}

	s.logger.WithFields(map[string]interface{}{
		"strategy":   cfg.Name,
		"candidates": len(candidates),
		"skipped":    skipped,
	}).Info("Scan completed")

	return candidates, nil
}

// evaluator builds the per-symbol evaluation closure for the config's
// family, performing any once-per-scan work (the rotation regime
// check) up front.
func (s *Scanner) evaluator(ctx context.Context, cfg strategy.Config, alloc *capital.Allocator, asOf time.Time) (func(string) (*contracts.Candidate, error), error) {
	switch cfg.Family {
	case strategy.FamilyRotation:
		return s.rotationEvaluator(ctx, cfg, alloc, asOf)
	case strategy.FamilyMeanReversion:
		return s.meanRevEvaluator(ctx, cfg, alloc), nil
	case strategy.FamilyHFT:
		return s.hftEvaluator(ctx, cfg, alloc), nil
	default:
		return nil, &contracts.ConfigError{Strategy: cfg.Name, Reason: "unknown family " + string(cfg.Family)}
	}
}

func (s *Scanner) resolveSymbols(ctx context.Context, cfg strategy.Config) ([]string, error) {
	if len(cfg.Symbols) > 0 {
		return cfg.Symbols, nil
	}
	return s.universe.Symbols(ctx, cfg.Universe)
}

// fetch returns the strategy's trailing window for one symbol, ending
// at end when the strategy anchors to a past date.
func (s *Scanner) fetch(ctx context.Context, cfg strategy.Config, symbol string, end time.Time) ([]contracts.PriceBar, error) {
	count := cfg.MinBars + 1
	var bars []contracts.PriceBar
	var err error
	if end.IsZero() {
		bars, err = s.bars.Bars(ctx, symbol, count)
	} else {
		bars, err = s.bars.BarsEndingAt(ctx, symbol, count, end)
	}
	if err != nil {
		return nil, err
	}
	if len(bars) < cfg.MinBars {
		return nil, fmt.Errorf("%w: %s has %d of %d bars", contracts.ErrInsufficientHistory, symbol, len(bars), cfg.MinBars)
	}
	return bars, nil
}

// anchorDate returns the data end date for a config: the monthly
// rebalance anchor for anchored rotations, zero (latest close) for
// everything else.
func anchorDate(cfg strategy.Config, asOf time.Time) time.Time {
	if cfg.MonthlyAnchor {
		return calendar.MonthlyAnchor(asOf)
	}
	return time.Time{}
}
