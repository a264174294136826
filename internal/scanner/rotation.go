package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/mwt/signals/internal/capital"
	"github.com/mwt/signals/internal/contracts"
	"github.com/mwt/signals/internal/indicator"
	"github.com/mwt/signals/internal/strategy"
)

// rotationEvaluator ranks symbols by a weighted blend of two ROC
// windows. A market regime gate on a reference index is evaluated
// once per scan; when the regime is off the evaluator passes nothing,
// which empties the rank list and lets the reconciler exit every
// held position.
func (s *Scanner) rotationEvaluator(ctx context.Context, cfg strategy.Config, alloc *capital.Allocator, asOf time.Time) (func(string) (*contracts.Candidate, error), error) {
	end := anchorDate(cfg, asOf)

	regimeOn := true
	if cfg.IndexSymbol != "" {
		var err error
		regimeOn, err = s.regimeOn(ctx, cfg, end)
		if err != nil {
			return nil, fmt.Errorf("regime index %s for %s: %w", cfg.IndexSymbol, cfg.Name, err)
		}
		if !regimeOn {
			s.logger.WithFields(map[string]interface{}{
				"strategy": cfg.Name,
				"index":    cfg.IndexSymbol,
			}).Info("Market regime off, no entries will rank")
		}
	}

	return func(symbol string) (*contracts.Candidate, error) {
		if !regimeOn {
			return nil, nil
		}

		bars, err := s.fetch(ctx, cfg, symbol, end)
		if err != nil {
			return nil, err
		}
		closes := contracts.Closes(bars)
		last := bars[len(bars)-1]

		factor, err := rotationFactor(closes, cfg)
		if err != nil {
			return nil, err
		}
		if factor <= 0 {
			return nil, nil
		}

		if cfg.TrendPeriod > 0 {
			ma, err := indicator.SMA(closes, cfg.TrendPeriod)
			if err != nil {
				return nil, err
			}
			if last.Close <= ma {
				return nil, nil
			}
		}

		if cfg.SinceTrue > 0 {
			ok, err := factorPositiveFor(closes, cfg, cfg.SinceTrue)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, nil
			}
		}

		// A symbol too expensive for one slot still ranks: dropping
		// it would push a held name out of the hold buffer. The
		// reconciler skips the zero-quantity entry instead.
		qty := alloc.PositionSize(cfg.Allocation, cfg.MaxPositions, last.Close)

		return &contracts.Candidate{
			Symbol:    symbol,
			Score:     indicator.Round3(factor),
			Quantity:  qty,
			Price:     last.Close,
			Direction: contracts.DirectionLong,
			BarDate:   last.Date,
		}, nil
	}, nil
}

// regimeOn reports whether the reference index closed above its level
// IndexPeriod bars ago.
func (s *Scanner) regimeOn(ctx context.Context, cfg strategy.Config, end time.Time) (bool, error) {
	count := cfg.IndexPeriod + 5
	var bars []contracts.PriceBar
	var err error
	if end.IsZero() {
		bars, err = s.bars.Bars(ctx, cfg.IndexSymbol, count)
	} else {
		bars, err = s.bars.BarsEndingAt(ctx, cfg.IndexSymbol, count, end)
	}
	if err != nil {
		return false, err
	}
	if len(bars) < cfg.IndexPeriod+1 {
		return false, fmt.Errorf("%w: index %s has %d of %d bars", contracts.ErrInsufficientHistory, cfg.IndexSymbol, len(bars), cfg.IndexPeriod+1)
	}
	closes := contracts.Closes(bars)
	return closes[len(closes)-1] > closes[len(closes)-1-cfg.IndexPeriod], nil
}

// rotationFactor computes the blended momentum score on the series as
// of its last value.
func rotationFactor(closes []float64, cfg strategy.Config) (float64, error) {
	roc1, err := indicator.ROC(closes, cfg.ROCPeriod1)
	if err != nil {
		return 0, err
	}
	roc2, err := indicator.ROC(closes, cfg.ROCPeriod2)
	if err != nil {
		return 0, err
	}
	return cfg.ROCWeight1*roc1 + cfg.ROCWeight2*roc2, nil
}

// factorPositiveFor reports whether the momentum factor has been
// positive on each of the last n bars.
func factorPositiveFor(closes []float64, cfg strategy.Config, n int) (bool, error) {
	for k := 0; k < n; k++ {
		window := closes[:len(closes)-k]
		factor, err := rotationFactor(window, cfg)
		if err != nil {
			return false, err
		}
		if factor <= 0 {
			return false, nil
		}
	}
	return true, nil
}
