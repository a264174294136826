package scanner

import (
	"context"
	"time"

	"github.com/mwt/signals/internal/capital"
	"github.com/mwt/signals/internal/contracts"
	"github.com/mwt/signals/internal/indicator"
	"github.com/mwt/signals/internal/strategy"
)

// meanRevEvaluator fades RSI extremes: longs buy washouts below the
// RSI threshold, shorts fade spikes above it. Both sides require a
// liquid, trending name (volume floor, close above the long moving
// average, ADX above its threshold) and rank by raw volatility so
// the most stretched names fill the limited slots first.
func (s *Scanner) meanRevEvaluator(ctx context.Context, cfg strategy.Config, alloc *capital.Allocator) func(string) (*contracts.Candidate, error) {
	return func(symbol string) (*contracts.Candidate, error) {
		bars, err := s.fetch(ctx, cfg, symbol, time.Time{})
		if err != nil {
			return nil, err
		}
		closes := contracts.Closes(bars)
		highs := contracts.Highs(bars)
		lows := contracts.Lows(bars)
		volumes := contracts.Volumes(bars)
		last := bars[len(bars)-1]

		atr, err := indicator.ATR(highs, lows, closes, cfg.ATRPeriod)
		if err != nil {
			return nil, err
		}
		ma, err := indicator.SMA(closes, cfg.TrendPeriod)
		if err != nil {
			return nil, err
		}
		adx, err := indicator.ADX(highs, lows, closes, cfg.ADXPeriod)
		if err != nil {
			return nil, err
		}
		avgVolume, err := indicator.SMA(volumes, cfg.VolumePeriod)
		if err != nil {
			return nil, err
		}
		rsi, err := indicator.RSI(closes, cfg.RSIPeriod)
		if err != nil {
			return nil, err
		}

		if last.Close <= cfg.MinPrice ||
			avgVolume <= cfg.VolumeFloor ||
			last.Close <= ma ||
			adx <= cfg.ADXThreshold {
			return nil, nil
		}

		var entryLimit float64
		switch cfg.Direction {
		case contracts.DirectionLong:
			if rsi >= cfg.RSIThreshold {
				return nil, nil
			}
			entryLimit = indicator.Round2(last.Low - cfg.Stretch*atr)
		case contracts.DirectionShort:
			if rsi <= cfg.RSIThreshold {
				return nil, nil
			}
			entryLimit = indicator.Round2(last.High + cfg.Stretch*atr)
		}
		if entryLimit <= 0 {
			return nil, nil
		}

		qty := alloc.PositionSizeMinOne(cfg.Allocation, cfg.MaxPositions, entryLimit)

		return &contracts.Candidate{
			Symbol:    symbol,
			Score:     indicator.Round3(atr / last.Close * 100),
			Quantity:  qty,
			Price:     entryLimit,
			Direction: cfg.Direction,
			BarDate:   last.Date,
		}, nil
	}
}
