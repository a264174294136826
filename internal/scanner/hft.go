package scanner

import (
	"context"
	"time"

	"github.com/mwt/signals/internal/capital"
	"github.com/mwt/signals/internal/contracts"
	"github.com/mwt/signals/internal/indicator"
	"github.com/mwt/signals/internal/strategy"
)

// hftEvaluator selects intraday fade setups by internal bar range:
// longs want a weak close (IBR below the threshold) in an uptrending
// name, shorts a strong close (IBR above it). Entry limits stretch
// off the day's low/high by a multiple of ATR and snap to the
// instrument's tick grid. Volume is EMA-smoothed so the floor reacts
// to recent activity faster than a plain average would.
func (s *Scanner) hftEvaluator(ctx context.Context, cfg strategy.Config, alloc *capital.Allocator) func(string) (*contracts.Candidate, error) {
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

		var avgVolume float64
		if cfg.VolumeEMA {
			avgVolume, err = indicator.EMA(volumes, cfg.VolumePeriod)
		} else {
			avgVolume, err = indicator.SMA(volumes, cfg.VolumePeriod)
		}
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
		atr, err := indicator.ATR(highs, lows, closes, cfg.ATRPeriod)
		if err != nil {
			return nil, err
		}
		ibr := indicator.IBR(last.High, last.Low, last.Close)

		if last.Close <= cfg.MinPrice ||
			(cfg.MaxPrice > 0 && last.Close >= cfg.MaxPrice) ||
			avgVolume <= cfg.VolumeFloor ||
			last.Close <= ma ||
			adx <= cfg.ADXThreshold {
			return nil, nil
		}

		var entryLimit float64
		switch cfg.Direction {
		case contracts.DirectionLong:
			if ibr >= cfg.IBRThreshold {
				return nil, nil
			}
			entryLimit = indicator.RoundToTick(last.Low - cfg.Stretch*atr)
		case contracts.DirectionShort:
			if ibr <= cfg.IBRThreshold {
				return nil, nil
			}
			entryLimit = indicator.RoundToTick(last.High + cfg.Stretch*atr)
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
