// Package indicator provides pure, stateless technical indicator
// functions over ordered daily series. Every function evaluates the
// trailing window ending at the most recent value and never looks
// ahead. Smoothed indicators (ATR, ADX, RSI) use Wilder's recurrence,
// not a rolling mean; entry thresholds are calibrated against it.
package indicator

import (
	"fmt"
	"math"

	"github.com/mwt/signals/internal/contracts"
)

// SMA returns the simple moving average of the last period values.
func SMA(series []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("%w: sma period must be positive, got %d", contracts.ErrIndicator, period)
	}
	if len(series) < period {
		return 0, fmt.Errorf("%w: sma needs %d values, have %d", contracts.ErrInsufficientHistory, period, len(series))
	}

	var sum float64
	for _, v := range series[len(series)-period:] {
		sum += v
	}
	return sum / float64(period), nil
}

// EMA returns the exponential moving average over the full series,
// seeded with the SMA of the first period values.
func EMA(series []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("%w: ema period must be positive, got %d", contracts.ErrIndicator, period)
	}
	if len(series) < period {
		return 0, fmt.Errorf("%w: ema needs %d values, have %d", contracts.ErrInsufficientHistory, period, len(series))
	}

	var sum float64
	for _, v := range series[:period] {
		sum += v
	}
	ema := sum / float64(period)

	k := 2.0 / (float64(period) + 1.0)
	for _, v := range series[period:] {
		ema = v*k + ema*(1-k)
	}
	return ema, nil
}

// trueRanges computes the true range series. tr[i] corresponds to bar
// i+1 of the input (the first bar has no previous close).
func trueRanges(high, low, close []float64) []float64 {
	trs := make([]float64, 0, len(high)-1)
	for i := 1; i < len(high); i++ {
		hl := high[i] - low[i]
		hc := math.Abs(high[i] - close[i-1])
		lc := math.Abs(low[i] - close[i-1])
		trs = append(trs, math.Max(hl, math.Max(hc, lc)))
	}
	return trs
}

// ATR returns Wilder's average true range: the first value is a
// simple mean of the first period true ranges, every later value is
// (prev*(period-1) + tr) / period.
func ATR(high, low, close []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("%w: atr period must be positive, got %d", contracts.ErrIndicator, period)
	}
	if len(high) != len(low) || len(high) != len(close) {
		return 0, fmt.Errorf("%w: atr input lengths differ", contracts.ErrIndicator)
	}
	if len(high) < period+1 {
		return 0, fmt.Errorf("%w: atr needs %d bars, have %d", contracts.ErrInsufficientHistory, period+1, len(high))
	}

	trs := trueRanges(high, low, close)

	var sum float64
	for _, tr := range trs[:period] {
		sum += tr
	}
	atr := sum / float64(period)

	for _, tr := range trs[period:] {
		atr = (atr*float64(period-1) + tr) / float64(period)
	}
	return atr, nil
}

// ADX returns Wilder's average directional index. The smoothed +DM,
// -DM and TR accumulators follow Wilder's recurrence and the DX
// series is itself Wilder-smoothed into ADX, so at least 2*period
// bars are required before the value stabilizes.
func ADX(high, low, close []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("%w: adx period must be positive, got %d", contracts.ErrIndicator, period)
	}
	if len(high) != len(low) || len(high) != len(close) {
		return 0, fmt.Errorf("%w: adx input lengths differ", contracts.ErrIndicator)
	}
	if len(high) < 2*period {
		return 0, fmt.Errorf("%w: adx needs %d bars, have %d", contracts.ErrInsufficientHistory, 2*period, len(high))
	}

	n := len(high)
	plusDM := make([]float64, 0, n-1)
	minusDM := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		up := high[i] - high[i-1]
		down := low[i-1] - low[i]
		if up > down && up > 0 {
			plusDM = append(plusDM, up)
		} else {
			plusDM = append(plusDM, 0)
		}
		if down > up && down > 0 {
			minusDM = append(minusDM, down)
		} else {
			minusDM = append(minusDM, 0)
		}
	}
	trs := trueRanges(high, low, close)

	// Wilder's smoothed sums: seed with the plain sum of the first
	// period values, then smoothed = prev - prev/period + current.
	var smTR, smPlus, smMinus float64
	for i := 0; i < period; i++ {
		smTR += trs[i]
		smPlus += plusDM[i]
		smMinus += minusDM[i]
	}

	dx := func() float64 {
		if smTR == 0 {
			return 0
		}
		pdi := 100 * smPlus / smTR
		mdi := 100 * smMinus / smTR
		if pdi+mdi == 0 {
			return 0
		}
		return 100 * math.Abs(pdi-mdi) / (pdi + mdi)
	}

	adx := dx()
	count := 1
	for i := period; i < len(trs); i++ {
		smTR = smTR - smTR/float64(period) + trs[i]
		smPlus = smPlus - smPlus/float64(period) + plusDM[i]
		smMinus = smMinus - smMinus/float64(period) + minusDM[i]

		if count < period {
			// Still accumulating the initial ADX average.
			adx += dx()
			count++
			if count == period {
				adx /= float64(period)
			}
			continue
		}
		adx = (adx*float64(period-1) + dx()) / float64(period)
	}

	// The 2*period history guard means the loop always completes the
	// initial period-value average before smoothing takes over.
	return adx, nil
}

// RSI returns Wilder's relative strength index: separate smoothed
// averages of gains and losses, seeded with the simple means of the
// first period changes.
func RSI(close []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("%w: rsi period must be positive, got %d", contracts.ErrIndicator, period)
	}
	if len(close) < period+1 {
		return 0, fmt.Errorf("%w: rsi needs %d values, have %d", contracts.ErrInsufficientHistory, period+1, len(close))
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := close[i] - close[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(close); i++ {
		change := close[i] - close[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100, nil
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), nil
}

// ROC returns the percentage rate of change over period bars:
// 100 * (last - last[-period]) / last[-period].
func ROC(series []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("%w: roc period must be positive, got %d", contracts.ErrIndicator, period)
	}
	if len(series) < period+1 {
		return 0, fmt.Errorf("%w: roc needs %d values, have %d", contracts.ErrInsufficientHistory, period+1, len(series))
	}

	base := series[len(series)-1-period]
	if base == 0 {
		return 0, fmt.Errorf("%w: roc base value is zero", contracts.ErrIndicator)
	}
	return 100 * (series[len(series)-1] - base) / base, nil
}

// IBR returns the internal bar range (close-low)/(high-low), the
// position of the close within the day's range. A flat bar
// (high == low) carries no range information and returns the neutral
// value 0.5, which fails both the long (< limit) and short (> limit)
// oscillator filters.
func IBR(high, low, close float64) float64 {
	if high == low {
		return 0.5
	}
	return (close - low) / (high - low)
}

// TickSize returns the broker-valid price increment for a price
// level: 0.01 at or above 2, 0.005 from 0.1 up to 2, 0.001 below 0.1.
func TickSize(price float64) float64 {
	tick := 0.01
	if price < 2 {
		tick = 0.005
	}
	if price < 0.1 {
		tick = 0.001
	}
	return tick
}

// RoundToTick rounds price to the nearest valid tick for its level,
// then normalizes to 3 decimal places.
func RoundToTick(price float64) float64 {
	tick := TickSize(price)
	return math.Round(math.Round(price/tick)*tick*1000) / 1000
}

// Round2 rounds to 2 decimal places, matching decimal display
// semantics used for limit prices.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Round3 rounds to 3 decimal places, used for rank scores.
func Round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
