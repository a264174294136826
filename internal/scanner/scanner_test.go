package scanner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwt/signals/internal/capital"
	"github.com/mwt/signals/internal/contracts"
	"github.com/mwt/signals/internal/strategy"
	"github.com/mwt/signals/pkg/logger"
)

// fakeBars serves canned series keyed by symbol.
type fakeBars struct {
	series map[string][]contracts.PriceBar
}

func (f *fakeBars) Bars(_ context.Context, symbol string, count int) ([]contracts.PriceBar, error) {
	bars, ok := f.series[symbol]
	if !ok {
		return nil, contracts.ErrNotFound
	}
	if len(bars) > count {
		bars = bars[len(bars)-count:]
	}
	return bars, nil
}

func (f *fakeBars) BarsEndingAt(ctx context.Context, symbol string, count int, end time.Time) ([]contracts.PriceBar, error) {
	bars, ok := f.series[symbol]
	if !ok {
		return nil, contracts.ErrNotFound
	}
	var trimmed []contracts.PriceBar
	for _, b := range bars {
		if !b.Date.After(end) {
			trimmed = append(trimmed, b)
		}
	}
	if len(trimmed) > count {
		trimmed = trimmed[len(trimmed)-count:]
	}
	return trimmed, nil
}

type fakeUniverse struct {
	symbols []string
}

func (f *fakeUniverse) Symbols(context.Context, string) ([]string, error) {
	return f.symbols, nil
}

// trendBars builds an uptrending daily series: close grows by growth
// per bar, high/low bracket the close by one point.
func trendBars(n int, start, growth float64) []contracts.PriceBar {
	bars := make([]contracts.PriceBar, n)
	day := time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC)
	price := start
	for i := 0; i < n; i++ {
		bars[i] = contracts.PriceBar{
			Date:   day,
			Open:   price,
			High:   price + 1,
			Low:    price - 1,
			Close:  price,
			Volume: 500000,
		}
		price *= 1 + growth
		day = day.AddDate(0, 0, 1)
	}
	return bars
}

func testAllocator() *capital.Allocator {
	return capital.NewAllocator(125000, 0, 0.2)
}

func rotationConfig(symbols []string) strategy.Config {
	return strategy.Config{
		Name:         "rotation-test",
		Family:       strategy.FamilyRotation,
		Direction:    contracts.DirectionLong,
		Allocation:   0.10,
		MaxPositions: 2,
		HoldRank:     3,
		Symbols:      symbols,
		MinBars:      60,
		EntryAllowed: true,
		ROCPeriod1:   10,
		ROCPeriod2:   20,
		ROCWeight1:   0.5,
		ROCWeight2:   0.5,
		TrendPeriod:  20,
	}
}

func TestScan_RotationRanksByMomentum(t *testing.T) {
	bars := &fakeBars{series: map[string][]contracts.PriceBar{
		"AAA": trendBars(70, 100, 0.004),
		"BBB": trendBars(70, 100, 0.003),
		"CCC": trendBars(70, 100, 0.002),
		"DDD": trendBars(70, 100, -0.003),
	}}
	s := New(bars, &fakeUniverse{}, logger.Nop(), 4)

	cands, err := s.Scan(context.Background(), rotationConfig([]string{"AAA", "BBB", "CCC", "DDD"}), testAllocator(), nil, time.Now())
	require.NoError(t, err)

	// DDD fails both the momentum and trend filters; the rest rank
	// by growth rate.
	require.Len(t, cands, 3)
	assert.Equal(t, "AAA", cands[0].Symbol)
	assert.Equal(t, "BBB", cands[1].Symbol)
	assert.Equal(t, "CCC", cands[2].Symbol)
	assert.Greater(t, cands[0].Score, cands[1].Score)
}

func TestScan_RotationKeepsUnaffordableSymbolRanked(t *testing.T) {
	bars := &fakeBars{series: map[string][]contracts.PriceBar{
		"XPNS": trendBars(70, 6000, 0.005),
		"AAA":  trendBars(70, 100, 0.003),
	}}
	s := New(bars, &fakeUniverse{}, logger.Nop(), 2)

	cands, err := s.Scan(context.Background(), rotationConfig([]string{"XPNS", "AAA"}), testAllocator(), nil, time.Now())
	require.NoError(t, err)

	// One slot is 5000 of capital; XPNS trades well above that and
	// sizes to zero, but it keeps its rank so a holder of it is not
	// pushed out of the hold buffer.
	require.Len(t, cands, 2)
	assert.Equal(t, "XPNS", cands[0].Symbol)
	assert.Zero(t, cands[0].Quantity)
	assert.Equal(t, "AAA", cands[1].Symbol)
	assert.Positive(t, cands[1].Quantity)
	for _, c := range cands {
		assert.Greater(t, c.Quantity, 0)
		assert.Equal(t, contracts.DirectionLong, c.Direction)
	}
}

func TestScan_RotationHoldRankCutoff(t *testing.T) {
	series := map[string][]contracts.PriceBar{}
	symbols := []string{"AAA", "BBB", "CCC", "DDD", "EEE"}
	for i, sym := range symbols {
		series[sym] = trendBars(70, 100, 0.002+0.001*float64(i))
	}
	s := New(&fakeBars{series: series}, &fakeUniverse{}, logger.Nop(), 4)

	cands, err := s.Scan(context.Background(), rotationConfig(symbols), testAllocator(), nil, time.Now())
	require.NoError(t, err)

	// Five pass, hold rank keeps three.
	require.Len(t, cands, 3)
	assert.Equal(t, "EEE", cands[0].Symbol)
}

func TestScan_SkipsInsufficientHistoryAndMissing(t *testing.T) {
	bars := &fakeBars{series: map[string][]contracts.PriceBar{
		"AAA": trendBars(70, 100, 0.003),
		"BBB": trendBars(10, 100, 0.003),
	}}
	s := New(bars, &fakeUniverse{}, logger.Nop(), 2)

	cands, err := s.Scan(context.Background(), rotationConfig([]string{"AAA", "BBB", "ZZZ"}), testAllocator(), nil, time.Now())
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "AAA", cands[0].Symbol)
}

func TestScan_ExclusionsSkipped(t *testing.T) {
	bars := &fakeBars{series: map[string][]contracts.PriceBar{
		"AAA": trendBars(70, 100, 0.003),
		"BBB": trendBars(70, 100, 0.003),
	}}
	cfg := rotationConfig([]string{"AAA", "BBB"})
	cfg.Exclusions = []string{"BBB"}
	s := New(bars, &fakeUniverse{}, logger.Nop(), 2)

	cands, err := s.Scan(context.Background(), cfg, testAllocator(), nil, time.Now())
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "AAA", cands[0].Symbol)
}

func TestScan_RegimeOffEmptiesRankList(t *testing.T) {
	bars := &fakeBars{series: map[string][]contracts.PriceBar{
		"AAA":  trendBars(70, 100, 0.004),
		"#IDX": trendBars(70, 100, -0.002),
	}}
	cfg := rotationConfig([]string{"AAA"})
	cfg.IndexSymbol = "#IDX"
	cfg.IndexPeriod = 13
	s := New(bars, &fakeUniverse{}, logger.Nop(), 2)

	cands, err := s.Scan(context.Background(), cfg, testAllocator(), nil, time.Now())
	require.NoError(t, err)
	assert.Empty(t, cands)
}

func meanRevConfig(dir contracts.Direction) strategy.Config {
	cfg := strategy.Config{
		Name:         "mr-test",
		Family:       strategy.FamilyMeanReversion,
		Direction:    dir,
		Allocation:   0.15,
		MaxPositions: 5,
		Universe:     "test",
		MinBars:      60,
		EntryAllowed: true,
		SizeMinOne:   true,
		RSIPeriod:    2,
		RSIThreshold: 30,
		TrendPeriod:  20,
		ADXPeriod:    5,
		ADXThreshold: 10,
		ATRPeriod:    5,
		Stretch:      0.5,
		MinPrice:     5,
		VolumePeriod: 10,
		VolumeFloor:  1000,
	}
	if dir == contracts.DirectionShort {
		cfg.RSIPeriod = 3
		cfg.RSIThreshold = 90
	}
	return cfg
}

// washoutBars is an uptrend with two closing losses at the end, so
// the short-period RSI collapses while the close stays above the
// long moving average.
func washoutBars() []contracts.PriceBar {
	bars := trendBars(70, 100, 0.01)
	n := len(bars)
	for i := n - 2; i < n; i++ {
		prev := bars[i-1].Close
		bars[i].Close = prev - 4
		bars[i].High = prev + 0.5
		bars[i].Low = prev - 5
		bars[i].Open = prev
	}
	return bars
}

func TestScan_MeanRevLongEntry(t *testing.T) {
	bars := &fakeBars{series: map[string][]contracts.PriceBar{"AAA": washoutBars()}}
	s := New(bars, &fakeUniverse{symbols: []string{"AAA"}}, logger.Nop(), 2)

	cands, err := s.Scan(context.Background(), meanRevConfig(contracts.DirectionLong), testAllocator(), nil, time.Now())
	require.NoError(t, err)
	require.Len(t, cands, 1)

	c := cands[0]
	assert.Equal(t, "AAA", c.Symbol)
	assert.Equal(t, contracts.DirectionLong, c.Direction)
	assert.GreaterOrEqual(t, c.Quantity, 1)

	// Entry limit sits below the day's low by the ATR stretch.
	last := bars.series["AAA"][len(bars.series["AAA"])-1]
	assert.Less(t, c.Price, last.Low)
	assert.Greater(t, c.Score, 0.0)
}

func TestScan_MeanRevSkipsHeldSymbols(t *testing.T) {
	bars := &fakeBars{series: map[string][]contracts.PriceBar{"AAA": washoutBars()}}
	s := New(bars, &fakeUniverse{symbols: []string{"AAA"}}, logger.Nop(), 2)

	held := map[string]struct{}{"AAA": {}}
	cands, err := s.Scan(context.Background(), meanRevConfig(contracts.DirectionLong), testAllocator(), held, time.Now())
	require.NoError(t, err)
	assert.Empty(t, cands)
}

func TestScan_MeanRevRejectsCalmRSI(t *testing.T) {
	// A clean uptrend keeps RSI pinned high: no long washout entry.
	bars := &fakeBars{series: map[string][]contracts.PriceBar{"AAA": trendBars(70, 100, 0.01)}}
	s := New(bars, &fakeUniverse{symbols: []string{"AAA"}}, logger.Nop(), 2)

	cands, err := s.Scan(context.Background(), meanRevConfig(contracts.DirectionLong), testAllocator(), nil, time.Now())
	require.NoError(t, err)
	assert.Empty(t, cands)
}

func TestScan_MeanRevShortEntry(t *testing.T) {
	// A clean uptrend pins RSI at 100, which is exactly the spike the
	// short side fades.
	bars := &fakeBars{series: map[string][]contracts.PriceBar{"AAA": trendBars(70, 100, 0.01)}}
	s := New(bars, &fakeUniverse{symbols: []string{"AAA"}}, logger.Nop(), 2)

	cands, err := s.Scan(context.Background(), meanRevConfig(contracts.DirectionShort), testAllocator(), nil, time.Now())
	require.NoError(t, err)
	require.Len(t, cands, 1)

	c := cands[0]
	assert.Equal(t, contracts.DirectionShort, c.Direction)
	last := bars.series["AAA"][len(bars.series["AAA"])-1]
	assert.Greater(t, c.Price, last.High)
}

func hftConfig(dir contracts.Direction) strategy.Config {
	cfg := strategy.Config{
		Name:         "hft-test",
		Family:       strategy.FamilyHFT,
		Direction:    dir,
		Allocation:   0.25,
		MaxPositions: 5,
		Universe:     "test",
		MinBars:      60,
		EntryAllowed: true,
		SizeMinOne:   true,
		IBRThreshold: 0.3,
		TrendPeriod:  20,
		ADXPeriod:    4,
		ADXThreshold: 10,
		ATRPeriod:    5,
		Stretch:      0.6,
		MinPrice:     10,
		MaxPrice:     5000,
		VolumePeriod: 10,
		VolumeFloor:  1000,
		VolumeEMA:    true,
	}
	if dir == contracts.DirectionShort {
		cfg.IBRThreshold = 0.7
		cfg.Stretch = 0.3
	}
	return cfg
}

func TestScan_HFTLongEntry(t *testing.T) {
	series := trendBars(70, 100, 0.01)
	// Close the last bar near its low: a weak close in an uptrend.
	last := &series[len(series)-1]
	last.High = last.Close + 3
	last.Low = last.Close - 0.5

	bars := &fakeBars{series: map[string][]contracts.PriceBar{"AAA": series}}
	s := New(bars, &fakeUniverse{symbols: []string{"AAA"}}, logger.Nop(), 2)

	cands, err := s.Scan(context.Background(), hftConfig(contracts.DirectionLong), testAllocator(), nil, time.Now())
	require.NoError(t, err)
	require.Len(t, cands, 1)

	c := cands[0]
	assert.Equal(t, contracts.DirectionLong, c.Direction)
	assert.Less(t, c.Price, last.Low)
	assert.GreaterOrEqual(t, c.Quantity, 1)
}

func TestScan_HFTShortEntry(t *testing.T) {
	series := trendBars(70, 100, 0.01)
	// Close the last bar near its high: a strong close in an uptrend.
	last := &series[len(series)-1]
	last.High = last.Close + 0.5
	last.Low = last.Close - 3

	bars := &fakeBars{series: map[string][]contracts.PriceBar{"AAA": series}}
	s := New(bars, &fakeUniverse{symbols: []string{"AAA"}}, logger.Nop(), 2)

	cands, err := s.Scan(context.Background(), hftConfig(contracts.DirectionShort), testAllocator(), nil, time.Now())
	require.NoError(t, err)
	require.Len(t, cands, 1)

	c := cands[0]
	assert.Equal(t, contracts.DirectionShort, c.Direction)
	assert.Greater(t, c.Price, last.High)
}

func TestScan_HFTNeutralCloseRejected(t *testing.T) {
	// A close mid-range fails both IBR thresholds.
	series := trendBars(70, 100, 0.01)
	last := &series[len(series)-1]
	last.High = last.Close + 1
	last.Low = last.Close - 1

	bars := &fakeBars{series: map[string][]contracts.PriceBar{"AAA": series}}
	s := New(bars, &fakeUniverse{symbols: []string{"AAA"}}, logger.Nop(), 2)

	for _, dir := range []contracts.Direction{contracts.DirectionLong, contracts.DirectionShort} {
		cands, err := s.Scan(context.Background(), hftConfig(dir), testAllocator(), nil, time.Now())
		require.NoError(t, err)
		assert.Empty(t, cands)
	}
}
