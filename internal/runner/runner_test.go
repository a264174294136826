package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwt/signals/internal/conflict"
	"github.com/mwt/signals/internal/contracts"
	"github.com/mwt/signals/internal/reconcile"
	"github.com/mwt/signals/internal/scanner"
	"github.com/mwt/signals/internal/strategy"
	"github.com/mwt/signals/pkg/logger"
)

type fakeAccount struct {
	summary   contracts.AccountSummary
	positions []contracts.Position
	err       error
}

func (f *fakeAccount) AccountSummary(context.Context) (contracts.AccountSummary, error) {
	return f.summary, f.err
}

func (f *fakeAccount) OpenPositions(context.Context) ([]contracts.Position, error) {
	return f.positions, f.err
}

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

func (f *fakeBars) BarsEndingAt(ctx context.Context, symbol string, count int, _ time.Time) ([]contracts.PriceBar, error) {
	return f.Bars(ctx, symbol, count)
}

type fakeUniverse struct {
	sets map[string][]string
}

func (f *fakeUniverse) Symbols(_ context.Context, name string) ([]string, error) {
	return f.sets[name], nil
}

type memorySink struct {
	runID  string
	orders []contracts.Order
	err    error
}

func (m *memorySink) Emit(_ context.Context, runID string, _ time.Time, orders []contracts.Order) error {
	m.runID = runID
	m.orders = orders
	return m.err
}

func trendBars(n int, start, growth float64) []contracts.PriceBar {
	bars := make([]contracts.PriceBar, n)
	day := time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC)
	price := start
	for i := 0; i < n; i++ {
		bars[i] = contracts.PriceBar{
			Date: day, Open: price, High: price + 1, Low: price - 1,
			Close: price, Volume: 500000,
		}
		price *= 1 + growth
		day = day.AddDate(0, 0, 1)
	}
	return bars
}

func testStrategies() []strategy.Config {
	rot := strategy.Config{
		Name: "ROT", Family: strategy.FamilyRotation,
		Direction: contracts.DirectionLong, Allocation: 0.10,
		MaxPositions: 2, HoldRank: 3,
		Symbols: []string{"AAA", "BBB"}, MinBars: 60, EntryAllowed: true,
		ROCPeriod1: 10, ROCPeriod2: 20, ROCWeight1: 0.5, ROCWeight2: 0.5,
		TrendPeriod: 20,
	}
	mrShort := strategy.Config{
		Name: "MRS", Family: strategy.FamilyMeanReversion,
		Direction: contracts.DirectionShort, Allocation: 0.15,
		MaxPositions: 5, Universe: "test", MinBars: 60, EntryAllowed: true,
		SizeMinOne: true, RSIPeriod: 3, RSIThreshold: 90,
		TrendPeriod: 20, ADXPeriod: 5, ADXThreshold: 10, ATRPeriod: 5,
		Stretch: 0.8, MinPrice: 5, VolumePeriod: 10, VolumeFloor: 1000,
	}
	return []strategy.Config{rot, mrShort}
}

func newTestRunner(account *fakeAccount, bars *fakeBars, universes *fakeUniverse, orderSink contracts.OrderSink) *Runner {
	log := logger.Nop()
	loc, _ := time.LoadLocation("America/New_York")
	return New(Options{
		Strategies: testStrategies(),
		Scanner:    scanner.New(bars, universes, log, 2),
		Reconciler: reconcile.New(bars, log, loc),
		Resolver:   conflict.New(log),
		Account:    account,
		OrderSink:  orderSink,
	}, log)
}

func TestRun_EndToEndWithConflictSuppression(t *testing.T) {
	bars := &fakeBars{series: map[string][]contracts.PriceBar{
		"AAA": trendBars(70, 100, 0.004),
		"BBB": trendBars(70, 100, 0.003),
	}}
	account := &fakeAccount{summary: contracts.AccountSummary{BuyingPower: 125000}}
	sink := &memorySink{}
	// The mean-reversion short universe overlaps the rotation
	// universe on AAA: the uptrend pins RSI high, so the short
	// qualifies and must be suppressed by the rotation BUY.
	r := newTestRunner(account, bars, &fakeUniverse{sets: map[string][]string{
		"test": {"AAA"},
	}}, sink)

	result, err := r.Run(context.Background(), time.Now())
	require.NoError(t, err)

	require.Len(t, result.Orders, 2)
	assert.Equal(t, "AAA", result.Orders[0].Symbol)
	assert.Equal(t, contracts.ActionBuy, result.Orders[0].Action)
	assert.Equal(t, "BBB", result.Orders[1].Symbol)

	for _, o := range result.Orders {
		assert.NotEqual(t, contracts.ActionSellShort, o.Action)
	}
	assert.Equal(t, 2, result.OrdersByStrategy["ROT"])
	assert.Zero(t, result.OrdersByStrategy["MRS"])

	assert.Equal(t, result.Orders, sink.orders)
	assert.Equal(t, result.RunID, sink.runID)
	assert.InDelta(t, 100000, result.UsableCapital, 1e-9)
	assert.Empty(t, result.Warnings)
}

func TestRun_AccountFailureIsFatal(t *testing.T) {
	account := &fakeAccount{err: errors.New("api down")}
	r := newTestRunner(account, &fakeBars{}, &fakeUniverse{}, &memorySink{})

	_, err := r.Run(context.Background(), time.Now())
	require.Error(t, err)
}

func TestRun_InvalidStrategyConfigIsFatal(t *testing.T) {
	account := &fakeAccount{summary: contracts.AccountSummary{BuyingPower: 125000}}
	sink := &memorySink{}
	r := newTestRunner(account, &fakeBars{}, &fakeUniverse{}, sink)
	r.strategies[0].Allocation = 0

	_, err := r.Run(context.Background(), time.Now())
	require.Error(t, err)

	var cfgErr *contracts.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
	assert.Nil(t, sink.orders)
}

func TestRun_OrderSinkFailureIsFatal(t *testing.T) {
	bars := &fakeBars{series: map[string][]contracts.PriceBar{
		"AAA": trendBars(70, 100, 0.004),
		"BBB": trendBars(70, 100, 0.003),
	}}
	account := &fakeAccount{summary: contracts.AccountSummary{BuyingPower: 125000}}
	sink := &memorySink{err: errors.New("disk full")}
	r := newTestRunner(account, bars, &fakeUniverse{}, sink)

	_, err := r.Run(context.Background(), time.Now())
	require.Error(t, err)
}

func TestRun_ExtraSinkFailureOnlyWarns(t *testing.T) {
	bars := &fakeBars{series: map[string][]contracts.PriceBar{
		"AAA": trendBars(70, 100, 0.004),
		"BBB": trendBars(70, 100, 0.003),
	}}
	account := &fakeAccount{summary: contracts.AccountSummary{BuyingPower: 125000}}
	primary := &memorySink{}
	flaky := &memorySink{err: errors.New("smtp timeout")}

	r := newTestRunner(account, bars, &fakeUniverse{}, primary)
	r.extraSinks = []contracts.OrderSink{flaky}

	result, err := r.Run(context.Background(), time.Now())
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "smtp timeout")
}

type staleFreshness struct{}

func (staleFreshness) Fresh(context.Context, string, time.Time) (bool, time.Time, error) {
	return false, time.Date(2025, time.August, 20, 0, 0, 0, 0, time.UTC), nil
}

func TestRun_StaleDataWarns(t *testing.T) {
	bars := &fakeBars{series: map[string][]contracts.PriceBar{
		"AAA": trendBars(70, 100, 0.004),
		"BBB": trendBars(70, 100, 0.003),
	}}
	account := &fakeAccount{summary: contracts.AccountSummary{BuyingPower: 125000}}
	r := newTestRunner(account, bars, &fakeUniverse{}, &memorySink{})
	r.freshness = staleFreshness{}

	result, err := r.Run(context.Background(), time.Now())
	require.NoError(t, err)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "stale")
	assert.Contains(t, result.Warnings[0], "2025-08-20")
}
