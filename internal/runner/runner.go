// Package runner orchestrates one signal generation run: account
// snapshot, capital allocation, per-strategy scan and reconciliation
// in priority order, cross-strategy conflict resolution, and order
// emission. The runner owns run-level failure policy: account and
// configuration failures abort, per-strategy failures degrade to a
// warning.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/mwt/signals/internal/broker"
	"github.com/mwt/signals/internal/capital"
	"github.com/mwt/signals/internal/conflict"
	"github.com/mwt/signals/internal/contracts"
	"github.com/mwt/signals/internal/reconcile"
	"github.com/mwt/signals/internal/scanner"
	"github.com/mwt/signals/internal/strategy"
	"github.com/mwt/signals/pkg/logger"
)

// freshnessSymbol anchors the data staleness check; a broad index ETF
// trades every session.
const freshnessSymbol = "SPY"

// FreshnessChecker reports whether the provider's latest bar matches
// the expected last trading day.
type FreshnessChecker interface {
	Fresh(ctx context.Context, symbol string, asOf time.Time) (bool, time.Time, error)
}

// Snapshotter records the position snapshot a run reconciled against.
type Snapshotter interface {
	SnapshotPositions(ctx context.Context, runID string, date time.Time, positions []contracts.Position) error
}

// Runner wires the pipeline stages together.
type Runner struct {
	strategies []strategy.Config
	scanner    *scanner.Scanner
	reconciler *reconcile.Reconciler
	resolver   *conflict.Resolver
	account    contracts.AccountClient
	freshness  FreshnessChecker

	// orderSink is the order of record (the upload CSV); its failure
	// fails the run. extraSinks (mail, history store) only warn.
	orderSink  contracts.OrderSink
	extraSinks []contracts.OrderSink
	snapshots  Snapshotter

	buffer float64
	logger *logger.Logger
}

// Options collects the runner's collaborators.
type Options struct {
	Strategies []strategy.Config
	Scanner    *scanner.Scanner
	Reconciler *reconcile.Reconciler
	Resolver   *conflict.Resolver
	Account    contracts.AccountClient
	Freshness  FreshnessChecker
	OrderSink  contracts.OrderSink
	ExtraSinks []contracts.OrderSink
	Snapshots  Snapshotter
	Buffer     float64 // capital safety buffer; 0 selects the default
}

func New(opts Options, log *logger.Logger) *Runner {
	buffer := opts.Buffer
	if buffer <= 0 {
		buffer = capital.DefaultBufferFraction
	}
	return &Runner{
		strategies: opts.Strategies,
		scanner:    opts.Scanner,
		reconciler: opts.Reconciler,
		resolver:   opts.Resolver,
		account:    opts.Account,
		freshness:  opts.Freshness,
		orderSink:  opts.OrderSink,
		extraSinks: opts.ExtraSinks,
		snapshots:  opts.Snapshots,
		buffer:     buffer,
		logger:     log,
	}
}

// Result summarizes one completed run.
type Result struct {
	RunID            string            `json:"run_id"`
	Date             time.Time         `json:"date"`
	UsableCapital    float64           `json:"usable_capital"`
	Orders           []contracts.Order `json:"orders"`
	OrdersByStrategy map[string]int    `json:"orders_by_strategy"`
	Warnings         []string          `json:"warnings,omitempty"`
	Duration         time.Duration     `json:"duration"`
}

// Run executes the full pipeline for the given run time.
func (r *Runner) Run(ctx context.Context, runTime time.Time) (*Result, error) {
	start := time.Now()
	result := &Result{
		RunID:            "run-" + runTime.Format("20060102-150405"),
		Date:             runTime,
		OrdersByStrategy: make(map[string]int),
	}

	for _, cfg := range r.strategies {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	summary, err := r.account.AccountSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("account summary: %w", err)
	}
	positions, err := r.account.OpenPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("open positions: %w", err)
	}

	alloc := capital.NewAllocator(summary.BuyingPower, broker.OpenPositionCost(positions), r.buffer)
	result.UsableCapital = alloc.UsableCapital()
	r.logger.WithFields(map[string]interface{}{
		"run_id":         result.RunID,
		"buying_power":   summary.BuyingPower,
		"positions":      len(positions),
		"usable_capital": result.UsableCapital,
	}).Info("Run started")

	r.checkFreshness(ctx, runTime, result)

	// Strategy order is the conflict priority order; it must not be
	// parallelized.
	var batches []conflict.Batch
	for _, cfg := range r.strategies {
		batch := r.runStrategy(ctx, cfg, alloc, positions, runTime, result)
		batches = append(batches, batch)
	}

	result.Orders = r.resolver.Resolve(batches)
	for _, o := range result.Orders {
		result.OrdersByStrategy[o.Strategy]++
	}

	if err := r.orderSink.Emit(ctx, result.RunID, runTime, result.Orders); err != nil {
		return nil, fmt.Errorf("emit orders: %w", err)
	}
	for _, s := range r.extraSinks {
		if err := s.Emit(ctx, result.RunID, runTime, result.Orders); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("sink: %v", err))
		}
	}
	if r.snapshots != nil {
		if err := r.snapshots.SnapshotPositions(ctx, result.RunID, runTime, positions); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("position snapshot: %v", err))
		}
	}

	result.Duration = time.Since(start)
	r.logger.WithFields(map[string]interface{}{
		"run_id":   result.RunID,
		"orders":   len(result.Orders),
		"warnings": len(result.Warnings),
		"duration": result.Duration.String(),
	}).Info("Run completed")
	return result, nil
}

// runStrategy scans and reconciles one strategy. On failure the
// strategy contributes no orders but its positions still register as
// conflict claims, and crucially no exit orders are fabricated from
// an empty rank list.
func (r *Runner) runStrategy(ctx context.Context, cfg strategy.Config, alloc *capital.Allocator, all []contracts.Position, runTime time.Time, result *Result) conflict.Batch {
	positions := contracts.FilterByStrategy(all, cfg.Name)
	batch := conflict.Batch{Strategy: cfg.Name, Positions: positions}

	held := make(map[string]struct{}, len(positions))
	for _, p := range positions {
		held[p.Symbol] = struct{}{}
	}

	candidates, err := r.scanner.Scan(ctx, cfg, alloc, held, runTime)
	if err != nil {
		r.logger.WithField("strategy", cfg.Name).WithError(err).Error("Scan failed, strategy skipped")
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s: scan failed: %v", cfg.Name, err))
		return batch
	}

	orders, err := r.reconciler.Reconcile(ctx, cfg, candidates, positions, runTime)
	if err != nil {
		r.logger.WithField("strategy", cfg.Name).WithError(err).Error("Reconcile failed, strategy skipped")
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s: reconcile failed: %v", cfg.Name, err))
		return batch
	}
	batch.Orders = orders
	return batch
}

func (r *Runner) checkFreshness(ctx context.Context, runTime time.Time, result *Result) {
	if r.freshness == nil {
		return
	}
	fresh, lastBar, err := r.freshness.Fresh(ctx, freshnessSymbol, runTime)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, fmt.Sprintf("freshness check failed: %v", err))
		r.logger.WithError(err).Warn("Data freshness check failed")
	case !fresh:
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("market data may be stale: last bar %s", lastBar.Format("2006-01-02")))
		r.logger.WithField("last_bar", lastBar.Format("2006-01-02")).Warn("Market data may be stale")
	}
}
