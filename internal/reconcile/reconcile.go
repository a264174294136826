// Package reconcile compares ranked candidates against a strategy's
// current positions and emits the run's entry and exit orders. It is
// stateless across runs: every run re-derives pending orders from the
// latest broker snapshot, so re-running with unchanged positions and
// unchanged market data reproduces the same order set.
package reconcile

import (
	"context"
	"time"

	"github.com/mwt/signals/internal/calendar"
	"github.com/mwt/signals/internal/contracts"
	"github.com/mwt/signals/internal/indicator"
	"github.com/mwt/signals/internal/strategy"
	"github.com/mwt/signals/pkg/logger"
)

// securityTypeStock and securityTypeCFD are the instrument classes
// the trading application accepts.
const (
	securityTypeStock = "STK"
	securityTypeCFD   = "CFD"
)

// Reconciler turns per-strategy candidate lists into orders. It needs
// a bar provider because mean-reversion exit limits are re-priced off
// the latest bar every run.
type Reconciler struct {
	bars     contracts.BarProvider
	logger   *logger.Logger
	location *time.Location
}

// New creates a reconciler. loc is the exchange timezone used for
// good-till-date stamps.
func New(bars contracts.BarProvider, log *logger.Logger, loc *time.Location) *Reconciler {
	return &Reconciler{bars: bars, logger: log, location: loc}
}

// Reconcile dispatches on the strategy family. positions must already
// be filtered to this strategy's attribution.
func (r *Reconciler) Reconcile(ctx context.Context, cfg strategy.Config, candidates []contracts.Candidate, positions []contracts.Position, runTime time.Time) ([]contracts.Order, error) {
	switch cfg.Family {
	case strategy.FamilyRotation:
		return r.rotation(cfg, candidates, positions), nil
	case strategy.FamilyMeanReversion:
		return r.meanReversion(ctx, cfg, candidates, positions)
	case strategy.FamilyHFT:
		return r.hft(cfg, candidates, runTime), nil
	default:
		return nil, &contracts.ConfigError{Strategy: cfg.Name, Reason: "unknown family " + string(cfg.Family)}
	}
}

// rotation applies the asymmetric hold/entry band: a held symbol is
// kept while it ranks inside HoldRank, but fresh entries come only
// from the top MaxPositions. Rotation orders execute at the open.
func (r *Reconciler) rotation(cfg strategy.Config, candidates []contracts.Candidate, positions []contracts.Position) []contracts.Order {
	holdSet := toSet(contracts.TopSymbols(candidates, cfg.HoldRank))
	entrySet := toSet(contracts.TopSymbols(candidates, cfg.MaxPositions))
	heldSet := contracts.SymbolSet(positions)

	var orders []contracts.Order

	kept := 0
	for _, pos := range positions {
		if pos.Quantity <= 0 {
			continue
		}
		if holdSet[pos.Symbol] {
			kept++
			continue
		}
		orders = append(orders, contracts.Order{
			Symbol:       pos.Symbol,
			Action:       contracts.ActionSell,
			Quantity:     pos.Quantity,
			OrderType:    contracts.OrderTypeMarket,
			TimeInForce:  contracts.TIFOPG,
			SecurityType: securityTypeStock,
			Strategy:     cfg.Name,
		})
	}

	if !cfg.EntryAllowed {
		return orders
	}
	for _, cand := range candidates {
		if !entrySet[cand.Symbol] || heldSet[cand.Symbol] {
			continue
		}
		// Sized to zero: the symbol keeps its rank but no entry is
		// placed and the slot stays vacant.
		if cand.Quantity <= 0 {
			continue
		}
		if kept >= cfg.MaxPositions {
			break
		}
		orders = append(orders, contracts.Order{
			Symbol:       cand.Symbol,
			Action:       contracts.ActionBuy,
			Quantity:     cand.Quantity,
			OrderType:    contracts.OrderTypeMarket,
			TimeInForce:  contracts.TIFOPG,
			SecurityType: securityTypeStock,
			Strategy:     cfg.Name,
		})
		kept++
	}
	return orders
}

// meanReversion re-posts an unconditional limit exit for every held
// position at the latest bar's high (longs) or low (shorts), then
// fills the remaining slots with the top-ranked entries. Exits are
// never conditional on rank.
func (r *Reconciler) meanReversion(ctx context.Context, cfg strategy.Config, candidates []contracts.Candidate, positions []contracts.Position) ([]contracts.Order, error) {
	var orders []contracts.Order

	openCount := 0
	for _, pos := range positions {
		if !pos.Valid() {
			continue
		}
		bars, err := r.bars.Bars(ctx, pos.Symbol, 3)
		if err != nil || len(bars) == 0 {
			// Without a fresh bar there is no exit price; leave the
			// position for the next run rather than guessing.
			r.logger.WithField("symbol", pos.Symbol).WithError(err).Warn("No exit price available, skipping exit")
			openCount++
			continue
		}
		last := contracts.Last(bars)

		order := contracts.Order{
			Symbol:       pos.Symbol,
			Quantity:     pos.AbsQuantity(),
			OrderType:    contracts.OrderTypeLimit,
			TimeInForce:  contracts.TIFGTC,
			SecurityType: securityTypeStock,
			Strategy:     cfg.Name,
		}
		if pos.Direction == contracts.DirectionShort {
			order.Action = contracts.ActionBuyToCover
			order.LimitPrice = indicator.Round2(last.Low)
		} else {
			order.Action = contracts.ActionSell
			order.LimitPrice = indicator.Round2(last.High)
		}
		orders = append(orders, order)
		openCount++
	}

	if !cfg.EntryAllowed {
		return orders, nil
	}

	slots := cfg.MaxPositions - openCount
	if slots < 0 {
		slots = 0
	}
	action := contracts.ActionBuy
	if cfg.Direction == contracts.DirectionShort {
		action = contracts.ActionSellShort
	}
	for i, cand := range candidates {
		if i >= slots {
			break
		}
		orders = append(orders, contracts.Order{
			Symbol:       cand.Symbol,
			Action:       action,
			Quantity:     cand.Quantity,
			OrderType:    contracts.OrderTypeLimit,
			LimitPrice:   cand.Price,
			TimeInForce:  contracts.TIFGTC,
			SecurityType: securityTypeStock,
			Strategy:     cfg.Name,
		})
	}
	return orders, nil
}

// hft emits entries only: positions opened intraday are flattened by
// the attached market-on-close order, so there is nothing to exit at
// scan time. Orders expire at 15:44 exchange time via GTD.
func (r *Reconciler) hft(cfg strategy.Config, candidates []contracts.Candidate, runTime time.Time) []contracts.Order {
	if !cfg.EntryAllowed {
		return nil
	}

	gtd := calendar.GoodTillDate(runTime, r.location).Format("2006-01-02T15:04:05")
	action := contracts.ActionBuy
	if cfg.Direction == contracts.DirectionShort {
		action = contracts.ActionSellShort
	}

	var orders []contracts.Order
	for i, cand := range candidates {
		if i >= cfg.MaxPositions {
			break
		}
		orders = append(orders, contracts.Order{
			Symbol:       cand.Symbol,
			Action:       action,
			Quantity:     cand.Quantity,
			OrderType:    contracts.OrderTypeLimit,
			LimitPrice:   cand.Price,
			TimeInForce:  contracts.TIFGTD,
			GoodTillDate: gtd,
			AttachMOC:    true,
			SecurityType: securityTypeCFD,
			Strategy:     cfg.Name,
		})
	}
	return orders
}

func toSet(symbols []string) map[string]bool {
	set := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		set[s] = true
	}
	return set
}
