// Package conflict suppresses orders that would fight exposure
// already claimed by a higher-priority strategy. Strategies are
// processed strictly in priority order (rotation, then mean
// reversion, then HFT); a suppressed order is dropped for the run,
// never re-ranked or deferred to a later tier. The policy is greedy
// and not reciprocal: a higher-priority strategy never yields to a
// lower-priority signal, however strong.
package conflict

import (
	"github.com/mwt/signals/internal/contracts"
	"github.com/mwt/signals/pkg/logger"
)

// Batch is one strategy's reconciled orders together with the
// positions it already holds. Held positions claim their symbol for
// later tiers just like orders do.
type Batch struct {
	Strategy  string
	Orders    []contracts.Order
	Positions []contracts.Position
}

// Resolver accumulates symbol claims across batches.
type Resolver struct {
	logger *logger.Logger
}

func New(log *logger.Logger) *Resolver {
	return &Resolver{logger: log}
}

// Resolve processes batches in the order given and returns the
// surviving orders, flattened. Only opening orders (BUY, SELLSHORT)
// can be suppressed; exits always pass, since refusing to close an
// existing position would leave unmanaged exposure. An opening order
// is dropped when an earlier batch claims the same symbol in the
// opposite direction, or duplicates a same-direction claim on the
// symbol (double-sizing one name).
func (r *Resolver) Resolve(batches []Batch) []contracts.Order {
	claims := make(map[string]map[contracts.Direction]bool)
	claim := func(symbol string, dir contracts.Direction) {
		if claims[symbol] == nil {
			claims[symbol] = make(map[contracts.Direction]bool)
		}
		claims[symbol][dir] = true
	}

	var final []contracts.Order
	for _, batch := range batches {
		// Claims from earlier batches are fixed before this batch's
		// own orders register, so a strategy never conflicts with
		// itself.
		var kept []contracts.Order
		for _, order := range batch.Orders {
			if !order.Action.OpensPosition() {
				kept = append(kept, order)
				continue
			}
			dir := order.Action.Side()
			if existing := claims[order.Symbol]; existing != nil {
				reason := ""
				if existing[opposite(dir)] {
					reason = "opposing claim"
				} else if existing[dir] {
					reason = "duplicate claim"
				}
				if reason != "" {
					r.logger.WithFields(map[string]interface{}{
						"strategy": batch.Strategy,
						"symbol":   order.Symbol,
						"action":   string(order.Action),
						"reason":   reason,
					}).Info("Order suppressed")
					continue
				}
			}
			kept = append(kept, order)
		}

		for _, pos := range batch.Positions {
			if pos.Valid() {
				claim(pos.Symbol, pos.Direction)
			}
		}
		for _, order := range kept {
			claim(order.Symbol, order.Action.Side())
		}
		final = append(final, kept...)
	}
	return final
}

func opposite(dir contracts.Direction) contracts.Direction {
	if dir == contracts.DirectionLong {
		return contracts.DirectionShort
	}
	return contracts.DirectionLong
}
