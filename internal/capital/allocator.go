// Package capital sizes positions from a single account-wide capital
// base. The base is computed once per run, before any new orders are
// considered, so every strategy sizes against the same number and the
// result does not depend on scan order.
package capital

import "math"

// DefaultBufferFraction is the slice of total capital held back from
// sizing to absorb slippage and partial fills.
const DefaultBufferFraction = 0.2

// Allocator converts account state into per-position share counts.
type Allocator struct {
	buffer  float64
	capital float64
}

// NewAllocator computes the run's usable capital from the account's
// current buying power plus the cost basis of positions already open,
// discounted by the buffer fraction. Capital already deployed counts
// toward the base so a fully invested account keeps sizing positions
// consistently instead of collapsing to its remaining cash.
func NewAllocator(buyingPower, openPositionCost, buffer float64) *Allocator {
	base := buyingPower + openPositionCost
	if base < 0 {
		base = 0
	}
	return &Allocator{
		buffer:  buffer,
		capital: (1 - buffer) * base,
	}
}

// UsableCapital returns the buffered capital base for this run.
func (a *Allocator) UsableCapital() float64 {
	return a.capital
}

// PositionSize returns the whole-share quantity for one slot of a
// strategy: alloc fraction of usable capital, split across maxPositions
// slots, divided by price and floored. Returns 0 when a single share
// does not fit.
func (a *Allocator) PositionSize(alloc float64, maxPositions int, price float64) int {
	if price <= 0 || maxPositions <= 0 {
		return 0
	}
	// Per-slot capital is a dollar amount; round it to cents before
	// dividing so sizing matches what the account can actually commit.
	perSlot := math.Round(a.capital*alloc/float64(maxPositions)*100) / 100
	qty := int(math.Floor(perSlot / price))
	if qty < 0 {
		return 0
	}
	return qty
}

// PositionSizeMinOne sizes like PositionSize but never returns less
// than one share. Strategies with many small slots use it so a
// qualifying candidate is not silently dropped by rounding.
func (a *Allocator) PositionSizeMinOne(alloc float64, maxPositions int, price float64) int {
	if price <= 0 || maxPositions <= 0 {
		return 0
	}
	qty := a.PositionSize(alloc, maxPositions, price)
	if qty < 1 {
		return 1
	}
	return qty
}
