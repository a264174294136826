package contracts

import "time"

// Position is a broker-owned open position snapshot. The core only
// reads these at run start; the broker record is the single source of
// truth and nothing here is mutated.
type Position struct {
	Symbol     string    `json:"symbol"`
	Strategy   string    `json:"strategy"`
	Direction  Direction `json:"direction"`
	Quantity   int       `json:"quantity"` // sign matches direction: long > 0, short < 0
	EntryPrice float64   `json:"entry_price"`
	EntryDate  time.Time `json:"entry_date"`
}

// AbsQuantity returns the unsigned share count.
func (p Position) AbsQuantity() int {
	if p.Quantity < 0 {
		return -p.Quantity
	}
	return p.Quantity
}

// CostBasis returns |quantity| * entry price.
func (p Position) CostBasis() float64 {
	return float64(p.AbsQuantity()) * p.EntryPrice
}

// Valid reports whether the quantity sign matches the direction.
func (p Position) Valid() bool {
	if p.Quantity == 0 {
		return false
	}
	if p.Direction == DirectionShort {
		return p.Quantity < 0
	}
	return p.Quantity > 0
}

// FilterByStrategy returns the positions attributed to one strategy.
func FilterByStrategy(positions []Position, strategy string) []Position {
	out := make([]Position, 0, len(positions))
	for _, p := range positions {
		if p.Strategy == strategy {
			out = append(out, p)
		}
	}
	return out
}

// SymbolSet returns the set of symbols present in positions.
func SymbolSet(positions []Position) map[string]bool {
	set := make(map[string]bool, len(positions))
	for _, p := range positions {
		set[p.Symbol] = true
	}
	return set
}

// AccountSummary is the broker account snapshot used by the capital
// allocator.
type AccountSummary struct {
	AccountID      string  `json:"account_id"`
	AccountType    string  `json:"account_type"`
	Equity         float64 `json:"equity"`
	BuyingPower    float64 `json:"buying_power"`
	CashBalance    float64 `json:"cash_balance"`
	MarketValue    float64 `json:"market_value"`
	RequiredMargin float64 `json:"required_margin"`
}
