package contracts

import "testing"

func TestAction_Side(t *testing.T) {
	tests := []struct {
		action Action
		want   Direction
	}{
		{ActionBuy, DirectionLong},
		{ActionSell, DirectionLong},
		{ActionSellShort, DirectionShort},
		{ActionBuyToCover, DirectionShort},
	}

	for _, tt := range tests {
		if got := tt.action.Side(); got != tt.want {
			t.Errorf("%s.Side() = %s, want %s", tt.action, got, tt.want)
		}
	}
}

func TestAction_OpensPosition(t *testing.T) {
	if !ActionBuy.OpensPosition() {
		t.Error("BUY should open a position")
	}
	if !ActionSellShort.OpensPosition() {
		t.Error("SELLSHORT should open a position")
	}
	if ActionSell.OpensPosition() {
		t.Error("SELL should not open a position")
	}
	if ActionBuyToCover.OpensPosition() {
		t.Error("BUYTOCOVER should not open a position")
	}
}

func TestPosition_Valid(t *testing.T) {
	tests := []struct {
		name string
		pos  Position
		want bool
	}{
		{"long positive", Position{Direction: DirectionLong, Quantity: 100}, true},
		{"long negative", Position{Direction: DirectionLong, Quantity: -100}, false},
		{"short negative", Position{Direction: DirectionShort, Quantity: -50}, true},
		{"short positive", Position{Direction: DirectionShort, Quantity: 50}, false},
		{"zero quantity", Position{Direction: DirectionLong, Quantity: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pos.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPosition_CostBasis(t *testing.T) {
	p := Position{Direction: DirectionShort, Quantity: -20, EntryPrice: 50}
	if got := p.CostBasis(); got != 1000 {
		t.Errorf("CostBasis() = %v, want 1000", got)
	}
}

func TestSortCandidates_Deterministic(t *testing.T) {
	candidates := []Candidate{
		{Symbol: "MSFT", Score: 2.5},
		{Symbol: "AAPL", Score: 2.5},
		{Symbol: "NVDA", Score: 9.1},
		{Symbol: "AMD", Score: 1.0},
	}

	SortCandidates(candidates)

	want := []string{"NVDA", "AAPL", "MSFT", "AMD"}
	for i, sym := range want {
		if candidates[i].Symbol != sym {
			t.Fatalf("position %d = %s, want %s", i, candidates[i].Symbol, sym)
		}
	}
}

func TestSkipSymbol(t *testing.T) {
	if !SkipSymbol(ErrInsufficientHistory) {
		t.Error("insufficient history should be skippable")
	}
	if !SkipSymbol(ErrDataFetch) {
		t.Error("data fetch errors should be skippable")
	}
	if SkipSymbol(&ConfigError{Reason: "bad allocation"}) {
		t.Error("config errors must not be skippable")
	}
}
