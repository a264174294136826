package contracts

import (
	"sort"
	"time"
)

// Candidate is one symbol that passed a strategy's entry filters,
// carrying its rank score and proposed sizing. Created fresh each
// run, immutable once ranked, discarded after order emission.
type Candidate struct {
	Symbol    string    `json:"symbol"`
	Score     float64   `json:"score"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"` // proposed limit price, or reference close for market entries
	Direction Direction `json:"direction"`
	BarDate   time.Time `json:"bar_date"` // date of the bar the signal was computed on
}

// SortCandidates orders candidates by score descending, tie-broken by
// symbol ascending so the ordering is total even with equal scores.
func SortCandidates(candidates []Candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Symbol < candidates[j].Symbol
	})
}

// TopSymbols returns the first n candidate symbols (the list must
// already be sorted).
func TopSymbols(candidates []Candidate, n int) []string {
	if n > len(candidates) {
		n = len(candidates)
	}
	out := make([]string, 0, n)
	for _, c := range candidates[:n] {
		out = append(out, c.Symbol)
	}
	return out
}
