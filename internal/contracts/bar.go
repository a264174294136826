package contracts

import "time"

// PriceBar is one trading day for one symbol. Series are ordered
// ascending by date; callers supply complete series and the core
// treats "too few bars" as a precondition failure, not something to
// gap-fill.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Closes extracts the close series from a bar slice.
func Closes(bars []PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Highs extracts the high series from a bar slice.
func Highs(bars []PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.High
	}
	return out
}

// Lows extracts the low series from a bar slice.
func Lows(bars []PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Low
	}
	return out
}

// Volumes extracts the volume series from a bar slice.
func Volumes(bars []PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Volume
	}
	return out
}

// Last returns the most recent bar. Callers must check length first;
// Last on an empty slice returns a zero bar.
func Last(bars []PriceBar) PriceBar {
	if len(bars) == 0 {
		return PriceBar{}
	}
	return bars[len(bars)-1]
}
