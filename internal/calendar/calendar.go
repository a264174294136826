// Package calendar holds the trading date arithmetic shared by the
// scanners: monthly data anchors for the rotation strategies, the
// freshness check for fetched history, and good-till-date expiry
// stamps for intraday limit orders.
package calendar

import "time"

// LastFridayOfMonth returns the date of the last Friday in the month
// containing t, at midnight in t's location.
func LastFridayOfMonth(t time.Time) time.Time {
	// Day 28 + 4 always lands in the following month; its day-1 is
	// the last day of t's month. Walk back to Friday from there.
	d := time.Date(t.Year(), t.Month(), 28, 0, 0, 0, 0, t.Location()).AddDate(0, 0, 4)
	d = time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, 0, -1)
	for d.Weekday() != time.Friday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// LastFridayOfPreviousMonth returns the date of the last Friday in
// the month before the one containing t.
func LastFridayOfPreviousMonth(t time.Time) time.Time {
	firstOfMonth := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return LastFridayOfMonth(firstOfMonth.AddDate(0, 0, -1))
}

// MonthlyAnchor returns the monthly rebalance data end date for the
// run date: the last Friday of the current month once it has passed,
// otherwise the last Friday of the previous month. Running on the
// last Friday itself still anchors to the previous month, since that
// session's close is not final until after the run.
func MonthlyAnchor(runDate time.Time) time.Time {
	lastFri := LastFridayOfMonth(runDate)
	if truncateDay(runDate).After(lastFri) {
		return lastFri
	}
	return LastFridayOfPreviousMonth(runDate)
}

// ExpectedLastTradingDay returns the most recent weekday on or before
// runDate. It approximates the last completed session for the data
// freshness check and does not account for exchange holidays, so a
// holiday run logs a stale-data warning rather than failing.
func ExpectedLastTradingDay(runDate time.Time) time.Time {
	d := truncateDay(runDate)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// GoodTillDate returns the expiry stamp for a good-till-date order
// placed around runDate: 15:44 exchange time today if that is still
// in the future, otherwise 15:44 the next day.
func GoodTillDate(runDate time.Time, loc *time.Location) time.Time {
	local := runDate.In(loc)
	expiry := time.Date(local.Year(), local.Month(), local.Day(), 15, 44, 0, 0, loc)
	if !local.Before(expiry) {
		expiry = expiry.AddDate(0, 0, 1)
	}
	return expiry
}

// SameDay reports whether a and b fall on the same calendar date in
// a's location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
