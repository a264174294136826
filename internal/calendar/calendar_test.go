package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLastFridayOfMonth(t *testing.T) {
	tests := []struct {
		in   time.Time
		want time.Time
	}{
		{date(2025, time.August, 1), date(2025, time.August, 29)},
		{date(2025, time.August, 31), date(2025, time.August, 29)},
		{date(2025, time.July, 10), date(2025, time.July, 25)},
		{date(2025, time.February, 14), date(2025, time.February, 28)},
		{date(2024, time.December, 5), date(2024, time.December, 27)},
	}
	for _, tt := range tests {
		got := LastFridayOfMonth(tt.in)
		assert.Equal(t, tt.want, got, "input %v", tt.in)
		assert.Equal(t, time.Friday, got.Weekday())
	}
}

func TestLastFridayOfPreviousMonth(t *testing.T) {
	got := LastFridayOfPreviousMonth(date(2025, time.August, 15))
	assert.Equal(t, date(2025, time.July, 25), got)

	got = LastFridayOfPreviousMonth(date(2025, time.January, 2))
	assert.Equal(t, date(2024, time.December, 27), got)
}

func TestMonthlyAnchor(t *testing.T) {
	// Before the month's last Friday: anchor to the previous month.
	got := MonthlyAnchor(date(2025, time.August, 15))
	assert.Equal(t, date(2025, time.July, 25), got)

	// On the last Friday itself: that session is not complete yet.
	got = MonthlyAnchor(date(2025, time.August, 29))
	assert.Equal(t, date(2025, time.July, 25), got)

	// After the last Friday: anchor to it.
	got = MonthlyAnchor(date(2025, time.August, 30))
	assert.Equal(t, date(2025, time.August, 29), got)
}

func TestExpectedLastTradingDay(t *testing.T) {
	// Saturday and Sunday roll back to Friday.
	assert.Equal(t, date(2025, time.August, 29), ExpectedLastTradingDay(date(2025, time.August, 30)))
	assert.Equal(t, date(2025, time.August, 29), ExpectedLastTradingDay(date(2025, time.August, 31)))

	// A weekday is its own last trading day.
	assert.Equal(t, date(2025, time.August, 27), ExpectedLastTradingDay(date(2025, time.August, 27)))
}

func TestGoodTillDate(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Run before the cutoff: expires today at 15:44.
	run := time.Date(2025, time.August, 27, 9, 0, 0, 0, loc)
	got := GoodTillDate(run, loc)
	assert.Equal(t, time.Date(2025, time.August, 27, 15, 44, 0, 0, loc), got)

	// Run after the cutoff: expires next day at 15:44.
	run = time.Date(2025, time.August, 27, 16, 30, 0, 0, loc)
	got = GoodTillDate(run, loc)
	assert.Equal(t, time.Date(2025, time.August, 28, 15, 44, 0, 0, loc), got)

	// Exactly at the cutoff rolls forward.
	run = time.Date(2025, time.August, 27, 15, 44, 0, 0, loc)
	got = GoodTillDate(run, loc)
	assert.Equal(t, time.Date(2025, time.August, 28, 15, 44, 0, 0, loc), got)
}

func TestSameDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	a := time.Date(2025, time.August, 27, 23, 0, 0, 0, loc)
	b := time.Date(2025, time.August, 28, 1, 0, 0, 0, time.UTC)
	assert.True(t, SameDay(a, b))

	c := time.Date(2025, time.August, 28, 10, 0, 0, 0, loc)
	assert.False(t, SameDay(a, c))
}
