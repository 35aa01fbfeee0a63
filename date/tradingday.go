package date

import (
	"fmt"
	"time"
)

// Market identifies a trading calendar.
type Market string

const (
	CN Market = "CN" // Shanghai/Shenzhen sessions
	US Market = "US" // NYSE/Nasdaq sessions
)

// monthDay is a (month, day) pair, enough to identify a holiday within a year.
type monthDay struct {
	m time.Month
	d int
}

// Exchange holidays per year. A year absent from the table is a configuration
// error: walking the calendar across it must fail rather than silently treat
// every weekday as a session.
var cnHolidays = map[int][]monthDay{
	2025: {{1, 1}, {1, 28}, {1, 29}, {1, 30}, {1, 31}, {2, 3}, {2, 4}, {4, 4}, {5, 1}, {5, 2}, {5, 5}, {6, 2}, {10, 1}, {10, 2}, {10, 3}, {10, 6}, {10, 7}, {10, 8}},
	2026: {{1, 1}, {1, 2}, {2, 16}, {2, 17}, {2, 18}, {2, 19}, {2, 20}, {2, 23}, {4, 6}, {5, 1}, {5, 4}, {5, 5}, {6, 19}, {9, 25}, {10, 1}, {10, 2}, {10, 5}, {10, 6}, {10, 7}},
}

var usHolidays = map[int][]monthDay{
	2025: {{1, 1}, {1, 9}, {1, 20}, {2, 17}, {4, 18}, {5, 26}, {6, 19}, {7, 4}, {9, 1}, {11, 27}, {12, 25}},
	2026: {{1, 1}, {1, 19}, {2, 16}, {4, 3}, {5, 25}, {6, 19}, {7, 3}, {9, 7}, {11, 26}, {12, 25}},
}

func holidaysFor(year int, market Market) ([]monthDay, error) {
	table := cnHolidays
	if market == US {
		table = usHolidays
	}
	days, ok := table[year]
	if !ok {
		return nil, fmt.Errorf("year %d is not in the %s holiday table, add it before walking the calendar", year, market)
	}
	return days, nil
}

// IsTradingDay reports whether d is a session of the given market: a weekday
// absent from the market's holiday table.
func IsTradingDay(d Date, market Market) (bool, error) {
	holidays, err := holidaysFor(d.Year(), market)
	if err != nil {
		return false, err
	}
	return isSession(d, holidays), nil
}

func isSession(d Date, holidays []monthDay) bool {
	wd := d.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	for _, h := range holidays {
		if h.m == d.Month() && h.d == d.Day() {
			return false
		}
	}
	return true
}

// PreviousTradingDay returns the latest session on or before d (strictly
// before unless includeGiven is set).
func PreviousTradingDay(d Date, includeGiven bool, market Market) (Date, error) {
	return walk(d, -1, includeGiven, market)
}

// NextTradingDay returns the earliest session on or after d (strictly after
// unless includeGiven is set).
func NextTradingDay(d Date, includeGiven bool, market Market) (Date, error) {
	return walk(d, +1, includeGiven, market)
}

func walk(d Date, step int, includeGiven bool, market Market) (Date, error) {
	if !includeGiven {
		d = d.Add(step)
	}
	for {
		holidays, err := holidaysFor(d.Year(), market)
		if err != nil {
			return Date{}, err
		}
		if isSession(d, holidays) {
			return d, nil
		}
		d = d.Add(step)
	}
}

// Market close is only final some hours after local midnight; shifting "now"
// backwards by the cutoff before truncating to a date crosses that boundary.
const (
	cnCutoff = -15 * time.Hour
	usCutoff = -16 * time.Hour
)

// LatestSession returns the most recent completed session of the market as of
// the given instant.
func LatestSession(now time.Time, market Market) (Date, error) {
	switch market {
	case US:
		loc, err := time.LoadLocation("America/New_York")
		if err != nil {
			return Date{}, fmt.Errorf("cannot resolve US market timezone: %w", err)
		}
		return PreviousTradingDay(FromTime(now.In(loc).Add(usCutoff)), true, US)
	default:
		return PreviousTradingDay(FromTime(now.Add(cnCutoff)), true, CN)
	}
}
