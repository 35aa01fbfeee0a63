package date

import (
	"testing"
	"time"
)

func TestIsTradingDay(t *testing.T) {
	testCases := []struct {
		name   string
		day    Date
		market Market
		want   bool
	}{
		{"Regular weekday CN", New(2025, time.July, 1), CN, true},
		{"Saturday CN", New(2025, time.July, 5), CN, false},
		{"Sunday US", New(2025, time.July, 6), US, false},
		{"CN national day", New(2025, time.October, 1), CN, false},
		{"US independence day", New(2025, time.July, 4), US, false},
		{"CN holiday is a US session", New(2025, time.October, 1), US, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := IsTradingDay(tc.day, tc.market)
			if err != nil {
				t.Fatalf("IsTradingDay(%v, %s) error = %v", tc.day, tc.market, err)
			}
			if got != tc.want {
				t.Errorf("IsTradingDay(%v, %s) = %v, want %v", tc.day, tc.market, got, tc.want)
			}
		})
	}
}

func TestIsTradingDay_MissingYear(t *testing.T) {
	if _, err := IsTradingDay(New(2024, time.June, 3), CN); err == nil {
		t.Fatal("IsTradingDay() on a year absent from the holiday table must fail")
	}
}

func TestPreviousTradingDay(t *testing.T) {
	testCases := []struct {
		name         string
		day          Date
		includeGiven bool
		market       Market
		want         Date
	}{
		{"Session included", New(2025, time.July, 1), true, CN, New(2025, time.July, 1)},
		{"Session excluded", New(2025, time.July, 1), false, CN, New(2025, time.June, 30)},
		{"Across CN labour day break", New(2025, time.May, 5), true, CN, New(2025, time.April, 30)},
		{"US holiday excluded", New(2025, time.July, 4), false, US, New(2025, time.July, 3)},
		{"Across year boundary", New(2026, time.January, 2), true, CN, New(2025, time.December, 31)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := PreviousTradingDay(tc.day, tc.includeGiven, tc.market)
			if err != nil {
				t.Fatalf("PreviousTradingDay() error = %v", err)
			}
			if got != tc.want {
				t.Errorf("PreviousTradingDay(%v, %v, %s) = %v, want %v", tc.day, tc.includeGiven, tc.market, got, tc.want)
			}
		})
	}
}

func TestNextTradingDay(t *testing.T) {
	got, err := NextTradingDay(New(2025, time.September, 30), false, CN)
	if err != nil {
		t.Fatalf("NextTradingDay() error = %v", err)
	}
	if want := New(2025, time.October, 9); got != want {
		t.Errorf("NextTradingDay() = %v, want %v", got, want)
	}
}

func TestLatestSession(t *testing.T) {
	// 2025-07-02 10:00 UTC is 18:00 in China: the 15h cutoff lands on
	// 2025-07-01 which is a session.
	now := time.Date(2025, time.July, 2, 10, 0, 0, 0, time.UTC)
	got, err := LatestSession(now, CN)
	if err != nil {
		t.Fatalf("LatestSession() error = %v", err)
	}
	if want := New(2025, time.July, 1); got != want {
		t.Errorf("LatestSession(CN) = %v, want %v", got, want)
	}
}
