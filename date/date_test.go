package date

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name      string
		in        string
		want      Date
		expectErr bool
	}{
		{"Canonical", "2025-07-01", New(2025, time.July, 1), false},
		{"Short month and day", "2025-7-1", New(2025, time.July, 1), false},
		{"Not a date", "yesterday", Date{}, true},
		{"Empty", "", Date{}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.in)
			if (err != nil) != tc.expectErr {
				t.Fatalf("Parse(%q) error = %v, want error: %v", tc.in, err, tc.expectErr)
			}
			if got != tc.want {
				t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestDate_JSONRoundTrip(t *testing.T) {
	d := New(2025, time.December, 31)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(b) != `"2025-12-31"` {
		t.Errorf("Marshal() = %s, want %q", b, `"2025-12-31"`)
	}
	var got Date
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got != d {
		t.Errorf("round trip = %v, want %v", got, d)
	}
}

func TestDate_AddNormalizes(t *testing.T) {
	d := New(2025, time.December, 31).Add(1)
	if d != New(2026, time.January, 1) {
		t.Errorf("Add(1) = %v, want 2026-01-01", d)
	}
}
