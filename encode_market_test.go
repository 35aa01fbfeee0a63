package rebalance

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const marketFixture = `{
	"holdings": {
		"110011": {
			"value": 4.5321,
			"update_at": "2025-07-04",
			"kind": "fund",
			"composition": {
				"stock": 0.95,
				"cash": 0.05,
				"update_at": "2025-06-20"
			}
		},
		"VTI": {
			"value": "$305.10",
			"update_at": "2025-07-03",
			"kind": "fund",
			"composition": {
				"stock": 1,
				"update_at": "2025-06-01"
			}
		}
	},
	"exchange_rate": {
		"USD": {
			"symbol": "$",
			"rate": 7.20,
			"update_at": "2025-07-04"
		}
	}
}`

func TestDecodeStore(t *testing.T) {
	s, err := DecodeStore(strings.NewReader(marketFixture), "CNY", zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	if got, want := strings.Join(s.Symbols(), ","), "110011,VTI"; got != want {
		t.Errorf("symbols = %s, want %s", got, want)
	}

	price, err := s.Price("110011")
	if err != nil {
		t.Fatal(err)
	}
	if want := M(4.5321, "CNY"); !price.Equal(want) {
		t.Errorf("price = %s, want %s", price, want)
	}

	// Tagged price resolved through the decoded rate table.
	s.SetClock(fixedClock)
	price, err = s.Price("VTI")
	if err != nil {
		t.Fatal(err)
	}
	want := M(decimal.RequireFromString("305.10").Mul(decimal.RequireFromString("7.20")), "CNY")
	if !price.Equal(want) {
		t.Errorf("VTI price = %s, want %s", price, want)
	}
}

func TestDecodeStoreRejectsInvalidData(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bad sum", `{"holdings": {"A": {"value": 1, "update_at": "2025-07-04", "kind": "fund", "composition": {"stock": 0.9, "update_at": "2025-06-20"}}}}`},
		{"missing composition date", `{"holdings": {"A": {"value": 1, "update_at": "2025-07-04", "kind": "fund", "composition": {"stock": 1}}}}`},
		{"unknown property", `{"holdings": {"A": {"price": 1}}}`},
		{"unknown section", `{"other": {}}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeStore(strings.NewReader(tc.input), "CNY", zerolog.Nop()); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

// The file encoding is stable: decoding and re-encoding reproduces the exact
// bytes, preserving key order and decimal literals like 7.20.
func TestEncodeStoreRoundTrips(t *testing.T) {
	s, err := DecodeStore(strings.NewReader(marketFixture), "CNY", zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	var first strings.Builder
	if err := EncodeStore(&first, s); err != nil {
		t.Fatal(err)
	}

	for _, literal := range []string{"4.5321", `"$305.10"`, "7.20", "0.95", "0.05"} {
		if !strings.Contains(first.String(), literal) {
			t.Errorf("encoded output lost literal %s", literal)
		}
	}
	if strings.Index(first.String(), "110011") > strings.Index(first.String(), "VTI") {
		t.Error("encoded output reordered the symbols")
	}
	if strings.Index(first.String(), "stock") > strings.Index(first.String(), `"cash"`) {
		t.Error("encoded output reordered the composition")
	}

	again, err := DecodeStore(strings.NewReader(first.String()), "CNY", zerolog.Nop())
	if err != nil {
		t.Fatalf("re-decoding encoded output: %v", err)
	}
	var second strings.Builder
	if err := EncodeStore(&second, again); err != nil {
		t.Fatal(err)
	}
	if first.String() != second.String() {
		t.Errorf("encoding is not stable:\nfirst:\n%s\nsecond:\n%s", first.String(), second.String())
	}
}
