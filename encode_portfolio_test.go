package rebalance

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

const portfolioFixture = `{
	"holdings": [
		{
			"symbol": "110011",
			"share": 1234.56
		},
		{
			"symbol": "VTI",
			"share": 10
		}
	],
	"target_percentages": {
		"default": {
			"stock": 70,
			"bond": 20,
			"cash": 10,
			"update_at": "2025-03-01"
		},
		"aggressive": {
			"stock": 90,
			"cash": 10,
			"update_at": "2025-04-01"
		}
	},
	"selected_target_percentage": "default",
	"merge": {
		"gold": "commodities"
	},
	"monthly_salary": 20000,
	"yearly_spending": 100000,
	"target_cash": 50000
}`

func newFixtureMarket(t *testing.T) *Store {
	t.Helper()
	s := newTestStore(t)
	s.Put("110011", "4.5321", session, KindFund, comp("stock", 1.0), session)
	s.Put("VTI", "2", session, KindFund, comp("stock", 1.0), session)
	return s
}

func TestDecodePortfolio(t *testing.T) {
	p, err := DecodePortfolio(strings.NewReader(portfolioFixture), newFixtureMarket(t), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	if got := len(p.Holdings()); got != 2 {
		t.Fatalf("holdings = %d, want 2", got)
	}
	h := p.Holding("110011")
	if h == nil || !h.Share().Equal(Q(1234.56)) {
		t.Errorf("110011 share = %v, want 1234.56", h)
	}
	if want := M(4.5321, "CNY").Mul(Q(1234.56)); !h.Value().Equal(want) {
		t.Errorf("110011 value = %s, want %s", h.Value(), want)
	}

	if got, want := strings.Join(p.Configurations(), ","), "default,aggressive"; got != want {
		t.Errorf("configurations = %s, want %s", got, want)
	}
	if p.Selected() != "default" {
		t.Errorf("selected = %q, want default", p.Selected())
	}

	params := p.Parameters()
	if !params.MonthlySalary.Equal(Q(20000)) || !params.YearlySpending.Equal(Q(100000)) || !params.TargetCash.Equal(Q(50000)) {
		t.Errorf("parameters = %+v", params)
	}
}

func TestDecodePortfolioRejectsInvalidData(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown section", `{"positions": []}`},
		{"holding without symbol", `{"holdings": [{"share": 10}]}`},
		{"unknown selected", `{"target_percentages": {"default": {"stock": 100, "update_at": "2025-03-01"}}, "selected_target_percentage": "missing"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodePortfolio(strings.NewReader(tc.input), newFixtureMarket(t), zerolog.Nop()); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestEncodePortfolioRoundTrips(t *testing.T) {
	p, err := DecodePortfolio(strings.NewReader(portfolioFixture), newFixtureMarket(t), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	var first strings.Builder
	if err := EncodePortfolio(&first, p); err != nil {
		t.Fatal(err)
	}

	for _, literal := range []string{"1234.56", `"selected_target_percentage":`, `"gold":`, "20000", "100000", "50000"} {
		if !strings.Contains(first.String(), literal) {
			t.Errorf("encoded output lost %s", literal)
		}
	}
	if strings.Index(first.String(), `"default"`) > strings.Index(first.String(), `"aggressive"`) {
		t.Error("encoded output reordered the configurations")
	}

	again, err := DecodePortfolio(strings.NewReader(first.String()), newFixtureMarket(t), zerolog.Nop())
	if err != nil {
		t.Fatalf("re-decoding encoded output: %v", err)
	}
	var second strings.Builder
	if err := EncodePortfolio(&second, again); err != nil {
		t.Fatal(err)
	}
	if first.String() != second.String() {
		t.Errorf("encoding is not stable:\nfirst:\n%s\nsecond:\n%s", first.String(), second.String())
	}
}
