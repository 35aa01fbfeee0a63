package rebalance

import (
	"errors"
	"fmt"
)

// Adjustment verbs. Cash is accumulated or spent, everything else is traded.
const (
	ActionBuy      = "Buy"
	ActionSell     = "Sell"
	ActionSave     = "Save"
	ActionSpend    = "Spend"
	ActionNoChange = "No Change"
)

// weeksPerMonth is the average number of weeks in a month, 365/7/12.
var weeksPerMonth = Q(365).Div(Q(7)).Div(Q(12))

// Duration is a rebalancing horizon: spread the adjustments over so many
// days, or so many months paced week by week.
type Duration struct {
	Value Quantity
	Unit  string
}

// Duration units.
const (
	UnitDay   = "day"
	UnitMonth = "month"
)

func (d Duration) validate() error {
	if d.Unit != UnitDay && d.Unit != UnitMonth {
		return fmt.Errorf("invalid duration unit %q, want %q or %q", d.Unit, UnitDay, UnitMonth)
	}
	if !d.Value.IsPositive() {
		return fmt.Errorf("invalid duration value %s, want a positive number", d.Value)
	}
	return nil
}

// ParseDuration parses "10day" or "3 month" style horizons.
func ParseDuration(value, unit string) (Duration, error) {
	q, err := ParseQuantity(value)
	if err != nil {
		return Duration{}, fmt.Errorf("invalid duration value %q: %w", value, err)
	}
	d := Duration{Value: q, Unit: unit}
	if err := d.validate(); err != nil {
		return Duration{}, err
	}
	return d, nil
}

// Adjustment is the move needed on one asset class to reach the target.
type Adjustment struct {
	Asset  string
	Action string
	// Amount is the signed value to move, in the base currency.
	Amount Money
	// End is the fraction of total value the class holds once the
	// adjustment is fully applied, in [0,1].
	End Quantity
	// PerPeriod is the paced amount per granularity period. Zero value
	// when no duration was requested.
	PerPeriod Money
	// Granularity names the pacing period, "day" or "week".
	Granularity string
}

// CalculateAdjustments diffs the portfolio's current allocation against a
// named target configuration and returns one adjustment per asset class
// appearing in either. An empty name means the selected configuration. With a
// duration, each adjustment also carries a paced per-period amount: daily for
// day horizons, weekly for month horizons.
func CalculateAdjustments(p *Portfolio, targetName string, dur *Duration) ([]Adjustment, error) {
	if p == nil {
		return nil, errors.New("no portfolio")
	}
	if dur != nil {
		if err := dur.validate(); err != nil {
			return nil, err
		}
	}
	target, err := p.Targets(targetName)
	if err != nil {
		return nil, err
	}
	alloc, err := p.CurrentAllocation(true)
	if err != nil {
		return nil, err
	}
	total := p.TotalValue()
	weights := target.Weights()

	// Target order first, then allocation-only classes.
	assets := weights.Assets()
	seen := make(map[string]bool, len(assets))
	for _, a := range assets {
		seen[a] = true
	}
	for _, a := range alloc.Assets() {
		if !seen[a] {
			assets = append(assets, a)
		}
	}

	adjustments := make([]Adjustment, 0, len(assets))
	for _, asset := range assets {
		var fraction Quantity
		if pct, ok := weights.Weight(asset); ok {
			fraction = pct.Div(Q(100))
		}
		current, _ := alloc.Value(asset)
		want := total.Mul(fraction)
		delta := want.Sub(current)

		adj := Adjustment{
			Asset:  asset,
			Action: action(asset, delta),
			Amount: delta,
			End:    fraction,
		}
		if dur != nil {
			switch dur.Unit {
			case UnitDay:
				adj.PerPeriod = delta.Div(dur.Value)
				adj.Granularity = "day"
			case UnitMonth:
				adj.PerPeriod = delta.Div(dur.Value).Div(weeksPerMonth)
				adj.Granularity = "week"
			}
		}
		adjustments = append(adjustments, adj)
	}
	return adjustments, nil
}

func action(asset string, delta Money) string {
	switch {
	case delta.IsZero():
		return ActionNoChange
	case asset == AssetCash && delta.IsPositive():
		return ActionSave
	case asset == AssetCash:
		return ActionSpend
	case delta.IsPositive():
		return ActionBuy
	default:
		return ActionSell
	}
}
