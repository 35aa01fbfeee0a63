package rebalance

import (
	"github.com/jwen/rebalance/date"
)

// AllocationReport is a snapshot of where the portfolio value sits today,
// compared against the selected target configuration.
type AllocationReport struct {
	Currency      string
	Total         Money
	Configuration string
	TargetUpdated date.Date
	Rows          []AllocationRow
}

// AllocationRow is one asset class of the allocation report.
type AllocationRow struct {
	Asset   string
	Value   Money
	Current Percent
	// Target is the configured percentage, meaningful only when InTarget.
	Target   Percent
	InTarget bool
}

// Drift returns how far the class sits from its target, in percent points.
func (r AllocationRow) Drift() Percent {
	if !r.InTarget {
		return r.Current
	}
	return r.Current - r.Target
}

// NewAllocationReport computes the current alias-merged allocation and lines
// it up against the selected target configuration. Classes present only in
// the target appear with a zero value.
func NewAllocationReport(p *Portfolio) (*AllocationReport, error) {
	alloc, err := p.CurrentAllocation(true)
	if err != nil {
		return nil, err
	}
	target, err := p.Targets("")
	if err != nil {
		return nil, err
	}
	total := p.TotalValue()
	weights := target.Weights()

	r := &AllocationReport{
		Currency:      total.Currency(),
		Total:         total,
		Configuration: p.Selected(),
		TargetUpdated: target.Updated(),
	}
	for _, asset := range alloc.Assets() {
		value, _ := alloc.Value(asset)
		row := AllocationRow{Asset: asset, Value: value}
		if !total.IsZero() {
			row.Current = value.DivValue(total).Percent()
		}
		if pct, ok := weights.Weight(asset); ok {
			row.Target = Percent(pct.Decimal().InexactFloat64())
			row.InTarget = true
		}
		r.Rows = append(r.Rows, row)
	}
	for _, asset := range weights.Assets() {
		if _, ok := alloc.Value(asset); ok {
			continue
		}
		pct, _ := weights.Weight(asset)
		r.Rows = append(r.Rows, AllocationRow{
			Asset:    asset,
			Value:    M(0, total.Currency()),
			Target:   Percent(pct.Decimal().InexactFloat64()),
			InTarget: true,
		})
	}
	return r, nil
}

// AdjustmentsReport is the rebalancing plan: the moves needed to bring the
// portfolio to a target configuration, optionally paced over a horizon.
type AdjustmentsReport struct {
	Currency      string
	Total         Money
	Configuration string
	Duration      *Duration
	Adjustments   []Adjustment
}

// NewAdjustmentsReport runs the calculator against a named configuration. An
// empty name means the selected one.
func NewAdjustmentsReport(p *Portfolio, targetName string, dur *Duration) (*AdjustmentsReport, error) {
	adjustments, err := CalculateAdjustments(p, targetName, dur)
	if err != nil {
		return nil, err
	}
	if targetName == "" {
		targetName = p.Selected()
	}
	total := p.TotalValue()
	return &AdjustmentsReport{
		Currency:      total.Currency(),
		Total:         total,
		Configuration: targetName,
		Duration:      dur,
		Adjustments:   adjustments,
	}, nil
}
