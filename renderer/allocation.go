// Package renderer turns engine reports into markdown strings ready for
// terminal display.
package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"

	"github.com/jwen/rebalance"
)

// AllocationMarkdown renders the current-allocation report.
func AllocationMarkdown(r *rebalance.AllocationReport) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Current Allocation")
	doc.PlainText(fmt.Sprintf("Target configuration: %s (updated %s)", md.Bold(r.Configuration), r.TargetUpdated))

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Asset", "Value", "Current", "Target", "Drift"},
	}
	for _, row := range r.Rows {
		target := "-"
		if row.InTarget {
			target = row.Target.String()
		}
		table.Rows = append(table.Rows, []string{
			row.Asset,
			row.Value.String(),
			row.Current.String(),
			target,
			row.Drift().SignedString(),
		})
	}
	table.Rows = append(table.Rows, []string{
		md.Bold("Total"),
		md.Bold(r.Total.String()),
		"", "", "",
	})
	doc.Table(table)

	return doc.String()
}

// AdjustmentsMarkdown renders the rebalancing plan.
func AdjustmentsMarkdown(r *rebalance.AdjustmentsReport) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Rebalancing Plan")
	doc.PlainText(fmt.Sprintf("Target configuration: %s, portfolio value %s", md.Bold(r.Configuration), r.Total))
	if r.Duration != nil {
		doc.PlainText(fmt.Sprintf("Horizon: %s %s(s)", r.Duration.Value, r.Duration.Unit))
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Asset", "Action", "Amount", "End"},
	}
	paced := r.Duration != nil
	if paced {
		table.Header = append(table.Header, "Pace")
		table.Alignment = append(table.Alignment, md.AlignRight)
	}
	for _, adj := range r.Adjustments {
		row := []string{
			adj.Asset,
			adj.Action,
			adj.Amount.Abs().String(),
			adj.End.Percent().String(),
		}
		if paced {
			row = append(row, fmt.Sprintf("%s / %s", adj.PerPeriod.Abs(), adj.Granularity))
		}
		table.Rows = append(table.Rows, row)
	}
	doc.Table(table)

	return doc.String()
}
