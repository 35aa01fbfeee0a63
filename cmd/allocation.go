package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/jwen/rebalance"
	"github.com/jwen/rebalance/renderer"
)

// allocationCmd holds the flags for the 'allocation' subcommand.
type allocationCmd struct{}

func (*allocationCmd) Name() string     { return "allocation" }
func (*allocationCmd) Synopsis() string { return "display the current asset-class allocation" }
func (*allocationCmd) Usage() string {
	return `rbl allocation

  Displays the portfolio value broken down by asset class, with the drift
  from the selected target configuration.
`
}

func (c *allocationCmd) SetFlags(f *flag.FlagSet) {}

func (c *allocationCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	log := newLogger()
	p, err := OpenPortfolio(log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening portfolio: %v\n", err)
		return subcommands.ExitFailure
	}

	report, err := rebalance.NewAllocationReport(p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing allocation: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.AllocationMarkdown(report))
	return subcommands.ExitSuccess
}
