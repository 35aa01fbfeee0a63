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

// adjustmentsCmd holds the flags for the 'adjustments' subcommand.
type adjustmentsCmd struct {
	target   string
	duration string
	unit     string
}

func (*adjustmentsCmd) Name() string     { return "adjustments" }
func (*adjustmentsCmd) Synopsis() string { return "compute the moves needed to reach the target" }
func (*adjustmentsCmd) Usage() string {
	return `rbl adjustments [-target <name>] [-duration <n> -unit day|month]

  Compares the current allocation with a target configuration and displays
  the amount to buy or sell per asset class. With a duration, the amounts
  are also paced per day (day horizons) or per week (month horizons).
`
}

func (c *adjustmentsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.target, "target", "", "Target configuration to reach. Defaults to the selected one.")
	f.StringVar(&c.duration, "duration", "", "Horizon length to spread the adjustments over.")
	f.StringVar(&c.unit, "unit", "day", "Horizon unit, day or month.")
}

func (c *adjustmentsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var dur *rebalance.Duration
	if c.duration != "" {
		d, err := rebalance.ParseDuration(c.duration, c.unit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		dur = &d
	}

	log := newLogger()
	p, err := OpenPortfolio(log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening portfolio: %v\n", err)
		return subcommands.ExitFailure
	}

	report, err := rebalance.NewAdjustmentsReport(p, c.target, dur)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing adjustments: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.AdjustmentsMarkdown(report))
	return subcommands.ExitSuccess
}
