package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/jwen/rebalance"
)

// targetEditCmd holds the flags for the 'target-edit' subcommand.
type targetEditCmd struct {
	name    string
	weights string
}

func (*targetEditCmd) Name() string     { return "target-edit" }
func (*targetEditCmd) Synopsis() string { return "replace the percentages of a target configuration" }
func (*targetEditCmd) Usage() string {
	return `rbl target-edit [-name <name>] -weights "asset:pct;asset:pct"

  Replaces the percentages of a configuration. Zero weights are dropped and
  the rest must sum to exactly 100. The name defaults to the selected
  configuration.

Usage Examples:
$ rbl target-edit -weights "stock:70;bond:20;cash:10"
`
}

func (c *targetEditCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Configuration to edit. Defaults to the selected one.")
	f.StringVar(&c.weights, "weights", "", "New percentages, as asset:pct;asset:pct.")
}

func (c *targetEditCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.weights == "" {
		fmt.Fprintln(os.Stderr, "Error: -weights is required")
		return subcommands.ExitUsageError
	}

	weights := rebalance.NewComposition()
	input := strings.ReplaceAll(c.weights, "=", ":")
	for _, pair := range strings.Split(input, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		asset, pct, found := strings.Cut(pair, ":")
		if !found {
			fmt.Fprintf(os.Stderr, "Error: invalid weight %q, want asset:pct\n", pair)
			return subcommands.ExitUsageError
		}
		w, err := rebalance.ParseQuantity(strings.TrimSpace(pct))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid percentage for %q: %v\n", asset, err)
			return subcommands.ExitUsageError
		}
		weights.Add(strings.TrimSpace(asset), w)
	}

	log := newLogger()
	p, err := OpenPortfolio(log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening portfolio: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := p.UpdateTargets(c.name, weights); err != nil {
		fmt.Fprintf(os.Stderr, "Error updating configuration: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Println("Target percentages updated")
	return subcommands.ExitSuccess
}
