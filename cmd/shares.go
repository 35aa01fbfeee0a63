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

// sharesCmd holds the flags for the 'shares' subcommand.
type sharesCmd struct{}

func (*sharesCmd) Name() string     { return "shares" }
func (*sharesCmd) Synopsis() string { return "update the share counts of existing holdings" }
func (*sharesCmd) Usage() string {
	return `rbl shares <symbol>=<count> [<symbol>=<count> ...]

  Sets the share count of the listed holdings. The whole batch is applied
  atomically: an unknown symbol or a negative count rejects every change.

Usage Examples:
$ rbl shares 110011=1234.56 161005=0
`
}

func (c *sharesCmd) SetFlags(f *flag.FlagSet) {}

func (c *sharesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: no share changes given")
		return subcommands.ExitUsageError
	}
	changes := make(map[string]rebalance.Quantity, f.NArg())
	for _, arg := range f.Args() {
		symbol, count, found := strings.Cut(arg, "=")
		if !found {
			fmt.Fprintf(os.Stderr, "Error: invalid change %q, want symbol=count\n", arg)
			return subcommands.ExitUsageError
		}
		share, err := rebalance.ParseQuantity(count)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid count for %q: %v\n", symbol, err)
			return subcommands.ExitUsageError
		}
		changes[symbol] = share
	}

	log := newLogger()
	p, err := OpenPortfolio(log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening portfolio: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := p.UpdateShares(changes); err != nil {
		fmt.Fprintf(os.Stderr, "Error updating shares: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Updated %d holding(s) in %s\n", len(changes), *portfolioFile)
	return subcommands.ExitSuccess
}
