package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// targetSelectCmd holds the flags for the 'target-select' subcommand.
type targetSelectCmd struct {
	name string
}

func (*targetSelectCmd) Name() string     { return "target-select" }
func (*targetSelectCmd) Synopsis() string { return "make a target configuration the selected one" }
func (*targetSelectCmd) Usage() string {
	return `rbl target-select -name <name>

  Switches the selected target configuration, used by default by the
  allocation and adjustments commands.
`
}

func (c *targetSelectCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Configuration to select.")
}

func (c *targetSelectCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name == "" {
		fmt.Fprintln(os.Stderr, "Error: -name is required")
		return subcommands.ExitUsageError
	}

	log := newLogger()
	p, err := OpenPortfolio(log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening portfolio: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := p.SelectTarget(c.name); err != nil {
		fmt.Fprintf(os.Stderr, "Error selecting configuration: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Selected target configuration %q\n", c.name)
	return subcommands.ExitSuccess
}
