package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// targetNewCmd holds the flags for the 'target-new' subcommand.
type targetNewCmd struct {
	name string
	from string
}

func (*targetNewCmd) Name() string     { return "target-new" }
func (*targetNewCmd) Synopsis() string { return "create a target configuration from an existing one" }
func (*targetNewCmd) Usage() string {
	return `rbl target-new -name <name> [-from <name>]

  Creates a new target configuration by copying an existing one. The source
  defaults to the selected configuration.
`
}

func (c *targetNewCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Name of the new configuration.")
	f.StringVar(&c.from, "from", "", "Configuration to copy. Defaults to the selected one.")
}

func (c *targetNewCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	if err := p.CreateTarget(c.name, c.from); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating configuration: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Created target configuration %q\n", c.name)
	return subcommands.ExitSuccess
}
