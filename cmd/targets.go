package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	md "github.com/nao1215/markdown"
)

// targetsCmd holds the flags for the 'targets' subcommand.
type targetsCmd struct{}

func (*targetsCmd) Name() string     { return "targets" }
func (*targetsCmd) Synopsis() string { return "list the target configurations" }
func (*targetsCmd) Usage() string {
	return `rbl targets

  Lists every target configuration with its percentages. The selected one is
  marked with a star.
`
}

func (c *targetsCmd) SetFlags(f *flag.FlagSet) {}

func (c *targetsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	log := newLogger()
	p, err := OpenPortfolio(log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening portfolio: %v\n", err)
		return subcommands.ExitFailure
	}

	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Target Configurations")
	for _, name := range p.Configurations() {
		target, err := p.Targets(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading configuration %q: %v\n", name, err)
			return subcommands.ExitFailure
		}
		title := name
		if name == p.Selected() {
			title = name + " *"
		}
		doc.H2(title)
		doc.PlainText(fmt.Sprintf("Updated %s", target.Updated()))

		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
			Header:    []string{"Asset", "Target"},
		}
		weights := target.Weights()
		for _, asset := range weights.Assets() {
			pct, _ := weights.Weight(asset)
			table.Rows = append(table.Rows, []string{asset, pct.String() + "%"})
		}
		doc.Table(table)
	}

	printMarkdown(doc.String())
	return subcommands.ExitSuccess
}
