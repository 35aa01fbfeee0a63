package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/jwen/rebalance/cmd"
)

// completion describes the command tree for shell completion. Complete
// returns immediately when not running as a completion hook.
func completion() {
	sub := make(map[string]*complete.Command, len(cmd.Commands))
	for _, c := range cmd.Commands {
		sub[c.Name()] = &complete.Command{}
	}
	root := &complete.Command{
		Sub: sub,
		Flags: map[string]complete.Predictor{
			"portfolio-file": predict.Files("*.json"),
			"market-file":    predict.Files("*.json"),
			"currency":       predict.Set{"CNY", "USD", "EUR"},
		},
	}
	root.Complete("rbl")
}

func main() {
	// instrument bindings and rate sources may live in a local .env file.
	godotenv.Load()
	completion()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
