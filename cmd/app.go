// Package cmd implements the CLI application to manage a fund portfolio and
// its rebalancing plan.
package cmd

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	"github.com/jwen/rebalance"
	"github.com/jwen/rebalance/date"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to
// use global variables.

var portfolioFile = flag.String("portfolio-file", "portfolio.json", "Path to the portfolio file")
var marketFile = flag.String("market-file", "market_data.json", "Path to the market data file")
var baseCurrency = flag.String("currency", "CNY", "Portfolio base currency code")

// Commands is the list a main package registers on its commander.
var Commands = []subcommands.Command{
	&allocationCmd{},
	&adjustmentsCmd{},
	&sharesCmd{},
	&targetsCmd{},
	&targetNewCmd{},
	&targetSelectCmd{},
	&targetEditCmd{},
	&topicCmd{},
}

// newLogger builds the application logger, writing human-readable lines to
// stderr. RBL_DEBUG turns on debug level.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if os.Getenv("RBL_DEBUG") != "" {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

// OpenMarket is the central function to open the market-data store, wired
// with the fetchers, rate source and composition prompt.
func OpenMarket(log zerolog.Logger) (*rebalance.Store, error) {
	s, err := rebalance.OpenStore(*marketFile, *baseCurrency, log)
	if err != nil {
		return nil, err
	}
	registry, err := registryFromEnv(log)
	if err != nil {
		return nil, err
	}
	s.SetRegistry(registry)
	s.SetRateSource(ratesFromEnv(log))
	s.SetPrompt(stdinPrompt)
	return s, nil
}

// OpenPortfolio opens the portfolio file, priced against the market store.
func OpenPortfolio(log zerolog.Logger) (*rebalance.Portfolio, error) {
	market, err := OpenMarket(log)
	if err != nil {
		return nil, err
	}
	return rebalance.OpenPortfolio(*portfolioFile, market, log)
}

// registryFromEnv parses the RBL_INSTRUMENTS variable into a fetcher
// registry. The format is a comma-separated list of bindings:
//
//	symbol=[glyph]instrumentId@market
//	symbol=[glyph]instrumentId@market>underlying   a feeder fund
//	symbol=[glyph]instrumentId@market*             a money-market fund
//
// e.g. "110011=101360@CN,VTI=$349938@US,F787=55210@CN>VTI".
func registryFromEnv(log zerolog.Logger) (*rebalance.Registry, error) {
	registry := rebalance.NewRegistry()
	env := os.Getenv("RBL_INSTRUMENTS")
	if env == "" {
		return registry, nil
	}
	for _, binding := range strings.Split(env, ",") {
		binding = strings.TrimSpace(binding)
		if binding == "" {
			continue
		}
		symbol, rest, found := strings.Cut(binding, "=")
		if !found {
			return nil, fmt.Errorf("invalid instrument binding %q, want symbol=id@market", binding)
		}
		id, location, found := strings.Cut(rest, "@")
		if !found {
			return nil, fmt.Errorf("invalid instrument binding %q, want symbol=id@market", binding)
		}

		var glyph rune
		if r, size := utf8.DecodeRuneInString(id); r < '0' || r > '9' {
			glyph = r
			id = id[size:]
		}

		cash := strings.HasSuffix(location, "*")
		location = strings.TrimSuffix(location, "*")
		name, underlying, feeder := strings.Cut(location, ">")

		var market date.Market
		switch name {
		case "CN":
			market = date.CN
		case "US":
			market = date.US
		default:
			return nil, fmt.Errorf("invalid market %q in binding for %q", name, symbol)
		}

		switch {
		case feeder:
			registry.Register(symbol, rebalance.NewLSFeeder(id, market, glyph, underlying, log))
		case cash:
			registry.Register(symbol, rebalance.NewLSCashFund(id, market, glyph, log))
		default:
			registry.Register(symbol, rebalance.NewLSInstrument(id, market, glyph, log))
		}
	}
	return registry, nil
}

// ratesFromEnv parses the RBL_RATES variable, a comma-separated
// "currencyCode=instrumentId" list, into the exchange-rate source.
func ratesFromEnv(log zerolog.Logger) *rebalance.LSRates {
	ids := make(map[string]string)
	for _, binding := range strings.Split(os.Getenv("RBL_RATES"), ",") {
		code, id, found := strings.Cut(strings.TrimSpace(binding), "=")
		if found {
			ids[code] = id
		}
	}
	return rebalance.NewLSRates(ids, log)
}

// stdinPrompt asks the user for a new composition breakdown on the terminal.
func stdinPrompt(symbol, reason string) (string, error) {
	fmt.Fprintf(os.Stderr, "Composition of %s needs a refresh (%s).\n", symbol, reason)
	fmt.Fprintf(os.Stderr, "Enter asset:fraction;asset:fraction (empty keeps the current one): ")
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading composition for %s: %w", symbol, err)
	}
	return strings.TrimSpace(answer), nil
}

// printMarkdown renders markdown for the terminal.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
