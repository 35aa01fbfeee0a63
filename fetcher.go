package rebalance

import (
	"encoding/json"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/jwen/rebalance/date"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PriceString is a decimal literal, optionally prefixed by a single currency
// glyph ("$7.5", "¥123.40"). Untagged values are in the portfolio's base
// currency.
type PriceString string

// Split breaks the price into its currency glyph (0 when untagged) and its
// decimal amount.
func (p PriceString) Split() (glyph rune, amount decimal.Decimal, err error) {
	s := string(p)
	if s == "" {
		return 0, decimal.Decimal{}, fmt.Errorf("empty price")
	}
	r, size := utf8.DecodeRuneInString(s)
	if !unicode.IsDigit(r) && r != '-' && r != '.' {
		glyph = r
		s = s[size:]
	}
	amount, err = decimal.NewFromString(s)
	if err != nil {
		return 0, decimal.Decimal{}, fmt.Errorf("invalid price literal %q: %w", p, err)
	}
	return glyph, amount, nil
}

// MarshalJSON writes untagged prices as bare JSON numbers, preserving the
// decimal literal, and tagged prices as strings.
func (p PriceString) MarshalJSON() ([]byte, error) {
	glyph, _, err := p.Split()
	if err != nil {
		return nil, err
	}
	if glyph == 0 {
		return []byte(p), nil
	}
	return json.Marshal(string(p))
}

// Quote is a fetched price with the session it belongs to.
type Quote struct {
	Value PriceString
	AsOf  date.Date
}

// Fetcher produces the latest value and a composition freshness signal for a
// single instrument. Implementations live at the tool's boundary; the engine
// only consumes the returned values.
type Fetcher interface {
	// Market names the trading calendar that decides when a new value is due.
	Market() date.Market
	// FetchLatest returns the instrument's most recent published value.
	FetchLatest(log zerolog.Logger) (Quote, error)
	// FetchCompositionUpdateTime returns the publication date of the
	// instrument's current composition breakdown.
	FetchCompositionUpdateTime(log zerolog.Logger) (date.Date, error)
}

// FixedComposition is implemented by fetchers for instruments whose breakdown
// is static (e.g. a money-market fund is all cash) and never prompted for.
type FixedComposition interface {
	FixedComposition() *Composition
}

// Feeder is implemented by fetchers for feeder instruments, whose composition
// references another tracked instrument through a synthetic ETF weight.
type Feeder interface {
	Underlying() string
}

// RateSource resolves a currency code to its rate into the base currency.
type RateSource interface {
	Rate(code string) (decimal.Decimal, error)
}

// CompositionPrompt asks for a new composition breakdown as an
// "asset:fraction;asset:fraction" string. An empty answer means "no change".
type CompositionPrompt func(symbol, reason string) (string, error)

// Registry is an explicit symbol-to-fetcher map, built by whatever wiring the
// binary does at startup.
type Registry struct {
	fetchers map[string]Fetcher
}

// NewRegistry returns an empty fetcher registry.
func NewRegistry() *Registry {
	return &Registry{fetchers: make(map[string]Fetcher)}
}

// Register binds a fetcher to a symbol, replacing any previous binding.
func (r *Registry) Register(symbol string, f Fetcher) {
	r.fetchers[symbol] = f
}

// Lookup returns the fetcher registered for the symbol, if any.
func (r *Registry) Lookup(symbol string) (Fetcher, bool) {
	if r == nil {
		return nil, false
	}
	f, ok := r.fetchers[symbol]
	return f, ok
}
