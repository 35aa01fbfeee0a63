package rebalance

import (
	"fmt"
	"net/http"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/jwen/rebalance/date"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Remote quotes come from the ls-tc.de JSON chart API. One instrumentId per
// tracked fund; the same endpoint serves currency pairs, which backs the
// exchange-rate source.

const lsChartURL = "https://www.ls-tc.de/_rpc/json/instrument/chart/dataForInstrument?instrumentId=%s&series=intraday&type=mini"

// jsonpathFirst evaluates a jsonpath and unwraps a single-element list, since
// jsonpath is never clear about whether it returns a list of one answer or a
// single answer.
func jsonpathFirst(path string, jobj any) (float64, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return 0, fmt.Errorf("error parsing %q: %w", path, err)
	}
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	val, ok := jval.(float64)
	if !ok {
		return 0, fmt.Errorf("error parsing %q: not a float: %v", path, jval)
	}
	return val, nil
}

// lsLatest returns the last intraday point (value and its timestamp) for an
// instrument.
func lsLatest(client *http.Client, id string) (float64, time.Time, error) {
	addr := fmt.Sprintf(lsChartURL, id)
	var jobj any
	if err := jwget(client, addr, &jobj); err != nil {
		return 0, time.Time{}, fmt.Errorf("error in wget instrument %q: %w", id, err)
	}
	val, err := jsonpathFirst("$.series.intraday.data[-1:][1]", jobj)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("instrument %q: %w", id, err)
	}
	millis, err := jsonpathFirst("$.series.intraday.data[-1:][0]", jobj)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("instrument %q: %w", id, err)
	}
	return val, time.UnixMilli(int64(millis)), nil
}

// LSInstrument fetches an instrument's latest published value.
type LSInstrument struct {
	id     string
	glyph  rune
	market date.Market
	client *http.Client
}

// NewLSInstrument builds a fetcher for one instrumentId. A non-zero glyph
// tags fetched values with that currency; zero means the portfolio's base
// currency.
func NewLSInstrument(id string, market date.Market, glyph rune, log zerolog.Logger) *LSInstrument {
	return &LSInstrument{id: id, glyph: glyph, market: market, client: daily(log)}
}

// Market names the trading calendar governing this instrument.
func (f *LSInstrument) Market() date.Market { return f.market }

// FetchLatest returns the most recent intraday value and its session date.
func (f *LSInstrument) FetchLatest(log zerolog.Logger) (Quote, error) {
	val, at, err := lsLatest(f.client, f.id)
	if err != nil {
		return Quote{}, err
	}
	literal := decimal.NewFromFloat(val).String()
	if f.glyph != 0 {
		literal = string(f.glyph) + literal
	}
	log.Debug().Str("instrument", f.id).Str("value", literal).Time("at", at).Msg("fetched quote")
	return Quote{Value: PriceString(literal), AsOf: date.FromTime(at)}, nil
}

// FetchCompositionUpdateTime reports no publication signal; composition
// freshness then falls back to the age policy alone.
func (f *LSInstrument) FetchCompositionUpdateTime(log zerolog.Logger) (date.Date, error) {
	return date.Date{}, nil
}

// LSFeeder is an LSInstrument whose composition references another tracked
// instrument through a synthetic ETF weight.
type LSFeeder struct {
	LSInstrument
	underlying string
}

// NewLSFeeder builds a feeder fetcher pointing at its underlying's symbol.
func NewLSFeeder(id string, market date.Market, glyph rune, underlying string, log zerolog.Logger) *LSFeeder {
	return &LSFeeder{LSInstrument: *NewLSInstrument(id, market, glyph, log), underlying: underlying}
}

// Underlying returns the symbol of the referenced instrument.
func (f *LSFeeder) Underlying() string { return f.underlying }

// LSCashFund is an LSInstrument whose breakdown is statically all cash, a
// money-market fund. It is never prompted for a composition.
type LSCashFund struct {
	LSInstrument
}

// NewLSCashFund builds a money-market fund fetcher.
func NewLSCashFund(id string, market date.Market, glyph rune, log zerolog.Logger) *LSCashFund {
	return &LSCashFund{LSInstrument: *NewLSInstrument(id, market, glyph, log)}
}

// FixedComposition returns the static all-cash breakdown.
func (f *LSCashFund) FixedComposition() *Composition {
	comp := NewComposition()
	comp.Set(AssetCash, Q(1))
	return comp
}

// LSRates resolves currency codes through currency-pair instruments on the
// same API.
type LSRates struct {
	ids    map[string]string
	client *http.Client
}

// NewLSRates builds a rate source from a currencyCode to instrumentId map.
func NewLSRates(ids map[string]string, log zerolog.Logger) *LSRates {
	return &LSRates{ids: ids, client: daily(log)}
}

// Rate returns the latest rate from the given currency into the base one.
func (r *LSRates) Rate(code string) (decimal.Decimal, error) {
	id, ok := r.ids[code]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: no rate instrument for %q", ErrUnsupportedCurrency, code)
	}
	val, _, err := lsLatest(r.client, id)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("rate %q: %w", code, err)
	}
	return decimal.NewFromFloat(val), nil
}
