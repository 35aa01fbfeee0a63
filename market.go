package rebalance

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jwen/rebalance/date"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Well-known asset classes.
const (
	AssetCash    = "cash"
	AssetUnknown = "unknown"

	// assetETF is the synthetic weight a feeder instrument assigns to its
	// underlying, substituted away on look-through.
	assetETF = "ETF"
)

// Kind classifies an instrument entry.
type Kind string

const (
	KindFund   Kind = "fund"
	KindFeeder Kind = "feeder"
)

var (
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrUnknownSymbol       = errors.New("unknown symbol")
)

const (
	// rateStaleness is how long an exchange rate is trusted after its last
	// update before the rate source is asked again.
	rateStaleness = date.Day + 9*time.Hour

	// compositionMaxAgeDays forces a composition re-check even when the
	// remote publication date has not moved.
	compositionMaxAgeDays = 30

	// defaultSettle spaces out remote refreshes when looping over many
	// symbols.
	defaultSettle = time.Second
)

// entry is the cached market data for one instrument.
type entry struct {
	price             PriceString
	priceUpdate       date.Date
	kind              Kind
	composition       *Composition
	compositionUpdate date.Date
}

// rateEntry is one cached exchange rate, identified by the one-glyph currency
// symbol used to tag price strings.
type rateEntry struct {
	glyph  rune
	rate   decimal.Decimal
	update date.Date
}

// Store is the in-memory owner of all per-instrument market data and the
// exchange-rate cache, loaded from a single file and rewritten wholesale on
// every mutation.
type Store struct {
	path      string
	base      string // portfolio base currency code
	entries   map[string]*entry
	order     []string
	rates     map[string]*rateEntry
	rateOrder []string

	registry   *Registry
	rateSource RateSource
	prompt     CompositionPrompt

	// symbols whose remote data was reported not yet published; they are
	// not retried again within this process run.
	delayed map[string]struct{}

	backups *backupSet
	settle  time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

// NewStore returns an empty in-memory store, not bound to a file.
func NewStore(base string, log zerolog.Logger) *Store {
	return &Store{
		base:    base,
		entries: make(map[string]*entry),
		rates:   make(map[string]*rateEntry),
		delayed: make(map[string]struct{}),
		backups: newBackupSet(),
		settle:  defaultSettle,
		now:     time.Now,
		log:     log.With().Str("component", "market").Logger(),
	}
}

// SetRegistry installs the symbol-to-fetcher map used for implicit refresh.
func (s *Store) SetRegistry(r *Registry) { s.registry = r }

// SetRateSource installs the exchange-rate source used to refresh stale rates.
func (s *Store) SetRateSource(src RateSource) { s.rateSource = src }

// SetPrompt installs the composition input callback. A nil prompt is treated
// as an always-empty answer.
func (s *Store) SetPrompt(p CompositionPrompt) { s.prompt = p }

// SetSettle overrides the delay inserted after each successful remote refresh.
func (s *Store) SetSettle(d time.Duration) { s.settle = d }

// SetClock overrides the wall clock, for tests.
func (s *Store) SetClock(now func() time.Time) { s.now = now }

// Put inserts or replaces the entry for a symbol.
func (s *Store) Put(symbol string, price PriceString, on date.Date, kind Kind, comp *Composition, compOn date.Date) {
	e, ok := s.entries[symbol]
	if !ok {
		e = &entry{}
		s.entries[symbol] = e
		s.order = append(s.order, symbol)
	}
	e.price, e.priceUpdate = price, on
	e.kind = kind
	e.composition, e.compositionUpdate = comp, compOn
}

// PutRate inserts or replaces the exchange-rate cache entry for a currency.
func (s *Store) PutRate(code string, glyph rune, rate decimal.Decimal, on date.Date) {
	re, ok := s.rates[code]
	if !ok {
		re = &rateEntry{}
		s.rates[code] = re
		s.rateOrder = append(s.rateOrder, code)
	}
	re.glyph, re.rate, re.update = glyph, rate, on
}

// Symbols returns all known symbols in file order.
func (s *Store) Symbols() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Has reports whether the symbol is already known to the store.
func (s *Store) Has(symbol string) bool {
	_, ok := s.entries[symbol]
	return ok
}

// BaseCurrency returns the currency all prices are resolved into.
func (s *Store) BaseCurrency() string { return s.base }

// ensure returns the entry for symbol, initializing an unknown placeholder on
// first access.
func (s *Store) ensure(symbol string) *entry {
	if e, ok := s.entries[symbol]; ok {
		return e
	}
	comp := NewComposition()
	comp.Set(AssetUnknown, Q(1))
	e := &entry{
		price:             "0",
		priceUpdate:       date.New(1, time.January, 1),
		kind:              KindFund,
		composition:       comp,
		compositionUpdate: date.New(1, time.January, 1),
	}
	s.entries[symbol] = e
	s.order = append(s.order, symbol)
	return e
}

// Price returns the instrument's latest price converted into the base
// currency, refreshing stale data first.
func (s *Store) Price(symbol string) (Money, error) {
	e := s.ensure(symbol)
	if err := s.refresh(symbol, e); err != nil {
		return Money{}, err
	}
	glyph, amount, err := e.price.Split()
	if err != nil {
		return Money{}, fmt.Errorf("symbol %q: %w", symbol, err)
	}
	if glyph == 0 {
		return M(amount, s.base), nil
	}
	rate, err := s.rateFor(glyph)
	if err != nil {
		return Money{}, fmt.Errorf("symbol %q: %w", symbol, err)
	}
	return M(amount.Mul(rate), s.base), nil
}

// Composition returns the instrument's asset-class breakdown with feeder
// look-through applied, refreshing stale data first.
func (s *Store) Composition(symbol string) (*Composition, error) {
	if err := s.refresh(symbol, s.ensure(symbol)); err != nil {
		return nil, err
	}
	return s.composition(symbol, 0)
}

// composition resolves look-through without triggering a refresh; depth bounds
// feeder chains so a cyclic configuration fails instead of recursing forever.
func (s *Store) composition(symbol string, depth int) (*Composition, error) {
	const maxDepth = 8
	if depth > maxDepth {
		return nil, fmt.Errorf("feeder chain too deep resolving %q, configuration cycle suspected", symbol)
	}
	e := s.ensure(symbol)
	comp := e.composition.Clone()
	if e.kind != KindFeeder {
		return comp, nil
	}
	weight, ok := comp.Weight(assetETF)
	if !ok {
		return comp, nil
	}
	f, registered := s.registry.Lookup(symbol)
	feeder, isFeeder := f.(Feeder)
	if !registered || !isFeeder {
		return nil, fmt.Errorf("feeder %q has no registered fetcher naming its underlying instrument", symbol)
	}
	underlying, err := s.composition(feeder.Underlying(), depth+1)
	if err != nil {
		return nil, err
	}
	comp.Delete(assetETF)
	for _, asset := range underlying.Assets() {
		w, _ := underlying.Weight(asset)
		comp.Add(asset, weight.Mul(w))
	}
	return comp, nil
}

// refresh fetches a new price (and possibly composition) for the symbol when
// the cached one predates the latest completed session of its market.
// Remote data published late is recorded in the delayed set and the cached
// value keeps being served for the rest of the run.
func (s *Store) refresh(symbol string, e *entry) error {
	f, ok := s.registry.Lookup(symbol)
	if !ok {
		return nil
	}
	if _, skip := s.delayed[symbol]; skip {
		return nil
	}
	target, err := date.LatestSession(s.now(), f.Market())
	if err != nil {
		return err
	}
	if !e.priceUpdate.Before(target) {
		return nil
	}

	s.log.Info().Str("symbol", symbol).Msg("fetching new data")
	quote, err := f.FetchLatest(s.log)
	if err != nil {
		s.log.Error().Str("symbol", symbol).Err(err).Msg("fetch failed")
		return fmt.Errorf("failed to fetch data for %q: %w", symbol, err)
	}
	if quote.AsOf.Before(target) {
		s.log.Warn().Str("symbol", symbol).Str("as_of", quote.AsOf.String()).
			Msg("remote data not yet published, keeping cached value for this run")
		s.delayed[symbol] = struct{}{}
		return nil
	}
	if _, _, err := quote.Value.Split(); err != nil {
		return fmt.Errorf("fetcher for %q returned an unusable price: %w", symbol, err)
	}
	e.price, e.priceUpdate = quote.Value, quote.AsOf

	if fixed, ok := f.(FixedComposition); ok {
		e.composition = fixed.FixedComposition().Clone()
		e.compositionUpdate = date.FromTime(s.now())
	} else if err := s.refreshComposition(symbol, e, f); err != nil {
		return err
	}

	if err := s.Check(); err != nil {
		return err
	}
	if err := s.Save(); err != nil {
		return err
	}
	time.Sleep(s.settle)
	return nil
}

// refreshComposition re-checks the composition breakdown when the remote
// publication date moved past the cached one, or the cached breakdown is
// older than compositionMaxAgeDays.
func (s *Store) refreshComposition(symbol string, e *entry, f Fetcher) error {
	published, err := f.FetchCompositionUpdateTime(s.log)
	if err != nil {
		return fmt.Errorf("failed to fetch composition update time for %q: %w", symbol, err)
	}
	today := date.FromTime(s.now())
	aged := e.compositionUpdate.Add(compositionMaxAgeDays).Before(today)
	if !published.After(e.compositionUpdate) && !aged {
		return nil
	}

	reason := fmt.Sprintf("composition published on %s, cached from %s", published, e.compositionUpdate)
	answer := ""
	if s.prompt != nil {
		answer, err = s.prompt(symbol, reason)
		if err != nil {
			return fmt.Errorf("composition input for %q: %w", symbol, err)
		}
	}
	if strings.TrimSpace(answer) != "" {
		comp, err := ParseComposition(answer)
		if err != nil {
			return fmt.Errorf("composition input for %q: %w", symbol, err)
		}
		e.composition = comp
	}
	// An empty answer keeps the previous fractions; stamping the date either
	// way stops the same question from coming back every session.
	e.compositionUpdate = today
	return nil
}

// rateFor resolves a currency glyph through the rate cache, refreshing the
// entry first when it is older than the staleness window.
func (s *Store) rateFor(glyph rune) (decimal.Decimal, error) {
	for _, code := range s.rateOrder {
		re := s.rates[code]
		if re.glyph != glyph {
			continue
		}
		if s.rateSource != nil && s.now().After(re.update.Time().Add(rateStaleness)) {
			rate, err := s.rateSource.Rate(code)
			if err != nil {
				return decimal.Decimal{}, fmt.Errorf("refreshing %s rate: %w", code, err)
			}
			s.log.Info().Str("currency", code).Str("rate", rate.String()).Msg("exchange rate refreshed")
			re.rate, re.update = rate, date.FromTime(s.now())
			if err := s.Save(); err != nil {
				return decimal.Decimal{}, err
			}
		}
		return re.rate, nil
	}
	return decimal.Decimal{}, fmt.Errorf("%w: no configured currency uses symbol %q", ErrUnsupportedCurrency, string(glyph))
}

// Check validates every entry: price and dates present, composition present
// with its own update date, fractions summing to exactly 1. The store refuses
// to operate in an invalid state, so any violation is an error the callers
// treat as fatal.
func (s *Store) Check() error {
	for _, symbol := range s.order {
		e := s.entries[symbol]
		if e.price == "" {
			return fmt.Errorf("missing price for symbol %q", symbol)
		}
		if _, _, err := e.price.Split(); err != nil {
			return fmt.Errorf("symbol %q: %w", symbol, err)
		}
		if e.priceUpdate.IsZero() {
			return fmt.Errorf("missing price update date for symbol %q", symbol)
		}
		if e.composition == nil || e.composition.Len() == 0 {
			return fmt.Errorf("missing composition for symbol %q", symbol)
		}
		if e.compositionUpdate.IsZero() {
			return fmt.Errorf("missing composition update date for symbol %q", symbol)
		}
		if total := e.composition.Sum(); !total.Equal(Q(1)) {
			return fmt.Errorf("composition for symbol %q sums to %s, not 1", symbol, total)
		}
	}
	return nil
}

// Save validates and rewrites the whole backing file, snapshotting the
// previous content into the history directory once per run.
func (s *Store) Save() error {
	if s.path == "" {
		return nil // in-memory store, nothing to persist
	}
	if err := s.backups.snapshot(s.path); err != nil {
		return err
	}
	if err := encodeMarketFile(s.path, s); err != nil {
		return err
	}
	s.log.Debug().Str("path", s.path).Msg("market data saved")
	return nil
}
