package rebalance

import (
	"errors"
	"fmt"
	"time"

	"github.com/jwen/rebalance/date"
	"github.com/rs/zerolog"
)

var (
	// ErrUnknownConfiguration is returned when a target configuration name
	// does not exist in the portfolio.
	ErrUnknownConfiguration = errors.New("unknown target configuration")
	// ErrConfigurationExists is returned when creating a target
	// configuration under a name already in use.
	ErrConfigurationExists = errors.New("target configuration already exists")
)

// TargetConfig is one named set of target percentages. Weights are in percent
// units (70 means 70%), kept in file order.
type TargetConfig struct {
	weights *Composition
	updated date.Date
}

// Weights returns a copy of the target percentages.
func (t *TargetConfig) Weights() *Composition { return t.weights.Clone() }

// Updated returns the day the configuration was last edited.
func (t *TargetConfig) Updated() date.Date { return t.updated }

// RebalanceParameters are the pacing inputs used by the adjustment
// calculator. All three are amounts in the portfolio's base currency.
type RebalanceParameters struct {
	MonthlySalary  Quantity
	YearlySpending Quantity
	TargetCash     Quantity
}

// Portfolio is the holdings aggregate: positions, named target
// configurations, asset-class aliases and the rebalance pacing parameters.
// All mutations go through its methods and persist the backing file.
type Portfolio struct {
	path   string
	market *Store

	holdings []*Holding
	index    map[string]*Holding

	targets     map[string]*TargetConfig
	targetOrder []string
	selected    string

	mergeOrder []string
	merge      map[string]string

	params RebalanceParameters

	backups *backupSet
	now     func() time.Time
	log     zerolog.Logger
}

// NewPortfolio returns an empty portfolio priced against the given market
// store. The path is where Save writes; empty disables persistence.
func NewPortfolio(path string, market *Store, log zerolog.Logger) *Portfolio {
	return &Portfolio{
		path:    path,
		market:  market,
		index:   make(map[string]*Holding),
		targets: make(map[string]*TargetConfig),
		merge:   make(map[string]string),
		backups: newBackupSet(),
		now:     time.Now,
		log:     log.With().Str("component", "portfolio").Logger(),
	}
}

// SetClock overrides the wall clock, for tests.
func (p *Portfolio) SetClock(now func() time.Time) { p.now = now }

// Market returns the market store the portfolio is priced against.
func (p *Portfolio) Market() *Store { return p.market }

// add registers a position, pricing it through the market store.
func (p *Portfolio) add(symbol string, share Quantity) error {
	if _, ok := p.index[symbol]; ok {
		return fmt.Errorf("duplicate holding %q", symbol)
	}
	price, err := p.market.Price(symbol)
	if err != nil {
		return fmt.Errorf("pricing %q: %w", symbol, err)
	}
	h := &Holding{symbol: symbol, share: share, price: price}
	p.holdings = append(p.holdings, h)
	p.index[symbol] = h
	return nil
}

// Holdings returns the positions in file order.
func (p *Portfolio) Holdings() []*Holding {
	out := make([]*Holding, len(p.holdings))
	copy(out, p.holdings)
	return out
}

// Holding returns the position for a symbol, or nil.
func (p *Portfolio) Holding(symbol string) *Holding { return p.index[symbol] }

// TotalValue returns the sum of all position values in the base currency.
func (p *Portfolio) TotalValue() Money {
	var total Money
	for _, h := range p.holdings {
		total = total.Add(h.Value())
	}
	return total
}

// CurrentAllocation breaks the portfolio value down by asset class using each
// holding's look-through composition. With merge set, aliased classes are
// folded into their canonical name after summation.
func (p *Portfolio) CurrentAllocation(merge bool) (*Allocation, error) {
	alloc := NewAllocation()
	for _, h := range p.holdings {
		comp, err := p.market.Composition(h.symbol)
		if err != nil {
			return nil, fmt.Errorf("composition of %q: %w", h.symbol, err)
		}
		value := h.Value()
		for _, asset := range comp.Assets() {
			w, _ := comp.Weight(asset)
			alloc.Add(asset, value.Mul(w))
		}
	}
	if merge {
		for _, src := range p.mergeOrder {
			alloc.fold(src, p.merge[src])
		}
	}
	return alloc, nil
}

// UpdateShares applies a batch of share counts. The whole batch is validated
// first; on any unknown symbol or negative share nothing is changed and
// nothing is written.
func (p *Portfolio) UpdateShares(changes map[string]Quantity) error {
	for symbol, share := range changes {
		if _, ok := p.index[symbol]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownSymbol, symbol)
		}
		if share.IsNegative() {
			return fmt.Errorf("negative share %s for %q", share, symbol)
		}
	}
	for symbol, share := range changes {
		h := p.index[symbol]
		h.share = share
		p.log.Debug().Str("symbol", symbol).Stringer("share", share).Msg("share updated")
	}
	return p.Save()
}

// Configurations returns the target configuration names in file order.
func (p *Portfolio) Configurations() []string {
	out := make([]string, len(p.targetOrder))
	copy(out, p.targetOrder)
	return out
}

// Selected returns the name of the active target configuration.
func (p *Portfolio) Selected() string { return p.selected }

// resolve maps an empty name to the selected configuration.
func (p *Portfolio) resolve(name string) (string, error) {
	if name == "" {
		name = p.selected
	}
	if _, ok := p.targets[name]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownConfiguration, name)
	}
	return name, nil
}

// Targets returns the percentages of a named configuration. An empty name
// means the selected one.
func (p *Portfolio) Targets(name string) (*TargetConfig, error) {
	name, err := p.resolve(name)
	if err != nil {
		return nil, err
	}
	t := p.targets[name]
	return &TargetConfig{weights: t.weights.Clone(), updated: t.updated}, nil
}

// UpdateTargets replaces the percentages of a named configuration. Zero
// weights are dropped, the rest must sum to exactly 100. The edit date is
// stamped and the file written.
func (p *Portfolio) UpdateTargets(name string, weights *Composition) error {
	name, err := p.resolve(name)
	if err != nil {
		return err
	}
	clean := NewComposition()
	for _, asset := range weights.Assets() {
		raw, _ := weights.Weight(asset)
		w := raw.Normalize()
		if w.IsZero() {
			continue
		}
		if w.IsNegative() {
			return fmt.Errorf("negative target %s for %q", w, asset)
		}
		clean.Set(asset, w)
	}
	if !clean.Sum().Equal(Q(100)) {
		return fmt.Errorf("target percentages sum to %s, want 100", clean.Sum())
	}
	p.targets[name] = &TargetConfig{weights: clean, updated: date.FromTime(p.now())}
	p.log.Info().Str("configuration", name).Msg("target percentages updated")
	return p.Save()
}

// CreateTarget adds a new configuration copied from an existing one. An empty
// source means the selected configuration.
func (p *Portfolio) CreateTarget(name, from string) error {
	if name == "" {
		return errors.New("configuration name is empty")
	}
	if _, ok := p.targets[name]; ok {
		return fmt.Errorf("%w: %q", ErrConfigurationExists, name)
	}
	from, err := p.resolve(from)
	if err != nil {
		return err
	}
	src := p.targets[from]
	p.targets[name] = &TargetConfig{weights: src.weights.Clone(), updated: date.FromTime(p.now())}
	p.targetOrder = append(p.targetOrder, name)
	p.log.Info().Str("configuration", name).Str("from", from).Msg("target configuration created")
	return p.Save()
}

// SelectTarget makes a named configuration the active one.
func (p *Portfolio) SelectTarget(name string) error {
	if _, ok := p.targets[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownConfiguration, name)
	}
	p.selected = name
	return p.Save()
}

// Parameters returns the rebalance pacing parameters.
func (p *Portfolio) Parameters() RebalanceParameters { return p.params }

// Save rewrites the portfolio file, snapshotting the previous version into
// .history once per run. A portfolio without a path is in-memory only.
func (p *Portfolio) Save() error {
	if p.path == "" {
		return nil
	}
	if err := p.backups.snapshot(p.path); err != nil {
		return fmt.Errorf("backing up %s: %w", p.path, err)
	}
	return encodePortfolioFile(p.path, p)
}
