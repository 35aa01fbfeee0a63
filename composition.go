package rebalance

import (
	"fmt"
	"strings"
)

// Composition maps asset classes to weights while remembering first-insertion
// order. Order never changes the math, only how files and reports list assets.
type Composition struct {
	assets  []string
	weights map[string]Quantity
}

// NewComposition returns an empty composition.
func NewComposition() *Composition {
	return &Composition{weights: make(map[string]Quantity)}
}

// Set stores the weight for an asset, keeping its original position if the
// asset is already present.
func (c *Composition) Set(asset string, w Quantity) {
	if _, ok := c.weights[asset]; !ok {
		c.assets = append(c.assets, asset)
	}
	c.weights[asset] = w
}

// Add accumulates w into the asset's weight, inserting it at the end if absent.
func (c *Composition) Add(asset string, w Quantity) {
	prev, ok := c.weights[asset]
	if !ok {
		c.assets = append(c.assets, asset)
		c.weights[asset] = w
		return
	}
	c.weights[asset] = prev.Add(w)
}

// Delete removes an asset and its weight.
func (c *Composition) Delete(asset string) {
	if _, ok := c.weights[asset]; !ok {
		return
	}
	delete(c.weights, asset)
	for i, a := range c.assets {
		if a == asset {
			c.assets = append(c.assets[:i], c.assets[i+1:]...)
			break
		}
	}
}

// Weight returns the weight of an asset, and whether it is present.
func (c *Composition) Weight(asset string) (Quantity, bool) {
	w, ok := c.weights[asset]
	return w, ok
}

// Assets returns the asset classes in insertion order.
func (c *Composition) Assets() []string {
	out := make([]string, len(c.assets))
	copy(out, c.assets)
	return out
}

// Len returns the number of asset classes.
func (c *Composition) Len() int { return len(c.assets) }

// Sum returns the total of all weights.
func (c *Composition) Sum() Quantity {
	total := Q(0)
	for _, a := range c.assets {
		total = total.Add(c.weights[a])
	}
	return total
}

// Clone returns an independent copy.
func (c *Composition) Clone() *Composition {
	out := NewComposition()
	for _, a := range c.assets {
		out.Set(a, c.weights[a])
	}
	return out
}

// String renders "asset:weight;asset:weight" in insertion order, the same
// shape ParseComposition accepts.
func (c *Composition) String() string {
	var b strings.Builder
	for i, a := range c.assets {
		if i > 0 {
			b.WriteByte(';')
		}
		fmt.Fprintf(&b, "%s:%s", a, c.weights[a])
	}
	return b.String()
}

// ParseComposition parses "asset:fraction;asset:fraction" with '=' accepted as
// a synonym for ':'. Fractions must lie in [0,1] and sum to at most 1; when
// they sum to less than 1 the remainder is attributed to cash.
func ParseComposition(input string) (*Composition, error) {
	input = strings.ReplaceAll(input, "=", ":")
	comp := NewComposition()
	for _, pair := range strings.Split(input, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, frac, found := strings.Cut(pair, ":")
		if !found {
			return nil, fmt.Errorf("invalid composition entry %q, want asset:fraction", pair)
		}
		name = strings.TrimSpace(name)
		w, err := ParseQuantity(strings.TrimSpace(frac))
		if err != nil {
			return nil, fmt.Errorf("invalid fraction for asset %q: %w", name, err)
		}
		if w.IsNegative() || w.GreaterThan(Q(1)) {
			return nil, fmt.Errorf("fraction for asset %q is out of range [0, 1]", name)
		}
		comp.Add(name, w)
	}
	if comp.Len() == 0 {
		return nil, fmt.Errorf("empty composition")
	}
	total := comp.Sum()
	if total.GreaterThan(Q(1)) {
		return nil, fmt.Errorf("composition fractions sum to %s, more than 1", total)
	}
	if total.LessThan(Q(1)) {
		comp.Add(AssetCash, Q(1).Sub(total))
	}
	return comp, nil
}
