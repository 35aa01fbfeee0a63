package rebalance

// Allocation is the portfolio's value broken down by asset class, in
// insertion order. Order is display-only; the amounts are a pure summation.
type Allocation struct {
	assets []string
	values map[string]Money
}

// NewAllocation returns an empty allocation.
func NewAllocation() *Allocation {
	return &Allocation{values: make(map[string]Money)}
}

// Add accumulates an amount into an asset-class bucket, creating the bucket
// at the end of the order if needed.
func (a *Allocation) Add(asset string, m Money) {
	prev, ok := a.values[asset]
	if !ok {
		a.assets = append(a.assets, asset)
		a.values[asset] = m
		return
	}
	a.values[asset] = prev.Add(m)
}

// Value returns the bucket for an asset class and whether it exists.
func (a *Allocation) Value(asset string) (Money, bool) {
	m, ok := a.values[asset]
	return m, ok
}

// Assets returns the asset classes in insertion order.
func (a *Allocation) Assets() []string {
	out := make([]string, len(a.assets))
	copy(out, a.assets)
	return out
}

// Total returns the sum of all buckets.
func (a *Allocation) Total() Money {
	var total Money
	for _, asset := range a.assets {
		total = total.Add(a.values[asset])
	}
	return total
}

// fold moves the src bucket into dst and drops src. Used for alias merging.
func (a *Allocation) fold(src, dst string) {
	m, ok := a.values[src]
	if !ok {
		return
	}
	a.Add(dst, m)
	delete(a.values, src)
	for i, asset := range a.assets {
		if asset == src {
			a.assets = append(a.assets[:i], a.assets[i+1:]...)
			break
		}
	}
}
