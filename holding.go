package rebalance

// Holding is one position: a symbol, its share count, and the unit price the
// market store reported when the portfolio was loaded.
type Holding struct {
	symbol string
	share  Quantity
	price  Money
}

// Symbol returns the fund identifier.
func (h *Holding) Symbol() string { return h.symbol }

// Share returns the number of shares held.
func (h *Holding) Share() Quantity { return h.share }

// Price returns the unit price in the portfolio's base currency.
func (h *Holding) Price() Money { return h.price }

// Value returns share times unit price.
func (h *Holding) Value() Money { return h.price.Mul(h.share) }
