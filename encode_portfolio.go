package rebalance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Portfolio file layout, same round-trip rules as the market file: key order
// and decimal literals survive a load-save cycle untouched.

const (
	attrShare      = "share"
	attrTargets    = "target_percentages"
	attrSelected   = "selected_target_percentage"
	attrMerge      = "merge"
	attrSalary     = "monthly_salary"
	attrSpending   = "yearly_spending"
	attrTargetCash = "target_cash"
)

// decodeArray walks one JSON array, calling fn once per element. fn must
// consume the element from the decoder.
func decodeArray(dec *json.Decoder, fn func() error) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return fmt.Errorf("expected an array, got %v", tok)
	}
	for dec.More() {
		if err := fn(); err != nil {
			return err
		}
	}
	_, err = dec.Token() // closing bracket
	return err
}

// DecodePortfolio reads a portfolio from a stream, pricing every holding
// through the given market store.
func DecodePortfolio(r io.Reader, market *Store, log zerolog.Logger) (*Portfolio, error) {
	p := NewPortfolio("", market, log)
	dec := json.NewDecoder(r)
	dec.UseNumber()

	err := decodeObject(dec, func(section string) error {
		switch section {
		case attrHoldings:
			return decodeArray(dec, func() error {
				var symbol string
				var share Quantity
				err := decodeObject(dec, func(key string) error {
					var err error
					switch key {
					case attrSymbol:
						err = dec.Decode(&symbol)
					case attrShare:
						share, err = decodeQuantity(dec)
					default:
						err = fmt.Errorf("unknown property %q", key)
					}
					return err
				})
				if err != nil {
					return fmt.Errorf("holding: %w", err)
				}
				if symbol == "" {
					return fmt.Errorf("holding without a symbol")
				}
				return p.add(symbol, share)
			})
		case attrTargets:
			return decodeObject(dec, func(name string) error {
				weights, updated, err := decodeComposition(dec)
				if err != nil {
					return fmt.Errorf("configuration %q: %w", name, err)
				}
				p.targets[name] = &TargetConfig{weights: weights, updated: updated}
				p.targetOrder = append(p.targetOrder, name)
				return nil
			})
		case attrSelected:
			return dec.Decode(&p.selected)
		case attrMerge:
			return decodeObject(dec, func(src string) error {
				var dst string
				if err := dec.Decode(&dst); err != nil {
					return err
				}
				p.merge[src] = dst
				p.mergeOrder = append(p.mergeOrder, src)
				return nil
			})
		case attrSalary:
			var err error
			p.params.MonthlySalary, err = decodeQuantity(dec)
			return err
		case attrSpending:
			var err error
			p.params.YearlySpending, err = decodeQuantity(dec)
			return err
		case attrTargetCash:
			var err error
			p.params.TargetCash, err = decodeQuantity(dec)
			return err
		default:
			return fmt.Errorf("unknown section %q", section)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("format error in portfolio: %w", err)
	}
	if p.selected == "" && len(p.targetOrder) > 0 {
		p.selected = p.targetOrder[0]
	}
	if p.selected != "" {
		if _, ok := p.targets[p.selected]; !ok {
			return nil, fmt.Errorf("%w: selected %q", ErrUnknownConfiguration, p.selected)
		}
	}
	return p, nil
}

// OpenPortfolio loads the portfolio from its backing file and binds it to
// that file for later rewrites.
func OpenPortfolio(path string, market *Store, log zerolog.Logger) (*Portfolio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open portfolio file %q: %w", path, err)
	}
	defer f.Close()
	p, err := DecodePortfolio(f, market, log)
	if err != nil {
		return nil, fmt.Errorf("load error in %q: %w", path, err)
	}
	p.path = path
	return p, nil
}

// EncodePortfolio writes the portfolio as pretty-printed JSON with tab
// indentation.
func EncodePortfolio(w io.Writer, p *Portfolio) error {
	holdings := make([]*jsonObjectWriter, 0, len(p.holdings))
	for _, h := range p.holdings {
		var jh jsonObjectWriter
		jh.Append(attrSymbol, h.symbol)
		jh.Append(attrShare, h.share)
		holdings = append(holdings, &jh)
	}

	var targets jsonObjectWriter
	for _, name := range p.targetOrder {
		t := p.targets[name]
		var jt jsonObjectWriter
		for _, asset := range t.weights.Assets() {
			weight, _ := t.weights.Weight(asset)
			jt.Append(asset, weight)
		}
		jt.Append(attrUpdateAt, t.updated)
		targets.Append(name, &jt)
	}

	var merge jsonObjectWriter
	for _, src := range p.mergeOrder {
		merge.Append(src, p.merge[src])
	}

	var root jsonObjectWriter
	root.Append(attrHoldings, holdings)
	root.Append(attrTargets, &targets)
	root.Append(attrSelected, p.selected)
	root.Append(attrMerge, &merge)
	root.Append(attrSalary, p.params.MonthlySalary)
	root.Append(attrSpending, p.params.YearlySpending)
	root.Append(attrTargetCash, p.params.TargetCash)

	compact, err := root.MarshalJSON()
	if err != nil {
		return fmt.Errorf("cannot marshal portfolio: %w", err)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, compact, "", "\t"); err != nil {
		return fmt.Errorf("cannot format portfolio: %w", err)
	}
	pretty.WriteString("\n")
	_, err = w.Write(pretty.Bytes())
	return err
}

// encodePortfolioFile rewrites the whole backing file.
func encodePortfolioFile(path string, p *Portfolio) error {
	var buf strings.Builder
	if err := EncodePortfolio(&buf, p); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(buf.String()), 0644); err != nil {
		return fmt.Errorf("persist error: cannot write %q: %w", path, err)
	}
	return nil
}
