package rebalance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/jwen/rebalance/date"
	"github.com/rs/zerolog"
)

// This file persists the market-data store as a single pretty-printed JSON
// file, tab indented, with insertion order and decimal literals preserved.
//
// The standard json package cannot round-trip object key order, so decoding
// walks the token stream and encoding is done with jsonObjectWriter.

const (
	attrValue       = "value"
	attrUpdateAt    = "update_at"
	attrKind        = "kind"
	attrComposition = "composition"
	attrSymbol      = "symbol"
	attrRate        = "rate"
	attrHoldings    = "holdings"
	attrRates       = "exchange_rate"
)

// decodeObject walks one JSON object, calling fn once per key. fn must
// consume the key's value from the decoder.
func decodeObject(dec *json.Decoder, fn func(key string) error) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected an object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected an object key, got %v", tok)
		}
		if err := fn(key); err != nil {
			return err
		}
	}
	_, err = dec.Token() // closing brace
	return err
}

// decodeQuantity reads the next value as an exact decimal.
func decodeQuantity(dec *json.Decoder) (Quantity, error) {
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return Quantity{}, err
	}
	q, err := ParseQuantity(string(bytes.TrimSpace(raw)))
	if err != nil {
		return Quantity{}, fmt.Errorf("not a number: %w", err)
	}
	return q, nil
}

// decodeDate reads the next value as a date string.
func decodeDate(dec *json.Decoder) (date.Date, error) {
	var d date.Date
	err := dec.Decode(&d)
	return d, err
}

// decodePrice reads the next value as either a bare number or a
// currency-tagged string.
func decodePrice(dec *json.Decoder) (PriceString, error) {
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return "", err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return PriceString(s), nil
	}
	return PriceString(raw), nil
}

// decodeComposition reads a composition object, filtering its update_at field
// out into a separate date.
func decodeComposition(dec *json.Decoder) (*Composition, date.Date, error) {
	comp := NewComposition()
	var updated date.Date
	err := decodeObject(dec, func(key string) error {
		if key == attrUpdateAt {
			var err error
			updated, err = decodeDate(dec)
			return err
		}
		w, err := decodeQuantity(dec)
		if err != nil {
			return fmt.Errorf("fraction for asset %q: %w", key, err)
		}
		comp.Set(key, w)
		return nil
	})
	return comp, updated, err
}

// DecodeStore reads a market-data store from a stream.
func DecodeStore(r io.Reader, base string, log zerolog.Logger) (*Store, error) {
	s := NewStore(base, log)
	dec := json.NewDecoder(r)
	dec.UseNumber()

	err := decodeObject(dec, func(section string) error {
		switch section {
		case attrHoldings:
			return decodeObject(dec, func(symbol string) error {
				e := &entry{kind: KindFund}
				err := decodeObject(dec, func(key string) error {
					var err error
					switch key {
					case attrValue:
						e.price, err = decodePrice(dec)
					case attrUpdateAt:
						e.priceUpdate, err = decodeDate(dec)
					case attrKind:
						var k string
						if err = dec.Decode(&k); err == nil {
							e.kind = Kind(k)
						}
					case attrComposition:
						e.composition, e.compositionUpdate, err = decodeComposition(dec)
					default:
						err = fmt.Errorf("unknown property %q", key)
					}
					return err
				})
				if err != nil {
					return fmt.Errorf("symbol %q: %w", symbol, err)
				}
				s.entries[symbol] = e
				s.order = append(s.order, symbol)
				return nil
			})
		case attrRates:
			return decodeObject(dec, func(code string) error {
				re := &rateEntry{}
				err := decodeObject(dec, func(key string) error {
					var err error
					switch key {
					case attrSymbol:
						var g string
						if err = dec.Decode(&g); err == nil {
							re.glyph, _ = utf8.DecodeRuneInString(g)
						}
					case attrRate:
						var q Quantity
						if q, err = decodeQuantity(dec); err == nil {
							re.rate = q.Decimal()
						}
					case attrUpdateAt:
						re.update, err = decodeDate(dec)
					default:
						err = fmt.Errorf("unknown property %q", key)
					}
					return err
				})
				if err != nil {
					return fmt.Errorf("currency %q: %w", code, err)
				}
				s.rates[code] = re
				s.rateOrder = append(s.rateOrder, code)
				return nil
			})
		default:
			return fmt.Errorf("unknown section %q", section)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("format error in market data: %w", err)
	}
	if err := s.Check(); err != nil {
		return nil, fmt.Errorf("invalid market data: %w", err)
	}
	return s, nil
}

// OpenStore loads the market-data store from its backing file and binds it to
// that file for later rewrites.
func OpenStore(path, base string, log zerolog.Logger) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open market data file %q: %w", path, err)
	}
	defer f.Close()
	s, err := DecodeStore(f, base, log)
	if err != nil {
		return nil, fmt.Errorf("load error in %q: %w", path, err)
	}
	s.path = path
	return s, nil
}

// EncodeStore writes the store as pretty-printed JSON with tab indentation.
func EncodeStore(w io.Writer, s *Store) error {
	var holdings jsonObjectWriter
	for _, symbol := range s.order {
		e := s.entries[symbol]
		var comp jsonObjectWriter
		for _, asset := range e.composition.Assets() {
			weight, _ := e.composition.Weight(asset)
			comp.Append(asset, weight)
		}
		comp.Append(attrUpdateAt, e.compositionUpdate)

		var je jsonObjectWriter
		je.Append(attrValue, e.price)
		je.Append(attrUpdateAt, e.priceUpdate)
		je.Append(attrKind, string(e.kind))
		je.Append(attrComposition, &comp)
		holdings.Append(symbol, &je)
	}

	var rates jsonObjectWriter
	for _, code := range s.rateOrder {
		re := s.rates[code]
		var jr jsonObjectWriter
		jr.Append(attrSymbol, string(re.glyph))
		jr.Append(attrRate, Quantity{value: re.rate})
		jr.Append(attrUpdateAt, re.update)
		rates.Append(code, &jr)
	}

	var root jsonObjectWriter
	root.Append(attrHoldings, &holdings)
	root.Append(attrRates, &rates)

	compact, err := root.MarshalJSON()
	if err != nil {
		return fmt.Errorf("cannot marshal market data: %w", err)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, compact, "", "\t"); err != nil {
		return fmt.Errorf("cannot format market data: %w", err)
	}
	pretty.WriteString("\n")
	_, err = w.Write(pretty.Bytes())
	return err
}

// encodeMarketFile rewrites the whole backing file.
func encodeMarketFile(path string, s *Store) error {
	var buf strings.Builder
	if err := EncodeStore(&buf, s); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(buf.String()), 0644); err != nil {
		return fmt.Errorf("persist error: cannot write %q: %w", path, err)
	}
	return nil
}
