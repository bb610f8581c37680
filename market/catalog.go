package market

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownPair is returned when no catalog entry matches a lookup.
var ErrUnknownPair = errors.New("unknown currency pair")

// Catalog is an immutable registry of tradable pairs. It is built once
// and only read afterwards, so it needs no locking.
type Catalog struct {
	bySymbol map[string]CurrencyPair
	order    []string
}

// NewCatalog validates pairs and indexes them by symbol.
func NewCatalog(pairs []CurrencyPair) (*Catalog, error) {
	c := &Catalog{bySymbol: make(map[string]CurrencyPair, len(pairs))}
	for _, p := range pairs {
		p.Symbol = normalizeSymbol(p.Symbol)
		p.Base = ParseCurrency(string(p.Base))
		p.Quote = ParseCurrency(string(p.Quote))
		if p.Venue == "" {
			p.Venue = DefaultVenue
		}
		if p.Kind == "" {
			p.Kind = KindFX
		}
		if err := p.validate(); err != nil {
			return nil, err
		}
		if _, dup := c.bySymbol[p.Symbol]; dup {
			return nil, fmt.Errorf("duplicate pair symbol %s", p.Symbol)
		}
		c.bySymbol[p.Symbol] = p
		c.order = append(c.order, p.Symbol)
	}
	return c, nil
}

// DefaultCatalog returns the built-in pairs merged with extra. Extra
// entries may not redefine a built-in symbol.
func DefaultCatalog(extra ...CurrencyPair) (*Catalog, error) {
	return NewCatalog(append(DefaultPairs(), extra...))
}

// LookupBySymbol accepts "EURUSD", "EUR/USD" or "eur_usd".
func (c *Catalog) LookupBySymbol(symbol string) (CurrencyPair, error) {
	p, ok := c.bySymbol[normalizeSymbol(symbol)]
	if !ok {
		return CurrencyPair{}, fmt.Errorf("%w: %s", ErrUnknownPair, symbol)
	}
	return p, nil
}

// LookupByComponents finds the pair made of a and b in either
// orientation. The registered orientation is returned unchanged; use
// CurrencyPair.Inverted to detect a mismatch.
func (c *Catalog) LookupByComponents(a, b Currency) (CurrencyPair, error) {
	a, b = ParseCurrency(string(a)), ParseCurrency(string(b))
	for _, sym := range c.order {
		p := c.bySymbol[sym]
		if (p.Base == a && p.Quote == b) || (p.Base == b && p.Quote == a) {
			return p, nil
		}
	}
	return CurrencyPair{}, fmt.Errorf("%w: %s/%s", ErrUnknownPair, a, b)
}

// Pairs returns the catalog in registration order.
func (c *Catalog) Pairs() []CurrencyPair {
	out := make([]CurrencyPair, 0, len(c.order))
	for _, sym := range c.order {
		out = append(out, c.bySymbol[sym])
	}
	return out
}

// Currencies returns every currency that appears in at least one pair.
func (c *Catalog) Currencies() []Currency {
	seen := map[Currency]bool{}
	for _, p := range c.bySymbol {
		seen[p.Base] = true
		seen[p.Quote] = true
	}
	out := make([]Currency, 0, len(seen))
	for cur := range seen {
		out = append(out, cur)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (c *Catalog) Len() int { return len(c.order) }

func normalizeSymbol(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "/", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}
