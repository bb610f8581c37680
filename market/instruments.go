// market/instruments.go
package market

import (
	"fmt"
	"strings"
)

// Currency is an ISO-4217 style code, or an instrument code such as
// XAU, USOIL or BTC for the non-FX instruments.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	JPY Currency = "JPY"
	CHF Currency = "CHF"
	AUD Currency = "AUD"
	CAD Currency = "CAD"
	NZD Currency = "NZD"

	XAU   Currency = "XAU"
	USOIL Currency = "USOIL"
	BTC   Currency = "BTC"
)

// ParseCurrency normalizes a user supplied currency code.
func ParseCurrency(s string) Currency {
	return Currency(strings.ToUpper(strings.TrimSpace(s)))
}

func (c Currency) String() string { return string(c) }

// Kind distinguishes instruments whose pip and lot conventions differ
// from plain FX.
type Kind string

const (
	KindFX        Kind = "fx"
	KindMetal     Kind = "metal"
	KindCommodity Kind = "commodity"
	KindCrypto    Kind = "crypto"
)

// DefaultVenue is the broker every built-in pair is quoted on.
const DefaultVenue = "OANDA"

// CurrencyPair is one tradable instrument in the catalog.
type CurrencyPair struct {
	Symbol string   `json:"symbol" yaml:"symbol"`
	Base   Currency `json:"base" yaml:"base"`
	Quote  Currency `json:"quote" yaml:"quote"`
	Venue  string   `json:"venue" yaml:"venue"`
	Kind   Kind     `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// SymbolID is the venue qualified identifier understood by the quote
// API, e.g. "OANDA:EURUSD".
func (p CurrencyPair) SymbolID() string {
	return p.Venue + ":" + p.Symbol
}

func (p CurrencyPair) String() string {
	return fmt.Sprintf("%s/%s", p.Base, p.Quote)
}

// Has reports whether c is one of the two legs of the pair.
func (p CurrencyPair) Has(c Currency) bool {
	return p.Base == c || p.Quote == c
}

// Inverted reports whether the pair is registered in the opposite
// orientation to base/quote. Callers use it to decide whether a rate
// must be reciprocated.
func (p CurrencyPair) Inverted(base, quote Currency) bool {
	return p.Base == quote && p.Quote == base
}

func (p CurrencyPair) validate() error {
	if p.Symbol == "" {
		return fmt.Errorf("pair symbol is required")
	}
	if p.Base == "" || p.Quote == "" {
		return fmt.Errorf("pair %s: base and quote are required", p.Symbol)
	}
	if p.Base == p.Quote {
		return fmt.Errorf("pair %s: base and quote must differ", p.Symbol)
	}
	return nil
}

func fx(base, quote Currency) CurrencyPair {
	return CurrencyPair{
		Symbol: string(base) + string(quote),
		Base:   base,
		Quote:  quote,
		Venue:  DefaultVenue,
		Kind:   KindFX,
	}
}

// DefaultPairs is the built-in catalog loaded at process start.
func DefaultPairs() []CurrencyPair {
	return []CurrencyPair{
		fx(EUR, USD),
		fx(GBP, USD),
		fx(USD, JPY),
		fx(USD, CHF),
		fx(AUD, USD),
		fx(USD, CAD),
		fx(NZD, USD),
		fx(EUR, GBP),
		fx(EUR, JPY),
		fx(GBP, JPY),
		{Symbol: "XAUUSD", Base: XAU, Quote: USD, Venue: DefaultVenue, Kind: KindMetal},
		{Symbol: "USOIL", Base: USOIL, Quote: USD, Venue: DefaultVenue, Kind: KindCommodity},
		{Symbol: "BTCUSD", Base: BTC, Quote: USD, Venue: DefaultVenue, Kind: KindCrypto},
	}
}
