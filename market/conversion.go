package market

import (
	"fmt"
	"math"
)

// EUR_USD with a USD account → quote == account → weight 1.0
// EUR_JPY with a USD account → resolved pair USD_JPY → weight 1 / USDJPY
// EUR_GBP with a USD account → resolved pair GBP_USD → weight GBPUSD

// NeedsConversion reports whether pip values of pair must be converted
// before they are expressed in the account currency.
func NeedsConversion(pair CurrencyPair, account Currency) bool {
	return pair.Quote != account
}

// ConversionWeight turns the ask of the resolved conversion pair into
// the factor that maps one unit of from into the to currency. The
// resolved pair must contain both currencies; when it is quoted as
// from/to the ask is the weight, otherwise its reciprocal is.
func ConversionWeight(resolved CurrencyPair, from, to Currency, ask float64) (float64, error) {
	if !resolved.Has(from) || !resolved.Has(to) {
		return 0, fmt.Errorf("pair %s cannot convert %s to %s", resolved.Symbol, from, to)
	}
	if !(ask > 0) || math.IsInf(ask, 1) {
		return 0, fmt.Errorf("pair %s: non-positive ask %v", resolved.Symbol, ask)
	}
	if resolved.Inverted(from, to) {
		return 1.0 / ask, nil
	}
	return ask, nil
}
