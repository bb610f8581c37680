package risk

import "github.com/rustyeddy/fxtools/market"

// PipSize is the smallest standardized price step of pair.
func PipSize(pair market.CurrencyPair) float64 {
	switch pair.Base {
	case market.XAU:
		return 0.1
	case market.USOIL:
		return 0.01
	case market.BTC:
		return 10
	}
	if pair.Quote == market.JPY {
		return 0.01
	}
	return 0.0001
}

// UnitsPerStandardLot is the number of base units in one standard lot.
func UnitsPerStandardLot(pair market.CurrencyPair) float64 {
	switch pair.Base {
	case market.XAU:
		return 100
	case market.USOIL:
		return 1000
	case market.BTC:
		return 1
	}
	return 100_000
}

// PipValuePerStandardLot is the account currency value of a one pip move
// on one standard lot. weight converts the quote currency into the
// account currency and is 1.0 when they are the same.
func PipValuePerStandardLot(pair market.CurrencyPair, weight float64) float64 {
	return PipSize(pair) * UnitsPerStandardLot(pair) * weight
}

// PipValue scales the per standard lot value to lots.
// USDJPY, 0.01 lots, weight 1: 0.01 * 100000 * 1 * 0.01 = 10 JPY.
func PipValue(pair market.CurrencyPair, lots, weight float64) float64 {
	return PipValuePerStandardLot(pair, weight) * lots
}
