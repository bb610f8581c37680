package risk

// EUR_USD → quote = USD → weight = 1.0
// USD_JPY → quote = JPY → weight = 1 / USDJPY ask

import (
	"errors"
	"fmt"
	"math"

	"github.com/rustyeddy/fxtools/market"
)

// ErrCalculation marks inputs the formulas cannot be evaluated for.
var ErrCalculation = errors.New("calculation error")

// RecommendedRiskPct is the per trade risk used for suggested lots.
const RecommendedRiskPct = 2.0

type Position struct {
	AmountAtRisk           float64 `json:"amount_at_risk"`
	PipValuePerStandardLot float64 `json:"pip_value"`
	StandardLots           float64 `json:"standard_lots"`
	MiniLots               float64 `json:"mini_lots"`
	MicroLots              float64 `json:"micro_lots"`
	Units                  float64 `json:"units"`
}

// PositionSize sizes a trade so that a stop of stopLossPips loses
// riskPct percent of balance. riskPct is in percent (2 means 2%).
func PositionSize(balance, riskPct, stopLossPips float64, pair market.CurrencyPair, weight float64) (Position, error) {
	if !finite(balance, riskPct, stopLossPips, weight) {
		return Position{}, fmt.Errorf("%w: non-finite input", ErrCalculation)
	}
	if stopLossPips <= 0 {
		return Position{}, fmt.Errorf("%w: stop loss must be positive, got %v pips", ErrCalculation, stopLossPips)
	}
	pipValue := PipValuePerStandardLot(pair, weight)
	if pipValue <= 0 {
		return Position{}, fmt.Errorf("%w: pip value for %s is not positive", ErrCalculation, pair.Symbol)
	}

	amountAtRisk := balance * riskPct / 100
	lots := amountAtRisk / (stopLossPips * pipValue)

	return Position{
		AmountAtRisk:           amountAtRisk,
		PipValuePerStandardLot: pipValue,
		StandardLots:           lots,
		MiniLots:               lots * 10,
		MicroLots:              lots * 100,
		Units:                  lots * UnitsPerStandardLot(pair),
	}, nil
}

// SuggestedLots is the standard lot size the same stop gives at
// RecommendedRiskPct.
func SuggestedLots(balance, stopLossPips float64, pair market.CurrencyPair, weight float64) (float64, error) {
	p, err := PositionSize(balance, RecommendedRiskPct, stopLossPips, pair, weight)
	if err != nil {
		return 0, err
	}
	return p.StandardLots, nil
}

// finite reports whether none of vs is NaN or ±Inf.
func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
