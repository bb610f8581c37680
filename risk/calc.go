package risk

import "fmt"

type RiskReward struct {
	Ratio           float64 `json:"risk_reward_ratio"`
	PotentialProfit float64 `json:"potential_profit"`
	PotentialLoss   float64 `json:"potential_loss"`
}

// RR returns a zero RiskReward when either distance is not positive.
func RR(takeProfitPips, stopLossPips, standardLots, pipValue float64) RiskReward {
	if takeProfitPips <= 0 || stopLossPips <= 0 {
		return RiskReward{}
	}
	return RiskReward{
		Ratio:           takeProfitPips / stopLossPips,
		PotentialProfit: takeProfitPips * pipValue * standardLots,
		PotentialLoss:   stopLossPips * pipValue * standardLots,
	}
}

// LossStreaks are the consecutive loss counts projected by Drawdown.
var LossStreaks = []int{5, 10, 15, 20}

type DrawdownScenario struct {
	Losses           int     `json:"losses"`
	TotalLoss        float64 `json:"total_loss"`
	RemainingBalance float64 `json:"remaining_balance"`
	DrawdownPct      float64 `json:"drawdown_pct"`
}

type Drawdown []DrawdownScenario

// ProjectDrawdown projects losing amountAtRisk on every trade of each streak.
func ProjectDrawdown(amountAtRisk, balance float64) (Drawdown, error) {
	if !finite(amountAtRisk, balance) {
		return nil, fmt.Errorf("%w: non-finite input", ErrCalculation)
	}
	if balance <= 0 {
		return nil, fmt.Errorf("%w: account balance must be positive", ErrCalculation)
	}
	out := make(Drawdown, 0, len(LossStreaks))
	for _, n := range LossStreaks {
		total := amountAtRisk * float64(n)
		out = append(out, DrawdownScenario{
			Losses:           n,
			TotalLoss:        total,
			RemainingBalance: balance - total,
			DrawdownPct:      total / balance * 100,
		})
	}
	return out, nil
}

// After returns the scenario for n consecutive losses.
func (d Drawdown) After(n int) (DrawdownScenario, bool) {
	for _, s := range d {
		if s.Losses == n {
			return s, true
		}
	}
	return DrawdownScenario{}, false
}
