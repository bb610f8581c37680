package risk

// Policy holds the advisory limits a sized position is checked against.
// None of them block a calculation; they only produce violations.
type Policy struct {
	// Risk limits, in percent of balance
	DefaultRiskPct float64 // 2
	MaxRiskPct     float64 // 5

	// Trade constraints
	MinRR float64 // 1.5

	// Worst streak drawdown that is still acceptable, in percent
	MaxDrawdownPct float64 // 50
	DrawdownLosses int     // 10
}

func DefaultPolicy() Policy {
	return Policy{
		DefaultRiskPct: RecommendedRiskPct,
		MaxRiskPct:     5,
		MinRR:          1.5,
		MaxDrawdownPct: 50,
		DrawdownLosses: 10,
	}
}

// Plan is what Evaluate looks at.
type Plan struct {
	RiskPct        float64
	TakeProfitPips float64
	RR             RiskReward
	Drawdown       Drawdown
}
