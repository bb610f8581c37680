package risk

import (
	"fmt"
)

type Violation struct {
	Code string `json:"code"`
	Msg  string `json:"message"`
}

type Decision struct {
	Allowed    bool        `json:"allowed"`
	Violations []Violation `json:"violations,omitempty"`
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// Evaluate checks a sized plan against p.
func Evaluate(p Policy, plan Plan) Decision {
	d := Decision{Allowed: true}

	if plan.RiskPct > p.MaxRiskPct {
		d.add("RISK_TOO_HIGH",
			fmt.Sprintf("risk %.2f%% exceeds max %.2f%%", plan.RiskPct, p.MaxRiskPct))
	} else if plan.RiskPct > p.DefaultRiskPct {
		d.add("RISK_OVER_DEFAULT",
			fmt.Sprintf("risk %.2f%% exceeds recommended %.2f%%", plan.RiskPct, p.DefaultRiskPct))
	}

	// A missing take profit is not a low RR, there is just nothing to compare.
	if plan.TakeProfitPips > 0 && plan.RR.Ratio < p.MinRR {
		d.add("RR_TOO_LOW",
			fmt.Sprintf("RR %.2f below minimum %.2f", plan.RR.Ratio, p.MinRR))
	}

	if s, ok := plan.Drawdown.After(p.DrawdownLosses); ok && s.DrawdownPct > p.MaxDrawdownPct {
		d.add("DRAWDOWN_TOO_DEEP",
			fmt.Sprintf("%d losses draw down %.1f%%, max %.1f%%", s.Losses, s.DrawdownPct, p.MaxDrawdownPct))
	}

	return d
}
