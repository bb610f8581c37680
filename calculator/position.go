package calculator

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/fxtools/journal"
	"github.com/rustyeddy/fxtools/market"
	"github.com/rustyeddy/fxtools/risk"
)

// PositionRequest is the input of the position size calculator.
// RiskPercent is in percent, 2 means 2% of the balance.
type PositionRequest struct {
	Pair            string  `json:"pair"`
	AccountCurrency string  `json:"account_currency"`
	AccountBalance  float64 `json:"account_balance"`
	RiskPercent     float64 `json:"risk_percent"`
	StopLossPips    float64 `json:"stop_loss_pips"`
	TakeProfitPips  float64 `json:"take_profit_pips,omitempty"`
}

func (r PositionRequest) validate() error {
	switch {
	case r.Pair == "":
		return invalid("pair", "is required")
	case r.AccountCurrency == "":
		return invalid("account_currency", "is required")
	case !finite(r.AccountBalance):
		return invalid("account_balance", "must be a finite number")
	case !finite(r.RiskPercent):
		return invalid("risk_percent", "must be a finite number")
	case !finite(r.StopLossPips):
		return invalid("stop_loss_pips", "must be a finite number")
	case !finite(r.TakeProfitPips):
		return invalid("take_profit_pips", "must be a finite number")
	case r.AccountBalance <= 0:
		return invalid("account_balance", "must be positive")
	case r.RiskPercent <= 0:
		return invalid("risk_percent", "must be positive")
	case r.RiskPercent > 100:
		return invalid("risk_percent", "cannot exceed 100")
	case r.StopLossPips <= 0:
		return invalid("stop_loss_pips", "must be positive")
	case r.TakeProfitPips < 0:
		return invalid("take_profit_pips", "cannot be negative")
	}
	return nil
}

// finite rejects NaN and ±Inf, which slip past the <= 0 checks.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// PositionResult is one finished position size calculation. Snapshot
// is a copy of the request it was computed from.
type PositionResult struct {
	ID         string          `json:"id"`
	CreatedAt  time.Time       `json:"created_at"`
	Snapshot   PositionRequest `json:"snapshot"`
	Quote      QuoteInfo       `json:"quote"`
	Conversion Conversion      `json:"conversion"`

	Position      risk.Position   `json:"position"`
	RiskReward    risk.RiskReward `json:"risk_reward"`
	Drawdown      risk.Drawdown   `json:"drawdown"`
	SuggestedLots float64         `json:"suggested_lots"`
	Decision      risk.Decision   `json:"decision"`
}

type PositionCalculator struct {
	engine
}

func NewPositionCalculator(d Deps, log zerolog.Logger) *PositionCalculator {
	return &PositionCalculator{
		engine: newEngine(d, log.With().Str("component", "position_calculator").Logger()),
	}
}

// Calculate runs one position size calculation. On failure the error
// is a *Failure and the result is nil.
func (c *PositionCalculator) Calculate(ctx context.Context, req PositionRequest) (*PositionResult, error) {
	r := newRun(c.log.With().Str("pair", req.Pair).Logger())

	r.enter(Validating)
	if err := req.validate(); err != nil {
		return nil, r.fail(err)
	}
	pair, err := c.catalog.LookupBySymbol(req.Pair)
	if err != nil {
		return nil, r.fail(err)
	}
	account := market.ParseCurrency(req.AccountCurrency)

	p, err := c.price(ctx, r, pair, account)
	if err != nil {
		return nil, r.fail(err)
	}

	r.enter(Computing)
	weight := p.conversion.Weight
	pos, err := risk.PositionSize(req.AccountBalance, req.RiskPercent, req.StopLossPips, pair, weight)
	if err != nil {
		return nil, r.fail(err)
	}
	dd, err := risk.ProjectDrawdown(pos.AmountAtRisk, req.AccountBalance)
	if err != nil {
		return nil, r.fail(err)
	}
	suggested, err := risk.SuggestedLots(req.AccountBalance, req.StopLossPips, pair, weight)
	if err != nil {
		return nil, r.fail(err)
	}
	rr := risk.RR(req.TakeProfitPips, req.StopLossPips, pos.StandardLots, pos.PipValuePerStandardLot)

	recID, at := c.newID()
	res := &PositionResult{
		ID:            recID,
		CreatedAt:     at,
		Snapshot:      req,
		Quote:         quoteInfo(p.quote),
		Conversion:    p.conversion,
		Position:      pos,
		RiskReward:    rr,
		Drawdown:      dd,
		SuggestedLots: suggested,
		Decision: risk.Evaluate(c.policy, risk.Plan{
			RiskPct:        req.RiskPercent,
			TakeProfitPips: req.TakeProfitPips,
			RR:             rr,
			Drawdown:       dd,
		}),
	}
	r.enter(Done)

	c.record(ctx, journal.KindPosition, recID, at, pair, account, res.Quote, req, res)
	return res, nil
}
