package calculator

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/fxtools/journal"
	"github.com/rustyeddy/fxtools/market"
	"github.com/rustyeddy/fxtools/risk"
)

// PipRequest is the input of the pip value calculator. LotSize is in
// standard lots, 0.01 is one micro lot.
type PipRequest struct {
	Pair            string  `json:"pair"`
	LotSize         float64 `json:"lot_size"`
	AccountCurrency string  `json:"account_currency"`
}

func (r PipRequest) validate() error {
	switch {
	case r.Pair == "":
		return invalid("pair", "is required")
	case !finite(r.LotSize):
		return invalid("lot_size", "must be a finite number")
	case r.LotSize <= 0:
		return invalid("lot_size", "must be positive")
	case r.AccountCurrency == "":
		return invalid("account_currency", "is required")
	}
	return nil
}

type PipResult struct {
	ID         string     `json:"id"`
	CreatedAt  time.Time  `json:"created_at"`
	Snapshot   PipRequest `json:"snapshot"`
	Quote      QuoteInfo  `json:"quote"`
	Conversion Conversion `json:"conversion"`

	PipSize                float64 `json:"pip_size"`
	UnitsPerStandardLot    float64 `json:"units_per_standard_lot"`
	PipValuePerStandardLot float64 `json:"pip_value_per_standard_lot"`
	PipValue               float64 `json:"pip_value"`
}

type PipCalculator struct {
	engine
}

func NewPipCalculator(d Deps, log zerolog.Logger) *PipCalculator {
	return &PipCalculator{
		engine: newEngine(d, log.With().Str("component", "pip_calculator").Logger()),
	}
}

// Calculate prices one pip of req.LotSize lots in the account currency.
func (c *PipCalculator) Calculate(ctx context.Context, req PipRequest) (*PipResult, error) {
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
	recID, at := c.newID()
	res := &PipResult{
		ID:                     recID,
		CreatedAt:              at,
		Snapshot:               req,
		Quote:                  quoteInfo(p.quote),
		Conversion:             p.conversion,
		PipSize:                risk.PipSize(pair),
		UnitsPerStandardLot:    risk.UnitsPerStandardLot(pair),
		PipValuePerStandardLot: risk.PipValuePerStandardLot(pair, weight),
		PipValue:               risk.PipValue(pair, req.LotSize, weight),
	}
	r.enter(Done)

	c.record(ctx, journal.KindPip, recID, at, pair, account, res.Quote, req, res)
	return res, nil
}
