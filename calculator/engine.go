// Package calculator sequences the position size and pip value
// calculators: validate the request, resolve the account currency
// weight, fetch the quote, compute, and optionally record the result.
package calculator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/fxtools/journal"
	"github.com/rustyeddy/fxtools/market"
	"github.com/rustyeddy/fxtools/pkg/id"
	"github.com/rustyeddy/fxtools/risk"
)

// QuoteFetcher is satisfied by *pricing.Client.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, pair market.CurrencyPair) (market.Quote, error)
}

// Recorder receives every successful calculation. journal.Journal
// satisfies it.
type Recorder interface {
	RecordCalculation(ctx context.Context, rec journal.CalculationRecord) error
}

// Deps are shared by both calculators. Catalog and Quotes are required.
type Deps struct {
	Catalog  *market.Catalog
	Quotes   QuoteFetcher
	Recorder Recorder    // optional
	Policy   risk.Policy // zero value means risk.DefaultPolicy()
	Now      func() time.Time
}

type engine struct {
	catalog  *market.Catalog
	quotes   QuoteFetcher
	recorder Recorder
	policy   risk.Policy
	now      func() time.Time
	log      zerolog.Logger
}

func newEngine(d Deps, log zerolog.Logger) engine {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Policy == (risk.Policy{}) {
		d.Policy = risk.DefaultPolicy()
	}
	return engine{
		catalog:  d.Catalog,
		quotes:   d.Quotes,
		recorder: d.Recorder,
		policy:   d.Policy,
		now:      d.Now,
		log:      log,
	}
}

// QuoteInfo is the quote metadata attached to a result.
type QuoteInfo struct {
	Symbol    string    `json:"symbol"`
	Ask       float64   `json:"ask"`
	Venue     string    `json:"venue"`
	FetchedAt time.Time `json:"fetched_at"`
	Cached    bool      `json:"cached"`
}

func quoteInfo(q market.Quote) QuoteInfo {
	return QuoteInfo{
		Symbol:    q.Pair.Symbol,
		Ask:       q.Ask,
		Venue:     q.Venue,
		FetchedAt: q.FetchedAt,
		Cached:    q.Cached,
	}
}

// Conversion describes how the quote currency was mapped onto the
// account currency. Pair is empty when no conversion was needed.
type Conversion struct {
	Pair     string  `json:"pair,omitempty"`
	Ask      float64 `json:"ask,omitempty"`
	Inverted bool    `json:"inverted,omitempty"`
	Weight   float64 `json:"weight"`
}

type priced struct {
	quote      market.Quote
	conversion Conversion
}

// price fetches the primary quote and, when the pair is not quoted in
// the account currency, the quote of the pair relating the two. Both
// fetches are independent reads and run concurrently; either failure
// aborts the run.
func (e *engine) price(ctx context.Context, r *run, pair market.CurrencyPair, account market.Currency) (priced, error) {
	needs := market.NeedsConversion(pair, account)

	var conv market.CurrencyPair
	if needs {
		r.enter(ResolvingWeight)
		c, err := e.catalog.LookupByComponents(pair.Quote, account)
		if err != nil {
			return priced{}, err
		}
		conv = c
	}

	r.enter(FetchingQuote)
	var primary, convQuote market.Quote
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q, err := e.quotes.FetchQuote(gctx, pair)
		if err != nil {
			return &Failure{State: FetchingQuote, Err: err}
		}
		primary = q
		return nil
	})
	// EURUSD on an EUR account converts through itself.
	separate := needs && conv.Symbol != pair.Symbol
	if separate {
		g.Go(func() error {
			q, err := e.quotes.FetchQuote(gctx, conv)
			if err != nil {
				return &Failure{State: ResolvingWeight, Err: err}
			}
			convQuote = q
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return priced{}, err
	}

	out := priced{quote: primary, conversion: Conversion{Weight: 1}}
	if !needs {
		return out, nil
	}
	if !separate {
		convQuote = primary
	}
	w, err := market.ConversionWeight(conv, pair.Quote, account, convQuote.Ask)
	if err != nil {
		return priced{}, &Failure{State: ResolvingWeight, Err: fmt.Errorf("%w: %v", risk.ErrCalculation, err)}
	}
	out.conversion = Conversion{
		Pair:     conv.Symbol,
		Ask:      convQuote.Ask,
		Inverted: conv.Inverted(pair.Quote, account),
		Weight:   w,
	}
	r.log.Debug().
		Str("via", conv.Symbol).
		Float64("weight", w).
		Msg("resolved account currency weight")
	return out, nil
}

// record hands a finished calculation to the recorder. Failures are
// logged and never fail the calculation.
func (e *engine) record(ctx context.Context, kind, recID string, at time.Time, pair market.CurrencyPair, account market.Currency, q QuoteInfo, params, result any) {
	if e.recorder == nil {
		return
	}
	p, err := json.Marshal(params)
	if err != nil {
		e.log.Error().Err(err).Msg("encode calculation parameters")
		return
	}
	res, err := json.Marshal(result)
	if err != nil {
		e.log.Error().Err(err).Msg("encode calculation result")
		return
	}

	rec := journal.CalculationRecord{
		ID:              recID,
		Kind:            kind,
		Pair:            pair.Symbol,
		AccountCurrency: string(account),
		Ask:             q.Ask,
		Cached:          q.Cached,
		Parameters:      string(p),
		Result:          string(res),
		CreatedAt:       at,
	}
	if err := e.recorder.RecordCalculation(ctx, rec); err != nil {
		e.log.Error().Err(err).Str("id", recID).Msg("record calculation")
	}
}

func (e *engine) newID() (string, time.Time) {
	at := e.now().UTC()
	return id.New(at), at
}
