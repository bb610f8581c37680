package pricing

import (
	"context"
	"net/http"
	"strings"
)

// MockRates are the demo prices served when the API environment is
// "mock".
func MockRates() map[string]float64 {
	return map[string]float64{
		"EURUSD": 1.085,
		"GBPUSD": 1.265,
		"USDJPY": 149.5,
		"USDCHF": 0.875,
		"AUDUSD": 0.658,
		"USDCAD": 1.365,
		"NZDUSD": 0.612,
		"EURGBP": 0.858,
		"EURJPY": 162.15,
		"GBPJPY": 189.05,
		"XAUUSD": 2350.4,
		"USOIL":  78.25,
		"BTCUSD": 64250,
	}
}

// StaticTransport answers from a fixed price table. Unknown symbols get
// a 404 so the client fails them without retrying. The table is never
// written after construction.
type StaticTransport struct {
	rates map[string]float64
	venue string
}

func NewStaticTransport(rates map[string]float64, venue string) *StaticTransport {
	cp := make(map[string]float64, len(rates))
	for k, v := range rates {
		cp[strings.ToUpper(k)] = v
	}
	return &StaticTransport{rates: cp, venue: venue}
}

func (s *StaticTransport) FetchAsk(ctx context.Context, symbolID string) (AskPrice, error) {
	if err := ctx.Err(); err != nil {
		return AskPrice{}, err
	}

	venue, symbol := s.venue, symbolID
	if i := strings.IndexByte(symbolID, ':'); i >= 0 {
		venue, symbol = symbolID[:i], symbolID[i+1:]
	}

	price, ok := s.rates[strings.ToUpper(symbol)]
	if !ok {
		return AskPrice{}, &HTTPError{StatusCode: http.StatusNotFound, Body: "unknown symbol " + symbolID}
	}
	return AskPrice{Price: price, Venue: venue}, nil
}
