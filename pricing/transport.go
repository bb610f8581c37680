package pricing

import "context"

// AskPrice is what a transport reads out of one lookup.
type AskPrice struct {
	Price float64
	Venue string
}

// Transport performs a single round trip for a venue qualified symbol
// such as "OANDA:EURUSD". Retrying is the Client's job.
//
// Implementations return *HTTPError for non-200 answers and wrap
// ErrInvalidResponse for bodies that cannot be used; any other error is
// treated as "no response".
type Transport interface {
	FetchAsk(ctx context.Context, symbolID string) (AskPrice, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, symbolID string) (AskPrice, error)

func (f TransportFunc) FetchAsk(ctx context.Context, symbolID string) (AskPrice, error) {
	return f(ctx, symbolID)
}
