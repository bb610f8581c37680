package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultRequestTimeout bounds one GraphQL round trip.
	DefaultRequestTimeout = 15 * time.Second

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

const askPriceQuery = `query PipValuePrice($askSymbolId: ID!) {
  ask: symbol(id: $askSymbolId) {
    price
    broker {
      id
      name
    }
    base
    cross
    title
  }
}`

const healthQuery = `query HealthCheck {
  __schema {
    queryType {
      name
    }
  }
}`

// Endpoint builds "<host>:<port><path>", the address the GraphQL API is
// served on. Path defaults to /api.
func Endpoint(host string, port int, path string) string {
	if path == "" {
		path = "/api"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	host = strings.TrimRight(host, "/")
	if port <= 0 {
		return host + path
	}
	return fmt.Sprintf("%s:%d%s", host, port, path)
}

// GraphQLTransport posts the ask price query to a GraphQL endpoint,
// usually the relay served by `fxcalc serve`.
type GraphQLTransport struct {
	endpoint   string
	httpClient *http.Client
	log        zerolog.Logger
}

func NewGraphQLTransport(endpoint string, timeout time.Duration, log zerolog.Logger) *GraphQLTransport {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &GraphQLTransport{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log.With().Str("component", "graphql").Logger(),
	}
}

type graphqlRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type askSymbol struct {
	Price  json.Number `json:"price"`
	Broker struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"broker"`
	Base  string `json:"base"`
	Cross string `json:"cross"`
	Title string `json:"title"`
}

type askResponse struct {
	Data struct {
		Ask *askSymbol `json:"ask"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

// FetchAsk implements Transport.
func (g *GraphQLTransport) FetchAsk(ctx context.Context, symbolID string) (AskPrice, error) {
	var resp askResponse
	err := g.post(ctx, graphqlRequest{
		Query:     askPriceQuery,
		Variables: map[string]any{"askSymbolId": symbolID},
	}, &resp)
	if err != nil {
		return AskPrice{}, err
	}

	if len(resp.Errors) > 0 {
		return AskPrice{}, payloadError(messages(resp.Errors))
	}
	if resp.Data.Ask == nil {
		return AskPrice{}, fmt.Errorf("%w: missing ask for %s", ErrInvalidResponse, symbolID)
	}

	price, err := resp.Data.Ask.Price.Float64()
	if err != nil {
		return AskPrice{}, fmt.Errorf("%w: parse price %q: %v", ErrInvalidResponse, resp.Data.Ask.Price, err)
	}
	return AskPrice{Price: price, Venue: resp.Data.Ask.Broker.Name}, nil
}

// HealthCheck asks the endpoint for its schema root.
func (g *GraphQLTransport) HealthCheck(ctx context.Context) error {
	var resp struct {
		Errors []graphqlError `json:"errors"`
	}
	if err := g.post(ctx, graphqlRequest{Query: healthQuery, Variables: map[string]any{}}, &resp); err != nil {
		return err
	}
	if len(resp.Errors) > 0 {
		return payloadError(messages(resp.Errors))
	}
	return nil
}

func (g *GraphQLTransport) post(ctx context.Context, body graphqlRequest, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", requestID)

	g.log.Debug().
		Str("request_id", requestID).
		Interface("variables", body.Variables).
		Msg("graphql request")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrInvalidResponse, err)
	}
	return nil
}

func messages(errs []graphqlError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Message)
	}
	return out
}
