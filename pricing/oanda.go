package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// OANDABaseURL maps an OANDA environment name onto its REST host.
func OANDABaseURL(env string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "practice", "demo":
		return "https://api-fxpractice.oanda.com", nil
	case "live":
		return "https://api-fxtrade.oanda.com", nil
	default:
		return "", fmt.Errorf("unknown OANDA env %q (want practice|live)", env)
	}
}

// OANDATransport reads ask prices from the OANDA v3 pricing endpoint.
type OANDATransport struct {
	BaseURL   string // e.g. https://api-fxpractice.oanda.com
	Token     string
	AccountID string
	HTTP      *http.Client

	log zerolog.Logger
}

func NewOANDATransport(baseURL, token, accountID string, timeout time.Duration, log zerolog.Logger) *OANDATransport {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &OANDATransport{
		BaseURL:   baseURL,
		Token:     token,
		AccountID: accountID,
		HTTP:      &http.Client{Timeout: timeout},
		log:       log.With().Str("component", "oanda_transport").Logger(),
	}
}

// oandaInstruments covers the symbols OANDA does not spell BASE_QUOTE.
var oandaInstruments = map[string]string{
	"USOIL": "WTICO_USD",
}

// OANDAInstrument turns a catalog symbol into an OANDA instrument name,
// "EURUSD" becomes "EUR_USD".
func OANDAInstrument(symbol string) (string, error) {
	symbol = strings.ToUpper(symbol)
	if inst, ok := oandaInstruments[symbol]; ok {
		return inst, nil
	}
	if len(symbol) != 6 {
		return "", fmt.Errorf("%w: no OANDA instrument for %q", ErrInvalidResponse, symbol)
	}
	return symbol[:3] + "_" + symbol[3:], nil
}

type oandaPricing struct {
	Prices []struct {
		Instrument string `json:"instrument"`
		Asks       []struct {
			Price string `json:"price"`
		} `json:"asks"`
	} `json:"prices"`
}

func (o *OANDATransport) FetchAsk(ctx context.Context, symbolID string) (AskPrice, error) {
	if err := o.configured(); err != nil {
		return AskPrice{}, err
	}

	symbol := symbolID
	if i := strings.IndexByte(symbolID, ':'); i >= 0 {
		symbol = symbolID[i+1:]
	}
	inst, err := OANDAInstrument(symbol)
	if err != nil {
		return AskPrice{}, err
	}

	body, err := o.get(ctx, fmt.Sprintf("/v3/accounts/%s/pricing", o.AccountID), map[string]string{"instruments": inst})
	if err != nil {
		return AskPrice{}, err
	}
	defer body.Close()

	var resp oandaPricing
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return AskPrice{}, fmt.Errorf("%w: decode oanda pricing: %v", ErrInvalidResponse, err)
	}
	if len(resp.Prices) == 0 || len(resp.Prices[0].Asks) == 0 {
		return AskPrice{}, fmt.Errorf("%w: no ask for %s", ErrInvalidResponse, inst)
	}
	price, err := strconv.ParseFloat(resp.Prices[0].Asks[0].Price, 64)
	if err != nil {
		return AskPrice{}, fmt.Errorf("%w: ask %q: %v", ErrInvalidResponse, resp.Prices[0].Asks[0].Price, err)
	}

	o.log.Debug().Str("instrument", inst).Float64("ask", price).Msg("oanda ask")
	return AskPrice{Price: price, Venue: "OANDA"}, nil
}

func (o *OANDATransport) configured() error {
	if o.Token == "" {
		return fmt.Errorf("%w: oanda token missing", ErrNotConfigured)
	}
	if o.AccountID == "" {
		return fmt.Errorf("%w: oanda account id missing", ErrNotConfigured)
	}
	return nil
}

func (o *OANDATransport) get(ctx context.Context, path string, opts map[string]string) (io.ReadCloser, error) {
	u, err := url.Parse(o.BaseURL)
	if err != nil {
		return nil, err
	}
	u.Path = path

	q := u.Query()
	for k, v := range opts {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+o.Token)
	req.Header.Set("Accept-Datetime-Format", "RFC3339")

	resp, err := o.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		resp.Body.Close()
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return resp.Body, nil
}

// HealthCheck asks for the account summary, which fails on a bad token
// or account id.
func (o *OANDATransport) HealthCheck(ctx context.Context) error {
	if err := o.configured(); err != nil {
		return err
	}
	body, err := o.get(ctx, fmt.Sprintf("/v3/accounts/%s/summary", o.AccountID), nil)
	if err != nil {
		return err
	}
	return body.Close()
}
