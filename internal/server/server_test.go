package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/fxtools/calculator"
	"github.com/rustyeddy/fxtools/journal"
	"github.com/rustyeddy/fxtools/market"
	"github.com/rustyeddy/fxtools/pricing"
)

type testEnv struct {
	srv     *Server
	client  *pricing.Client
	journal *journal.SQLite
}

func newTestEnv(t *testing.T, opts pricing.Options, mutate func(c *Config)) *testEnv {
	t.Helper()

	cat, err := market.DefaultCatalog(market.CurrencyPair{Symbol: "AUDNZD", Base: market.AUD, Quote: market.NZD})
	require.NoError(t, err)

	j, err := journal.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	client := pricing.NewClient(
		pricing.NewStaticTransport(pricing.MockRates(), market.DefaultVenue),
		opts,
		zerolog.Nop(),
	)
	deps := calculator.Deps{Catalog: cat, Quotes: client, Recorder: j}

	cfg := Config{
		Port:     0,
		Log:      zerolog.Nop(),
		Catalog:  cat,
		Position: calculator.NewPositionCalculator(deps, zerolog.Nop()),
		Pip:      calculator.NewPipCalculator(deps, zerolog.Nop()),
		Quotes:   client,
		Journal:  j,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return &testEnv{srv: New(cfg), client: client, journal: j}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	decode(t, rec, &body)
	return body["error"]
}

func TestHealth(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, pricing.DefaultOptions(), nil)
	rec := env.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

type stubChecker struct{ err error }

func (s stubChecker) HealthCheck(ctx context.Context) error { return s.err }

func TestUpstreamHealth(t *testing.T) {
	t.Parallel()

	mock := newTestEnv(t, pricing.DefaultOptions(), nil)
	rec := mock.do(t, http.MethodGet, "/health/upstream", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","upstream":"mock"}`, rec.Body.String())

	up := newTestEnv(t, pricing.DefaultOptions(), func(c *Config) { c.Upstream = stubChecker{} })
	rec = up.do(t, http.MethodGet, "/health/upstream", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	down := newTestEnv(t, pricing.DefaultOptions(), func(c *Config) { c.Upstream = stubChecker{err: errors.New("dial tcp: refused")} })
	rec = down.do(t, http.MethodGet, "/health/upstream", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "refused")
}

func TestRelay(t *testing.T) {
	t.Parallel()

	payload := `{"query":"query PipValuePrice($askSymbolId: ID!) { ask(symbolId: $askSymbolId) { price } }","variables":{"askSymbolId":"OANDA:EURUSD"}}`

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Equal(t, payload, string(body))
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"ask":{"price":1.085}}}`))
	}))
	t.Cleanup(upstream.Close)

	env := newTestEnv(t, pricing.DefaultOptions(), func(c *Config) { c.UpstreamURL = upstream.URL })
	rec := env.do(t, http.MethodPost, "/api", payload)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"ask":{"price":1.085}}}`, rec.Body.String())
}

func TestRelayFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"upstream error status", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"error":"bad gateway"}`))
		}},
		{"upstream client error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{}`))
		}},
		{"non JSON body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>maintenance</html>`))
		}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			upstream := httptest.NewServer(tt.handler)
			t.Cleanup(upstream.Close)

			env := newTestEnv(t, pricing.DefaultOptions(), func(c *Config) { c.UpstreamURL = upstream.URL })
			rec := env.do(t, http.MethodPost, "/api", `{}`)
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, "Proxy failed", errorBody(t, rec))
		})
	}

	t.Run("unreachable upstream", func(t *testing.T) {
		t.Parallel()

		upstream := httptest.NewServer(http.NotFoundHandler())
		url := upstream.URL
		upstream.Close()

		env := newTestEnv(t, pricing.DefaultOptions(), func(c *Config) {
			c.UpstreamURL = url
			c.RelayTimeout = time.Second
		})
		rec := env.do(t, http.MethodPost, "/api", `{}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Proxy failed", errorBody(t, rec))
	})
}

func TestCORS(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, pricing.DefaultOptions(), nil)
	req := httptest.NewRequest(http.MethodOptions, "/api", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCalcPosition(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, pricing.DefaultOptions(), nil)
	rec := env.do(t, http.MethodPost, "/calc/position",
		`{"pair":"EUR/USD","account_balance":1000,"risk_percent":2,"stop_loss_pips":35,"take_profit_pips":70}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res calculator.PositionResult
	decode(t, rec, &res)
	assert.InDelta(t, 20.0/350.0, res.Position.StandardLots, 1e-12)
	assert.InDelta(t, 2.0, res.RiskReward.Ratio, 1e-12)
	assert.Equal(t, "USD", res.Snapshot.AccountCurrency)
	assert.InDelta(t, 1.085, res.Quote.Ask, 1e-12)
	assert.Len(t, res.Drawdown, 4)

	rec = env.do(t, http.MethodGet, "/calc/log", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var log struct {
		Calculations []journal.CalculationRecord `json:"calculations"`
		Count        int                         `json:"count"`
	}
	decode(t, rec, &log)
	require.Equal(t, 1, log.Count)
	assert.Equal(t, res.ID, log.Calculations[0].ID)
	assert.Equal(t, journal.KindPosition, log.Calculations[0].Kind)
}

func TestCalcErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		msg    string
	}{
		{
			name:   "bad json",
			path:   "/calc/position",
			body:   `{"pair":`,
			status: http.StatusBadRequest,
			msg:    "Invalid request body",
		},
		{
			name:   "validation",
			path:   "/calc/position",
			body:   `{"pair":"EURUSD","account_balance":1000,"risk_percent":2,"stop_loss_pips":0}`,
			status: http.StatusBadRequest,
			msg:    "stop_loss_pips must be positive",
		},
		{
			name:   "unknown pair",
			path:   "/calc/pip",
			body:   `{"pair":"ZZZYYY","lot_size":1}`,
			status: http.StatusNotFound,
			msg:    "unknown currency pair: ZZZYYY",
		},
		{
			name:   "fetch failure",
			path:   "/calc/pip",
			body:   `{"pair":"AUDNZD","lot_size":1,"account_currency":"NZD"}`,
			status: http.StatusBadGateway,
			msg:    "Failed to fetch price, please try again.",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t, pricing.DefaultOptions(), nil)
			rec := env.do(t, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.msg, errorBody(t, rec))
		})
	}
}

func TestCalcRateLimited(t *testing.T) {
	t.Parallel()

	opts := pricing.DefaultOptions()
	opts.MaxRequestsPerMinute = 1
	env := newTestEnv(t, opts, nil)

	body := `{"pair":"EURUSD","lot_size":1}`
	rec := env.do(t, http.MethodPost, "/calc/pip", body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/calc/pip", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, errorBody(t, rec), "Rate limit exceeded")
}

func TestCalcPip(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, pricing.DefaultOptions(), nil)
	rec := env.do(t, http.MethodPost, "/calc/pip", `{"pair":"USDJPY","lot_size":0.01,"account_currency":"JPY"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res calculator.PipResult
	decode(t, rec, &res)
	assert.InDelta(t, 0.01, res.PipSize, 1e-12)
	assert.InDelta(t, 10.0, res.PipValue, 1e-9)
}

func TestPairsStatsAndCache(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, pricing.DefaultOptions(), nil)

	rec := env.do(t, http.MethodGet, "/calc/pairs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var pairs struct {
		Pairs []pairInfo `json:"pairs"`
	}
	decode(t, rec, &pairs)
	assert.Len(t, pairs.Pairs, 14)
	assert.Equal(t, "OANDA:EURUSD", pairs.Pairs[0].SymbolID)
	assert.InDelta(t, 0.0001, pairs.Pairs[0].PipSize, 1e-12)

	rec = env.do(t, http.MethodPost, "/calc/pip", `{"pair":"EURUSD","lot_size":1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/calc/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats pricing.Stats
	decode(t, rec, &stats)
	assert.Equal(t, 1, stats.CacheSize)
	assert.Equal(t, 1, stats.RequestCount)
	assert.Equal(t, []string{"OANDA:EURUSD"}, stats.CacheKeys)

	rec = env.do(t, http.MethodDelete, "/calc/cache", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, env.client.Stats().CacheSize)
}

func TestCalcLog(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, pricing.DefaultOptions(), nil)
	rec := env.do(t, http.MethodGet, "/calc/log?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/calc/log", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"calculations":[],"count":0}`, rec.Body.String())

	disabled := newTestEnv(t, pricing.DefaultOptions(), func(c *Config) { c.Journal = nil })
	rec = disabled.do(t, http.MethodGet, "/calc/log", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = disabled.do(t, http.MethodGet, "/calc/log/01ARZ3NDEKTSV4RRFFQ69G5FAV", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCalcLogEntryAndRange(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, pricing.DefaultOptions(), nil)
	rec := env.do(t, http.MethodPost, "/calc/pip", `{"pair":"USDJPY","lot_size":1,"account_currency":"USD"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res calculator.PipResult
	decode(t, rec, &res)

	rec = env.do(t, http.MethodGet, "/calc/log/"+res.ID, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got journal.CalculationRecord
	decode(t, rec, &got)
	assert.Equal(t, res.ID, got.ID)
	assert.Equal(t, journal.KindPip, got.Kind)
	assert.Equal(t, "USDJPY", got.Pair)

	rec = env.do(t, http.MethodGet, "/calc/log/01ARZ3NDEKTSV4RRFFQ69G5FAV", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/calc/log/not-an-id", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var log struct {
		Calculations []journal.CalculationRecord `json:"calculations"`
		Count        int                         `json:"count"`
	}
	since := res.CreatedAt.Add(-time.Hour).Format(time.RFC3339)
	rec = env.do(t, http.MethodGet, "/calc/log?since="+since, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &log)
	require.Equal(t, 1, log.Count)
	assert.Equal(t, res.ID, log.Calculations[0].ID)

	until := res.CreatedAt.Add(-time.Minute).Format(time.RFC3339)
	rec = env.do(t, http.MethodGet, "/calc/log?until="+until, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"calculations":[],"count":0}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/calc/log?since=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStartAndShutdown(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, pricing.DefaultOptions(), nil)
	env.srv.server.Addr = "127.0.0.1:0"

	done := make(chan error, 1)
	go func() { done <- env.srv.Start() }()

	// Shutdown may land before ListenAndServe; both paths end in ErrServerClosed.
	time.Sleep(10 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, env.srv.Shutdown(ctx))
	assert.ErrorIs(t, <-done, http.ErrServerClosed)
}

func TestWriteJSONBody(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, pricing.DefaultOptions(), nil)
	rec := httptest.NewRecorder()
	env.srv.writeError(rec, http.StatusTeapot, "short and stout")
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte(`{"error":"short and stout"}`)))
}
