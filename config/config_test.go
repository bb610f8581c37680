package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/fxtools/market"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, "USD", cfg.Account.Currency)
	assert.Equal(t, 1000.0, cfg.Account.Balance)
	assert.Equal(t, "http://localhost:5000/api", cfg.Endpoint())
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout())
	assert.NoError(t, cfg.Validate())

	opts := cfg.PricingOptions()
	assert.Equal(t, 3, opts.MaxAttempts)
	assert.Equal(t, time.Second, opts.RetryDelay)
	assert.Equal(t, 60, opts.MaxRequestsPerMinute)
	assert.Equal(t, time.Minute, opts.CacheDuration)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"unknown env", func(c *Config) { c.API.Env = "qa" }, "api.env must be one of"},
		{"missing host", func(c *Config) { c.API.Host = "" }, "api.host is required"},
		{"zero attempts", func(c *Config) { c.Request.MaxAttempts = 0 }, "request.max_attempts must be at least 1"},
		{"bad timeout", func(c *Config) { c.Request.Timeout = "soon" }, "request.timeout must be a positive duration"},
		{"negative delay", func(c *Config) { c.Request.RetryDelay = "-1s" }, "request.retry_delay"},
		{"zero rate", func(c *Config) { c.RateLimit.MaxRequestsPerMinute = 0 }, "rate_limit.max_requests_per_minute"},
		{"zero ttl", func(c *Config) { c.RateLimit.CacheDuration = "0s" }, "rate_limit.cache_duration"},
		{"bad upstream", func(c *Config) { c.Server.UpstreamURL = "not a url" }, "server.upstream_url"},
		{"no currency", func(c *Config) { c.Account.Currency = "" }, "account.currency is required"},
		{"oanda without token", func(c *Config) { c.API.Env = EnvOANDA }, "oanda.token and oanda.account_id are required"},
		{"oanda bad env", func(c *Config) {
			c.API.Env = EnvOANDA
			c.OANDA = OANDAConfig{Env: "paper", Token: "t", AccountID: "101"}
		}, "oanda.env"},
		{"duplicate pair", func(c *Config) {
			c.Pairs = []market.CurrencyPair{{Symbol: "EURUSD", Base: "EUR", Quote: "USD"}}
		}, "pairs: duplicate pair symbol EURUSD"},
		{"degenerate pair", func(c *Config) {
			c.Pairs = []market.CurrencyPair{{Symbol: "USDUSD", Base: "USD", Quote: "USD"}}
		}, "base and quote must differ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	mock := Default()
	mock.API.Env = EnvMock
	mock.API.Host = ""
	assert.NoError(t, mock.Validate(), "mock env needs no host")

	oanda := Default()
	oanda.API.Env = EnvOANDA
	oanda.OANDA.Token = "secret"
	oanda.OANDA.AccountID = "101-001-1234567-001"
	assert.NoError(t, oanda.Validate())
}

func TestSaveAndLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fxcalc.yaml")

	cfg := Default()
	cfg.API.Env = "staging"
	cfg.Account.Currency = "EUR"
	cfg.Pairs = []market.CurrencyPair{{Symbol: "AUDJPY", Base: market.AUD, Quote: market.JPY}}
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "staging", loaded.API.Env)
	assert.Equal(t, "EUR", loaded.Account.Currency)

	cat, err := loaded.Catalog()
	require.NoError(t, err)
	_, err = cat.LookupBySymbol("AUDJPY")
	assert.NoError(t, err)
}

func TestLoadPartialJSONKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fxcalc.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"api":{"env":"mock"},"request":{"max_attempts":5}}`), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, EnvMock, cfg.API.Env)
	assert.Equal(t, 5, cfg.Request.MaxAttempts)
	assert.Equal(t, "15s", cfg.Request.Timeout)
	assert.Equal(t, 60, cfg.RateLimit.MaxRequestsPerMinute)
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("request: [unterminated"), 0644))
	_, err = LoadFromFile(path)
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FX_API_HOST", "http://test.com")
	t.Setenv("FX_API_PORT", "3333")
	t.Setenv("FX_RETRIES", "4")
	t.Setenv("FX_RETRY_DELAY", "250ms")
	t.Setenv("FX_CACHE_DURATION", "30s")
	t.Setenv("FX_RATE_LIMIT", "10")
	t.Setenv("PORT", "8080")
	t.Setenv("LOG_PRETTY", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://test.com:3333/api", cfg.Endpoint())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.Log.Pretty)

	opts := cfg.PricingOptions()
	assert.Equal(t, 4, opts.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, opts.RetryDelay)
	assert.Equal(t, 30*time.Second, opts.CacheDuration)
	assert.Equal(t, 10, opts.MaxRequestsPerMinute)
}

func TestLoadDotEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	// Registers the restore before godotenv sets the variable.
	t.Setenv("FX_RATE_LIMIT", "")
	require.NoError(t, os.Unsetenv("FX_RATE_LIMIT"))
	t.Setenv("FX_RETRIES", "5")

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FX_RATE_LIMIT=7\nFX_RETRIES=9\n"), 0644))
	path := filepath.Join(dir, "fxcalc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rate_limit:\n  max_requests_per_minute: 20\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.RateLimit.MaxRequestsPerMinute)
	// Variables already in the environment are not replaced by .env.
	assert.Equal(t, 5, cfg.PricingOptions().MaxAttempts)
}

func TestLoadEnvBadInt(t *testing.T) {
	t.Setenv("FX_API_PORT", "many")
	_, err := Load("")
	assert.Error(t, err)
}
