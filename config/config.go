package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/fxtools/market"
	"github.com/rustyeddy/fxtools/pricing"
)

const (
	// EnvMock selects the built-in price table instead of the network.
	EnvMock = "mock"
	// EnvOANDA reads asks from the OANDA REST API instead of GraphQL.
	EnvOANDA = "oanda"
)

var knownEnvs = map[string]bool{"dev": true, "staging": true, "production": true, EnvMock: true, EnvOANDA: true}

// Config is the static input to the quote pipeline and the server.
type Config struct {
	API       APIConfig             `json:"api" yaml:"api"`
	OANDA     OANDAConfig           `json:"oanda" yaml:"oanda"`
	Request   RequestConfig         `json:"request" yaml:"request"`
	RateLimit RateLimitConfig       `json:"rate_limit" yaml:"rate_limit"`
	Server    ServerConfig          `json:"server" yaml:"server"`
	Account   AccountConfig         `json:"account" yaml:"account"`
	Log       LogConfig             `json:"log" yaml:"log"`
	Journal   JournalConfig         `json:"journal" yaml:"journal"`
	Pairs     []market.CurrencyPair `json:"pairs,omitempty" yaml:"pairs,omitempty"`
}

// APIConfig locates the GraphQL quote API.
type APIConfig struct {
	Env   string `json:"env" yaml:"env"` // dev, staging, production, mock or oanda
	Host  string `json:"host" yaml:"host"`
	Port  int    `json:"port" yaml:"port"`
	Path  string `json:"path" yaml:"path"`
	Venue string `json:"venue" yaml:"venue"`
}

// OANDAConfig is only read when api.env is "oanda".
type OANDAConfig struct {
	Env       string `json:"env" yaml:"env"` // practice or live
	Token     string `json:"token,omitempty" yaml:"token,omitempty"`
	AccountID string `json:"account_id,omitempty" yaml:"account_id,omitempty"`
}

// RequestConfig bounds one quote lookup.
type RequestConfig struct {
	Timeout     string `json:"timeout" yaml:"timeout"` // e.g. "15s"
	MaxAttempts int    `json:"max_attempts" yaml:"max_attempts"`
	RetryDelay  string `json:"retry_delay" yaml:"retry_delay"`
}

type RateLimitConfig struct {
	MaxRequestsPerMinute int    `json:"max_requests_per_minute" yaml:"max_requests_per_minute"`
	CacheDuration        string `json:"cache_duration" yaml:"cache_duration"`
}

// ServerConfig is used by `fxcalc serve`.
type ServerConfig struct {
	Port        int    `json:"port" yaml:"port"`
	UpstreamURL string `json:"upstream_url" yaml:"upstream_url"`
}

// AccountConfig holds the defaults the calculators start from.
type AccountConfig struct {
	Currency       string  `json:"currency" yaml:"currency"`
	Balance        float64 `json:"balance" yaml:"balance"`
	RiskPercent    float64 `json:"risk_percent" yaml:"risk_percent"`
	StopLossPips   float64 `json:"stop_loss_pips" yaml:"stop_loss_pips"`
	TakeProfitPips float64 `json:"take_profit_pips" yaml:"take_profit_pips"`
	Pair           string  `json:"pair" yaml:"pair"`
	LotSize        float64 `json:"lot_size" yaml:"lot_size"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Pretty bool   `json:"pretty" yaml:"pretty"`
}

// JournalConfig toggles the in-memory calculation log.
type JournalConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		API: APIConfig{
			Env:   "dev",
			Host:  "http://localhost",
			Port:  5000,
			Path:  "/api",
			Venue: market.DefaultVenue,
		},
		OANDA: OANDAConfig{
			Env: "practice",
		},
		Request: RequestConfig{
			Timeout:     "15s",
			MaxAttempts: pricing.DefaultMaxAttempts,
			RetryDelay:  "1s",
		},
		RateLimit: RateLimitConfig{
			MaxRequestsPerMinute: pricing.DefaultMaxRequestsPerMinute,
			CacheDuration:        "60s",
		},
		Server: ServerConfig{
			Port:        5000,
			UpstreamURL: "https://marketmilk.babypips.com/api",
		},
		Account: AccountConfig{
			Currency:       "USD",
			Balance:        1000,
			RiskPercent:    2,
			StopLossPips:   35,
			TakeProfitPips: 70,
			Pair:           "EURUSD",
			LotSize:        0.01,
		},
		Log: LogConfig{
			Level: "info",
		},
		Journal: JournalConfig{
			Enabled: true,
		},
	}
}

// Load builds the runtime configuration. A .env file in the working
// directory is read into the process environment first, without
// replacing variables that are already set. Then the defaults are
// overlaid with the optional file at path, and finally with the
// environment, so env values (including those from .env) win.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		if err := cfg.merge(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a file (JSON or YAML) over the
// defaults, without looking at the environment.
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.merge(path); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) merge(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, c); err != nil {
		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}
	return nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}

	setString("FX_API_HOST", &c.API.Host)
	setString("FX_API_ENV", &c.API.Env)
	setString("FX_API_PATH", &c.API.Path)
	setString("FX_VENUE", &c.API.Venue)
	setString("FX_REQUEST_TIMEOUT", &c.Request.Timeout)
	setString("FX_RETRY_DELAY", &c.Request.RetryDelay)
	setString("FX_CACHE_DURATION", &c.RateLimit.CacheDuration)
	setString("RELAY_UPSTREAM_URL", &c.Server.UpstreamURL)
	setString("LOG_LEVEL", &c.Log.Level)
	setString("OANDA_ENV", &c.OANDA.Env)
	setString("OANDA_TOKEN", &c.OANDA.Token)
	setString("OANDA_ACCOUNT_ID", &c.OANDA.AccountID)

	for key, dst := range map[string]*int{
		"FX_API_PORT":   &c.API.Port,
		"FX_RETRIES":    &c.Request.MaxAttempts,
		"FX_RATE_LIMIT": &c.RateLimit.MaxRequestsPerMinute,
		"PORT":          &c.Server.Port,
	} {
		if err := setInt(key, dst); err != nil {
			return err
		}
	}

	if v := os.Getenv("LOG_PRETTY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LOG_PRETTY: %w", err)
		}
		c.Log.Pretty = b
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if !knownEnvs[c.API.Env] {
		return fmt.Errorf("api.env must be one of dev, staging, production, mock, oanda")
	}
	switch c.API.Env {
	case EnvMock:
	case EnvOANDA:
		if _, err := pricing.OANDABaseURL(c.OANDA.Env); err != nil {
			return fmt.Errorf("oanda.env: %w", err)
		}
		if c.OANDA.Token == "" || c.OANDA.AccountID == "" {
			return fmt.Errorf("oanda.token and oanda.account_id are required")
		}
	default:
		if c.API.Host == "" {
			return fmt.Errorf("api.host is required")
		}
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port out of range")
	}
	if c.Request.MaxAttempts < 1 {
		return fmt.Errorf("request.max_attempts must be at least 1")
	}
	if _, err := positiveDuration("request.timeout", c.Request.Timeout); err != nil {
		return err
	}
	if d, err := time.ParseDuration(c.Request.RetryDelay); err != nil || d < 0 {
		return fmt.Errorf("request.retry_delay must be a non-negative duration")
	}
	if c.RateLimit.MaxRequestsPerMinute <= 0 {
		return fmt.Errorf("rate_limit.max_requests_per_minute must be positive")
	}
	if _, err := positiveDuration("rate_limit.cache_duration", c.RateLimit.CacheDuration); err != nil {
		return err
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range")
	}
	if u, err := url.Parse(c.Server.UpstreamURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("server.upstream_url must be an absolute URL")
	}
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if _, err := market.DefaultCatalog(c.Pairs...); err != nil {
		return fmt.Errorf("pairs: %w", err)
	}
	return nil
}

func positiveDuration(name, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration", name)
	}
	return d, nil
}

// Endpoint is the GraphQL URL the quote client posts to.
func (c *Config) Endpoint() string {
	return pricing.Endpoint(c.API.Host, c.API.Port, c.API.Path)
}

// RequestTimeout assumes a validated config.
func (c *Config) RequestTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Request.Timeout)
	return d
}

// PricingOptions maps the config onto the quote client.
func (c *Config) PricingOptions() pricing.Options {
	delay, _ := time.ParseDuration(c.Request.RetryDelay)
	ttl, _ := time.ParseDuration(c.RateLimit.CacheDuration)
	return pricing.Options{
		MaxAttempts:          c.Request.MaxAttempts,
		RetryDelay:           delay,
		MaxRequestsPerMinute: c.RateLimit.MaxRequestsPerMinute,
		CacheDuration:        ttl,
	}
}

// Catalog builds the pair catalog, built-ins plus Pairs.
func (c *Config) Catalog() (*market.Catalog, error) {
	return market.DefaultCatalog(c.Pairs...)
}
