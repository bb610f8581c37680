package pricing

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/fxtools/market"
)

const (
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = time.Second
)

// Options configures a Client. Zero values fall back to the defaults.
type Options struct {
	MaxAttempts          int           // total attempts, first one included
	RetryDelay           time.Duration // fixed pause between attempts
	MaxRequestsPerMinute int
	CacheDuration        time.Duration

	// Now replaces time.Now for the cache, the limiter and FetchedAt.
	Now func() time.Time
}

func DefaultOptions() Options {
	return Options{
		MaxAttempts:          DefaultMaxAttempts,
		RetryDelay:           DefaultRetryDelay,
		MaxRequestsPerMinute: DefaultMaxRequestsPerMinute,
		CacheDuration:        DefaultCacheDuration,
	}
}

// Client fetches ask prices through a Transport, guarded by a
// RateLimiter and memoized in a Cache. It is safe for concurrent use.
type Client struct {
	transport Transport
	limiter   *RateLimiter
	cache     *Cache
	attempts  int
	delay     time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

func NewClient(t Transport, opts Options, log zerolog.Logger) *Client {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = 0
	}
	return &Client{
		transport: t,
		limiter:   NewRateLimiter(opts.MaxRequestsPerMinute, opts.Now),
		cache:     NewCache(opts.CacheDuration, opts.Now),
		attempts:  opts.MaxAttempts,
		delay:     opts.RetryDelay,
		now:       opts.Now,
		log:       log.With().Str("component", "quote_client").Logger(),
	}
}

// FetchQuote returns the ask price of pair. A full rate window fails
// with ErrRateLimitExceeded; a fresh cache entry short-circuits the
// network; anything else that goes wrong is a *FetchError.
func (c *Client) FetchQuote(ctx context.Context, pair market.CurrencyPair) (market.Quote, error) {
	if err := c.limiter.Allow(); err != nil {
		c.log.Warn().Str("pair", pair.Symbol).Msg("rate limit exceeded")
		return market.Quote{}, err
	}

	key := pair.SymbolID()
	if q, ok := c.cache.Get(key); ok {
		c.log.Debug().Str("key", key).Float64("ask", q.Ask).Msg("cache hit")
		return q, nil
	}

	ask, attempts, err := c.fetchWithRetry(ctx, key)
	if err != nil {
		return market.Quote{}, &FetchError{Symbol: key, Attempts: attempts, Err: err}
	}

	venue := ask.Venue
	if venue == "" {
		venue = pair.Venue
	}
	q := market.Quote{
		Pair:      pair,
		Ask:       ask.Price,
		FetchedAt: c.now(),
		Venue:     venue,
	}
	c.cache.Put(key, q)

	c.log.Info().
		Str("key", key).
		Float64("ask", q.Ask).
		Str("venue", venue).
		Int("attempts", attempts).
		Msg("fetched quote")
	return q, nil
}

func (c *Client) fetchWithRetry(ctx context.Context, symbolID string) (AskPrice, int, error) {
	for attempt := 1; ; attempt++ {
		ask, err := c.transport.FetchAsk(ctx, symbolID)
		if err == nil && (!(ask.Price > 0) || math.IsInf(ask.Price, 1)) {
			err = fmt.Errorf("%w: unusable price %v", ErrInvalidResponse, ask.Price)
		}
		if err == nil {
			return ask, attempt, nil
		}
		if attempt >= c.attempts || !retryable(ctx, err) {
			return AskPrice{}, attempt, err
		}

		c.log.Warn().
			Err(err).
			Str("key", symbolID).
			Int("attempt", attempt).
			Int("remaining", c.attempts-attempt).
			Msg("retrying quote request")

		if err := sleep(ctx, c.delay); err != nil {
			return AskPrice{}, attempt, err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Stats mirrors what the calculators show about the quote pipeline.
type Stats struct {
	CacheSize     int       `json:"cache_size"`
	CacheKeys     []string  `json:"cache_keys"`
	RequestCount  int       `json:"request_count"`
	WindowStart   time.Time `json:"window_start"`
	MaxPerMinute  int       `json:"max_per_minute"`
	CacheDuration string    `json:"cache_duration"`
}

func (c *Client) Stats() Stats {
	count, start := c.limiter.Snapshot()
	return Stats{
		CacheSize:     c.cache.Len(),
		CacheKeys:     c.cache.Keys(),
		RequestCount:  count,
		WindowStart:   start,
		MaxPerMinute:  c.limiter.Max(),
		CacheDuration: c.cache.TTL().String(),
	}
}

func (c *Client) ClearCache() {
	c.cache.Clear()
	c.log.Info().Msg("quote cache cleared")
}
