package market

import "time"

// Quote is one ask price observation. It is never mutated; a newer
// fetch produces a new Quote.
type Quote struct {
	Pair      CurrencyPair `json:"pair"`
	Ask       float64      `json:"ask"`
	FetchedAt time.Time    `json:"fetched_at"`
	Venue     string       `json:"venue"`
	Cached    bool         `json:"cached"`
}

// AsCached returns a copy flagged as served from cache.
func (q Quote) AsCached() Quote {
	q.Cached = true
	return q
}

// Age is how old the quote is at now.
func (q Quote) Age(now time.Time) time.Duration {
	return now.Sub(q.FetchedAt)
}
