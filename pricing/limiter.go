package pricing

import (
	"sync"
	"time"
)

const (
	DefaultMaxRequestsPerMinute = 60
	rateWindow                  = time.Minute
)

// RateLimiter counts requests in a fixed window that restarts on the
// first request made more than a window after the current one began.
type RateLimiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	count  int
	start  time.Time
	now    func() time.Time
}

func NewRateLimiter(max int, now func() time.Time) *RateLimiter {
	if max <= 0 {
		max = DefaultMaxRequestsPerMinute
	}
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{max: max, window: rateWindow, now: now}
}

// Allow is check-and-increment. The whole sequence runs under the lock
// so at most max calls succeed per window.
func (l *RateLimiter) Allow() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.start) > l.window {
		l.count = 0
		l.start = now
	}
	if l.count >= l.max {
		return ErrRateLimitExceeded
	}
	l.count++
	return nil
}

// Snapshot returns the current counter and window start.
func (l *RateLimiter) Snapshot() (int, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count, l.start
}

func (l *RateLimiter) Max() int { return l.max }
