package pricing

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterWindow(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	l := NewRateLimiter(5, clk.Now)

	for i := 0; i < 5; i++ {
		require.NoError(t, l.Allow(), "call %d", i+1)
	}
	assert.ErrorIs(t, l.Allow(), ErrRateLimitExceeded)

	// still inside the window: exactly 60s is not "more than" a minute
	clk.Advance(time.Minute)
	assert.ErrorIs(t, l.Allow(), ErrRateLimitExceeded)

	clk.Advance(time.Millisecond)
	assert.NoError(t, l.Allow())

	count, start := l.Snapshot()
	assert.Equal(t, 1, count)
	assert.Equal(t, clk.Now(), start)
}

func TestRateLimiterDefaultMax(t *testing.T) {
	t.Parallel()

	l := NewRateLimiter(0, nil)
	assert.Equal(t, DefaultMaxRequestsPerMinute, l.Max())
}

func TestRateLimiterConcurrent(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	l := NewRateLimiter(25, clk.Now)

	var ok int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow() == nil {
				atomic.AddInt64(&ok, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(25), ok)
}
