package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRateLimitExceeded is returned before any cache or network work
	// when the request window is full. It is never retried.
	ErrRateLimitExceeded = errors.New("rate limit exceeded, wait before making another request")

	// ErrQuoteFetchFailed is matched by every *FetchError.
	ErrQuoteFetchFailed = errors.New("failed to fetch quote")

	// ErrInvalidResponse covers malformed bodies and payload level errors.
	ErrInvalidResponse = errors.New("invalid quote response")

	// ErrNotConfigured means the transport lacks credentials and no
	// request was sent. It is never retried.
	ErrNotConfigured = errors.New("quote transport not configured")
)

// HTTPError is a non-200 answer from the quote API.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("quote api http %d", e.StatusCode)
	}
	return fmt.Sprintf("quote api http %d: %s", e.StatusCode, e.Body)
}

// FetchError is what FetchQuote returns once a lookup has failed for good.
type FetchError struct {
	Symbol   string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempt(s): %v", e.Symbol, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrQuoteFetchFailed }

func payloadError(messages []string) error {
	return fmt.Errorf("%w: %s", ErrInvalidResponse, strings.Join(messages, ", "))
}

// retryable: server errors and failures without any response. Client
// errors, bad payloads, missing credentials and a cancelled caller are final.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode >= 500
	}
	if errors.Is(err, ErrInvalidResponse) || errors.Is(err, ErrNotConfigured) {
		return false
	}
	return true
}
