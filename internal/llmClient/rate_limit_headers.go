package llmclient

import (
	"errors"
	"fmt"
	"time"
)

// RateLimitHeaders represents normalized provider rate-limit signals.
type RateLimitHeaders struct {
	RetryAfterSeconds int

	LimitRequests     int
	LimitTokens       int
	RemainingRequests int
	RemainingTokens   int

	ResetRequests time.Duration
	ResetTokens   time.Duration
}

// RateLimitHeaderAwareClient is an optional interface for clients that expose
// parsed provider rate-limit headers.
type RateLimitHeaderAwareClient interface {
	LastRateLimitHeaders() (RateLimitHeaders, bool)
}

// NextWait converts provider rate-limit signals to a wait duration. Zero means no hint.
func (h RateLimitHeaders) NextWait() time.Duration {
	if h.RetryAfterSeconds > 0 {
		return time.Duration(h.RetryAfterSeconds) * time.Second
	}
	if h.RemainingTokens == 0 && h.ResetTokens > 0 {
		return h.ResetTokens
	}
	if h.RemainingRequests == 0 && h.ResetRequests > 0 {
		return h.ResetRequests
	}
	return 0
}

// RateLimitedError is returned for HTTP 429 answers. It is retryable.
type RateLimitedError struct {
	Headers RateLimitHeaders
}

func (e *RateLimitedError) Error() string {
	if w := e.Headers.NextWait(); w > 0 {
		return fmt.Sprintf("rate limited, retry after %s", w)
	}
	return "rate limited"
}

// RetryAfter extracts the provider's wait hint from err, if any.
func RetryAfter(err error) (time.Duration, bool) {
	var rl *RateLimitedError
	if !errors.As(err, &rl) {
		return 0, false
	}
	w := rl.Headers.NextWait()
	return w, w > 0
}
