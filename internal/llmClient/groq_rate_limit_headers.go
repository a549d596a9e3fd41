package llmclient

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// parseGroqRateLimitHeaders parses Groq-specific rate-limit response headers.
// Groq semantics:
// - request fields are RPD
// - token fields are TPM
func parseGroqRateLimitHeaders(h http.Header) (RateLimitHeaders, bool) {
	out := RateLimitHeaders{}
	found := false

	readInt := func(key string, dst *int) {
		v := strings.TrimSpace(h.Get(key))
		if v == "" {
			return
		}
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
			found = true
		}
	}
	readDur := func(key string, dst *time.Duration) {
		v := strings.TrimSpace(h.Get(key))
		if v == "" {
			return
		}
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
			found = true
		}
	}

	readInt("retry-after", &out.RetryAfterSeconds)
	readInt("x-ratelimit-limit-requests", &out.LimitRequests)
	readInt("x-ratelimit-limit-tokens", &out.LimitTokens)
	readInt("x-ratelimit-remaining-requests", &out.RemainingRequests)
	readInt("x-ratelimit-remaining-tokens", &out.RemainingTokens)
	readDur("x-ratelimit-reset-requests", &out.ResetRequests)
	readDur("x-ratelimit-reset-tokens", &out.ResetTokens)

	return out, found
}
