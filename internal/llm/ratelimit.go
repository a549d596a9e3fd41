package llm

import (
	"context"

	"golang.org/x/time/rate"

	llmclient "schemefinder/internal/llmClient"
)

// RateLimit limits request rate with a token bucket shared by every request through the
// returned client. If rps <= 0, the limiter is disabled.
func RateLimit(rps float64, burst int) Middleware {
	return func(next LLMClient) LLMClient {
		if rps <= 0 {
			return next
		}
		if burst <= 0 {
			burst = 1
		}
		return &rateLimited{next: next, rl: rate.NewLimiter(rate.Limit(rps), burst)}
	}
}

type rateLimited struct {
	next LLMClient
	rl   *rate.Limiter
}

func (c *rateLimited) Name() string { return c.next.Name() }
func (c *rateLimited) Close() error { return c.next.Close() }

func (c *rateLimited) Complete(ctx context.Context, req llmclient.Request) (string, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return "", llmclient.Failed(c.next.Name(), err)
	}
	return c.next.Complete(ctx, req)
}
