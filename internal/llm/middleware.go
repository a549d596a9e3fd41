package llm

import (
	llmclient "schemefinder/internal/llmClient"
)

// LLMClient is re-exported so callers wiring middleware need a single import.
type LLMClient = llmclient.LLMClient

// Middleware decorates an LLMClient to inject cross-cutting concerns
// (rate limiting, retries, logging, metrics).
type Middleware func(LLMClient) LLMClient

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner LLMClient, mws ...Middleware) LLMClient {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] == nil {
			continue
		}
		out = mws[i](out)
	}
	return out
}
