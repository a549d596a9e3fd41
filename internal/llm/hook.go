package llm

import "context"

// Phases label LLM calls for logs, metrics and the fake client.
const (
	PhaseNames   = "names"
	PhaseDetails = "details"
	PhaseChat    = "chat"
	PhaseSearch  = "search"
)

type ctxKeyPhase struct{}
type ctxKeyAttempt struct{}

// WithPhase labels every LLM call made with ctx.
func WithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, ctxKeyPhase{}, phase)
}

// PhaseFrom returns the phase string stored in the context.
func PhaseFrom(ctx context.Context) string {
	if v := ctx.Value(ctxKeyPhase{}); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "unknown"
}

func withAttempt(ctx context.Context, n int) context.Context {
	return context.WithValue(ctx, ctxKeyAttempt{}, n)
}

// AttemptFrom returns the 1-based attempt number set by the retry policy, or 1.
func AttemptFrom(ctx context.Context) int {
	if n, ok := ctx.Value(ctxKeyAttempt{}).(int); ok && n > 0 {
		return n
	}
	return 1
}
