package llm

import (
	"context"
	"time"

	"go.uber.org/zap"

	llmclient "schemefinder/internal/llmClient"
	"schemefinder/internal/metrics"
)

// WithLogging logs prompt size, latency and errors of every call. A nil logger disables it.
func WithLogging(logger *zap.Logger) Middleware {
	return func(next LLMClient) LLMClient {
		if logger == nil {
			return next
		}
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next LLMClient
	log  *zap.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }

func (l *logging) Complete(ctx context.Context, req llmclient.Request) (string, error) {
	start := time.Now()
	fields := []zap.Field{
		zap.String("provider", l.next.Name()),
		zap.String("phase", PhaseFrom(ctx)),
		zap.Int("attempt", AttemptFrom(ctx)),
		zap.Int("prompt_bytes", len(req.System)+len(req.Prompt)),
		zap.Bool("json", req.JSON),
	}
	l.log.Debug("llm request", fields...)
	text, err := l.next.Complete(ctx, req)
	fields = append(fields, zap.Duration("took", time.Since(start)))
	if aware, ok := l.next.(llmclient.RateLimitHeaderAwareClient); ok {
		if h, ok := aware.LastRateLimitHeaders(); ok {
			fields = append(fields,
				zap.Int("remaining_requests", h.RemainingRequests),
				zap.Int("remaining_tokens", h.RemainingTokens))
		}
	}
	if err != nil {
		l.log.Warn("llm error", append(fields, zap.Error(err))...)
		return "", err
	}
	l.log.Debug("llm response", append(fields, zap.Int("response_bytes", len(text)))...)
	return text, nil
}

// WithMetrics records call counts and latency per provider and phase.
func WithMetrics() Middleware {
	return func(next LLMClient) LLMClient {
		return &metered{next: next}
	}
}

type metered struct {
	next LLMClient
}

func (m *metered) Name() string { return m.next.Name() }
func (m *metered) Close() error { return m.next.Close() }

func (m *metered) Complete(ctx context.Context, req llmclient.Request) (string, error) {
	phase := PhaseFrom(ctx)
	start := time.Now()
	text, err := m.next.Complete(ctx, req)
	metrics.LLMDuration.WithLabelValues(m.next.Name(), phase).Observe(time.Since(start).Seconds())
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.LLMRequests.WithLabelValues(m.next.Name(), phase, outcome).Inc()
	return text, err
}
