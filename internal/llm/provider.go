package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"schemefinder/internal/catalog"
	llmclient "schemefinder/internal/llmClient"
)

// ProviderConfig selects and tunes the completion provider.
type ProviderConfig struct {
	Provider string // groq | gemini | fake
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration

	RPS   float64
	Burst int
}

// Open builds the provider client and wraps it with metrics, rate limiting and logging.
// cat is only used by the fake provider.
func Open(ctx context.Context, cfg ProviderConfig, cat *catalog.Catalog, log *zap.Logger) (LLMClient, error) {
	var base LLMClient
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "groq":
		c, err := llmclient.NewGroqClient(cfg.APIKey, cfg.Model,
			llmclient.WithGroqBaseURL(cfg.BaseURL),
			llmclient.WithGroqTimeout(cfg.Timeout))
		if err != nil {
			return nil, err
		}
		base = c
	case "gemini":
		c, err := llmclient.NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		base = c
	case "fake":
		base = NewFakeClient(cat)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
	// Logging sits directly on the provider so it can read rate-limit headers.
	return Wrap(base,
		WithMetrics(),
		RateLimit(cfg.RPS, cfg.Burst),
		WithLogging(log),
	), nil
}
