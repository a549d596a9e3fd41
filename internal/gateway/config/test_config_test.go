package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PORT", "APP_ENV", "LLM_PROVIDER", "GROQ_API_KEY", "GEMINI_API_KEY", "LOG_FORMAT",
		"LLM_RETRY_ATTEMPTS", "LLM_RETRY_DELAY", "CATALOG_S3_USE_SSL", "SEARCH_CACHE_TTL", "RECOMMEND_BATCH_SIZE"} {
		t.Setenv(k, "")
	}
}

func TestFromEnv_LocalDefaults(t *testing.T) {
	clearEnv(t)
	cfg := FromEnv()
	assert.Equal(t, ":5000", cfg.Port)
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "fake", cfg.LLM.Provider)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, 5, cfg.Recommend.BatchSize)
	assert.Equal(t, 3, cfg.Retry.Attempts)
	assert.Equal(t, time.Second, cfg.Retry.Delay)
	assert.True(t, cfg.Catalog.S3.UseSSL)
	assert.False(t, cfg.Catalog.S3.Enabled())
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("APP_ENV", "production")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("LLM_RETRY_ATTEMPTS", "5")
	t.Setenv("LLM_RETRY_DELAY", "250ms")
	t.Setenv("SEARCH_CACHE_TTL", "not-a-duration")
	t.Setenv("CATALOG_S3_USE_SSL", "false")

	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "g-key", cfg.LLM.APIKey)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 5, cfg.Retry.Attempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.Delay)
	assert.Equal(t, 10*time.Minute, cfg.Cache.SearchTTL)
	assert.False(t, cfg.Catalog.S3.UseSSL)

	p := cfg.Retry.Policy()
	assert.Equal(t, 5, p.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, p.Backoff(1, nil))
}

func TestFromEnv_ProductionWithoutKeyDefaultsToGroq(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	assert.Equal(t, "groq", FromEnv().LLM.Provider)
}
