package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"schemefinder/internal/catalog"
	"schemefinder/internal/llm"
)

type Config struct {
	Port      string
	Env       string
	LogLevel  string
	LogFormat string

	// DatabaseURL selects the Postgres stores; empty keeps everything in memory.
	DatabaseURL string
	// AdminToken guards the analytics endpoint; empty leaves it open in local runs only.
	AdminToken string

	LLM       llm.ProviderConfig
	Retry     RetryConfig
	Recommend RecommendConfig
	Catalog   catalog.Config
	Cache     CacheConfig

	RecorderQueueSize int
}

type RetryConfig struct {
	Attempts int
	Delay    time.Duration
}

type RecommendConfig struct {
	BatchSize      int
	MaxConcurrency int
}

type CacheConfig struct {
	SearchSize int
	SearchTTL  time.Duration
	SavedSize  int
}

// Policy turns the configured values into a retry policy.
func (r RetryConfig) Policy() llm.RetryPolicy {
	p := llm.DefaultRetryPolicy()
	if r.Attempts > 0 {
		p.MaxAttempts = r.Attempts
	}
	if r.Delay > 0 {
		p.Backoff = llm.FixedBackoff(r.Delay)
	}
	return p
}

// Load reads .env, the -port flag and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":5000", "server port")
	flag.Parse()

	cfg := FromEnv()
	if os.Getenv("PORT") == "" {
		cfg.Port = normalizePort(*port)
	}
	return cfg, nil
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() *Config {
	env := firstNonEmpty(strings.TrimSpace(os.Getenv("APP_ENV")), "local")
	cfg := &Config{
		Port:        normalizePort(firstNonEmpty(os.Getenv("PORT"), "5000")),
		Env:         env,
		LogLevel:    firstNonEmpty(strings.TrimSpace(os.Getenv("LOG_LEVEL")), "info"),
		LogFormat:   strings.TrimSpace(os.Getenv("LOG_FORMAT")),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		AdminToken:  strings.TrimSpace(os.Getenv("ADMIN_TOKEN")),
		LLM:         loadLLMConfig(env),
		Retry: RetryConfig{
			Attempts: envInt("LLM_RETRY_ATTEMPTS", llm.DefaultRetryAttempts),
			Delay:    envDuration("LLM_RETRY_DELAY", llm.DefaultRetryDelay),
		},
		Recommend: RecommendConfig{
			BatchSize:      envInt("RECOMMEND_BATCH_SIZE", 5),
			MaxConcurrency: envInt("RECOMMEND_MAX_CONCURRENCY", 0),
		},
		Catalog: catalog.Config{
			Path: strings.TrimSpace(os.Getenv("CATALOG_PATH")),
			S3:   loadCatalogS3Config(),
		},
		Cache: CacheConfig{
			SearchSize: envInt("SEARCH_CACHE_SIZE", 256),
			SearchTTL:  envDuration("SEARCH_CACHE_TTL", 10*time.Minute),
			SavedSize:  envInt("SAVED_CACHE_SIZE", 1024),
		},
		RecorderQueueSize: envInt("RECORDER_QUEUE_SIZE", 256),
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
		if IsLocal(env) {
			cfg.LogFormat = "console"
		}
	}
	return cfg
}

// IsLocal reports whether env is a developer environment.
func IsLocal(env string) bool {
	return strings.EqualFold(strings.TrimSpace(env), "local")
}

func loadLLMConfig(env string) llm.ProviderConfig {
	provider := strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER")))
	if provider == "" {
		provider = defaultProvider(env)
	}
	key := ""
	switch provider {
	case "groq":
		key = os.Getenv("GROQ_API_KEY")
	case "gemini":
		key = os.Getenv("GEMINI_API_KEY")
	}
	return llm.ProviderConfig{
		Provider: provider,
		Model:    strings.TrimSpace(os.Getenv("LLM_MODEL")),
		APIKey:   strings.TrimSpace(key),
		BaseURL:  strings.TrimSpace(os.Getenv("LLM_BASE_URL")),
		Timeout:  envDuration("LLM_TIMEOUT", 60*time.Second),
		RPS:      envFloat("LLM_RPS", 0),
		Burst:    envInt("LLM_BURST", 1),
	}
}

func loadCatalogS3Config() catalog.S3Config {
	return catalog.S3Config{
		Endpoint:  strings.TrimSpace(os.Getenv("CATALOG_S3_ENDPOINT")),
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("CATALOG_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("CATALOG_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("CATALOG_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    strings.TrimSpace(os.Getenv("CATALOG_S3_BUCKET")),
		Key:       strings.TrimSpace(os.Getenv("CATALOG_S3_KEY")),
		UseSSL:    envBool("CATALOG_S3_USE_SSL", true),
	}
}

func normalizePort(p string) string {
	p = strings.TrimSpace(p)
	if strings.HasPrefix(p, ":") {
		return p
	}
	return ":" + p
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func envFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

func envDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
