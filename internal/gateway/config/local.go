package config

import (
	"os"
	"strings"
)

// defaultProvider picks the provider when LLM_PROVIDER is unset: the first provider with a
// key, and the offline fake in local runs without one.
func defaultProvider(env string) string {
	switch {
	case strings.TrimSpace(os.Getenv("GROQ_API_KEY")) != "":
		return "groq"
	case strings.TrimSpace(os.Getenv("GEMINI_API_KEY")) != "":
		return "gemini"
	case IsLocal(env):
		return "fake"
	default:
		return "groq"
	}
}
