package config

import (
	"os"
	"strconv"
)

// Config holds the application configuration, loaded from environment
// variables. The LLM settings follow OpenAI-compatible naming so the
// backend can point at DeepSeek, Qwen or any compatible endpoint via
// LLM_BASE_URL.
type Config struct {
	Debug    bool
	Port     int
	LogLevel string

	DBPath string

	LLMAPIKey       string
	LLMBaseURL      string
	LLMDefaultModel string
	LLMMaxTokens    int
	LLMTemperature  float64
	LLMStream       bool

	ChatHistoryLimit int

	WebSearchAPIURL string
	WebSearchAPIKey string
}

// Load reads configuration from environment variables, applying defaults.
func Load() Config {
	return Config{
		Debug:    envBoolOrDefault("DEBUG", false),
		Port:     envIntOrDefault("PORT", 8080),
		LogLevel: envOrDefault("LOG_LEVEL", "info"),

		DBPath: envOrDefault("DB_PATH", "data/backend.db"),

		LLMAPIKey:       envFirst("LLM_API_KEY", "OPENAI_API_KEY"),
		LLMBaseURL:      envFirstOrDefault("https://api.openai.com/v1", "LLM_BASE_URL", "OPENAI_BASE_URL"),
		LLMDefaultModel: envFirst("LLM_DEFAULT_MODEL", "OPENAI_MODEL"),
		LLMMaxTokens:    envIntOrDefault("LLM_MAX_TOKENS", 4096),
		LLMTemperature:  envFloatOrDefault("LLM_TEMPERATURE", 0.7),
		LLMStream:       envBoolOrDefault("LLM_STREAM", true),

		ChatHistoryLimit: envIntOrDefault("CHAT_HISTORY_LIMIT", 200),

		WebSearchAPIURL: envOrDefault("WEB_SEARCH_API_URL", "https://api.bocha.cn/v1/web-search"),
		WebSearchAPIKey: os.Getenv("WEB_SEARCH_API_KEY"),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envFirst returns the first non-empty value among the given variables.
func envFirst(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func envFirstOrDefault(fallback string, keys ...string) string {
	if v := envFirst(keys...); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envFloatOrDefault(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envBoolOrDefault(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
