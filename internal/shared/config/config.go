package config

import (
	"os"
	"strconv"
	"strings"

	"scentmatch-backend/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port                   string
	CORSAllowOrigin        []string
	LLMProvider            string
	LLMModel               string
	OpenAIAPIKey           string
	AlgorithmVersion       string
	DefaultStrategy        string
	ExplanationConcurrency int
	DatabaseURL            string
	Env                    string
	SupabaseJWTSecret      string
	RedisURL               string
	RateLimitRPS           float64
	RateLimitBurst         int
	LogLevel               string
	CatalogSeedFile        string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		telemetry.Warn("config.database_url_missing", map[string]any{"env": env})
	}

	return Config{
		Port:                   getEnv("PORT", "8080"),
		CORSAllowOrigin:        splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		LLMProvider:            normalizeProvider(getEnv("LLM_PROVIDER", "openai")),
		LLMModel:               getEnv("LLM_MODEL", "gpt-4o-mini"),
		OpenAIAPIKey:           os.Getenv("OPENAI_API_KEY"),
		AlgorithmVersion:       getEnv("ALGORITHM_VERSION", "unified-v1"),
		DefaultStrategy:        getEnv("DEFAULT_STRATEGY", "hybrid"),
		ExplanationConcurrency: getEnvInt("EXPLANATION_CONCURRENCY", 4),
		DatabaseURL:            dbURL,
		Env:                    env,
		SupabaseJWTSecret:      os.Getenv("SUPABASE_JWT_SECRET"),
		RedisURL:               os.Getenv("REDIS_URL"),
		RateLimitRPS:           getEnvFloat("RATE_LIMIT_RPS", 2),
		RateLimitBurst:         getEnvInt("RATE_LIMIT_BURST", 10),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		CatalogSeedFile:        os.Getenv("CATALOG_SEED_FILE"),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		telemetry.Warn("config.invalid_int", map[string]any{"key": key, "value": raw, "default": def})
		return def
	}
	return val
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil || val <= 0 {
		telemetry.Warn("config.invalid_float", map[string]any{"key": key, "value": raw, "default": def})
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai":
		return "openai"
	case "none", "disabled", "off":
		return "none"
	default:
		return "openai"
	}
}

// IsDevLike reports whether the environment tolerates in-memory fallbacks.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local":
		return true
	default:
		return false
	}
}
