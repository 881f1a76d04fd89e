package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"ENV", "PORT", "DEFAULT_STRATEGY", "EXPLANATION_CONCURRENCY", "RATE_LIMIT_RPS", "LLM_PROVIDER"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Env != "dev" {
		t.Fatalf("expected env dev, got %q", cfg.Env)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.DefaultStrategy != "hybrid" {
		t.Fatalf("expected default strategy hybrid, got %q", cfg.DefaultStrategy)
	}
	if cfg.ExplanationConcurrency != 4 {
		t.Fatalf("expected explanation concurrency 4, got %d", cfg.ExplanationConcurrency)
	}
	if cfg.RateLimitRPS != 2 {
		t.Fatalf("expected rate limit 2, got %v", cfg.RateLimitRPS)
	}
	if !cfg.IsDevLike() {
		t.Fatalf("expected dev config to be dev-like")
	}
}

func TestLoadInvalidNumbersFallBack(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("EXPLANATION_CONCURRENCY", "zero")
	t.Setenv("RATE_LIMIT_BURST", "-3")

	cfg := Load()
	if cfg.ExplanationConcurrency != 4 {
		t.Fatalf("expected fallback concurrency 4, got %d", cfg.ExplanationConcurrency)
	}
	if cfg.RateLimitBurst != 10 {
		t.Fatalf("expected fallback burst 10, got %d", cfg.RateLimitBurst)
	}
}

func TestLoadReadsDotEnvWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	content := "LLM_MODEL=gpt-test\nPORT=9999\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("PORT", "7000")
	t.Setenv("LLM_MODEL", "")
	_ = os.Unsetenv("LLM_MODEL")

	cfg := Load()
	if cfg.LLMModel != "gpt-test" {
		t.Fatalf("expected model from .env, got %q", cfg.LLMModel)
	}
	if cfg.Port != "7000" {
		t.Fatalf("expected env to win over .env, got %q", cfg.Port)
	}
}

func TestNormalizeEnv(t *testing.T) {
	tests := map[string]string{
		"prod":        "production",
		" Production": "production",
		"staging":     "staging",
		"local":       "local",
		"whatever":    "dev",
	}
	for in, want := range tests {
		if got := normalizeEnv(in); got != want {
			t.Fatalf("normalizeEnv(%q) = %q, want %q", in, got, want)
		}
	}
}
