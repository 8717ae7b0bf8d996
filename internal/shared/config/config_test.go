package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"ENV", "PORT", "LLM_API_KEY", "OPENROUTER_API_KEY", "OPENAI_API_KEY", "MATCH_BUDGET_SECONDS", "MATCH_FAST_BUDGET_SECONDS", "MATCH_GRACE_SECONDS", "SIGNED_URL_TTL_SECONDS", "MATCH_RATE_PER_MINUTE", "CACHE_SWEEP_SPEC"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8080" || cfg.Env != "dev" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.MatchBudget != 22*time.Second || cfg.MatchFastBudget != 18*time.Second || cfg.MatchGrace != 2*time.Second {
		t.Fatalf("unexpected budgets %v %v %v", cfg.MatchBudget, cfg.MatchFastBudget, cfg.MatchGrace)
	}
	if cfg.SignedURLTTL != 120*time.Second {
		t.Fatalf("unexpected signed url ttl %v", cfg.SignedURLTTL)
	}
	if cfg.MatchRatePerMinute != 10 || cfg.CacheSweepSpec != "@every 1m" {
		t.Fatalf("unexpected rate/sweep defaults %d %q", cfg.MatchRatePerMinute, cfg.CacheSweepSpec)
	}
	if !cfg.IsDevLike() {
		t.Fatal("expected dev env to be dev-like")
	}
}

func TestLoadLLMKeyPrecedence(t *testing.T) {
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "sk-or-abc")
	t.Setenv("OPENAI_API_KEY", "sk-openai")

	if got := Load().LLMAPIKey; got != "sk-or-abc" {
		t.Fatalf("expected openrouter key, got %q", got)
	}

	t.Setenv("LLM_API_KEY", "sk-primary")
	if got := Load().LLMAPIKey; got != "sk-primary" {
		t.Fatalf("expected LLM_API_KEY to win, got %q", got)
	}
}

func TestGetSecondsInvalidFallsBack(t *testing.T) {
	t.Setenv("MATCH_GRACE_SECONDS", "soon")
	if got := getSeconds("MATCH_GRACE_SECONDS", 2); got != 2*time.Second {
		t.Fatalf("expected default, got %v", got)
	}
}

func TestNormalizeEnv(t *testing.T) {
	tests := map[string]string{
		"prod":        "production",
		" Staging ":   "staging",
		"development": "dev",
		"weird":       "dev",
	}
	for in, want := range tests {
		if got := normalizeEnv(in); got != want {
			t.Fatalf("normalizeEnv(%q) = %q, want %q", in, got, want)
		}
	}
}
