package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"jobmatch-backend/internal/llm"
	openai "jobmatch-backend/internal/llm/openai"
	"jobmatch-backend/internal/shared/auth"
	"jobmatch-backend/internal/shared/config"
	localstore "jobmatch-backend/internal/shared/storage/object/local"
)

const seedJSON = `{
  "jobs": [{"id": "job-1", "title": "Frontend Engineer", "companyName": "Acme", "skills": "React, Node.js"}],
  "profiles": [{"id": "guest:g1", "technicalSkills": ["React"]}]
}`

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	return path
}

func TestBuildServesSeededMatch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	app, err := Build(context.Background(), config.Config{
		Env:                "dev",
		SeedFile:           writeSeed(t, seedJSON),
		MatchRatePerMinute: 10,
		CacheSweepSpec:     "@every 1m",
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })

	if llm.Configured(app.AI) {
		t.Fatal("expected ai to be unconfigured without a key")
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/match", strings.NewReader(`{"subjectId":"guest:g1","jobId":"job-1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Guest-Id", "g1")
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	body := resp.Body.String()
	if !strings.Contains(body, `"score":0`) || !strings.Contains(body, `"source":"fallback"`) || !strings.Contains(body, "Resume not uploaded") {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestBuildRequiresDatabaseOutsideDev(t *testing.T) {
	if _, err := Build(context.Background(), config.Config{Env: "production"}); err == nil {
		t.Fatal("expected error without DATABASE_URL in production")
	}
}

func TestBuildTokens(t *testing.T) {
	if _, err := buildTokens(config.Config{Env: "staging"}); !errors.Is(err, auth.ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
	signer, err := buildTokens(config.Config{Env: "dev"})
	if err != nil {
		t.Fatalf("buildTokens: %v", err)
	}
	dev, _ := auth.NewSigner(auth.DevSecret)
	token, _ := dev.Sign(auth.Claims{Sub: "user-1"})
	if _, err := signer.Verify(token); err != nil {
		t.Fatalf("expected dev secret, got %v", err)
	}
}

func TestBuildCompleter(t *testing.T) {
	if _, ok := BuildCompleter(config.Config{}).(llm.NotConfigured); !ok {
		t.Fatal("expected NotConfigured without key")
	}
	if _, ok := BuildCompleter(config.Config{LLMAPIKey: "sk-or-abc", LLMTimeout: time.Second}).(*openai.Client); !ok {
		t.Fatal("expected openai client with key")
	}
}

func TestMatchConfig(t *testing.T) {
	mc := MatchConfig(config.Config{MatchBudget: 5 * time.Second, MatchFastBudget: 3 * time.Second, MatchGrace: time.Second})
	if mc.Budget != 5*time.Second || mc.FastBudget != 3*time.Second || mc.Grace != time.Second {
		t.Fatalf("unexpected budgets %+v", mc)
	}
	if mc.AITTL != 5*time.Minute || mc.FallbackTTL != 2*time.Minute || mc.TextTTL != 10*time.Minute {
		t.Fatalf("unexpected ttls %+v", mc)
	}
}

func TestBuildSignerLocal(t *testing.T) {
	signer, err := buildSigner(context.Background(), config.Config{ResumeLocalDir: t.TempDir()})
	if err != nil {
		t.Fatalf("buildSigner: %v", err)
	}
	if _, ok := signer.(*localstore.Store); !ok {
		t.Fatalf("expected local store, got %T", signer)
	}
	if signer, _ := buildSigner(context.Background(), config.Config{}); signer != nil {
		t.Fatalf("expected no signer, got %T", signer)
	}
}

func TestLoadSeedErrors(t *testing.T) {
	tests := map[string]string{
		"bad json":   "{",
		"job no id":  `{"jobs":[{"title":"x"}]}`,
		"profile id": `{"profiles":[{"bio":"x"}]}`,
	}
	for name, body := range tests {
		if _, err := LoadSeed(writeSeed(t, body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := LoadSeed(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
