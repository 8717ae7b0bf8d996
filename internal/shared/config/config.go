package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	Env             string
	LogLevel        string
	DatabaseURL     string
	SeedFile        string
	JWTSecret       string

	LLMAPIKey  string
	LLMModel   string
	LLMBaseURL string
	LLMTimeout time.Duration

	MatchBudget     time.Duration
	MatchFastBudget time.Duration
	MatchGrace      time.Duration

	ResumeFetchTimeout time.Duration
	ResumeBucket       string
	ResumePrefix       string
	ResumeLocalDir     string
	ResumeS3Endpoint   string
	ResumeS3AccessKey  string
	ResumeS3SecretKey  string
	AWSRegion          string
	SignedURLTTL       time.Duration

	CacheSweepSpec     string
	MatchRatePerMinute int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		Env:             env,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DatabaseURL:     dbURL,
		SeedFile:        getEnv("SEED_FILE", ""),
		JWTSecret:       getEnv("JWT_SECRET", ""),

		LLMAPIKey:  firstEnv("LLM_API_KEY", "OPENROUTER_API_KEY", "OPENAI_API_KEY"),
		LLMModel:   getEnv("LLM_MODEL", ""),
		LLMBaseURL: getEnv("LLM_BASE_URL", ""),
		LLMTimeout: getSeconds("LLM_TIMEOUT_SECONDS", 30),

		MatchBudget:     getSeconds("MATCH_BUDGET_SECONDS", 22),
		MatchFastBudget: getSeconds("MATCH_FAST_BUDGET_SECONDS", 18),
		MatchGrace:      getSeconds("MATCH_GRACE_SECONDS", 2),

		ResumeFetchTimeout: getSeconds("RESUME_FETCH_TIMEOUT_SECONDS", 10),
		ResumeBucket:       getEnv("RESUME_S3_BUCKET", ""),
		ResumePrefix:       getEnv("RESUME_S3_PREFIX", ""),
		ResumeLocalDir:     getEnv("RESUME_LOCAL_DIR", ""),
		ResumeS3Endpoint:   getEnv("RESUME_S3_ENDPOINT", ""),
		ResumeS3AccessKey:  getEnv("RESUME_S3_ACCESS_KEY_ID", ""),
		ResumeS3SecretKey:  getEnv("RESUME_S3_SECRET_ACCESS_KEY", ""),
		AWSRegion:          getEnv("AWS_REGION", ""),
		SignedURLTTL:       getSeconds("SIGNED_URL_TTL_SECONDS", 120),

		CacheSweepSpec:     getEnv("CACHE_SWEEP_SPEC", "@every 1m"),
		MatchRatePerMinute: getInt("MATCH_RATE_PER_MINUTE", 10),
	}
}

// IsDevLike reports whether env allows in-memory fallbacks.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if val := strings.TrimSpace(os.Getenv(key)); val != "" {
			return val
		}
	}
	return ""
}

func getSeconds(key string, def int) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return time.Duration(def) * time.Second
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		log.Printf("config %s invalid seconds %q, using %d", key, raw, def)
		return time.Duration(def) * time.Second
	}
	return time.Duration(parsed) * time.Second
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		log.Printf("config %s invalid integer %q, using %d", key, raw, def)
		return def
	}
	return parsed
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
