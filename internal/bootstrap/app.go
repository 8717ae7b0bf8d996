package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"jobmatch-backend/internal/cache"
	"jobmatch-backend/internal/jobs"
	"jobmatch-backend/internal/llm"
	openai "jobmatch-backend/internal/llm/openai"
	"jobmatch-backend/internal/locator"
	"jobmatch-backend/internal/matching"
	"jobmatch-backend/internal/profiles"
	"jobmatch-backend/internal/services/health"
	"jobmatch-backend/internal/shared/auth"
	"jobmatch-backend/internal/shared/config"
	"jobmatch-backend/internal/shared/server"
	"jobmatch-backend/internal/shared/storage/db"
	"jobmatch-backend/internal/shared/storage/object"
	localstore "jobmatch-backend/internal/shared/storage/object/local"
	s3store "jobmatch-backend/internal/shared/storage/object/s3"
	"jobmatch-backend/internal/shared/telemetry"
)

const defaultRegion = "us-east-1"

// App holds the wired process dependencies.
type App struct {
	Config   config.Config
	Router   *gin.Engine
	DB       *sql.DB
	Signer   object.Signer
	Jobs     jobs.Repo
	Profiles profiles.Repo
	Results  matching.Repo
	AI       llm.Completer
	Match    *matching.Service
	Tokens   *auth.Signer
	Janitor  *cache.Janitor
}

// Build connects storage, loads seeds and wires the match service and router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if err := telemetry.Configure(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("configure logger: %w", err)
	}

	app := &App{Config: cfg}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.DB = sqlDB
	if sqlDB != nil {
		app.Jobs = &jobs.PGRepo{DB: sqlDB}
		app.Profiles = &profiles.PGRepo{DB: sqlDB}
		app.Results = &matching.PGRepo{DB: sqlDB}
	} else {
		app.Jobs = jobs.NewMemoryRepo()
		app.Profiles = profiles.NewMemoryRepo()
		app.Results = matching.NewMemoryRepo()
	}

	if cfg.SeedFile != "" {
		seed, err := LoadSeed(cfg.SeedFile)
		if err != nil {
			return nil, err
		}
		if err := seed.Apply(ctx, app.Jobs, app.Profiles); err != nil {
			return nil, err
		}
	}

	if app.Signer, err = buildSigner(ctx, cfg); err != nil {
		return nil, err
	}
	if app.Tokens, err = buildTokens(cfg); err != nil {
		return nil, err
	}
	app.AI = BuildCompleter(cfg)

	resultCache := cache.New[string, matching.Outcome]()
	textCache := cache.New[string, string]()
	app.Janitor = cache.NewJanitor(cfg.CacheSweepSpec, map[string]cache.Sweeper{
		"results": resultCache,
		"text":    textCache,
	})
	if err := app.Janitor.Start(); err != nil {
		return nil, err
	}

	app.Match = &matching.Service{
		Jobs:        app.Jobs,
		Profiles:    app.Profiles,
		Results:     app.Results,
		Locator:     BuildLocator(cfg, app.Signer),
		AI:          app.AI,
		ResultCache: resultCache,
		TextCache:   textCache,
		Config:      MatchConfig(cfg),
	}

	var pinger health.Pinger
	if sqlDB != nil {
		pinger = sqlDB
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:   cfg,
		Verifier: app.Tokens,
		Match:    matching.NewHandler(app.Match, app.Results),
		Health: health.NewService(pinger, app.AI, map[string]health.Sizer{
			"results": resultCache,
			"text":    textCache,
		}),
	})
	return app, nil
}

// Close stops background work and releases the database.
func (a *App) Close() error {
	if a.Janitor != nil {
		a.Janitor.Stop()
	}
	telemetry.Sync()
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

// MatchConfig maps process config onto orchestrator budgets. Cache lifetimes keep their defaults.
func MatchConfig(cfg config.Config) matching.Config {
	mc := matching.DefaultConfig()
	if cfg.MatchBudget > 0 {
		mc.Budget = cfg.MatchBudget
	}
	if cfg.MatchFastBudget > 0 {
		mc.FastBudget = cfg.MatchFastBudget
	}
	mc.Grace = cfg.MatchGrace
	return mc
}

// BuildCompleter returns the chat-completions client, or llm.NotConfigured when no key is set.
func BuildCompleter(cfg config.Config) llm.Completer {
	provider, err := llm.ResolveProvider(cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMBaseURL)
	if err != nil {
		telemetry.Warn("bootstrap.llm.disabled", map[string]any{"err": err})
		return llm.NotConfigured{}
	}
	telemetry.Info("bootstrap.llm", map[string]any{"provider": provider.Name, "model": provider.Model})
	return openai.NewClient(provider, cfg.LLMTimeout)
}

// BuildLocator wires the resume fetch chain. A local signer issues file://
// URLs, so the fetcher then needs a file transport rooted at its directory.
func BuildLocator(cfg config.Config, signer object.Signer) *locator.Resolver {
	var fetcher locator.Fetcher = locator.NewHTTPFetcher(nil)
	if local, ok := signer.(*localstore.Store); ok {
		fetcher = locator.NewFileFetcher(local.Dir(), cfg.ResumeFetchTimeout)
	}
	return locator.New(fetcher, signer, locator.Options{
		Bucket:       cfg.ResumeBucket,
		FetchTimeout: cfg.ResumeFetchTimeout,
		SignedURLTTL: cfg.SignedURLTTL,
	})
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Info("bootstrap.db.memory", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, errors.New("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err == nil {
		if err = db.RunMigrations(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
		}
	}
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": "database unavailable", "err": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildSigner(ctx context.Context, cfg config.Config) (object.Signer, error) {
	switch {
	case strings.TrimSpace(cfg.ResumeBucket) != "":
		region := cfg.AWSRegion
		if strings.TrimSpace(region) == "" {
			region = defaultRegion
		}
		store, err := s3store.New(ctx, region, cfg.ResumeBucket, cfg.ResumePrefix,
			s3store.WithEndpoint(cfg.ResumeS3Endpoint),
			s3store.WithStaticCredentials(cfg.ResumeS3AccessKey, cfg.ResumeS3SecretKey),
		)
		if err != nil {
			return nil, fmt.Errorf("resume signer: %w", err)
		}
		return store, nil
	case strings.TrimSpace(cfg.ResumeLocalDir) != "":
		return localstore.New(cfg.ResumeLocalDir), nil
	default:
		telemetry.Info("bootstrap.signer.disabled", map[string]any{"reason": "no RESUME_S3_BUCKET or RESUME_LOCAL_DIR"})
		return nil, nil
	}
}

func buildTokens(cfg config.Config) (*auth.Signer, error) {
	secret := cfg.JWTSecret
	if strings.TrimSpace(secret) == "" {
		if !cfg.IsDevLike() {
			return nil, fmt.Errorf("%w: JWT_SECRET required in %s", auth.ErrMissingSecret, cfg.Env)
		}
		secret = auth.DevSecret
	}
	return auth.NewSigner(secret)
}
