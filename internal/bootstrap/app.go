package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"scentmatch-backend/internal/catalog"
	"scentmatch-backend/internal/collections"
	"scentmatch-backend/internal/experience"
	"scentmatch-backend/internal/explanations"
	"scentmatch-backend/internal/fragrances"
	"scentmatch-backend/internal/llm"
	openai "scentmatch-backend/internal/llm/openai"
	"scentmatch-backend/internal/quiz"
	"scentmatch-backend/internal/recommendations"
	"scentmatch-backend/internal/services/health"
	"scentmatch-backend/internal/shared/auth"
	"scentmatch-backend/internal/shared/config"
	"scentmatch-backend/internal/shared/server"
	"scentmatch-backend/internal/shared/server/middleware"
	"scentmatch-backend/internal/shared/storage/db"
	"scentmatch-backend/internal/shared/storage/object"
	"scentmatch-backend/internal/shared/telemetry"
	"scentmatch-backend/internal/users"
)

const sessionPurgeInterval = time.Hour

// App holds shared dependencies and the HTTP router.
type App struct {
	Config                config.Config
	Router                *gin.Engine
	DB                    *sql.DB
	Limiter               middleware.Limiter
	LLM                   llm.Client
	Breaker               *llm.BreakerClient
	Health                *health.Service
	FragrancesRepo        fragrances.Repo
	CollectionsRepo       collections.Repo
	UsersRepo             users.Repo
	SessionRepo           quiz.SessionRepo
	Sessions              *quiz.SessionService
	Engine                *recommendations.Engine
	RecommendationHandler *recommendations.Handler
	QuizHandler           *quiz.Handler
	FragranceHandler      *fragrances.Handler
	CollectionHandler     *collections.Handler
	UserHandler           *users.Handler

	closers []func() error
}

// Build prepares dependencies and wires routes.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, DB: sqlDB, Health: health.NewService()}
	if sqlDB != nil {
		app.closers = append(app.closers, sqlDB.Close)
	}

	verifier, err := auth.NewVerifier(cfg.SupabaseJWTSecret, cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("auth verifier: %w", err)
	}

	if err := app.buildLimiter(ctx); err != nil {
		return nil, err
	}
	if err := app.buildLLM(); err != nil {
		return nil, err
	}
	if err := app.buildServices(ctx); err != nil {
		return nil, err
	}
	app.registerHealthChecks()

	app.Router = server.NewRouter(server.RouterDeps{
		Config:                cfg,
		Verifier:              verifier,
		Limiter:               app.Limiter,
		Health:                app.Health,
		RecommendationHandler: app.RecommendationHandler,
		QuizHandler:           app.QuizHandler,
		FragranceHandler:      app.FragranceHandler,
		CollectionHandler:     app.CollectionHandler,
		UserHandler:           app.UserHandler,
	})

	return app, nil
}

// Close releases pooled connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RunSessionJanitor purges expired quiz sessions until ctx is cancelled.
func (a *App) RunSessionJanitor(ctx context.Context) {
	if a.Sessions == nil {
		return
	}
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := a.Sessions.Purge(ctx)
			if err != nil {
				telemetry.Warn("quiz.sessions_purge_failed", map[string]any{"error": err.Error()})
				continue
			}
			if n > 0 {
				telemetry.Info("quiz.sessions_purged", map[string]any{"count": n})
			}
		}
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "connect failed", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func (a *App) buildLimiter(ctx context.Context) error {
	if strings.TrimSpace(a.Config.RedisURL) == "" {
		a.Limiter = middleware.NewMemoryLimiter(nil)
		return nil
	}
	rl, err := middleware.NewRedisLimiter(ctx, a.Config.RedisURL)
	if err != nil {
		if a.Config.IsDevLike() {
			telemetry.Warn("bootstrap.memory_limiter", map[string]any{"error": err.Error()})
			a.Limiter = middleware.NewMemoryLimiter(nil)
			return nil
		}
		return fmt.Errorf("redis limiter: %w", err)
	}
	a.Limiter = rl
	a.closers = append(a.closers, rl.Close)
	return nil
}

// buildLLM leaves a.LLM nil when no provider is configured; the explanation
// chain then serves templates only and the AI strategy reports failure.
func (a *App) buildLLM() error {
	if a.Config.LLMProvider != "openai" {
		return nil
	}
	if strings.TrimSpace(a.Config.OpenAIAPIKey) == "" {
		if a.Config.IsDevLike() {
			telemetry.Warn("bootstrap.llm_disabled", map[string]any{"reason": "OPENAI_API_KEY empty"})
			return nil
		}
		return fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
	}
	client, err := openai.NewClient(a.Config.OpenAIAPIKey, a.Config.LLMModel)
	if err != nil {
		return err
	}
	a.Breaker = llm.NewBreakerClient(llm.WithRetry(client), llm.DefaultBreakerConfig())
	a.LLM = a.Breaker
	return nil
}

func (a *App) buildServices(ctx context.Context) error {
	if a.DB != nil {
		a.FragrancesRepo = &fragrances.PGRepo{DB: a.DB}
		a.CollectionsRepo = &collections.PGRepo{DB: a.DB}
		a.UsersRepo = &users.PGRepo{DB: a.DB}
		a.SessionRepo = &quiz.PGSessionRepo{DB: a.DB}
	} else {
		mem := fragrances.NewMemoryRepo()
		if err := seedCatalog(ctx, mem, a.Config.CatalogSeedFile); err != nil {
			return err
		}
		a.FragrancesRepo = mem
		a.CollectionsRepo = collections.NewMemoryRepo()
		a.UsersRepo = users.NewMemoryRepo()
		a.SessionRepo = quiz.NewMemorySessionRepo()
	}

	fragranceSvc := fragrances.NewService(a.FragrancesRepo)
	collectionSvc := collections.NewService(a.CollectionsRepo, fragranceSvc)
	userSvc := users.NewService(a.UsersRepo)
	a.Sessions = quiz.NewSessionService(a.SessionRepo)

	recorder := telemetry.LogRecorder{}
	aiClient := a.LLM

	strategy, err := recommendations.ParseStrategy(a.Config.DefaultStrategy, recommendations.StrategyHybrid)
	if err != nil {
		telemetry.Warn("bootstrap.default_strategy_invalid", map[string]any{"value": a.Config.DefaultStrategy})
		strategy = recommendations.StrategyHybrid
	}

	a.Engine = &recommendations.Engine{
		Database:         &recommendations.DatabaseStrategy{Repo: a.FragrancesRepo},
		AI:               &recommendations.AIStrategy{LLM: aiClient, Catalog: a.FragrancesRepo},
		Detector:         experience.NewDetector(collectionSvc, userSvc, recorder),
		Explainer:        explanations.NewChain(aiClient, recorder, a.Config.ExplanationConcurrency),
		Sessions:         a.Sessions,
		Recorder:         recorder,
		AlgorithmVersion: a.Config.AlgorithmVersion,
		DefaultStrategy:  strategy,
	}

	a.RecommendationHandler = recommendations.NewHandler(a.Engine)
	a.QuizHandler = quiz.NewHandler(a.Sessions)
	a.FragranceHandler = fragrances.NewHandler(fragranceSvc)
	a.CollectionHandler = collections.NewHandler(collectionSvc)
	a.UserHandler = users.NewHandler(userSvc)
	return nil
}

func (a *App) registerHealthChecks() {
	if a.DB != nil {
		a.Health.Register("database", a.DB.PingContext)
	}
	if pinger, ok := a.Limiter.(interface{ Ping(context.Context) error }); ok {
		a.Health.Register("redis", pinger.Ping)
	}
	if a.Breaker != nil {
		a.Health.Register("llm", func(context.Context) error {
			if state := a.Breaker.State(); state == "open" {
				return errors.New("circuit open")
			}
			return nil
		})
	}
}

func seedCatalog(ctx context.Context, repo *fragrances.MemoryRepo, path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	f, err := object.Open(ctx, path, "")
	if err != nil {
		return fmt.Errorf("open catalog seed: %w", err)
	}
	defer f.Close()

	report, _, err := catalog.NewImporter(repo).Import(ctx, f, catalog.Options{})
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	telemetry.Info("bootstrap.catalog_seeded", map[string]any{"upserted": report.Upserted, "path": path})
	return nil
}
