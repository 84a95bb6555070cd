package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"legal-backend/internal/analyses"
	"legal-backend/internal/assistant"
	"legal-backend/internal/documents"
	"legal-backend/internal/shared/cache"
	"legal-backend/internal/shared/config"
	"legal-backend/internal/shared/server"
	"legal-backend/internal/shared/storage/db"
	"legal-backend/internal/shared/storage/object"
	localstore "legal-backend/internal/shared/storage/object/local"
	s3store "legal-backend/internal/shared/storage/object/s3"
	"legal-backend/internal/shared/telemetry"
	"legal-backend/internal/upstream"
)

const cachePrefix = "legal:"

// App holds shared dependencies.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Store            object.Store
	Cache            cache.Cache
	Upstream         upstream.Client
	DocumentsService *documents.Service
	AnalysesService  *analyses.Service
	AssistantService *assistant.Service

	closers []io.Closer
}

// Build prepares dependencies and the router. In dev-like environments a
// missing database or cache falls back to memory.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	app := &App{Config: cfg}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.DB = sqlDB
	if sqlDB != nil {
		app.closers = append(app.closers, sqlDB)
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Store = store

	c, err := buildCache(ctx, cfg)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Cache = c
	if closer, ok := c.(io.Closer); ok {
		app.closers = append(app.closers, closer)
	}

	up, err := buildUpstream(cfg, c)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Upstream = up

	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config: cfg,
		DB:     app.DB,
		Handlers: []server.RouteRegistrar{
			documents.NewHandler(app.DocumentsService),
			analyses.NewHandler(app.AnalysesService),
			assistant.NewHandler(app.AssistantService),
		},
	})
	return app, nil
}

// Close releases the database and cache connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if cfg.DatabaseURL == "" {
		if cfg.IsDevLike() {
			telemetry.Info("bootstrap.memory_repositories", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, errors.New("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
		if err != nil {
			_ = sqlDB.Close()
			err = fmt.Errorf("run migrations: %w", err)
		}
	}
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repositories", map[string]any{"error": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	if cfg.RedisAddr == "" {
		return cache.NewMemory(), nil
	}
	r, err := cache.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cachePrefix)
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_cache", map[string]any{"error": err})
			return cache.NewMemory(), nil
		}
		return nil, err
	}
	return r, nil
}

// buildUpstream layers caching over retries over HTTP. Without a base URL
// in a dev-like environment the client is nil and every analysis degrades
// to demo data.
func buildUpstream(cfg config.Config, c cache.Cache) (upstream.Client, error) {
	httpClient, err := upstream.NewHTTPClient(cfg.UpstreamBaseURL, cfg.UpstreamTimeout)
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.upstream_disabled", map[string]any{"error": err})
			return nil, nil
		}
		return nil, err
	}
	return upstream.WithCache(upstream.WithRetry(httpClient), c, cfg.CacheTTL), nil
}

func buildServices(app *App) {
	var (
		docRepo      documents.Repo
		analysisRepo analyses.Repo
	)
	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
		analysisRepo = &analyses.PGRepo{DB: app.DB}
	} else {
		docRepo = documents.NewMemoryRepo()
		analysisRepo = analyses.NewMemoryRepo()
	}

	app.DocumentsService = &documents.Service{
		Store:    app.Store,
		Repo:     docRepo,
		Upstream: app.Upstream,
	}
	callTimeout := callDeadline(app.Config.UpstreamTimeout)
	app.AnalysesService = &analyses.Service{
		Repo:      analysisRepo,
		Documents: app.DocumentsService,
		Upstream:  app.Upstream,
		Timeout:   callTimeout,
	}
	app.AssistantService = &assistant.Service{
		Documents: app.DocumentsService,
		Upstream:  app.Upstream,
		Timeout:   callTimeout,
	}
}

// callDeadline covers two attempts of perAttempt plus the retry pause.
func callDeadline(perAttempt time.Duration) time.Duration {
	return 2*perAttempt + time.Second
}
