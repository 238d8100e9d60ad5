package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/nexovate-backend/internal/data/db"
	httpserver "github.com/yungbote/nexovate-backend/internal/http"
	"github.com/yungbote/nexovate-backend/internal/jobs"
	"github.com/yungbote/nexovate-backend/internal/observability"
	"github.com/yungbote/nexovate-backend/internal/platform/logger"
	"github.com/yungbote/nexovate-backend/internal/services"
)

type App struct {
	Log       *logger.Logger
	Cfg       Config
	Connector *db.Connector
	DB        *gorm.DB
	Metrics   *observability.Metrics
	Repos     Repos
	Clients   *Clients
	Services  Services
	Server    *httpserver.Server

	otelShutdown func(context.Context) error
}

// Migrate creates the schema and, when enabled, seeds the catalog.
func Migrate(ctx context.Context, log *logger.Logger, cfg Config) error {
	conn := db.NewConnector(cfg.DB, log)
	defer conn.Close()
	theDB, err := conn.Get(ctx)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	return migrate(ctx, log, cfg, theDB)
}

func migrate(ctx context.Context, log *logger.Logger, cfg Config, theDB *gorm.DB) error {
	if err := db.AutoMigrateAll(ctx, theDB); err != nil {
		return err
	}
	if !cfg.SeedCatalog {
		return nil
	}
	catalog, err := db.DefaultCatalog()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	return db.SeedCatalog(ctx, theDB, log, catalog)
}

func New(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
	})
	metrics := observability.New()

	conn := db.NewConnector(cfg.DB, log)
	conn.OnHealthFailure(func(error) { metrics.IncDBHealthFailure() })
	theDB, err := conn.Get(ctx)
	if err != nil {
		_ = otelShutdown(ctx)
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := migrate(ctx, log, cfg, theDB); err != nil {
		_ = conn.Close()
		_ = otelShutdown(ctx)
		return nil, err
	}

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = conn.Close()
		_ = otelShutdown(ctx)
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	serviceset, err := wireServices(theDB, log, cfg, reposet, clients, metrics)
	if err != nil {
		clients.Close()
		_ = conn.Close()
		_ = otelShutdown(ctx)
		return nil, err
	}

	handlerset := wireHandlers(log, serviceset, conn)
	middleware := wireMiddleware(log, serviceset)
	server := httpserver.NewServer(cfg.HTTPAddr, routerConfig(log, cfg, metrics, handlerset, middleware), writeTimeout(cfg))

	return &App{
		Log:          log,
		Cfg:          cfg,
		Connector:    conn,
		DB:           theDB,
		Metrics:      metrics,
		Repos:        reposet,
		Clients:      clients,
		Services:     serviceset,
		Server:       server,
		otelShutdown: otelShutdown,
	}, nil
}

// writeTimeout leaves headroom over the generator budget for the save and cleanup steps.
func writeTimeout(cfg Config) time.Duration {
	if cfg.GeneratorTimeout <= 0 {
		return 0
	}
	return cfg.GeneratorTimeout + time.Minute
}

// Run serves HTTP and runs the background loops until ctx is cancelled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)

	a.Connector.StartHealthLoop(gctx)
	a.Metrics.StartDBCollector(gctx, a.Log, a.DB, 0)
	if a.Clients.Redis != nil {
		a.Metrics.StartRedisCollector(gctx, a.Log, a.Clients.Redis, 0)
	}

	reconciler := jobs.NewReconciler(a.Log, a.Services.Cleanup, a.Cfg.ReconcileInterval, a.Cfg.ReconcileStaleAfter)
	g.Go(func() error { return reconciler.Run(gctx) })
	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", a.Cfg.HTTPAddr)
		return a.Server.Run(gctx)
	})
	return g.Wait()
}

// ReconcileOnce runs a single reconciliation pass.
func (a *App) ReconcileOnce(ctx context.Context) (*services.ReconcileReport, error) {
	reconciler := jobs.NewReconciler(a.Log, a.Services.Cleanup, a.Cfg.ReconcileInterval, a.Cfg.ReconcileStaleAfter)
	return reconciler.RunOnce(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.Connector != nil {
		_ = a.Connector.Close()
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = a.otelShutdown(ctx)
		cancel()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
