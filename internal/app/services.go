package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/nexovate-backend/internal/observability"
	"github.com/yungbote/nexovate-backend/internal/platform/logger"
	"github.com/yungbote/nexovate-backend/internal/platform/userlock"
	"github.com/yungbote/nexovate-backend/internal/services"
)

type Services struct {
	Locker userlock.Locker

	Auth          services.AuthService
	Catalog       services.CatalogService
	Gate          services.FinalizationGate
	Questionnaire services.QuestionnaireService
	DraftCache    services.DraftCache
	Assembler     services.DocumentAssembler
	Artifacts     services.ArtifactStore
	Cleanup       services.CleanupCoordinator
	Notifier      services.DocumentNotifier
	Documents     services.DocumentService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c *Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	locker, err := wireLocker(log, cfg, c)
	if err != nil {
		return Services{}, err
	}
	cache, err := wireDraftCache(log, cfg, r, c)
	if err != nil {
		return Services{}, err
	}

	gate := services.NewFinalizationGate(log, r.Question, r.Template, r.Selection, r.Finalization)
	questionnaire := services.NewQuestionnaireService(db, log, locker, gate,
		r.Question, r.Answer, r.Finalization, r.Selection, r.Template)
	assembler := services.NewDocumentAssembler(log, c.Engine, cache, questionnaire, metrics)
	artifacts := services.NewArtifactStore(log, c.Blobs, r.Artifact, metrics)
	cleanup := services.NewCleanupCoordinator(db, log, locker, cache,
		r.Answer, r.Selection, r.Finalization, r.Artifact, metrics)

	notifier := services.NewNoopNotifier()
	if c.SendGrid != nil {
		notifier = services.NewEmailNotifier(log, c.SendGrid, r.User)
	}

	return Services{
		Locker:        locker,
		Auth:          services.NewAuthService(db, log, r.User, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		Catalog:       services.NewCatalogService(log, r.Template, r.FAQ),
		Gate:          gate,
		Questionnaire: questionnaire,
		DraftCache:    cache,
		Assembler:     assembler,
		Artifacts:     artifacts,
		Cleanup:       cleanup,
		Notifier:      notifier,
		Documents: services.NewDocumentService(db, log, locker, gate, r.Finalization,
			assembler, artifacts, cleanup, notifier),
	}, nil
}

func wireLocker(log *logger.Logger, cfg Config, c *Clients) (userlock.Locker, error) {
	switch cfg.UserLock {
	case "", LockMemory:
		return userlock.NewMemoryLocker(), nil
	case LockRedis:
		if c.Redis == nil {
			return nil, fmt.Errorf("USER_LOCK=redis requires REDIS_ADDR")
		}
		return userlock.NewRedisLocker(c.Redis, userlock.RedisConfig{
			Prefix: redisPrefix(cfg, "userlock"),
			TTL:    cfg.UserLockTTL,
		}, log), nil
	default:
		return nil, fmt.Errorf("unsupported USER_LOCK %q", cfg.UserLock)
	}
}

func wireDraftCache(log *logger.Logger, cfg Config, r Repos, c *Clients) (services.DraftCache, error) {
	switch cfg.DraftCache {
	case "", services.DraftCacheDB:
		return services.NewDBDraftCache(log, r.Draft), nil
	case services.DraftCacheMemory:
		return services.NewMemoryDraftCache(cfg.DraftCacheSize, cfg.DraftCacheTTL), nil
	case services.DraftCacheRedis:
		if c.Redis == nil {
			return nil, fmt.Errorf("DRAFT_CACHE=redis requires REDIS_ADDR")
		}
		return services.NewRedisDraftCache(c.Redis, redisPrefix(cfg, "draft"), cfg.DraftCacheTTL), nil
	default:
		return nil, fmt.Errorf("unsupported DRAFT_CACHE %q", cfg.DraftCache)
	}
}
