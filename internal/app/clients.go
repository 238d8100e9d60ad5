package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	redisclient "github.com/yungbote/nexovate-backend/internal/clients/redis"
	"github.com/yungbote/nexovate-backend/internal/platform/blobstore"
	"github.com/yungbote/nexovate-backend/internal/platform/generator"
	"github.com/yungbote/nexovate-backend/internal/platform/logger"
	"github.com/yungbote/nexovate-backend/internal/platform/sendgrid"
)

type Clients struct {
	Redis    *goredis.Client
	Blobs    blobstore.Store
	Engine   generator.Engine
	SendGrid sendgrid.Client

	closers []func() error
}

func (c Config) needsRedis() bool {
	return c.DraftCache == "redis" || c.UserLock == LockRedis
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (*Clients, error) {
	log.Info("Wiring clients...")
	c := &Clients{}

	if cfg.needsRedis() {
		rdb, err := redisclient.NewClient(ctx, log, redisclient.Config{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisKeyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("init redis: %w", err)
		}
		c.Redis = rdb
		c.closers = append(c.closers, rdb.Close)
	}

	blobs, closeBlobs, err := resolveArtifactStore(ctx, log, cfg)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Blobs = blobs
	c.closers = append(c.closers, closeBlobs)

	engine, err := wireEngine(ctx, log, cfg)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Engine = engine

	if cfg.SendGridAPIKey != "" {
		sg, err := sendgrid.New(log, sendgrid.Config{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		})
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("init sendgrid: %w", err)
		}
		c.SendGrid = sg
	} else {
		log.Info("SENDGRID_API_KEY not set; document emails disabled")
	}
	return c, nil
}

// wireEngine always renders through the subprocess; text modes may go to Gemini.
func wireEngine(ctx context.Context, log *logger.Logger, cfg Config) (generator.Engine, error) {
	sub, err := generator.NewSubprocessEngine(generator.SubprocessConfig{
		Interpreter: cfg.GeneratorInterpreter,
		ScriptPath:  cfg.GeneratorScript,
		WorkDir:     cfg.GeneratorWorkDir,
		Timeout:     cfg.GeneratorTimeout,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("init generator: %w", err)
	}
	switch cfg.TextEngine {
	case "", TextEngineSubprocess:
		return sub, nil
	case TextEngineGenAI:
		text, err := generator.NewGenAIEngine(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeneratorTimeout, log)
		if err != nil {
			return nil, fmt.Errorf("init genai engine: %w", err)
		}
		return &generator.RoutedEngine{Text: text, Render: sub}, nil
	default:
		return nil, fmt.Errorf("unsupported GENERATOR_TEXT_ENGINE %q", cfg.TextEngine)
	}
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		_ = c.closers[i]()
	}
	c.closers = nil
}

func redisPrefix(cfg Config, parts ...string) string {
	return redisclient.Key(cfg.RedisKeyPrefix, parts...)
}
