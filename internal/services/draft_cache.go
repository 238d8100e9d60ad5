package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	redisclient "github.com/yungbote/nexovate-backend/internal/clients/redis"
	"github.com/yungbote/nexovate-backend/internal/data/repos"
	"github.com/yungbote/nexovate-backend/internal/platform/logger"
)

const (
	DraftCacheDB     = "db"
	DraftCacheMemory = "memory"
	DraftCacheRedis  = "redis"
)

// DraftCache holds the latest draft text per user. Put is a blind overwrite.
type DraftCache interface {
	Get(ctx context.Context, userID uuid.UUID) (string, bool, error)
	Put(ctx context.Context, userID uuid.UUID, text string) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

// txDraftDeleter is implemented by caches that can join a purge transaction.
type txDraftDeleter interface {
	DeleteTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type dbDraftCache struct {
	log  *logger.Logger
	repo repos.DraftRepo
}

func NewDBDraftCache(log *logger.Logger, repo repos.DraftRepo) DraftCache {
	return &dbDraftCache{log: log.With("service", "DraftCache", "backend", DraftCacheDB), repo: repo}
}

func (c *dbDraftCache) Get(ctx context.Context, userID uuid.UUID) (string, bool, error) {
	d, err := c.repo.Get(ctx, nil, userID)
	if err != nil {
		return "", false, err
	}
	if d == nil {
		return "", false, nil
	}
	return d.Text, true, nil
}

func (c *dbDraftCache) Put(ctx context.Context, userID uuid.UUID, text string) error {
	if err := c.repo.Put(ctx, nil, userID, text); err != nil {
		c.log.Warn("Draft put failed", "user_id", userID, "error", err)
		return err
	}
	return nil
}

func (c *dbDraftCache) Delete(ctx context.Context, userID uuid.UUID) error {
	return c.DeleteTx(ctx, nil, userID)
}

// DeleteTx removes the draft inside the caller's transaction.
func (c *dbDraftCache) DeleteTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	if err := c.repo.Delete(ctx, tx, userID); err != nil {
		c.log.Warn("Draft delete failed", "user_id", userID, "error", err)
		return err
	}
	return nil
}

type memoryDraftCache struct {
	lru *lru.LRU[uuid.UUID, string]
}

// NewMemoryDraftCache keeps drafts in-process; entries expire after ttl (0 disables expiry).
func NewMemoryDraftCache(size int, ttl time.Duration) DraftCache {
	if size <= 0 {
		size = 1024
	}
	return &memoryDraftCache{lru: lru.NewLRU[uuid.UUID, string](size, nil, ttl)}
}

func (c *memoryDraftCache) Get(_ context.Context, userID uuid.UUID) (string, bool, error) {
	text, ok := c.lru.Get(userID)
	return text, ok, nil
}

func (c *memoryDraftCache) Put(_ context.Context, userID uuid.UUID, text string) error {
	c.lru.Add(userID, text)
	return nil
}

func (c *memoryDraftCache) Delete(_ context.Context, userID uuid.UUID) error {
	c.lru.Remove(userID)
	return nil
}

type redisDraftCache struct {
	rdb    goredis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisDraftCache(rdb goredis.UniversalClient, prefix string, ttl time.Duration) DraftCache {
	if prefix == "" {
		prefix = "nexovate:draft"
	}
	return &redisDraftCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *redisDraftCache) key(userID uuid.UUID) string {
	return redisclient.Key(c.prefix, userID.String())
}

func (c *redisDraftCache) Get(ctx context.Context, userID uuid.UUID) (string, bool, error) {
	text, err := c.rdb.Get(ctx, c.key(userID)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get draft: %w", err)
	}
	return text, true, nil
}

func (c *redisDraftCache) Put(ctx context.Context, userID uuid.UUID, text string) error {
	if err := c.rdb.Set(ctx, c.key(userID), text, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set draft: %w", err)
	}
	return nil
}

func (c *redisDraftCache) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := c.rdb.Del(ctx, c.key(userID)).Err(); err != nil {
		return fmt.Errorf("redis del draft: %w", err)
	}
	return nil
}
