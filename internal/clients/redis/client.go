package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/nexovate-backend/internal/platform/logger"
)

type Config struct {
	Addr     string
	Password string
	DB       int
	// KeyPrefix namespaces every key this service writes.
	KeyPrefix string
}

// NewClient dials and pings Redis. Callers own Close.
func NewClient(ctx context.Context, log *logger.Logger, cfg Config) (*goredis.Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	log.With("client", "Redis").Info("Redis connected", "addr", addr, "db", cfg.DB)
	return rdb, nil
}

// Key joins a prefix and parts with ':'.
func Key(prefix string, parts ...string) string {
	all := make([]string, 0, len(parts)+1)
	if p := strings.Trim(prefix, ":"); p != "" {
		all = append(all, p)
	}
	all = append(all, parts...)
	return strings.Join(all, ":")
}
