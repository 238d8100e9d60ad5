package userlock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/nexovate-backend/internal/platform/logger"
)

var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

var extendScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)

type RedisConfig struct {
	Prefix string
	// TTL is the lease length; a held lock is extended every TTL/3.
	TTL          time.Duration
	PollInterval time.Duration
}

// RedisLocker is a lease-based lock shared across replicas. A crashed holder's
// lease expires after TTL.
type RedisLocker struct {
	rdb goredis.UniversalClient
	cfg RedisConfig
	log *logger.Logger
}

func NewRedisLocker(rdb goredis.UniversalClient, cfg RedisConfig, log *logger.Logger) *RedisLocker {
	if cfg.Prefix == "" {
		cfg.Prefix = "nexovate:userlock"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 50 * time.Millisecond
	}
	return &RedisLocker{rdb: rdb, cfg: cfg, log: log.With("component", "RedisLocker")}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := l.cfg.Prefix + ":" + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.cfg.PollInterval)
	defer ticker.Stop()
	for {
		ok, err := l.rdb.SetNX(ctx, redisKey, token, l.cfg.TTL).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("acquire user lock: %w", err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go l.keepAlive(redisKey, token, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			relCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(relCtx, l.rdb, []string{redisKey}, token).Err(); err != nil && !errors.Is(err, goredis.Nil) {
				l.log.Warn("Failed to release user lock", "key", redisKey, "error", err)
			}
		})
	}, nil
}

func (l *RedisLocker) keepAlive(key, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	t := time.NewTicker(l.cfg.TTL / 3)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			ctx, cancel := context.WithTimeout(context.Background(), l.cfg.TTL/3)
			n, err := extendScript.Run(ctx, l.rdb, []string{key}, token, l.cfg.TTL.Milliseconds()).Int64()
			cancel()
			if err != nil {
				l.log.Warn("Failed to extend user lock", "key", key, "error", err)
				continue
			}
			if n == 0 {
				l.log.Warn("User lock lease lost", "key", key)
				return
			}
		}
	}
}
