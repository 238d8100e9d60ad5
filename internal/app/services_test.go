package app

import (
	"testing"

	"github.com/yungbote/nexovate-backend/internal/platform/logger"
	"github.com/yungbote/nexovate-backend/internal/platform/userlock"
)

func TestWireLockerAndCacheSelection(t *testing.T) {
	log := logger.Nop()
	c := &Clients{}

	locker, err := wireLocker(log, Config{UserLock: LockMemory}, c)
	if err != nil {
		t.Fatalf("memory locker: %v", err)
	}
	if _, ok := locker.(*userlock.MemoryLocker); !ok {
		t.Fatalf("expected MemoryLocker, got %T", locker)
	}
	if _, err := wireLocker(log, Config{UserLock: LockRedis}, c); err == nil {
		t.Fatalf("redis locker without client should fail")
	}
	if _, err := wireLocker(log, Config{UserLock: "etcd"}, c); err == nil {
		t.Fatalf("unknown locker should fail")
	}

	if _, err := wireDraftCache(log, Config{DraftCache: "memory", DraftCacheSize: 8}, Repos{}, c); err != nil {
		t.Fatalf("memory cache: %v", err)
	}
	if _, err := wireDraftCache(log, Config{DraftCache: "redis"}, Repos{}, c); err == nil {
		t.Fatalf("redis cache without client should fail")
	}
	if _, err := wireDraftCache(log, Config{DraftCache: "disk"}, Repos{}, c); err == nil {
		t.Fatalf("unknown cache should fail")
	}
}
