package redis

import (
	"context"
	"testing"
	"time"
)

func TestCacheSetAndGet(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "wallet:balance:W1", "730.00", time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	val, err := cache.Get(ctx, "wallet:balance:W1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if val != "730.00" {
		t.Fatalf("expected 730.00, got %s", val)
	}
}

func TestCacheGetMiss(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)

	if _, err := cache.Get(context.Background(), "wallet:balance:missing"); err == nil {
		t.Fatalf("expected error on cache miss")
	}
}

func TestCacheKeysArePrefixed(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "wallet:balance:W1", "10.00", time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if !mr.Exists("ledger:cache:wallet:balance:W1") {
		t.Fatalf("expected prefixed key in redis, keys: %v", mr.Keys())
	}
}

func TestCacheDelete(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "wallet:balance:W1", "10.00", time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if err := cache.Delete(ctx, "wallet:balance:W1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := cache.Get(ctx, "wallet:balance:W1"); err == nil {
		t.Fatalf("expected error getting deleted key")
	}
}
