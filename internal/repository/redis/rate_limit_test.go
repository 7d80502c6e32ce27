package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*red.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client, server
}

func TestRateLimitStore_RecordAndCount(t *testing.T) {
	client, _ := newTestRedis(t)
	store := NewRateLimitStore(client, StoreConfig{KeyPrefix: "ratelimit", TTL: time.Minute})

	ctx := context.Background()
	now := time.Now()
	window := 30 * time.Second

	for i := 0; i < 3; i++ {
		if err := store.RecordAttempt(ctx, "198.51.100.7", now.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("RecordAttempt returned error: %v", err)
		}
	}
	// Outside the window; must not be counted.
	if err := store.RecordAttempt(ctx, "198.51.100.7", now.Add(-time.Minute)); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}

	count, err := store.CountAttempts(ctx, "198.51.100.7", window, now.Add(3*time.Second))
	if err != nil {
		t.Fatalf("CountAttempts returned error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 attempts in window, got %d", count)
	}
}

func TestRateLimitStore_TrimWindow(t *testing.T) {
	client, _ := newTestRedis(t)
	store := NewRateLimitStore(client, StoreConfig{KeyPrefix: "ratelimit", TTL: time.Minute})

	ctx := context.Background()
	now := time.Now()
	window := 10 * time.Second

	if err := store.RecordAttempt(ctx, "user-1", now.Add(-time.Minute)); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}
	if err := store.RecordAttempt(ctx, "user-1", now); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}

	if err := store.TrimWindow(ctx, "user-1", window, now); err != nil {
		t.Fatalf("TrimWindow returned error: %v", err)
	}

	count, err := store.CountAttempts(ctx, "user-1", time.Hour, now)
	if err != nil {
		t.Fatalf("CountAttempts returned error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected only the in-window attempt to survive, got %d", count)
	}
}

func TestRateLimitStore_OldestAttempt(t *testing.T) {
	client, _ := newTestRedis(t)
	store := NewRateLimitStore(client, StoreConfig{KeyPrefix: "ratelimit", TTL: time.Minute})

	ctx := context.Background()
	now := time.Now()
	window := time.Minute

	oldest := now.Add(-20 * time.Second)
	if err := store.RecordAttempt(ctx, "user-2", oldest); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}
	if err := store.RecordAttempt(ctx, "user-2", now); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}

	got, found, err := store.OldestAttempt(ctx, "user-2", window, now)
	if err != nil {
		t.Fatalf("OldestAttempt returned error: %v", err)
	}
	if !found {
		t.Fatalf("expected an attempt inside the window")
	}
	if !got.Equal(time.Unix(0, oldest.UnixNano())) {
		t.Fatalf("expected oldest %v, got %v", oldest, got)
	}
}

func TestRateLimitStore_OldestAttemptMiss(t *testing.T) {
	client, _ := newTestRedis(t)
	store := NewRateLimitStore(client, StoreConfig{KeyPrefix: "ratelimit", TTL: time.Minute})

	_, found, err := store.OldestAttempt(context.Background(), "nobody", time.Minute, time.Now())
	if err != nil {
		t.Fatalf("OldestAttempt returned error: %v", err)
	}
	if found {
		t.Fatalf("expected no attempts for unknown identifier")
	}
}
