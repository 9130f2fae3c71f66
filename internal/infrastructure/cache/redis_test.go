package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestOpenRedis_Success(t *testing.T) {
	s := miniredis.RunT(t)

	// Use a non-zero DB to verify it's set
	c, err := OpenRedis(context.Background(), Options{Addr: s.Addr(), DB: 2})
	if err != nil {
		t.Fatalf("OpenRedis returned error: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if got := c.Options().DB; got != 2 {
		t.Fatalf("client DB = %d, want 2", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := c.Set(ctx, "k", "v", 0).Err(); err != nil {
		t.Fatalf("SET err: %v", err)
	}
	v, err := c.Get(ctx, "k").Result()
	if err != nil {
		t.Fatalf("GET err: %v", err)
	}
	if v != "v" {
		t.Fatalf("GET value = %q, want %q", v, "v")
	}
}

func TestOpenRedis_WithPassword(t *testing.T) {
	s := miniredis.RunT(t)
	s.RequireAuth("hunter2")

	if _, err := OpenRedis(context.Background(), Options{Addr: s.Addr()}); err == nil {
		t.Fatal("expected auth error without password")
	}
	c, err := OpenRedis(context.Background(), Options{Addr: s.Addr(), Password: "hunter2"})
	if err != nil {
		t.Fatalf("OpenRedis with password: %v", err)
	}
	_ = c.Close()
}

func TestOpenRedis_Failure(t *testing.T) {
	// Unresolvable host → Ping should fail immediately
	if _, err := OpenRedis(context.Background(), Options{Addr: "not-a-real-host:6379"}); err == nil {
		t.Fatal("expected error, got nil")
	}
}
