package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MichaelKoga/C2C/internal/cache"
)

func deadRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         "localhost:1",
		DialTimeout:  10 * time.Millisecond,
		ReadTimeout:  10 * time.Millisecond,
		WriteTimeout: 10 * time.Millisecond,
		MaxRetries:   -1,
	})
}

type payload struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

func TestKey(t *testing.T) {
	got := cache.Key("standings", "abc", "F9", "scratch")
	if want := "c2c:standings:abc:F9:scratch"; got != want {
		t.Errorf("Key = %q, want %q", got, want)
	}
}

func TestNop(t *testing.T) {
	var c cache.Cache = cache.Nop{}
	if err := c.Set(context.Background(), "k", payload{Name: "Ana"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	var p payload
	ok, err := c.Get(context.Background(), "k", &p)
	if err != nil || ok {
		t.Errorf("Get = %v, %v; want miss", ok, err)
	}
}

func TestRedisUnreachable(t *testing.T) {
	rdb := deadRedis()
	defer rdb.Close()
	c := cache.NewRedis(rdb, time.Minute)

	ctx := context.Background()
	if err := c.Check(ctx); err == nil {
		t.Error("Check: expected error")
	}
	if err := c.Set(ctx, "k", payload{}); err == nil {
		t.Error("Set: expected error")
	}
	var p payload
	if _, err := c.Get(ctx, "k", &p); err == nil {
		t.Error("Get: expected error")
	}
	if _, err := cache.Open(ctx, "redis://localhost:1/0"); err == nil {
		t.Error("Open: expected error")
	}
	if _, err := cache.Open(ctx, "not a url"); err == nil {
		t.Error("Open: expected parse error")
	}
}

// TestRedis needs a live server in REDIS_URL.
func TestRedis(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()

	rdb, err := cache.Open(ctx, url)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rdb.Close()
	c := cache.NewRedis(rdb, time.Minute)

	key := cache.Key("test", uuid.NewString())
	t.Cleanup(func() { rdb.Del(ctx, key) })

	var p payload
	ok, err := c.Get(ctx, key, &p)
	if err != nil || ok {
		t.Fatalf("Get before Set = %v, %v; want miss", ok, err)
	}

	if err := c.Set(ctx, key, payload{Name: "Ana", Score: 70}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	ok, err = c.Get(ctx, key, &p)
	if err != nil || !ok {
		t.Fatalf("Get after Set = %v, %v; want hit", ok, err)
	}
	if p != (payload{Name: "Ana", Score: 70}) {
		t.Errorf("Get = %+v", p)
	}
	if ttl := rdb.TTL(ctx, key).Val(); ttl <= 0 || ttl > time.Minute {
		t.Errorf("TTL = %v, want (0, 1m]", ttl)
	}
}
