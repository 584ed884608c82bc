package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestLocalLimiter(t *testing.T) {
	limiter := New(nil, 15*time.Minute, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := limiter.Allow(ctx, "1.2.3.4"); err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
	}
	if err := limiter.Allow(ctx, "1.2.3.4"); err != ErrRateLimited {
		t.Fatalf("request 4: err = %v, want ErrRateLimited", err)
	}

	// Other identities are unaffected.
	if err := limiter.Allow(ctx, "5.6.7.8"); err != nil {
		t.Fatalf("other key: %v", err)
	}
}

func TestLocalLimiterWindowReset(t *testing.T) {
	limiter := New(nil, 15*time.Minute, 2)
	current := time.Now()
	limiter.now = func() time.Time { return current }
	ctx := context.Background()

	_ = limiter.Allow(ctx, "k")
	_ = limiter.Allow(ctx, "k")
	if err := limiter.Allow(ctx, "k"); err != ErrRateLimited {
		t.Fatalf("exhausted window: err = %v, want ErrRateLimited", err)
	}

	current = current.Add(16 * time.Minute)
	if err := limiter.Allow(ctx, "k"); err != nil {
		t.Fatalf("after window reset: %v", err)
	}
}

func TestRedisLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	limiter := New(client, 15*time.Minute, 2)
	ctx := context.Background()

	if err := limiter.Allow(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if err := limiter.Allow(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if err := limiter.Allow(ctx, "k"); err != ErrRateLimited {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}

	mr.FastForward(16 * time.Minute)
	if err := limiter.Allow(ctx, "k"); err != nil {
		t.Fatalf("after expiry: %v", err)
	}
}
