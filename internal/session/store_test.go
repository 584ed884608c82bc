package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	key := RefreshKey("user-1")
	if err := store.Set(ctx, key, "hash-1", time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if value != "hash-1" {
		t.Fatalf("Get = %q, want hash-1", value)
	}

	// Overwrite wins.
	if err := store.Set(ctx, key, "hash-2", time.Hour); err != nil {
		t.Fatal(err)
	}
	value, _ = store.Get(ctx, key)
	if value != "hash-2" {
		t.Fatalf("Get after overwrite = %q, want hash-2", value)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, key); err != ErrNotFound {
		t.Fatalf("Get after delete: err = %v, want ErrNotFound", err)
	}
}

func TestRedisStoreTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	key := RefreshKey("user-1")
	if err := store.Set(ctx, key, "hash", time.Minute); err != nil {
		t.Fatal(err)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := store.Get(ctx, key); err != ErrNotFound {
		t.Fatalf("Get after expiry: err = %v, want ErrNotFound", err)
	}
}

func TestRefreshKey(t *testing.T) {
	if got := RefreshKey("abc"); got != "refresh:abc" {
		t.Fatalf("RefreshKey = %q", got)
	}
}

func TestDisabledStore(t *testing.T) {
	store := Disabled()
	ctx := context.Background()

	if store.Enabled() {
		t.Fatal("disabled store reports enabled")
	}
	if err := store.Set(ctx, "k", "v", time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := store.Get(ctx, "k"); err != ErrNotFound {
		t.Fatalf("Get: err = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}
