package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/dispute-portal/internal/domain"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), s
}

func TestSaveAndLookup(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	identity := domain.Identity{SupplierID: "SUP-001", SupplierName: "Demo Supplier", Email: "supplier@demo", Role: domain.RoleSupplier}
	if err := store.Save(ctx, "sess-1", identity, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Lookup(ctx, "sess-1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got != identity {
		t.Errorf("expected %+v, got %+v", identity, got)
	}
}

func TestLookupUnknownSession(t *testing.T) {
	store, _ := setupTestRedis(t)
	if _, err := store.Lookup(context.Background(), "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionExpires(t *testing.T) {
	store, s := setupTestRedis(t)
	ctx := context.Background()

	if err := store.Save(ctx, "sess-2", domain.Identity{Email: "a@b"}, time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ttl := s.TTL("session:sess-2"); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected ttl %v", ttl)
	}

	s.FastForward(2 * time.Minute)
	if _, err := store.Lookup(ctx, "sess-2"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected expired session, got %v", err)
	}
}

func TestSaveRejectsPastExpiry(t *testing.T) {
	store, _ := setupTestRedis(t)
	if err := store.Save(context.Background(), "old", domain.Identity{}, time.Now().Add(-time.Second)); err == nil {
		t.Fatalf("expected error for past expiry")
	}
}

func TestRevoke(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	_ = store.Save(ctx, "sess-3", domain.Identity{Email: "a@b", Role: domain.RoleAdmin}, time.Now().Add(time.Hour))
	if err := store.Revoke(ctx, "sess-3"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := store.Lookup(ctx, "sess-3"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected revoked session to be gone, got %v", err)
	}
	if err := store.Revoke(ctx, "never-existed"); err != nil {
		t.Fatalf("revoking unknown session should succeed: %v", err)
	}
}
