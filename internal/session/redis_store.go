// Package session keeps the server-side copy of each logged-in identity.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/dispute-portal/internal/domain"
)

// ErrSessionNotFound is returned for unknown, expired and revoked sessions.
var ErrSessionNotFound = errors.New("session not found or expired")

// Store persists identities by session id.
type Store interface {
	Save(ctx context.Context, id string, identity domain.Identity, expiresAt time.Time) error
	Lookup(ctx context.Context, id string) (domain.Identity, error)
	Revoke(ctx context.Context, id string) error
}

// Data is the JSON value stored for each session.
type Data struct {
	Identity  domain.Identity `json:"identity"`
	CreatedAt time.Time       `json:"created_at"`
}

// RedisStore implements Store using Redis keys with a TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a store from an existing Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "session:"}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

// Save stores a session until expiresAt.
func (s *RedisStore) Save(ctx context.Context, id string, identity domain.Identity, expiresAt time.Time) error {
	payload, err := json.Marshal(Data{Identity: identity, CreatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return fmt.Errorf("save session: expiry %s is in the past", expiresAt.Format(time.RFC3339))
	}
	if err := s.client.Set(ctx, s.key(id), payload, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Lookup returns the identity stored for id.
func (s *RedisStore) Lookup(ctx context.Context, id string) (domain.Identity, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Identity{}, ErrSessionNotFound
	}
	if err != nil {
		return domain.Identity{}, fmt.Errorf("lookup session: %w", err)
	}

	var data Data
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return domain.Identity{}, fmt.Errorf("unmarshal session: %w", err)
	}
	if data.Identity.Role == "" {
		data.Identity.Role = domain.RoleSupplier
	}
	return data.Identity, nil
}

// Revoke deletes a session. Revoking an unknown session is not an error.
func (s *RedisStore) Revoke(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// Ping checks if Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
