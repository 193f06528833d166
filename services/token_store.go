package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

// TokenStore records session tokens revoked by logout until they would have expired.
type TokenStore interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// MemoryTokenStore keeps revocations in process. Suitable for a single instance.
type MemoryTokenStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (s *MemoryTokenStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[tokenID] = expiresAt
	return nil
}

func (s *MemoryTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiresAt, ok := s.revoked[tokenID]
	return ok && s.now().Before(expiresAt), nil
}

// Purge drops revocations whose tokens have expired anyway and returns how many it removed.
func (s *MemoryTokenStore) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, expiresAt := range s.revoked {
		if !now.Before(expiresAt) {
			delete(s.revoked, id)
			removed++
		}
	}
	return removed
}

// StartPurger runs Purge on the given cron schedule. Stop the returned cron on shutdown.
func (s *MemoryTokenStore) StartPurger(spec string, onPurge func(removed int)) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		removed := s.Purge()
		if onPurge != nil {
			onPurge(removed)
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule token purge: %w", err)
	}
	c.Start()
	return c, nil
}

// RedisTokenStore shares revocations between instances; keys expire with the token.
type RedisTokenStore struct {
	client *redis.Client
	prefix string
}

func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client, prefix: "session:revoked:"}
}

func (s *RedisTokenStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, s.prefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.prefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token: %w", err)
	}
	return n > 0, nil
}
