package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist guarda tokens de acceso revocados hasta que expiren.
type TokenBlacklist interface {
	Add(ctx context.Context, token string, ttl time.Duration) error
	Contains(ctx context.Context, token string) (bool, error)
}

type memoryTokenBlacklist struct {
	mu    sync.Mutex
	items map[string]time.Time
}

func NewMemoryTokenBlacklist() TokenBlacklist {
	return &memoryTokenBlacklist{
		items: make(map[string]time.Time),
	}
}

func (b *memoryTokenBlacklist) Add(_ context.Context, token string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if strings.TrimSpace(token) == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	b.items[token] = time.Now().UTC().Add(ttl)
	return nil
}

func (b *memoryTokenBlacklist) Contains(_ context.Context, token string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	exp, ok := b.items[token]
	if !ok {
		return false, nil
	}
	if time.Now().UTC().After(exp) {
		delete(b.items, token)
		return false, nil
	}
	return true, nil
}

type redisTokenBlacklist struct {
	client *redis.Client
	prefix string
}

func NewRedisTokenBlacklist(client *redis.Client) TokenBlacklist {
	if client == nil {
		return nil
	}
	return &redisTokenBlacklist{
		client: client,
		prefix: "auth:blacklist:",
	}
}

func (b *redisTokenBlacklist) Add(ctx context.Context, token string, ttl time.Duration) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return b.client.Set(ctx, b.prefix+token, "1", ttl).Err()
}

func (b *redisTokenBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	if strings.TrimSpace(token) == "" {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	n, err := b.client.Exists(ctx, b.prefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
