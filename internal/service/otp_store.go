package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTPStore guarda hashes de codigos OTP con TTL, a lo sumo una entrada viva
// por clave. Save sobreescribe cualquier entrada previa de la clave.
type OTPStore interface {
	Save(ctx context.Context, key, codeHash string, ttl time.Duration) error
	Lookup(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type otpEntry struct {
	hash      string
	expiresAt time.Time
}

type memoryOTPStore struct {
	mu    sync.Mutex
	items map[string]otpEntry
}

func NewMemoryOTPStore() OTPStore {
	return &memoryOTPStore{
		items: make(map[string]otpEntry),
	}
}

func (s *memoryOTPStore) Save(_ context.Context, key, codeHash string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(key) == "" {
		return ErrOTPNotRequested
	}
	s.items[key] = otpEntry{
		hash:      codeHash,
		expiresAt: time.Now().UTC().Add(ttl),
	}
	return nil
}

func (s *memoryOTPStore) Lookup(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[key]
	if !ok {
		return "", ErrOTPNotRequested
	}
	if time.Now().UTC().After(entry.expiresAt) {
		delete(s.items, key)
		return "", ErrOTPExpired
	}
	return entry.hash, nil
}

func (s *memoryOTPStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

type redisOTPStore struct {
	client *redis.Client
	prefix string
}

// NewRedisOTPStore crea un OTPStore respaldado en redis. La expiracion la
// maneja redis; una entrada expirada es indistinguible de una nunca pedida.
func NewRedisOTPStore(client *redis.Client) OTPStore {
	if client == nil {
		return nil
	}
	return &redisOTPStore{
		client: client,
		prefix: "otp:code:",
	}
}

func (s *redisOTPStore) Save(ctx context.Context, key, codeHash string, ttl time.Duration) error {
	if strings.TrimSpace(key) == "" {
		return ErrOTPNotRequested
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return s.client.Set(ctx, s.prefix+key, codeHash, ttl).Err()
}

func (s *redisOTPStore) Lookup(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	hash, err := s.client.Get(ctx, s.prefix+key).Result()
	if err == redis.Nil {
		return "", ErrOTPNotRequested
	}
	if err != nil {
		return "", err
	}
	return hash, nil
}

func (s *redisOTPStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return s.client.Del(ctx, s.prefix+key).Err()
}
