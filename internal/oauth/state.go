package oauth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/techtimeoff/leave-service/internal/domain"
)

// ErrUnknownState is returned when a state value was never issued, expired,
// or was already redeemed.
var ErrUnknownState = errors.New("oauth: unknown or expired state")

// StateStore tracks issued anti-forgery state values. Each value is redeemable once.
type StateStore interface {
	Save(ctx context.Context, state string, provider domain.AuthProvider) error
	Consume(ctx context.Context, state string) (domain.AuthProvider, error)
}

const redisStatePrefix = "oauth:state:"

type redisStateStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStateStore keeps state values in Redis with a TTL so any replica can finish a login.
func NewRedisStateStore(client *redis.Client, ttl time.Duration) StateStore {
	return &redisStateStore{client: client, ttl: ttl}
}

func (s *redisStateStore) Save(ctx context.Context, state string, provider domain.AuthProvider) error {
	return s.client.Set(ctx, redisStatePrefix+state, string(provider), s.ttl).Err()
}

func (s *redisStateStore) Consume(ctx context.Context, state string) (domain.AuthProvider, error) {
	val, err := s.client.GetDel(ctx, redisStatePrefix+state).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrUnknownState
	}
	if err != nil {
		return "", err
	}
	return domain.AuthProvider(val), nil
}

type memoryEntry struct {
	provider  domain.AuthProvider
	expiresAt time.Time
}

// MemoryStateStore is the single-process fallback when Redis is not configured.
type MemoryStateStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

// NewMemoryStateStore returns an empty in-process store.
func NewMemoryStateStore(ttl time.Duration) *MemoryStateStore {
	return &MemoryStateStore{ttl: ttl, now: time.Now, entries: make(map[string]memoryEntry)}
}

func (s *MemoryStateStore) Save(_ context.Context, state string, provider domain.AuthProvider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for key, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, key)
		}
	}
	s.entries[state] = memoryEntry{provider: provider, expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *MemoryStateStore) Consume(_ context.Context, state string) (domain.AuthProvider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[state]
	if !ok {
		return "", ErrUnknownState
	}
	delete(s.entries, state)
	if s.now().After(entry.expiresAt) {
		return "", ErrUnknownState
	}
	return entry.provider, nil
}
