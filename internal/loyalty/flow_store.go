package loyalty

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/asia-medicare/medicare_portal/internal/infra"
)

const flowNamespace = "redemption:v1"

// RedisFlowStore keeps quotes under redemption:v1:<sid> and the processing
// lock under redemption:v1:<sid>:lock.
type RedisFlowStore struct {
	client redis.UniversalClient
}

// NewRedisFlowStore builds a Redis-backed flow store.
func NewRedisFlowStore(client redis.UniversalClient) *RedisFlowStore {
	return &RedisFlowStore{client: client}
}

func quoteKey(sid string) string { return infra.Key(flowNamespace, sid) }
func lockKey(sid string) string  { return infra.Key(flowNamespace, sid, "lock") }

func (s *RedisFlowStore) Save(ctx context.Context, q Quote, ttl time.Duration) error {
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("encode quote: %w", err)
	}
	return s.client.Set(ctx, quoteKey(q.SessionID), data, ttl).Err()
}

func (s *RedisFlowStore) Load(ctx context.Context, sid string) (Quote, error) {
	raw, err := s.client.Get(ctx, quoteKey(sid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Quote{}, ErrNoFlow
	}
	if err != nil {
		return Quote{}, err
	}
	var q Quote
	if err := json.Unmarshal(raw, &q); err != nil {
		return Quote{}, ErrNoFlow
	}
	q.SessionID = sid
	return q, nil
}

func (s *RedisFlowStore) Delete(ctx context.Context, sid string) error {
	return s.client.Del(ctx, quoteKey(sid)).Err()
}

func (s *RedisFlowStore) Acquire(ctx context.Context, sid string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, lockKey(sid), "1", ttl).Result()
}

func (s *RedisFlowStore) Release(ctx context.Context, sid string) error {
	return s.client.Del(ctx, lockKey(sid)).Err()
}

type memoryEntry struct {
	quote     Quote
	expiresAt time.Time
}

// MemoryFlowStore is the in-process flow store for development and tests.
type MemoryFlowStore struct {
	mu     sync.Mutex
	quotes map[string]memoryEntry
	locks  map[string]time.Time
	now    func() time.Time
}

// NewMemoryFlowStore builds an empty in-memory flow store.
func NewMemoryFlowStore() *MemoryFlowStore {
	return &MemoryFlowStore{
		quotes: make(map[string]memoryEntry),
		locks:  make(map[string]time.Time),
		now:    time.Now,
	}
}

func (s *MemoryFlowStore) Save(_ context.Context, q Quote, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[q.SessionID] = memoryEntry{quote: q, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryFlowStore) Load(_ context.Context, sid string) (Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.quotes[sid]
	if !ok {
		return Quote{}, ErrNoFlow
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.quotes, sid)
		return Quote{}, ErrNoFlow
	}
	return e.quote, nil
}

func (s *MemoryFlowStore) Delete(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.quotes, sid)
	return nil
}

func (s *MemoryFlowStore) Acquire(_ context.Context, sid string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if until, held := s.locks[sid]; held && now.Before(until) {
		return false, nil
	}
	s.locks[sid] = now.Add(ttl)
	return true, nil
}

func (s *MemoryFlowStore) Release(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, sid)
	return nil
}
