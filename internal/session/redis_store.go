package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/asia-medicare/medicare_portal/internal/infra"
	"github.com/asia-medicare/medicare_portal/internal/member"
)

const (
	keyNamespace      = "session:v1"
	defaultMaxRetries = 16
	scanBatch         = 100
)

// RedisStore keeps each slot as a JSON blob under session:v1:<sid>.
type RedisStore struct {
	client     redis.UniversalClient
	maxRetries int
}

// NewRedisStore builds a Redis-backed session store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, maxRetries: defaultMaxRetries}
}

func slotKey(sid string) string { return infra.Key(keyNamespace, sid) }

// Put serializes and stores the profile without expiry.
func (s *RedisStore) Put(ctx context.Context, sid string, profile member.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := s.client.Set(ctx, slotKey(sid), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Get loads the slot. Missing and undecodable blobs both yield ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, sid string) (member.Profile, error) {
	raw, err := s.client.Get(ctx, slotKey(sid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return member.Profile{}, ErrNotFound
	}
	if err != nil {
		return member.Profile{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var profile member.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return member.Profile{}, ErrNotFound
	}
	return profile, nil
}

// Clear deletes the slot.
func (s *RedisStore) Clear(ctx context.Context, sid string) error {
	if err := s.client.Del(ctx, slotKey(sid)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Update runs fn inside a WATCH/MULTI transaction, retrying when another
// writer touched the slot in between.
func (s *RedisStore) Update(ctx context.Context, sid string, fn UpdateFunc) (member.Profile, error) {
	key := slotKey(sid)
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		var updated member.Profile
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			raw, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return ErrNotFound
			}
			if err != nil {
				return err
			}
			var current member.Profile
			if err := json.Unmarshal(raw, &current); err != nil {
				return ErrNotFound
			}
			next, err := fn(current)
			if err != nil {
				return callbackError{err: err}
			}
			data, err := json.Marshal(next)
			if err != nil {
				return callbackError{err: fmt.Errorf("encode profile: %w", err)}
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, data, 0)
				return nil
			})
			if err != nil {
				return err
			}
			updated = next
			return nil
		}, key)

		var cbErr callbackError
		switch {
		case err == nil:
			return updated, nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.Is(err, ErrNotFound):
			return member.Profile{}, ErrNotFound
		case errors.As(err, &cbErr):
			return member.Profile{}, cbErr.err
		default:
			return member.Profile{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	return member.Profile{}, fmt.Errorf("%w: update of %s kept conflicting", ErrUnavailable, sid)
}

// Count scans the session namespace.
func (s *RedisStore) Count(ctx context.Context) (int64, error) {
	var n int64
	iter := s.client.Scan(ctx, 0, infra.Key(keyNamespace, "*"), scanBatch).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return n, nil
}
