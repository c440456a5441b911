package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/asia-medicare/medicare_portal/internal/member"
)

// MemoryStore keeps serialized slots in process memory. It is used in
// development and tests.
type MemoryStore struct {
	mu    sync.Mutex
	slots map[string][]byte
}

// NewMemoryStore returns an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string][]byte)}
}

func (s *MemoryStore) Put(_ context.Context, sid string, profile member.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[sid] = data
	return nil
}

func (s *MemoryStore) Get(_ context.Context, sid string) (member.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decode(sid)
}

func (s *MemoryStore) Clear(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, sid)
	return nil
}

func (s *MemoryStore) Update(_ context.Context, sid string, fn UpdateFunc) (member.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.decode(sid)
	if err != nil {
		return member.Profile{}, err
	}
	next, err := fn(current)
	if err != nil {
		return member.Profile{}, err
	}
	data, err := json.Marshal(next)
	if err != nil {
		return member.Profile{}, fmt.Errorf("encode profile: %w", err)
	}
	s.slots[sid] = data
	return next, nil
}

func (s *MemoryStore) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.slots)), nil
}

// decode must be called with mu held.
func (s *MemoryStore) decode(sid string) (member.Profile, error) {
	raw, ok := s.slots[sid]
	if !ok {
		return member.Profile{}, ErrNotFound
	}
	var profile member.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return member.Profile{}, ErrNotFound
	}
	return profile, nil
}

