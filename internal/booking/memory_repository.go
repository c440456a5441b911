package booking

import (
	"context"
	"errors"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage []Booking
}

// NewMemoryRepository constructs an in-memory repository for development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (r *memoryRepository) Create(_ context.Context, b Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.storage {
		if existing.ID == b.ID {
			return errors.New("booking exists")
		}
	}
	r.storage = append(r.storage, b)
	return nil
}

func (r *memoryRepository) ListByUser(_ context.Context, userID string) ([]Booking, error) {
	out := r.filter(func(b Booking) bool { return b.UserID == userID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryRepository) ListByDate(_ context.Context, date string) ([]Booking, error) {
	return r.filter(func(b Booking) bool { return b.Date == date }), nil
}

func (r *memoryRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.storage)), nil
}

func (r *memoryRepository) filter(keep func(Booking) bool) []Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Booking, 0)
	for _, b := range r.storage {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}
