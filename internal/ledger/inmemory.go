package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type inMemoryJournal struct {
	mu      sync.RWMutex
	entries []Entry
	byTx    map[string]int
}

// NewInMemory creates a concurrency-safe in-memory journal for development and tests.
func NewInMemory() Journal {
	return &inMemoryJournal{byTx: make(map[string]int)}
}

func (j *inMemoryJournal) Record(_ context.Context, entry Entry) (Entry, error) {
	if err := validate(entry); err != nil {
		return Entry{}, err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	key := string(entry.Kind) + ":" + entry.ClientTxID
	if idx, exists := j.byTx[key]; exists {
		return j.entries[idx], ErrDuplicateEntry
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	j.byTx[key] = len(j.entries)
	j.entries = append(j.entries, entry)
	return entry, nil
}

func (j *inMemoryJournal) List(_ context.Context, userID string) ([]Entry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make([]Entry, 0)
	for _, e := range j.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}

func (j *inMemoryJournal) TotalRedeemed(_ context.Context) (int64, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var total int64
	for _, e := range j.entries {
		if e.Kind == KindRedemption {
			total -= e.Points
		}
	}
	return total, nil
}
