package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/asia-medicare/medicare_portal/internal/member"
)

type storeUnderTest struct {
	store   Store
	corrupt func(sid string)
}

func newStores(t *testing.T) map[string]storeUnderTest {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	mem := NewMemoryStore()
	return map[string]storeUnderTest{
		"memory": {
			store: mem,
			corrupt: func(sid string) {
				mem.mu.Lock()
				defer mem.mu.Unlock()
				mem.slots[sid] = []byte("{not json")
			},
		},
		"redis": {
			store: NewRedisStore(client),
			corrupt: func(sid string) {
				if err := mr.Set(slotKey(sid), "{not json"); err != nil {
					t.Fatalf("corrupt slot: %v", err)
				}
			},
		},
	}
}

func sampleProfile() member.Profile {
	return member.Profile{
		ID:             "user-1",
		Name:           "A Test",
		Email:          "a@x.com",
		Phone:          "0812345678",
		Points:         500,
		Tier:           member.TierBronze,
		Language:       member.LanguageThai,
		PassportNumber: "AA1234567",
		PhotoURL:       "https://example.com/a.jpg",
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, tc := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			want := sampleProfile()
			if err := tc.store.Put(ctx, "sid-1", want); err != nil {
				t.Fatalf("put: %v", err)
			}
			got, err := tc.store.Get(ctx, "sid-1")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got != want {
				t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
			}
		})
	}
}

func TestStoreGetMissingAndCorrupt(t *testing.T) {
	for name, tc := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := tc.store.Get(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			tc.corrupt("broken")
			if _, err := tc.store.Get(ctx, "broken"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected corrupt blob to read as ErrNotFound, got %v", err)
			}
		})
	}
}

func TestStorePutOverwritesAndClear(t *testing.T) {
	for name, tc := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first := sampleProfile()
			second := sampleProfile()
			second.ID = "user-2"
			_ = tc.store.Put(ctx, "sid", first)
			_ = tc.store.Put(ctx, "sid", second)

			got, err := tc.store.Get(ctx, "sid")
			if err != nil || got.ID != "user-2" {
				t.Fatalf("expected last write to win, got %+v %v", got, err)
			}
			if n, _ := tc.store.Count(ctx); n != 1 {
				t.Fatalf("expected one slot, got %d", n)
			}

			if err := tc.store.Clear(ctx, "sid"); err != nil {
				t.Fatalf("clear: %v", err)
			}
			if err := tc.store.Clear(ctx, "sid"); err != nil {
				t.Fatalf("second clear must be a no-op: %v", err)
			}
			if _, err := tc.store.Get(ctx, "sid"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound after clear, got %v", err)
			}
		})
	}
}

func TestStoreUpdate(t *testing.T) {
	for name, tc := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_ = tc.store.Put(ctx, "sid", sampleProfile())

			updated, err := tc.store.Update(ctx, "sid", func(p member.Profile) (member.Profile, error) {
				p.Points -= 200
				return p, nil
			})
			if err != nil {
				t.Fatalf("update: %v", err)
			}
			if updated.Points != 300 {
				t.Fatalf("expected 300 points, got %d", updated.Points)
			}

			boom := errors.New("boom")
			if _, err := tc.store.Update(ctx, "sid", func(p member.Profile) (member.Profile, error) {
				p.Points = 0
				return p, boom
			}); !errors.Is(err, boom) {
				t.Fatalf("expected callback error, got %v", err)
			}
			stored, _ := tc.store.Get(ctx, "sid")
			if stored.Points != 300 {
				t.Fatalf("aborted update must not persist, got %d", stored.Points)
			}

			if _, err := tc.store.Update(ctx, "missing", func(p member.Profile) (member.Profile, error) {
				t.Fatal("callback must not run for an empty slot")
				return p, nil
			}); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestMemoryStoreConcurrentConditionalDecrement(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	p := sampleProfile()
	p.Points = 1_000
	_ = store.Put(ctx, "sid", p)

	insufficient := errors.New("insufficient")
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Update(ctx, "sid", func(p member.Profile) (member.Profile, error) {
				if p.Points < 100 {
					return p, insufficient
				}
				p.Points -= 100
				return p, nil
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	final, _ := store.Get(ctx, "sid")
	if succeeded != 10 || final.Points != 0 {
		t.Fatalf("expected 10 debits down to 0, got %d debits and %d points", succeeded, final.Points)
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	store := NewRedisStore(client)
	mr.Close()

	ctx := context.Background()
	if _, err := store.Get(ctx, "sid"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if err := store.Put(ctx, "sid", sampleProfile()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable on put, got %v", err)
	}
}

func TestRedisStoreCount(t *testing.T) {
	stores := newStores(t)
	store := stores["redis"].store
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_ = store.Put(ctx, fmt.Sprintf("sid-%d", i), sampleProfile())
	}
	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 slots, got %d", n)
	}
}
