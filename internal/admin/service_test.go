package admin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/asia-medicare/medicare_portal/internal/booking"
	"github.com/asia-medicare/medicare_portal/internal/ledger"
	"github.com/asia-medicare/medicare_portal/internal/member"
	"github.com/asia-medicare/medicare_portal/internal/profile"
	"github.com/asia-medicare/medicare_portal/internal/session"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc      *Service
	profiles *profile.Service
	journal  ledger.Journal
	bookings *booking.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := session.NewMemoryStore()
	profiles := profile.NewService(store, nil, nil, nil)
	journal := ledger.NewInMemory()
	bookings := booking.NewService(booking.NewMemoryRepository(), nil, nil)
	inbox := NewSampleInbox(func() time.Time { return fixedNow })
	svc := NewService(store, bookings, profiles, journal, inbox, nil)
	svc.now = func() time.Time { return fixedNow }
	return fixture{svc: svc, profiles: profiles, journal: journal, bookings: bookings}
}

func ptr[T any](v T) *T { return &v }

func TestInboxSearch(t *testing.T) {
	in := NewSampleInbox(func() time.Time { return fixedNow })

	all := in.List("")
	if len(all) != 4 || all[0].User != "Sarah Ahmed" || all[3].User != "John Smith" {
		t.Fatalf("unexpected ordering %+v", all)
	}
	if all[0].History != nil {
		t.Fatal("list must omit transcripts")
	}
	if got := in.List("li wei"); len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("expected name match, got %+v", got)
	}
	if got := in.List("+966"); len(got) != 1 || got[0].User != "Mohammed Ali" {
		t.Fatalf("expected phone match, got %+v", got)
	}
	if got := in.List("nobody"); len(got) != 0 {
		t.Fatalf("expected no match, got %+v", got)
	}
}

func TestInboxReplyAndResolve(t *testing.T) {
	in := NewSampleInbox(func() time.Time { return fixedNow })

	s, err := in.Get("1")
	if err != nil || len(s.History) != 4 {
		t.Fatalf("expected sarah transcript, got %+v %v", s, err)
	}
	if s.Unread {
		t.Fatal("opening a chat marks it read")
	}

	s, err = in.Reply("3", "  Glad we could help.  ")
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	last := s.History[len(s.History)-1]
	if last.Role != AuthorAdmin || last.Text != "Glad we could help." || s.Status != ChatActive {
		t.Fatalf("unexpected reply result %+v", s)
	}
	if _, err := in.Reply("3", "   "); !errors.Is(err, ErrEmptyReply) {
		t.Fatalf("expected ErrEmptyReply, got %v", err)
	}
	if _, err := in.Reply("99", "hi"); !errors.Is(err, ErrChatNotFound) {
		t.Fatalf("expected ErrChatNotFound, got %v", err)
	}

	if s, err = in.Resolve("1"); err != nil || s.Status != ChatResolved {
		t.Fatalf("resolve: %+v %v", s, err)
	}
	total, open := in.Counts()
	if total != 4 || open != 3 {
		t.Fatalf("expected 4 total 3 open, got %d %d", total, open)
	}
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.profiles.SignUp(ctx, "sid-1", profile.SignUpInput{Email: "a@x.com", Password: "pw", FullName: "A Test"}); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	_, _ = f.journal.Record(ctx, ledger.Entry{ClientTxID: "q1", Kind: ledger.KindRedemption, UserID: "u", Points: -500})

	stats := f.svc.Stats(ctx)
	if stats.ActiveSessions != 1 || stats.TotalRedeemed != 500 || stats.Bookings != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if len(stats.Weekly) != 7 || stats.ChatSessions != 4 || stats.OpenChats != 3 {
		t.Fatalf("unexpected dashboard data %+v", stats)
	}
}

func TestAppointmentsMergeSamplesAndBookings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	samples, err := f.svc.Appointments(ctx, "2023-12-01")
	if err != nil || len(samples) != 3 {
		t.Fatalf("expected 3 samples, got %d %v", len(samples), err)
	}

	date := time.Now().UTC().AddDate(0, 0, 2).Format(time.DateOnly)
	if _, err := f.bookings.Submit(ctx, member.Profile{ID: "u1", Name: "A Test"}, booking.Draft{Service: "Dental Care", Date: date}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	day, err := f.svc.Appointments(ctx, date)
	if err != nil || len(day) != 1 || day[0].UserID != "u1" {
		t.Fatalf("expected stored booking, got %+v %v", day, err)
	}

	if _, err := f.svc.Appointments(ctx, "01/12/2023"); !errors.Is(err, booking.ErrInvalidDraft) {
		t.Fatalf("expected invalid date, got %v", err)
	}
}

func TestOverrideProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.profiles.SignUp(ctx, "sid-1", profile.SignUpInput{Email: "a@x.com", Password: "pw", FullName: "A Test"})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	got, err := f.svc.OverrideProfile(ctx, "sid-1", Override{Points: ptr(int64(6000))})
	if err != nil {
		t.Fatalf("override: %v", err)
	}
	if got.Points != 6000 || got.Tier != member.TierBronze {
		t.Fatalf("points alone must not move the tier, got %+v", got)
	}

	got, err = f.svc.OverrideProfile(ctx, "sid-1", Override{Points: ptr(int64(12000)), RecomputeTier: true})
	if err != nil || got.Tier != member.TierPlatinum {
		t.Fatalf("expected recomputed Platinum, got %+v %v", got, err)
	}

	got, err = f.svc.OverrideProfile(ctx, "sid-1", Override{Tier: ptr(member.TierSilver)})
	if err != nil || got.Tier != member.TierSilver || got.Points != 12000 {
		t.Fatalf("expected tier-only override, got %+v %v", got, err)
	}

	entries, _ := f.journal.List(ctx, p.ID)
	if len(entries) != 2 {
		t.Fatalf("expected 2 adjustments, got %+v", entries)
	}
	var sum int64
	for _, e := range entries {
		if e.Kind != ledger.KindAdjustment {
			t.Fatalf("unexpected kind %s", e.Kind)
		}
		sum += e.Points
	}
	if sum != 11500 {
		t.Fatalf("expected net adjustment 11500, got %d", sum)
	}

	if _, err := f.svc.OverrideProfile(ctx, "sid-1", Override{}); !errors.Is(err, ErrNothingToOverride) {
		t.Fatalf("expected ErrNothingToOverride, got %v", err)
	}
	if _, err := f.svc.OverrideProfile(ctx, "sid-1", Override{Points: ptr(int64(-1))}); !errors.Is(err, profile.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := f.svc.OverrideProfile(ctx, "empty", Override{Points: ptr(int64(1))}); !errors.Is(err, profile.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOverrideJournalsExactDeltaUnderConcurrentDebits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.profiles.SignUp(ctx, "sid-1", profile.SignUpInput{Email: "a@x.com", Password: "pw", FullName: "A Test"})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	var debited atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := f.profiles.Debit(ctx, "sid-1", p.ID, 1); err == nil {
				debited.Add(1)
			}
		}()
		go func(i int) {
			defer wg.Done()
			if _, err := f.svc.OverrideProfile(ctx, "sid-1", Override{Points: ptr(int64(1000 + i))}); err != nil {
				t.Errorf("override: %v", err)
			}
		}(i)
	}
	wg.Wait()

	final, err := f.profiles.GetProfile(ctx, "sid-1", p.ID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	entries, _ := f.journal.List(ctx, p.ID)
	var adjusted int64
	for _, e := range entries {
		adjusted += e.Points
	}
	if got := p.Points + adjusted - debited.Load(); got != final.Points {
		t.Fatalf("journal out of step: start %d + adjustments %d - debits %d = %d, balance %d",
			p.Points, adjusted, debited.Load(), got, final.Points)
	}
}

func TestHandlerRoutes(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.svc)
	app := fiber.New()
	app.Get("/chats", h.Chats)
	app.Get("/chats/:id", h.Chat)
	app.Post("/chats/:id/reply", h.Reply)
	app.Patch("/sessions/:sid/profile", h.OverrideProfile)

	cases := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{http.MethodGet, "/chats?q=sarah", "", http.StatusOK},
		{http.MethodGet, "/chats/42", "", http.StatusNotFound},
		{http.MethodPost, "/chats/2/reply", `{"text":"On its way"}`, http.StatusCreated},
		{http.MethodPost, "/chats/2/reply", `{"text":""}`, http.StatusBadRequest},
		{http.MethodPatch, "/sessions/nobody/profile", `{"points":10}`, http.StatusNotFound},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("%s %s: %v", tc.method, tc.path, err)
		}
		if resp.StatusCode != tc.status {
			t.Fatalf("%s %s: expected %d got %d", tc.method, tc.path, tc.status, resp.StatusCode)
		}
	}
}
