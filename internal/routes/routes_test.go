package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/asia-medicare/medicare_portal/internal/concierge"
	"github.com/asia-medicare/medicare_portal/internal/config"
	"github.com/asia-medicare/medicare_portal/internal/middleware"
)

type echoCompleter struct{}

func (echoCompleter) Complete(_ context.Context, _ string, _ []concierge.Message, message string) (string, error) {
	return "echo: " + message, nil
}

func newTestApp(t *testing.T, cache redis.UniversalClient) *fiber.App {
	t.Helper()
	cfg, err := config.LoadFrom(map[string]string{"APP_ENV": "test"})
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	if err := Setup(app, Deps{Cfg: cfg, Cache: cache, Completer: echoCompleter{}}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return app
}

func call(t *testing.T, app *fiber.App, method, path, token, body string, out any) int {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

type authBody struct {
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
	Profile   struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Points int64  `json:"points"`
		Tier   string `json:"tier"`
	} `json:"profile"`
}

type flowBody struct {
	State        string `json:"state"`
	QuoteID      string `json:"quote_id"`
	BalanceAfter int64  `json:"balance_after"`
}

func TestSignUpAndRedeemFastTrack(t *testing.T) {
	app := newTestApp(t, nil)

	var signup authBody
	status := call(t, app, http.MethodPost, "/api/v1/auth/signup", "",
		`{"email":"new@member.com","password":"secret","confirm_password":"secret","full_name":"New Member"}`, &signup)
	if status != http.StatusCreated || signup.Token == "" || signup.Profile.Points != 500 || signup.Profile.Tier != "Bronze" {
		t.Fatalf("unexpected signup %d %+v", status, signup)
	}

	var begin flowBody
	if status := call(t, app, http.MethodPost, "/api/v1/loyalty/redemption", signup.Token, `{"reward_id":"r3"}`, &begin); status != http.StatusCreated {
		t.Fatalf("begin status %d", status)
	}
	if begin.State != "confirming" || begin.BalanceAfter != 0 {
		t.Fatalf("unexpected quote %+v", begin)
	}

	var done flowBody
	if status := call(t, app, http.MethodPost, "/api/v1/loyalty/redemption/confirm", signup.Token, `{"quote_id":"`+begin.QuoteID+`"}`, &done); status != http.StatusOK {
		t.Fatalf("confirm status %d", status)
	}
	if done.State != "succeeded" {
		t.Fatalf("expected succeeded, got %+v", done)
	}

	var me struct {
		Profile struct {
			Points int64 `json:"points"`
		} `json:"profile"`
	}
	call(t, app, http.MethodGet, "/api/v1/me", signup.Token, "", &me)
	if me.Profile.Points != 0 {
		t.Fatalf("expected balance 0, got %d", me.Profile.Points)
	}

	var rewards struct {
		Rewards []struct {
			ID         string `json:"id"`
			Redeemable bool   `json:"redeemable"`
		} `json:"rewards"`
	}
	call(t, app, http.MethodGet, "/api/v1/rewards", signup.Token, "", &rewards)
	if len(rewards.Rewards) != 3 {
		t.Fatalf("expected 3 rewards, got %+v", rewards)
	}
	for _, r := range rewards.Rewards {
		if r.Redeemable {
			t.Fatalf("reward %s must be disabled at 0 points", r.ID)
		}
	}

	if status := call(t, app, http.MethodPost, "/api/v1/loyalty/redemption", signup.Token, `{"reward_id":"r3"}`, nil); status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for insufficient points, got %d", status)
	}
}

func TestSignUpValidation(t *testing.T) {
	app := newTestApp(t, nil)
	var body map[string]any
	status := call(t, app, http.MethodPost, "/api/v1/auth/signup", "",
		`{"email":"new@member.com","password":"a","confirm_password":"b","full_name":"New Member"}`, &body)
	if status != http.StatusBadRequest || body["error"] != "passwords do not match" {
		t.Fatalf("unexpected response %d %+v", status, body)
	}
}

func TestMemberRoutesRequireSignIn(t *testing.T) {
	app := newTestApp(t, nil)
	var body map[string]any
	if status := call(t, app, http.MethodGet, "/api/v1/me", "", "", &body); status != http.StatusUnauthorized || body["redirect_to"] != "login" {
		t.Fatalf("unexpected response %d %+v", status, body)
	}

	var demo authBody
	call(t, app, http.MethodPost, "/api/v1/auth/demo", "", "", &demo)
	if demo.Profile.Points != 12500 {
		t.Fatalf("expected demo profile, got %+v", demo.Profile)
	}
	if status := call(t, app, http.MethodPost, "/api/v1/auth/signout", demo.Token, "", nil); status != http.StatusOK {
		t.Fatalf("signout status %d", status)
	}
	var st map[string]any
	call(t, app, http.MethodGet, "/api/v1/session", demo.Token, "", &st)
	if st["state"] != "logged_out" {
		t.Fatalf("expected logged_out, got %+v", st)
	}
	if status := call(t, app, http.MethodGet, "/api/v1/me", demo.Token, "", nil); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 after sign out, got %d", status)
	}
}

func TestEditDetailsRejectsPoints(t *testing.T) {
	app := newTestApp(t, nil)
	var demo authBody
	call(t, app, http.MethodPost, "/api/v1/auth/demo", "", "", &demo)

	if status := call(t, app, http.MethodPatch, "/api/v1/me", demo.Token, `{"points":999999}`, nil); status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	var updated struct {
		Profile struct {
			Phone  string `json:"phone"`
			Points int64  `json:"points"`
		} `json:"profile"`
	}
	if status := call(t, app, http.MethodPatch, "/api/v1/me", demo.Token, `{"phone":"+66 81 000 0000"}`, &updated); status != http.StatusOK {
		t.Fatalf("patch status %d", status)
	}
	if updated.Profile.Phone != "+66 81 000 0000" || updated.Profile.Points != 12500 {
		t.Fatalf("unexpected profile %+v", updated.Profile)
	}
}

func TestAdminGate(t *testing.T) {
	app := newTestApp(t, nil)

	var member authBody
	call(t, app, http.MethodPost, "/api/v1/auth/signin", "", `{"email":"random@x.com","password":"pw"}`, &member)
	var body map[string]any
	if status := call(t, app, http.MethodGet, "/api/v1/admin/stats", member.Token, "", &body); status != http.StatusForbidden || body["redirect_to"] != "home" {
		t.Fatalf("expected 403 home, got %d %+v", status, body)
	}

	var adm authBody
	call(t, app, http.MethodPost, "/api/v1/auth/signin", "", `{"email":"admin@asiamedicare.com","password":"pw"}`, &adm)
	if adm.Role != "admin" {
		t.Fatalf("expected admin role, got %q", adm.Role)
	}
	var stats struct {
		ActiveSessions int64 `json:"activeSessions"`
		ChatSessions   int   `json:"chatSessions"`
	}
	if status := call(t, app, http.MethodGet, "/api/v1/admin/stats", adm.Token, "", &stats); status != http.StatusOK {
		t.Fatalf("admin stats status %d", status)
	}
	if stats.ActiveSessions != 2 || stats.ChatSessions != 4 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	var overridden struct {
		Points int64  `json:"points"`
		Tier   string `json:"tier"`
	}
	status := call(t, app, http.MethodPatch, "/api/v1/admin/sessions/"+member.SessionID+"/profile", adm.Token, `{"points":5000,"recompute_tier":true}`, &overridden)
	if status != http.StatusOK || overridden.Points != 5000 || overridden.Tier != "Gold" {
		t.Fatalf("unexpected override %d %+v", status, overridden)
	}

	var nav struct {
		Allowed    bool   `json:"allowed"`
		RedirectTo string `json:"redirect_to"`
	}
	call(t, app, http.MethodGet, "/api/v1/navigation/admin", member.Token, "", &nav)
	if nav.Allowed || nav.RedirectTo != "home" {
		t.Fatalf("expected member redirected home, got %+v", nav)
	}
	call(t, app, http.MethodGet, "/api/v1/navigation/admin", adm.Token, "", &nav)
	if !nav.Allowed {
		t.Fatalf("expected admin allowed, got %+v", nav)
	}
}

func TestAdminTokenRevokedBySignOut(t *testing.T) {
	app := newTestApp(t, nil)

	var adm authBody
	call(t, app, http.MethodPost, "/api/v1/auth/signin", "", `{"email":"admin@asiamedicare.com","password":"pw"}`, &adm)
	if status := call(t, app, http.MethodGet, "/api/v1/admin/stats", adm.Token, "", nil); status != http.StatusOK {
		t.Fatalf("admin stats status %d", status)
	}
	if status := call(t, app, http.MethodPost, "/api/v1/auth/signout", adm.Token, "", nil); status != http.StatusOK {
		t.Fatalf("signout status %d", status)
	}

	var body map[string]any
	if status := call(t, app, http.MethodGet, "/api/v1/admin/stats", adm.Token, "", &body); status != http.StatusUnauthorized || body["redirect_to"] != "login" {
		t.Fatalf("signed-out admin token must not open the dashboard, got %d %+v", status, body)
	}
	if status := call(t, app, http.MethodPatch, "/api/v1/admin/sessions/"+adm.SessionID+"/profile", adm.Token, `{"points":1}`, nil); status != http.StatusUnauthorized {
		t.Fatalf("signed-out admin token must not override profiles, got %d", status)
	}

	var nav struct {
		Allowed bool `json:"allowed"`
	}
	call(t, app, http.MethodGet, "/api/v1/navigation/admin", adm.Token, "", &nav)
	if nav.Allowed {
		t.Fatal("signed-out admin token must not be allowed the admin view")
	}
	var session struct {
		IsAdmin bool `json:"is_admin"`
	}
	call(t, app, http.MethodGet, "/api/v1/session", adm.Token, "", &session)
	if session.IsAdmin {
		t.Fatal("signed-out slot must not report admin")
	}
}

func TestAdminSlotReusedByMember(t *testing.T) {
	app := newTestApp(t, nil)

	var adm authBody
	call(t, app, http.MethodPost, "/api/v1/auth/signin", "", `{"email":"admin@asiamedicare.com","password":"pw"}`, &adm)

	// Signing in with the admin's token as credentials reuses the same slot.
	var member authBody
	call(t, app, http.MethodPost, "/api/v1/auth/signin", adm.Token, `{"email":"random@x.com","password":"pw"}`, &member)
	if member.SessionID != adm.SessionID || member.Role != "member" {
		t.Fatalf("expected member in the admin slot, got %+v", member)
	}

	var body map[string]any
	if status := call(t, app, http.MethodGet, "/api/v1/admin/stats", adm.Token, "", &body); status != http.StatusForbidden || body["redirect_to"] != "home" {
		t.Fatalf("stale admin token over a member slot must be refused, got %d %+v", status, body)
	}

	var nav struct {
		Allowed    bool   `json:"allowed"`
		RedirectTo string `json:"redirect_to"`
	}
	call(t, app, http.MethodGet, "/api/v1/navigation/admin", adm.Token, "", &nav)
	if nav.Allowed || nav.RedirectTo != "home" {
		t.Fatalf("expected redirect home, got %+v", nav)
	}
}

func TestChatAndSocketGuard(t *testing.T) {
	app := newTestApp(t, nil)
	var reply struct {
		Role string `json:"role"`
		Text string `json:"text"`
	}
	if status := call(t, app, http.MethodPost, "/api/v1/chat", "", `{"message":"hello"}`, &reply); status != http.StatusOK {
		t.Fatalf("chat status %d", status)
	}
	if reply.Text != "echo: hello" || reply.Role != "model" {
		t.Fatalf("unexpected reply %+v", reply)
	}
	if status := call(t, app, http.MethodGet, "/api/v1/chat/ws", "", "", nil); status != http.StatusUpgradeRequired {
		t.Fatalf("expected 426 without upgrade, got %d", status)
	}
}

func TestRedisBackedSessionsAndIdempotency(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	app := newTestApp(t, client)

	var demo authBody
	call(t, app, http.MethodPost, "/api/v1/auth/demo", "", "", &demo)
	if demo.Token == "" {
		t.Fatal("expected token")
	}

	booking := `{"service":"Dental Care","date":"2999-01-01","time_slot":"morning"}`
	submit := func() (int, string) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(booking))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+demo.Token)
		req.Header.Set("Idempotency-Key", "book-1")
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		defer resp.Body.Close()
		var b struct {
			ID string `json:"id"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&b)
		return resp.StatusCode, b.ID
	}
	s1, id1 := submit()
	s2, id2 := submit()
	if s1 != http.StatusCreated || s2 != http.StatusCreated || id1 == "" || id1 != id2 {
		t.Fatalf("expected replayed booking, got %d %q / %d %q", s1, id1, s2, id2)
	}

	var list struct {
		Bookings []json.RawMessage `json:"bookings"`
	}
	call(t, app, http.MethodGet, "/api/v1/bookings", demo.Token, "", &list)
	if len(list.Bookings) != 1 {
		t.Fatalf("expected one stored booking, got %d", len(list.Bookings))
	}

	var health struct {
		Status map[string]string `json:"status"`
	}
	if status := call(t, app, http.MethodGet, "/healthz", "", "", &health); status != http.StatusOK || health.Status["redis"] != "ok" {
		t.Fatalf("unexpected health %d %+v", status, health)
	}
}
