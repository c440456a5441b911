package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/asia-medicare/medicare_portal/internal/auth"
	"github.com/asia-medicare/medicare_portal/internal/member"
)

const (
	localSessionID = "session_id"
	localProfile   = "profile"
)

// ProfileLookup resolves the profile held by a session slot.
type ProfileLookup func(ctx context.Context, sid string) (member.Profile, error)

// Session reads an optional bearer token. A valid token puts its session id
// into the request locals; a missing or invalid token leaves the request
// anonymous. The role claim is not trusted here: a slot can be signed out or
// taken over by another account while older tokens are still unexpired.
func Session(issuer *auth.Issuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return c.Next()
		}
		claims, err := issuer.Parse(strings.TrimSpace(authz[len("Bearer "):]))
		if err != nil {
			return c.Next()
		}
		c.Locals(localSessionID, claims.SessionID)
		return c.Next()
	}
}

// SessionID returns the caller's session id, or "" when anonymous.
func SessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(localSessionID).(string)
	return sid
}

// IsAdmin reports whether p is granted the administrator role by issuer.
func IsAdmin(issuer *auth.Issuer, p member.Profile) bool {
	return p.Email != "" && issuer.RoleFor(p.Email) == auth.RoleAdmin
}

// CurrentProfile returns the profile loaded by RequireMember.
func CurrentProfile(c *fiber.Ctx) (member.Profile, bool) {
	p, ok := c.Locals(localProfile).(member.Profile)
	return p, ok
}

// RequireMember rejects callers whose slot holds no profile. The response
// names the login route so clients can redirect.
func RequireMember(lookup ProfileLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := SessionID(c)
		if sid == "" {
			return redirectToLogin(c)
		}
		p, err := lookup(c.UserContext(), sid)
		if err != nil {
			return redirectToLogin(c)
		}
		c.Locals(localProfile, p)
		return c.Next()
	}
}

// RequireAdmin loads the caller's slot and grants access only when the
// profile held there is on the admin allow-list.
func RequireAdmin(lookup ProfileLookup, issuer *auth.Issuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := SessionID(c)
		if sid == "" {
			return redirectToLogin(c)
		}
		p, err := lookup(c.UserContext(), sid)
		if err != nil {
			return redirectToLogin(c)
		}
		if !IsAdmin(issuer, p) {
			return c.Status(http.StatusForbidden).JSON(fiber.Map{
				"error":       "administrator access required",
				"redirect_to": "home",
			})
		}
		c.Locals(localProfile, p)
		return c.Next()
	}
}

func redirectToLogin(c *fiber.Ctx) error {
	return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
		"error":       "sign in required",
		"redirect_to": "login",
	})
}
