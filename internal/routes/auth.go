package routes

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/asia-medicare/medicare_portal/internal/auth"
	"github.com/asia-medicare/medicare_portal/internal/member"
	"github.com/asia-medicare/medicare_portal/internal/middleware"
	"github.com/asia-medicare/medicare_portal/internal/profile"
)

type authResponse struct {
	Token     string         `json:"token"`
	SessionID string         `json:"session_id"`
	Role      string         `json:"role"`
	ExpiresAt string         `json:"expires_at"`
	Profile   member.Profile `json:"profile"`
}

type signUpRequest struct {
	Email           string          `json:"email"`
	Password        string          `json:"password"`
	ConfirmPassword string          `json:"confirm_password"`
	FullName        string          `json:"full_name"`
	Language        member.Language `json:"language"`
}

type signInRequest struct {
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Language member.Language `json:"language"`
}

// RegisterAuthRoutes wires sign-up, sign-in, the demo shortcut, sign-out and
// session status. Signing in over an existing token reuses its slot.
func RegisterAuthRoutes(r fiber.Router, profiles *profile.Service, issuer *auth.Issuer, rateLimiter fiber.Handler, logger *slog.Logger) {
	group := r.Group("/auth")

	group.Post("/signup", rateLimiter, func(c *fiber.Ctx) error {
		var req signUpRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if err := profile.ValidateSignUp(req.Email, req.FullName, req.Password, req.ConfirmPassword); err != nil {
			return mapProfileError(err)
		}
		sid := slotFor(c)
		p, err := profiles.SignUp(c.UserContext(), sid, profile.SignUpInput{
			Email:    req.Email,
			Password: req.Password,
			FullName: req.FullName,
			Language: languageFor(c, req.Language),
		})
		if err != nil {
			return mapProfileError(err)
		}
		return respondWithToken(c, issuer, sid, p, http.StatusCreated)
	})

	group.Post("/signin", rateLimiter, func(c *fiber.Ctx) error {
		var req signInRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		sid := slotFor(c)
		p, err := profiles.SignIn(c.UserContext(), sid, profile.Credentials{
			Email:    req.Email,
			Password: req.Password,
			Language: languageFor(c, req.Language),
		})
		if err != nil {
			logger.Warn("auth.signin rejected", slog.String("session_id", sid), slog.Any("error", err))
			return mapProfileError(err)
		}
		return respondWithToken(c, issuer, sid, p, http.StatusOK)
	})

	group.Post("/demo", func(c *fiber.Ctx) error {
		sid := slotFor(c)
		p, err := profiles.SignIn(c.UserContext(), sid, profile.Credentials{Email: profile.DemoEmail})
		if err != nil {
			return mapProfileError(err)
		}
		return respondWithToken(c, issuer, sid, p, http.StatusOK)
	})

	group.Post("/signout", func(c *fiber.Ctx) error {
		if err := profiles.SignOut(c.UserContext(), middleware.SessionID(c)); err != nil {
			return fiber.NewError(http.StatusServiceUnavailable, "session store unavailable")
		}
		return c.JSON(profile.Status{State: profile.LoggedOut})
	})

	r.Get("/session", func(c *fiber.Ctx) error {
		st := profiles.Status(c.UserContext(), middleware.SessionID(c))
		return c.JSON(fiber.Map{
			"state":    st.State,
			"profile":  st.Profile,
			"is_admin": st.State == profile.LoggedIn && st.Profile != nil && middleware.IsAdmin(issuer, *st.Profile),
		})
	})
}

func slotFor(c *fiber.Ctx) string {
	if sid := middleware.SessionID(c); sid != "" {
		return sid
	}
	return auth.NewSessionID()
}

func languageFor(c *fiber.Ctx, requested member.Language) member.Language {
	if l, err := member.ParseLanguage(string(requested)); err == nil {
		return l
	}
	return middleware.Language(c)
}

func respondWithToken(c *fiber.Ctx, issuer *auth.Issuer, sid string, p member.Profile, status int) error {
	tok, err := issuer.Issue(sid, p.Email)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not issue session token")
	}
	return c.Status(status).JSON(authResponse{
		Token:     tok.Value,
		SessionID: tok.SessionID,
		Role:      tok.Role,
		ExpiresAt: tok.ExpiresAt.UTC().Format(time.RFC3339),
		Profile:   p,
	})
}

func mapProfileError(err error) error {
	switch {
	case errors.Is(err, profile.ErrValidation):
		return fiber.NewError(http.StatusBadRequest, strings.TrimPrefix(err.Error(), profile.ErrValidation.Error()+": "))
	case errors.Is(err, profile.ErrAuthentication):
		return fiber.NewError(http.StatusUnauthorized, "authentication failed")
	case errors.Is(err, profile.ErrNotFound):
		return fiber.NewError(http.StatusUnauthorized, "sign in required")
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
