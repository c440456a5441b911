package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/asia-medicare/medicare_portal/internal/auth"
	"github.com/asia-medicare/medicare_portal/internal/booking"
	"github.com/asia-medicare/medicare_portal/internal/concierge"
	"github.com/asia-medicare/medicare_portal/internal/locale"
	"github.com/asia-medicare/medicare_portal/internal/loyalty"
	"github.com/asia-medicare/medicare_portal/internal/member"
	"github.com/asia-medicare/medicare_portal/internal/middleware"
	"github.com/asia-medicare/medicare_portal/internal/navigation"
)

// RegisterNavigationRoutes exposes the role gate for each named view.
// The admin decision is taken from the profile in the slot, not the token.
func RegisterNavigationRoutes(r fiber.Router, lookup middleware.ProfileLookup, issuer *auth.Issuer) {
	principal := func(c *fiber.Ctx) navigation.Principal {
		sid := middleware.SessionID(c)
		if sid == "" {
			return navigation.Principal{}
		}
		p, err := lookup(c.UserContext(), sid)
		if err != nil {
			return navigation.Principal{}
		}
		return navigation.Principal{SignedIn: true, Admin: middleware.IsAdmin(issuer, p)}
	}

	r.Get("/navigation", func(c *fiber.Ctx) error {
		p := principal(c)
		lang := middleware.Language(c)
		decisions := make([]navigation.Decision, 0, len(navigation.Routes()))
		for _, route := range navigation.Routes() {
			decisions = append(decisions, navigation.Resolve(route, p))
		}
		return c.JSON(fiber.Map{
			"routes":    decisions,
			"language":  lang,
			"direction": locale.Direction(lang),
			"languages": member.Languages(),
		})
	})

	r.Get("/navigation/:route", func(c *fiber.Ctx) error {
		route, ok := navigation.Parse(c.Params("route"))
		if !ok {
			return fiber.NewError(http.StatusNotFound, "unknown route")
		}
		return c.JSON(navigation.Resolve(route, principal(c)))
	})
}

// RegisterCatalogRoutes wires the public service and reward catalogs.
func RegisterCatalogRoutes(r fiber.Router, rewards *loyalty.Handler, bookings *booking.Handler) {
	r.Get("/services", bookings.Catalog)
	r.Get("/rewards", rewards.Rewards)
}

// RegisterChatRoutes wires the concierge widget over HTTP and websocket.
func RegisterChatRoutes(r fiber.Router, h *concierge.Handler) {
	r.Post("/chat", h.Chat)
	r.Use("/chat/ws", concierge.UpgradeOnly)
	r.Get("/chat/ws", h.Socket())
}
