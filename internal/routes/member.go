package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/asia-medicare/medicare_portal/internal/admin"
	"github.com/asia-medicare/medicare_portal/internal/booking"
	"github.com/asia-medicare/medicare_portal/internal/locale"
	"github.com/asia-medicare/medicare_portal/internal/loyalty"
	"github.com/asia-medicare/medicare_portal/internal/member"
	"github.com/asia-medicare/medicare_portal/internal/middleware"
	"github.com/asia-medicare/medicare_portal/internal/profile"
)

// RegisterMemberRoutes wires the signed-in member's own profile and records.
func RegisterMemberRoutes(r fiber.Router, profiles *profile.Service) {
	r.Get("/me", func(c *fiber.Ctx) error {
		p, _ := middleware.CurrentProfile(c)
		return c.JSON(fiber.Map{
			"profile":   p,
			"direction": locale.Direction(p.Language),
		})
	})

	r.Patch("/me", func(c *fiber.Ctx) error {
		var patch member.Patch
		if err := c.BodyParser(&patch); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		p, _ := middleware.CurrentProfile(c)
		updated, err := profiles.EditDetails(c.UserContext(), middleware.SessionID(c), p.ID, patch)
		if err != nil {
			return mapProfileError(err)
		}
		return c.JSON(fiber.Map{"profile": updated})
	})

	r.Get("/me/appointments", func(c *fiber.Ctx) error {
		p, _ := middleware.CurrentProfile(c)
		list, err := profiles.ListAppointments(c.UserContext(), p.ID)
		if err != nil {
			return fiber.NewError(http.StatusBadGateway, err.Error())
		}
		return c.JSON(fiber.Map{"appointments": list})
	})

	r.Get("/me/medical-records", func(c *fiber.Ctx) error {
		p, _ := middleware.CurrentProfile(c)
		list, err := profiles.ListMedicalRecords(c.UserContext(), p.ID)
		if err != nil {
			return fiber.NewError(http.StatusBadGateway, err.Error())
		}
		return c.JSON(fiber.Map{"records": list})
	})
}

// RegisterLoyaltyRoutes wires the member card and the redemption flow.
// Flow mutations honour Idempotency-Key.
func RegisterLoyaltyRoutes(r fiber.Router, h *loyalty.Handler, idempotent fiber.Handler) {
	group := r.Group("/loyalty")
	group.Get("/summary", h.Summary)
	group.Get("/history", h.History)
	group.Get("/redemption", h.Status)
	group.Post("/redemption", idempotent, h.Begin)
	group.Post("/redemption/confirm", idempotent, h.Confirm)
	group.Post("/redemption/cancel", idempotent, h.Cancel)
}

// RegisterBookingRoutes wires the booking form.
func RegisterBookingRoutes(r fiber.Router, h *booking.Handler, idempotent fiber.Handler) {
	group := r.Group("/bookings")
	group.Get("", h.List)
	group.Post("/validate", h.ValidateStep)
	group.Post("", idempotent, h.Submit)
}

// RegisterAdminRoutes wires the dashboard. r must already enforce the admin role.
func RegisterAdminRoutes(r fiber.Router, h *admin.Handler) {
	r.Get("/stats", h.Stats)
	r.Get("/appointments", h.Appointments)
	r.Get("/chats", h.Chats)
	r.Get("/chats/:id", h.Chat)
	r.Post("/chats/:id/reply", h.Reply)
	r.Post("/chats/:id/resolve", h.Resolve)
	r.Patch("/sessions/:sid/profile", h.OverrideProfile)
}
