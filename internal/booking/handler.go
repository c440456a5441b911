package booking

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/asia-medicare/medicare_portal/internal/middleware"
)

// Handler exposes booking HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a booking HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type slotResponse struct {
	ID    TimeSlot `json:"id"`
	Label string   `json:"label"`
}

type stepRequest struct {
	Step Step `json:"step"`
	Draft
}

// Catalog lists the service categories, bookable services and partner hospitals.
func (h *Handler) Catalog(c *fiber.Ctx) error {
	slots := make([]slotResponse, 0, 3)
	for _, s := range []TimeSlot{SlotMorning, SlotAfternoon, SlotFlexible} {
		slots = append(slots, slotResponse{ID: s, Label: s.Label()})
	}
	return c.JSON(fiber.Map{
		"categories": Categories(),
		"bookable":   Services(),
		"time_slots": slots,
		"partners":   PartnerHospitals(),
	})
}

// ValidateStep checks one page of the form before the client advances.
func (h *Handler) ValidateStep(c *fiber.Ctx) error {
	var req stepRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := ValidateStep(req.Step, req.Draft, h.service.Today()); err != nil {
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	}
	next := req.Step + 1
	if next > StepDetails {
		return c.JSON(fiber.Map{"valid": true, "complete": true})
	}
	return c.JSON(fiber.Map{"valid": true, "next_step": next, "next_label": next.String()})
}

// Submit stores the booking for the signed-in member.
func (h *Handler) Submit(c *fiber.Ctx) error {
	var d Draft
	if err := c.BodyParser(&d); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	p, _ := middleware.CurrentProfile(c)
	b, err := h.service.Submit(c.UserContext(), p, d)
	if err != nil {
		if errors.Is(err, ErrInvalidDraft) {
			return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(b)
}

// List returns the member's bookings.
func (h *Handler) List(c *fiber.Ctx) error {
	p, _ := middleware.CurrentProfile(c)
	bookings, err := h.service.List(c.UserContext(), p.ID)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"bookings": bookings})
}
