package admin

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/asia-medicare/medicare_portal/internal/booking"
	"github.com/asia-medicare/medicare_portal/internal/profile"
)

// Handler exposes the dashboard endpoints. Routes are mounted behind
// middleware.RequireAdmin.
type Handler struct {
	service *Service
}

// NewHandler builds an admin HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type replyRequest struct {
	Text string `json:"text"`
}

// Stats returns the dashboard counters and weekly chart.
func (h *Handler) Stats(c *fiber.Ctx) error {
	return c.JSON(h.service.Stats(c.UserContext()))
}

// Appointments returns the schedule for ?date=YYYY-MM-DD.
func (h *Handler) Appointments(c *fiber.Ctx) error {
	list, err := h.service.Appointments(c.UserContext(), c.Query("date"))
	if err != nil {
		if errors.Is(err, booking.ErrInvalidDraft) {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"appointments": list})
}

// Chats lists inbox sessions filtered by ?q=.
func (h *Handler) Chats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"chats": h.service.Inbox().List(c.Query("q"))})
}

// Chat returns one session with its transcript.
func (h *Handler) Chat(c *fiber.Ctx) error {
	s, err := h.service.Inbox().Get(c.Params("id"))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(s)
}

// Reply appends an administrator message to a chat.
func (h *Handler) Reply(c *fiber.Ctx) error {
	var req replyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	s, err := h.service.Inbox().Reply(c.Params("id"), req.Text)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusCreated).JSON(s)
}

// Resolve closes a chat.
func (h *Handler) Resolve(c *fiber.Ctx) error {
	s, err := h.service.Inbox().Resolve(c.Params("id"))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(s)
}

// OverrideProfile sets points and tier on the profile held by :sid.
func (h *Handler) OverrideProfile(c *fiber.Ctx) error {
	var req Override
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	p, err := h.service.OverrideProfile(c.UserContext(), c.Params("sid"), req)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(p)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrChatNotFound), errors.Is(err, profile.ErrNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrEmptyReply), errors.Is(err, ErrNothingToOverride):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, profile.ErrValidation):
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
