package loyalty

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/asia-medicare/medicare_portal/internal/middleware"
	"github.com/asia-medicare/medicare_portal/internal/profile"
)

// Handler exposes rewards and redemption endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a loyalty HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type beginRequest struct {
	RewardID string `json:"reward_id"`
}

type quoteRequest struct {
	QuoteID string `json:"quote_id"`
}

type flowResponse struct {
	State         State  `json:"state"`
	QuoteID       string `json:"quote_id,omitempty"`
	RewardID      string `json:"reward_id,omitempty"`
	Cost          int64  `json:"cost,omitempty"`
	BalanceBefore int64  `json:"balance_before,omitempty"`
	BalanceAfter  int64  `json:"balance_after"`
	ExpiresAt     string `json:"expires_at,omitempty"`
}

func toFlowResponse(q Quote) flowResponse {
	resp := flowResponse{
		State:         q.State,
		QuoteID:       q.ID,
		RewardID:      q.RewardID,
		Cost:          q.Cost,
		BalanceBefore: q.BalanceBefore,
		BalanceAfter:  q.BalanceAfter,
	}
	if !q.ExpiresAt.IsZero() {
		resp.ExpiresAt = q.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// Rewards lists the catalog with each redemption control's state.
func (h *Handler) Rewards(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"rewards": h.service.Offers(c.UserContext(), middleware.SessionID(c), middleware.Language(c)),
		"tiers":   TierBenefits(),
	})
}

// Summary returns the member card: balance, tier and progress.
func (h *Handler) Summary(c *fiber.Ctx) error {
	p, _ := middleware.CurrentProfile(c)
	return c.JSON(fiber.Map{
		"name":     p.Name,
		"progress": ProgressFor(p),
	})
}

// Status reports the session's redemption flow.
func (h *Handler) Status(c *fiber.Ctx) error {
	q, err := h.service.Status(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(toFlowResponse(q))
}

// Begin opens the confirmation step.
func (h *Handler) Begin(c *fiber.Ctx) error {
	var req beginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	q, err := h.service.Begin(c.UserContext(), middleware.SessionID(c), req.RewardID)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusCreated).JSON(toFlowResponse(q))
}

// Confirm performs the debit.
func (h *Handler) Confirm(c *fiber.Ctx) error {
	var req quoteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	q, err := h.service.Confirm(c.UserContext(), middleware.SessionID(c), req.QuoteID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(toFlowResponse(q))
}

// Cancel closes the confirmation step.
func (h *Handler) Cancel(c *fiber.Ctx) error {
	var req quoteRequest
	_ = c.BodyParser(&req)
	if err := h.service.Cancel(c.UserContext(), middleware.SessionID(c), req.QuoteID); err != nil {
		return mapError(err)
	}
	return c.JSON(toFlowResponse(Idle()))
}

// History lists the member's points movements.
func (h *Handler) History(c *fiber.Ctx) error {
	p, _ := middleware.CurrentProfile(c)
	entries, err := h.service.History(c.UserContext(), p.ID)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"entries": entries})
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrUnknownReward), errors.Is(err, ErrNoFlow):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInsufficientPoints):
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrInProgress), errors.Is(err, profile.ErrSessionChanged):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, profile.ErrNotFound):
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
