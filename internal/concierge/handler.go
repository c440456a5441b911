package concierge

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const (
	maxMessageLength = 4000
	socketIdle       = 10 * time.Minute
)

// Handler exposes the chat widget endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a concierge HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type chatRequest struct {
	History []Message `json:"history"`
	Message string    `json:"message"`
}

type chatResponse struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

func cleanMessage(raw string) (string, bool) {
	msg := strings.TrimSpace(raw)
	if msg == "" || len(msg) > maxMessageLength {
		return "", false
	}
	return msg, true
}

// Chat answers one message. The client carries the history.
func (h *Handler) Chat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	msg, ok := cleanMessage(req.Message)
	if !ok {
		return fiber.NewError(http.StatusBadRequest, "message must be between 1 and 4000 characters")
	}
	reply := h.service.Reply(c.UserContext(), req.History, msg)
	return c.JSON(chatResponse{Role: RoleModel, Text: reply})
}

// UpgradeOnly rejects plain HTTP requests to the socket route.
func UpgradeOnly(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Socket serves the chat widget over a websocket. The conversation lives as
// long as the connection; a reply produced after the peer left is dropped.
func (h *Handler) Socket() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var convo Conversation
		for {
			_ = conn.SetReadDeadline(time.Now().Add(socketIdle))
			var req chatRequest
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			msg, ok := cleanMessage(req.Message)
			if !ok {
				continue
			}
			reply := convo.Ask(ctx, h.service, msg)
			if err := conn.WriteJSON(chatResponse{Role: RoleModel, Text: reply}); err != nil {
				return
			}
		}
	})
}
