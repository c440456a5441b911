// Package concierge answers member chat with a hosted generative model.
// Failures never reach the caller; the member sees a polite fallback instead.
package concierge

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/asia-medicare/medicare_portal/internal/logging"
)

// Role tags a chat message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

func (r Role) wire() string {
	if r == RoleModel {
		return "model"
	}
	return "user"
}

// Message is one turn of the conversation.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Completer is the outbound text completion collaborator.
type Completer interface {
	Complete(ctx context.Context, system string, history []Message, message string) (string, error)
}

// Fallback replies.
const (
	ReplyUnavailable  = "AI services are currently unavailable. Please contact our human support."
	ReplyConnectivity = "I'm having trouble connecting to my brain right now. Please try again or chat with a human admin."
	ReplyEmpty        = "I'm sorry, I couldn't process that."
)

// SystemPrompt is the brand persona and the loyalty facts the model may quote.
const SystemPrompt = `You are the Asia Medicare Group Digital Concierge.
Asia Medicare Group provides medical checkups, treatments, medical tourism assistance,
limousine transfers, and 5-star hotel bookings in Asia (primarily Thailand).
Be professional, helpful, and empathetic.
Support multiple languages: English, Thai, Arabic, and Chinese.
If the user asks about points, tell them they earn 1 point for every 100 THB spent.
Current rewards include:
- Airport Limousine (2,000 points)
- 5-Star Hotel Night (5,000 points)
- VIP Fast Track (500 points)
Always invite them to book an appointment through the 'Booking' tab if they need a doctor.`

// MaxHistory bounds the turns forwarded to the model.
const MaxHistory = 40

// Service produces concierge replies.
type Service struct {
	completer Completer
	logger    *slog.Logger
}

// NewService wires the concierge.
func NewService(completer Completer, logger *slog.Logger) *Service {
	return &Service{completer: completer, logger: logging.OrDiscard(logger)}
}

// Reply answers message given the prior turns. It always returns text.
func (s *Service) Reply(ctx context.Context, history []Message, message string) string {
	if s.completer == nil {
		return ReplyUnavailable
	}
	if len(history) > MaxHistory {
		history = history[len(history)-MaxHistory:]
	}
	text, err := s.completer.Complete(ctx, SystemPrompt, history, message)
	switch {
	case errors.Is(err, ErrMissingCredentials):
		return ReplyUnavailable
	case err != nil:
		s.logger.Warn("concierge.complete failed", slog.Any("error", err))
		return ReplyConnectivity
	case strings.TrimSpace(text) == "":
		return ReplyEmpty
	}
	return text
}

// Conversation accumulates the turns of one chat widget.
type Conversation struct {
	messages []Message
}

// History returns the recorded turns.
func (c *Conversation) History() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Ask sends message with the recorded history and records both turns.
func (c *Conversation) Ask(ctx context.Context, s *Service, message string) string {
	reply := s.Reply(ctx, c.messages, message)
	c.messages = append(c.messages, Message{Role: RoleUser, Text: message}, Message{Role: RoleModel, Text: reply})
	if len(c.messages) > MaxHistory {
		c.messages = append([]Message(nil), c.messages[len(c.messages)-MaxHistory:]...)
	}
	return reply
}
