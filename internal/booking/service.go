package booking

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/asia-medicare/medicare_portal/internal/logging"
	"github.com/asia-medicare/medicare_portal/internal/member"
	"github.com/asia-medicare/medicare_portal/internal/notification"
	"github.com/asia-medicare/medicare_portal/internal/records"
)

// ConciergeDesk receives booking notifications.
const ConciergeDesk = "concierge-desk"

// Service validates and stores booking requests.
type Service struct {
	repo     Repository
	notifier notification.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires the booking service. A nil notifier disables notifications.
func NewService(repo Repository, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, logger: logging.OrDiscard(logger), now: time.Now}
}

// Today is the date used to reject past bookings.
func (s *Service) Today() time.Time { return s.now().UTC() }

// Submit validates the whole draft and stores a pending booking for the member.
func (s *Service) Submit(ctx context.Context, p member.Profile, d Draft) (Booking, error) {
	d.Service = strings.TrimSpace(d.Service)
	d.Date = strings.TrimSpace(d.Date)
	d.Notes = strings.TrimSpace(d.Notes)
	if d.TimeSlot == "" {
		d.TimeSlot = SlotFlexible
	}
	if err := d.Validate(s.Today()); err != nil {
		return Booking{}, err
	}

	b := Booking{
		ID:        uuid.NewString(),
		UserID:    p.ID,
		UserName:  p.Name,
		UserPhone: p.Phone,
		Service:   d.Service,
		Date:      d.Date,
		TimeSlot:  d.TimeSlot,
		Notes:     d.Notes,
		Status:    records.StatusPending,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return Booking{}, fmt.Errorf("store booking: %w", err)
	}
	s.logger.Info("booking.submitted", slog.String("booking_id", b.ID), slog.String("user_id", b.UserID), slog.String("service", b.Service))

	if s.notifier != nil {
		msg := notification.Message{
			Kind:        notification.KindBookingCreated,
			Destination: ConciergeDesk,
			Body:        fmt.Sprintf("%s requested %s on %s (%s)", b.UserName, b.Service, b.Date, b.TimeSlot.Label()),
		}
		if err := s.notifier.Send(ctx, msg); err != nil {
			s.logger.Warn("booking.notify failed", slog.String("booking_id", b.ID), slog.Any("error", err))
		}
	}
	return b, nil
}

// List returns the member's bookings, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Booking, error) {
	return s.repo.ListByUser(ctx, userID)
}

// ForDate returns the bookings requested for a calendar date.
func (s *Service) ForDate(ctx context.Context, date string) ([]Booking, error) {
	return s.repo.ListByDate(ctx, date)
}

// Count returns the number of submitted bookings.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
