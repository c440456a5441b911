// Package admin backs the executive dashboard: operational statistics, the
// concierge chat inbox and loyalty overrides.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/asia-medicare/medicare_portal/internal/booking"
	"github.com/asia-medicare/medicare_portal/internal/ledger"
	"github.com/asia-medicare/medicare_portal/internal/logging"
	"github.com/asia-medicare/medicare_portal/internal/member"
	"github.com/asia-medicare/medicare_portal/internal/records"
)

// ErrNothingToOverride rejects an override that changes neither points nor tier.
var ErrNothingToOverride = errors.New("override must set points or tier")

// WeeklyStat is one day of the bookings and revenue chart.
type WeeklyStat struct {
	Name     string `json:"name"`
	Bookings int    `json:"bookings"`
	Revenue  int    `json:"revenue"`
}

// WeeklyStats is the sample chart shown on the dashboard.
func WeeklyStats() []WeeklyStat {
	return []WeeklyStat{
		{"Mon", 12, 4500},
		{"Tue", 19, 5200},
		{"Wed", 15, 4800},
		{"Thu", 22, 6100},
		{"Fri", 30, 8900},
		{"Sat", 25, 7500},
		{"Sun", 10, 3200},
	}
}

var sampleAppointments = []records.Appointment{
	{ID: "1", UserID: "USR101", UserName: "Sarah Ahmed", UserPhone: "+971 50 123 4567", Date: "2023-12-01", Time: "09:00 AM", Service: "Cardiology Check-up", Status: records.StatusConfirmed, Addons: []string{"VIP Fast Track", "Arabic Translator"}},
	{ID: "2", UserID: "USR102", UserName: "Li Wei", UserPhone: "+86 138 9876 5432", Date: "2023-12-01", Time: "11:30 AM", Service: "Oncology Consultation", Status: records.StatusConfirmed, Addons: []string{"Airport Limousine"}},
	{ID: "3", UserID: "USR103", UserName: "John Smith", UserPhone: "+1 212 555 0198", Date: "2023-12-01", Time: "02:00 PM", Service: "Dental Veneers", Status: records.StatusPending, Addons: []string{"Luxury Hotel Stay"}},
}

// SessionCounter reports occupied session slots.
type SessionCounter interface {
	Count(ctx context.Context) (int64, error)
}

// Bookings is the booking data the dashboard reads.
type Bookings interface {
	ForDate(ctx context.Context, date string) ([]booking.Booking, error)
	Count(ctx context.Context) (int64, error)
}

// Members patches session profiles. Override reports the prior state read
// inside the same atomic update.
type Members interface {
	Override(ctx context.Context, sid string, patch member.Patch) (before, after member.Profile, err error)
}

// Stats are the dashboard counters.
type Stats struct {
	Weekly         []WeeklyStat `json:"weekly"`
	ActiveSessions int64        `json:"activeSessions"`
	TotalRedeemed  int64        `json:"totalRedeemed"`
	Bookings       int64        `json:"bookings"`
	ChatSessions   int          `json:"chatSessions"`
	OpenChats      int          `json:"openChats"`
}

// Override is an administrator change to a member's loyalty standing.
// RecomputeTier derives the tier from the new balance when Tier is unset.
type Override struct {
	Points        *int64       `json:"points,omitempty"`
	Tier          *member.Tier `json:"tier,omitempty"`
	RecomputeTier bool         `json:"recompute_tier"`
	Reason        string       `json:"reason,omitempty"`
}

// Service composes the dashboard collaborators.
type Service struct {
	sessions SessionCounter
	bookings Bookings
	members  Members
	journal  ledger.Journal
	inbox    *Inbox
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires the dashboard.
func NewService(sessions SessionCounter, bookings Bookings, members Members, journal ledger.Journal, inbox *Inbox, logger *slog.Logger) *Service {
	if inbox == nil {
		inbox = NewSampleInbox(nil)
	}
	return &Service{
		sessions: sessions,
		bookings: bookings,
		members:  members,
		journal:  journal,
		inbox:    inbox,
		logger:   logging.OrDiscard(logger),
		now:      time.Now,
	}
}

// Inbox returns the chat inbox.
func (s *Service) Inbox() *Inbox { return s.inbox }

// Stats gathers the counters. A failing counter is logged and reported as zero.
func (s *Service) Stats(ctx context.Context) Stats {
	out := Stats{Weekly: WeeklyStats()}
	if n, err := s.sessions.Count(ctx); err != nil {
		s.logger.Warn("admin.stats sessions", slog.Any("error", err))
	} else {
		out.ActiveSessions = n
	}
	if n, err := s.journal.TotalRedeemed(ctx); err != nil {
		s.logger.Warn("admin.stats redeemed", slog.Any("error", err))
	} else {
		out.TotalRedeemed = n
	}
	if n, err := s.bookings.Count(ctx); err != nil {
		s.logger.Warn("admin.stats bookings", slog.Any("error", err))
	} else {
		out.Bookings = n
	}
	out.ChatSessions, out.OpenChats = s.inbox.Counts()
	return out
}

// Appointments returns the day's schedule: sample appointments plus stored
// bookings for date. An empty date means today.
func (s *Service) Appointments(ctx context.Context, date string) ([]records.Appointment, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		date = s.now().UTC().Format(time.DateOnly)
	}
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", booking.ErrInvalidDraft)
	}
	out := make([]records.Appointment, 0, len(sampleAppointments))
	for _, a := range sampleAppointments {
		if a.Date == date {
			a.Addons = append([]string(nil), a.Addons...)
			out = append(out, a)
		}
	}
	stored, err := s.bookings.ForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list bookings for %s: %w", date, err)
	}
	for _, b := range stored {
		out = append(out, b.Appointment())
	}
	return out, nil
}

// OverrideProfile sets points and/or tier on the profile held by sid and
// journals the balance change as an adjustment.
func (s *Service) OverrideProfile(ctx context.Context, sid string, o Override) (member.Profile, error) {
	if o.Points == nil && o.Tier == nil {
		return member.Profile{}, ErrNothingToOverride
	}
	patch := member.Patch{Points: o.Points, Tier: o.Tier}
	if o.Tier == nil && o.RecomputeTier && o.Points != nil {
		tier := member.TierForPoints(*o.Points)
		patch.Tier = &tier
	}
	before, after, err := s.members.Override(ctx, sid, patch)
	if err != nil {
		return member.Profile{}, err
	}

	delta := after.Points - before.Points
	s.logger.Info("admin.override",
		slog.String("session_id", sid),
		slog.String("user_id", after.ID),
		slog.Int64("delta", delta),
		slog.String("tier", string(after.Tier)),
		slog.String("reason", strings.TrimSpace(o.Reason)),
	)
	if delta != 0 {
		_, err := s.journal.Record(ctx, ledger.Entry{
			ClientTxID:   uuid.NewString(),
			Kind:         ledger.KindAdjustment,
			UserID:       after.ID,
			Points:       delta,
			BalanceAfter: after.Points,
			CreatedAt:    s.now().UTC(),
		})
		if err != nil {
			s.logger.Error("admin.override journal", slog.String("user_id", after.ID), slog.Any("error", err))
		}
	}
	return after, nil
}
