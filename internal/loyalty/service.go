package loyalty

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/asia-medicare/medicare_portal/internal/ledger"
	"github.com/asia-medicare/medicare_portal/internal/logging"
	"github.com/asia-medicare/medicare_portal/internal/member"
	"github.com/asia-medicare/medicare_portal/internal/notification"
	"github.com/asia-medicare/medicare_portal/internal/profile"
)

// ErrInsufficientPoints is the profile sentinel, re-exported so callers of
// this package need not import profile.
var ErrInsufficientPoints = profile.ErrInsufficientPoints

// Members is the balance authority the flow debits against.
type Members interface {
	GetProfile(ctx context.Context, sid, id string) (member.Profile, error)
	Debit(ctx context.Context, sid, userID string, cost int64) (member.Profile, error)
}

// Options tunes flow timing.
type Options struct {
	// ConfirmTTL bounds how long a quote waits for confirmation.
	ConfirmTTL time.Duration
	// SuccessTTL is how long a succeeded flow stays visible before returning to Idle.
	SuccessTTL time.Duration
	// ProcessingDelay simulates the partner booking round trip.
	ProcessingDelay time.Duration
}

// Service runs the redemption flow: Idle -> Confirming -> Processing -> Succeeded -> Idle.
type Service struct {
	members  Members
	flows    FlowStore
	journal  ledger.Journal
	notifier notification.Notifier
	logger   *slog.Logger
	opts     Options
	now      func() time.Time
}

// NewService wires the redemption flow.
func NewService(members Members, flows FlowStore, journal ledger.Journal, notifier notification.Notifier, logger *slog.Logger, opts Options) *Service {
	if opts.ConfirmTTL <= 0 {
		opts.ConfirmTTL = 5 * time.Minute
	}
	if opts.SuccessTTL <= 0 {
		opts.SuccessTTL = 3 * time.Second
	}
	return &Service{
		members:  members,
		flows:    flows,
		journal:  journal,
		notifier: notifier,
		logger:   logging.OrDiscard(logger),
		opts:     opts,
		now:      time.Now,
	}
}

// Offers renders the catalog against the session's balance. Signed-out
// sessions see every control disabled.
func (s *Service) Offers(ctx context.Context, sid string, lang member.Language) []Offer {
	p, err := s.members.GetProfile(ctx, sid, "")
	if err != nil {
		return Offers(nil, lang)
	}
	return Offers(&p.Points, lang)
}

// Status returns the session's flow, Idle when none is active.
func (s *Service) Status(ctx context.Context, sid string) (Quote, error) {
	q, err := s.flows.Load(ctx, sid)
	if errors.Is(err, ErrNoFlow) {
		return Idle(), nil
	}
	if err != nil {
		return Quote{}, err
	}
	return q, nil
}

// Begin opens the confirmation step for a reward. It never touches the balance.
func (s *Service) Begin(ctx context.Context, sid, rewardID string) (Quote, error) {
	p, err := s.members.GetProfile(ctx, sid, "")
	if err != nil {
		return Quote{}, err
	}
	reward, ok := FindReward(rewardID)
	if !ok {
		return Quote{}, fmt.Errorf("%w: %s", ErrUnknownReward, rewardID)
	}
	current, err := s.Status(ctx, sid)
	if err != nil {
		return Quote{}, err
	}
	if current.State == StateProcessing {
		return Quote{}, ErrInProgress
	}
	if !Eligible(p.Points, reward) {
		return Quote{}, ErrInsufficientPoints
	}

	now := s.now().UTC()
	q := Quote{
		ID:            uuid.NewString(),
		SessionID:     sid,
		UserID:        p.ID,
		RewardID:      reward.ID,
		Cost:          reward.Points,
		BalanceBefore: p.Points,
		BalanceAfter:  p.Points - reward.Points,
		State:         StateConfirming,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.opts.ConfirmTTL),
	}
	if err := s.flows.Save(ctx, q, s.opts.ConfirmTTL); err != nil {
		return Quote{}, err
	}
	s.logger.Info("redemption.begin", slog.String("session_id", sid), slog.String("quote_id", q.ID), slog.String("reward_id", q.RewardID))
	return q, nil
}

// Confirm debits the balance for a confirming quote. Re-submission while
// processing fails with ErrInProgress; confirming an already succeeded quote
// returns it unchanged.
func (s *Service) Confirm(ctx context.Context, sid, quoteID string) (Quote, error) {
	q, err := s.flows.Load(ctx, sid)
	if err != nil {
		return Quote{}, err
	}
	if q.ID != quoteID {
		return Quote{}, ErrNoFlow
	}
	switch q.State {
	case StateProcessing:
		return Quote{}, ErrInProgress
	case StateSucceeded:
		return q, nil
	}

	ok, err := s.flows.Acquire(ctx, sid, s.lockTTL())
	if err != nil {
		return Quote{}, err
	}
	if !ok {
		return Quote{}, ErrInProgress
	}
	defer func() {
		if err := s.flows.Release(context.WithoutCancel(ctx), sid); err != nil {
			s.logger.Warn("redemption.release failed", slog.String("session_id", sid), slog.Any("error", err))
		}
	}()

	// Another confirmation may have finished between Load and Acquire.
	if q, err = s.flows.Load(ctx, sid); err != nil {
		return Quote{}, err
	}
	if q.ID != quoteID {
		return Quote{}, ErrNoFlow
	}
	if q.State == StateSucceeded {
		return q, nil
	}
	if q.State != StateConfirming {
		return Quote{}, ErrInProgress
	}

	confirming := q
	q.State = StateProcessing
	if err := s.flows.Save(ctx, q, s.opts.ConfirmTTL); err != nil {
		return Quote{}, err
	}

	if err := s.wait(ctx); err != nil {
		s.restore(ctx, confirming)
		return Quote{}, err
	}

	updated, err := s.members.Debit(ctx, sid, q.UserID, q.Cost)
	if err != nil {
		if errors.Is(err, profile.ErrInsufficientPoints) || errors.Is(err, profile.ErrSessionChanged) || errors.Is(err, profile.ErrNotFound) {
			_ = s.flows.Delete(context.WithoutCancel(ctx), sid)
		} else {
			s.restore(ctx, confirming)
		}
		s.logger.Warn("redemption.debit failed", slog.String("session_id", sid), slog.String("quote_id", q.ID), slog.Any("error", err))
		return Quote{}, err
	}

	s.record(ctx, q, updated.Points)

	q.State = StateSucceeded
	q.BalanceAfter = updated.Points
	q.ExpiresAt = s.now().UTC().Add(s.opts.SuccessTTL)
	if err := s.flows.Save(context.WithoutCancel(ctx), q, s.opts.SuccessTTL); err != nil {
		s.logger.Warn("redemption.save success failed", slog.String("quote_id", q.ID), slog.Any("error", err))
	}
	s.logger.Info("redemption.succeeded", slog.String("session_id", sid), slog.String("quote_id", q.ID), slog.Int64("balance_after", updated.Points))
	return q, nil
}

// Cancel closes a confirming flow. Cancelling with no active flow is a no-op.
func (s *Service) Cancel(ctx context.Context, sid, quoteID string) error {
	q, err := s.flows.Load(ctx, sid)
	if errors.Is(err, ErrNoFlow) {
		return nil
	}
	if err != nil {
		return err
	}
	if quoteID != "" && q.ID != quoteID {
		return ErrNoFlow
	}
	if q.State == StateProcessing {
		return ErrInProgress
	}
	return s.flows.Delete(ctx, sid)
}

// History lists the member's journaled points movements.
func (s *Service) History(ctx context.Context, userID string) ([]ledger.Entry, error) {
	return s.journal.List(ctx, userID)
}

func (s *Service) lockTTL() time.Duration {
	return s.opts.ProcessingDelay + 30*time.Second
}

func (s *Service) wait(ctx context.Context) error {
	if s.opts.ProcessingDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.opts.ProcessingDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Service) restore(ctx context.Context, q Quote) {
	ttl := q.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		_ = s.flows.Delete(context.WithoutCancel(ctx), q.SessionID)
		return
	}
	if err := s.flows.Save(context.WithoutCancel(ctx), q, ttl); err != nil {
		s.logger.Warn("redemption.restore failed", slog.String("quote_id", q.ID), slog.Any("error", err))
	}
}

func (s *Service) record(ctx context.Context, q Quote, balance int64) {
	ctx = context.WithoutCancel(ctx)
	_, err := s.journal.Record(ctx, ledger.Entry{
		ClientTxID:   q.ID,
		Kind:         ledger.KindRedemption,
		UserID:       q.UserID,
		RewardID:     q.RewardID,
		Points:       -q.Cost,
		BalanceAfter: balance,
	})
	if err != nil && !errors.Is(err, ledger.ErrDuplicateEntry) {
		s.logger.Error("redemption.journal failed", slog.String("quote_id", q.ID), slog.Any("error", err))
	}
	if s.notifier == nil {
		return
	}
	body := fmt.Sprintf("redeemed %s for %d points, balance %d", q.RewardID, q.Cost, balance)
	if err := s.notifier.Send(ctx, notification.Message{
		Kind:        notification.KindRedemptionCompleted,
		Destination: q.UserID,
		Body:        body,
	}); err != nil {
		s.logger.Warn("redemption.notify failed", slog.String("quote_id", q.ID), slog.Any("error", err))
	}
}
