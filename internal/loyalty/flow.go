package loyalty

import (
	"context"
	"errors"
	"time"
)

// State is a step of the redemption flow.
type State string

const (
	StateIdle       State = "idle"
	StateConfirming State = "confirming"
	StateProcessing State = "processing"
	StateSucceeded  State = "succeeded"
)

var (
	ErrUnknownReward = errors.New("unknown reward")
	// ErrNoFlow means there is no pending quote for the session, or the quote
	// id does not match it.
	ErrNoFlow = errors.New("no pending redemption")
	// ErrInProgress rejects re-submission while a redemption is processing.
	ErrInProgress = errors.New("redemption already in progress")
)

// Quote is the state of one session's redemption flow. A session has at most
// one quote; absence means Idle.
type Quote struct {
	ID            string    `json:"id,omitempty"`
	SessionID     string    `json:"-"`
	UserID        string    `json:"userId,omitempty"`
	RewardID      string    `json:"rewardId,omitempty"`
	Cost          int64     `json:"cost,omitempty"`
	BalanceBefore int64     `json:"balanceBefore,omitempty"`
	BalanceAfter  int64     `json:"balanceAfter"`
	State         State     `json:"state"`
	CreatedAt     time.Time `json:"createdAt"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// Idle is the quote reported when no flow is active.
func Idle() Quote { return Quote{State: StateIdle} }

// FlowStore keeps each session's quote with an expiry and guards processing
// with a lock.
type FlowStore interface {
	// Save stores the quote for q.SessionID, expiring after ttl.
	Save(ctx context.Context, q Quote, ttl time.Duration) error
	// Load returns the session's quote or ErrNoFlow.
	Load(ctx context.Context, sid string) (Quote, error)
	// Delete removes the quote. Deleting a missing quote is not an error.
	Delete(ctx context.Context, sid string) error
	// Acquire takes the processing lock. ok is false when already held.
	Acquire(ctx context.Context, sid string, ttl time.Duration) (ok bool, err error)
	// Release drops the processing lock.
	Release(ctx context.Context, sid string) error
}
