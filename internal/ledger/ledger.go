package ledger

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrDuplicateEntry indicates the client transaction identifier was already
	// journaled for the same kind and the operation should be treated as idempotent.
	ErrDuplicateEntry = errors.New("duplicate points entry")

	// ErrInvalidEntry rejects entries missing an identifier or a user.
	ErrInvalidEntry = errors.New("invalid points entry")
)

// Kind classifies a points movement.
type Kind string

const (
	// KindRedemption is a member spending points on a reward. Points is negative.
	KindRedemption Kind = "redemption"
	// KindAdjustment is an administrator override. Points is the signed delta.
	KindAdjustment Kind = "adjustment"
)

// Entry is one journaled points movement.
type Entry struct {
	ID           string    `json:"id"`
	ClientTxID   string    `json:"clientTxId"`
	Kind         Kind      `json:"kind"`
	UserID       string    `json:"userId"`
	RewardID     string    `json:"rewardId,omitempty"`
	Points       int64     `json:"points"`
	BalanceAfter int64     `json:"balanceAfter"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Journal records points movements. Balances themselves live on the profile;
// the journal is the audit trail and the source of redemption statistics.
type Journal interface {
	// Record stores the entry. The existing entry and ErrDuplicateEntry are
	// returned when (Kind, ClientTxID) was already recorded.
	Record(ctx context.Context, entry Entry) (Entry, error)
	// List returns the user's entries, newest first.
	List(ctx context.Context, userID string) ([]Entry, error)
	// TotalRedeemed sums the points spent on redemptions across all users.
	TotalRedeemed(ctx context.Context) (int64, error)
}

func validate(entry Entry) error {
	if entry.ClientTxID == "" || entry.UserID == "" || entry.Kind == "" {
		return ErrInvalidEntry
	}
	return nil
}
