// Package session persists the profile attached to each browser session slot.
// A slot holds zero or one profile; there is no expiry.
package session

import (
	"context"
	"errors"

	"github.com/asia-medicare/medicare_portal/internal/member"
)

var (
	// ErrNotFound means the slot is empty, or its stored blob could not be decoded.
	ErrNotFound = errors.New("session not found")
	// ErrUnavailable wraps failures of the underlying storage.
	ErrUnavailable = errors.New("session store unavailable")
)

// UpdateFunc computes the next profile from the stored one. Returning an error
// aborts the update and leaves the slot untouched.
type UpdateFunc func(current member.Profile) (member.Profile, error)

// Store is durable storage of at most one profile per session id.
type Store interface {
	// Put overwrites the slot unconditionally.
	Put(ctx context.Context, sid string, profile member.Profile) error
	// Get returns the stored profile or ErrNotFound.
	Get(ctx context.Context, sid string) (member.Profile, error)
	// Clear empties the slot. Clearing an empty slot is not an error.
	Clear(ctx context.Context, sid string) error
	// Update atomically applies fn to the stored profile. ErrNotFound when empty.
	Update(ctx context.Context, sid string, fn UpdateFunc) (member.Profile, error)
	// Count returns the number of occupied slots.
	Count(ctx context.Context) (int64, error)
}

type callbackError struct{ err error }

func (e callbackError) Error() string { return e.err.Error() }
func (e callbackError) Unwrap() error { return e.err }
