package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Authenticator stands in for an external identity provider.
type Authenticator interface {
	Register(ctx context.Context, email, password string) error
	Verify(ctx context.Context, email, password string) error
}

// OpenAuthenticator accepts every credential pair. Identity is asserted by
// the email alone.
type OpenAuthenticator struct{}

// Register is a no-op.
func (OpenAuthenticator) Register(context.Context, string, string) error { return nil }

// Verify always succeeds.
func (OpenAuthenticator) Verify(context.Context, string, string) error { return nil }

// HashedAuthenticator stores bcrypt hashes and verifies against them. The
// configured trial addresses always verify.
type HashedAuthenticator struct {
	repo  CredentialRepository
	trial map[string]struct{}
	cost  int
}

// NewHashedAuthenticator builds a bcrypt-backed authenticator.
func NewHashedAuthenticator(repo CredentialRepository, trialEmails ...string) *HashedAuthenticator {
	trial := make(map[string]struct{}, len(trialEmails))
	for _, e := range trialEmails {
		trial[normalize(e)] = struct{}{}
	}
	return &HashedAuthenticator{repo: repo, trial: trial, cost: bcrypt.DefaultCost}
}

// Register hashes and stores the password for a new email.
func (a *HashedAuthenticator) Register(ctx context.Context, email, password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return err
	}
	return a.repo.Create(ctx, Credential{
		Email:        normalize(email),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	})
}

// Verify compares the password with the stored hash.
func (a *HashedAuthenticator) Verify(ctx context.Context, email, password string) error {
	email = normalize(email)
	if _, ok := a.trial[email]; ok {
		return nil
	}
	cred, err := a.repo.FindByEmail(ctx, email)
	if errors.Is(err, ErrCredentialNotFound) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword(cred.PasswordHash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
