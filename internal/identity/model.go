package identity

import (
	"errors"
	"time"
)

var (
	// ErrInvalidCredentials means the email/password pair was rejected.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAlreadyRegistered means credentials already exist for the email.
	ErrAlreadyRegistered = errors.New("email already registered")
	// ErrWeakPassword means the password does not meet the minimum policy.
	ErrWeakPassword = errors.New("password must be at least 8 characters")
	// ErrCredentialNotFound is returned by repositories for unknown emails.
	ErrCredentialNotFound = errors.New("credential not found")
)

// MinPasswordLength is enforced by the hashed authenticator.
const MinPasswordLength = 8

// Credential is the stored secret for one login email.
type Credential struct {
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}
