package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// RoleMember is granted to every signed-in profile.
	RoleMember = "member"
	// RoleAdmin is granted to allow-listed emails at sign-in.
	RoleAdmin = "admin"

	issuer = "asia-medicare-portal"
)

var (
	ErrTokenExpired = errors.New("session token has expired")
	ErrTokenInvalid = errors.New("session token is invalid")
)

// Claims are carried by the session token. SessionID addresses the profile
// slot; Role is decided by the server when the token is issued.
type Claims struct {
	SessionID string `json:"sid"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the claims grant the administrator role.
func (c Claims) IsAdmin() bool { return c.Role == RoleAdmin }

// Token is an issued session token.
type Token struct {
	Value     string    `json:"token"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Issuer signs and verifies session tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	admins map[string]struct{}
	now    func() time.Time
}

// NewIssuer builds an HS256 token issuer. adminEmails is the allow-list for RoleAdmin.
func NewIssuer(secret string, ttl time.Duration, adminEmails []string) *Issuer {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		admins[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, admins: admins, now: time.Now}
}

// NewSessionID returns a fresh opaque slot identifier.
func NewSessionID() string { return uuid.NewString() }

// RoleFor returns the role the server grants to email.
func (i *Issuer) RoleFor(email string) string {
	if _, ok := i.admins[strings.ToLower(strings.TrimSpace(email))]; ok {
		return RoleAdmin
	}
	return RoleMember
}

// Issue signs a token binding sessionID to the role granted to email.
func (i *Issuer) Issue(sessionID, email string) (Token, error) {
	now := i.now()
	exp := now.Add(i.ttl)
	role := i.RoleFor(email)
	claims := Claims{
		SessionID: sessionID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return Token{}, err
	}
	return Token{Value: signed, SessionID: sessionID, Role: role, ExpiresAt: exp}, nil
}

// Parse verifies the signature and expiry and returns the claims.
func (i *Issuer) Parse(value string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(value, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return i.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(i.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if !token.Valid || claims.SessionID == "" {
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}
