package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/asia-medicare/medicare_portal/internal/identity"
	"github.com/asia-medicare/medicare_portal/internal/logging"
	"github.com/asia-medicare/medicare_portal/internal/member"
	"github.com/asia-medicare/medicare_portal/internal/records"
	"github.com/asia-medicare/medicare_portal/internal/session"
)

const (
	// DemoEmail signs in to the pre-seeded demo profile.
	DemoEmail = "demo@asiamedicare.com"

	signUpPoints int64 = 500
	signInPoints int64 = 100
)

var (
	ErrNotFound           = errors.New("profile not found")
	ErrAuthentication     = errors.New("authentication failed")
	ErrValidation         = errors.New("validation failed")
	ErrInsufficientPoints = errors.New("insufficient points")
	// ErrSessionChanged means the slot now holds a different profile than the caller expected.
	ErrSessionChanged = errors.New("session holds a different profile")
)

// DemoProfile returns the fixed profile used for one-click trial access.
func DemoProfile() member.Profile {
	return member.Profile{
		ID:             "demo-vip-123",
		Name:           "Demo VIP Member",
		Email:          DemoEmail,
		Phone:          "081-234-5678",
		Points:         12_500,
		Tier:           member.TierGold,
		Language:       member.LanguageThai,
		PassportNumber: "AA1234567",
		PhotoURL:       "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?q=80&w=150&auto=format&fit=crop",
	}
}

// AuthState is the sign-in status observed by clients.
type AuthState string

const (
	LoggedOut AuthState = "logged_out"
	LoggedIn  AuthState = "logged_in"
)

// Status describes who, if anyone, occupies a session slot.
type Status struct {
	State   AuthState       `json:"state"`
	Profile *member.Profile `json:"profile,omitempty"`
}

// SignUpInput carries the registration form.
type SignUpInput struct {
	Email    string
	Password string
	FullName string
	Language member.Language
}

// Credentials carries the sign-in form.
type Credentials struct {
	Email    string
	Password string
	Language member.Language
}

// Service is the single entry point for identity and profile data.
type Service struct {
	store   session.Store
	authn   identity.Authenticator
	records records.Source
	logger  *slog.Logger
	newID   func() string
}

// NewService wires a profile service. A nil authenticator accepts all credentials.
func NewService(store session.Store, authn identity.Authenticator, src records.Source, logger *slog.Logger) *Service {
	if authn == nil {
		authn = identity.OpenAuthenticator{}
	}
	if src == nil {
		src = records.NewSampleSource()
	}
	return &Service{
		store:   store,
		authn:   authn,
		records: src,
		logger:  logging.OrDiscard(logger),
		newID:   func() string { return "user-" + uuid.NewString() },
	}
}

// ValidateSignUp checks the registration form before any state changes.
func ValidateSignUp(email, fullName, password, confirmPassword string) error {
	if _, err := parseEmail(email); err != nil {
		return err
	}
	if strings.TrimSpace(fullName) == "" {
		return fmt.Errorf("%w: full name is required", ErrValidation)
	}
	if password != confirmPassword {
		return fmt.Errorf("%w: passwords do not match", ErrValidation)
	}
	return nil
}

// SignUp creates a Bronze profile with the starting balance and stores it in the slot.
func (s *Service) SignUp(ctx context.Context, sid string, in SignUpInput) (member.Profile, error) {
	email, err := parseEmail(in.Email)
	if err != nil {
		return member.Profile{}, err
	}
	name := strings.TrimSpace(in.FullName)
	if name == "" {
		return member.Profile{}, fmt.Errorf("%w: full name is required", ErrValidation)
	}

	if err := s.authn.Register(ctx, email, in.Password); err != nil {
		if errors.Is(err, identity.ErrWeakPassword) {
			return member.Profile{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return member.Profile{}, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}

	profile := member.Profile{
		ID:       s.newID(),
		Name:     name,
		Email:    email,
		Points:   signUpPoints,
		Tier:     member.TierBronze,
		Language: languageOrDefault(in.Language),
	}
	if err := s.store.Put(ctx, sid, profile); err != nil {
		return member.Profile{}, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	s.logger.Info("profile.signup", slog.String("user_id", profile.ID), slog.String("session_id", sid))
	return profile, nil
}

// SignIn stores the demo profile for the demo address, or a freshly
// synthesized profile for any other address, regardless of what the slot held.
func (s *Service) SignIn(ctx context.Context, sid string, creds Credentials) (member.Profile, error) {
	email, err := parseEmail(creds.Email)
	if err != nil {
		return member.Profile{}, err
	}
	if err := s.authn.Verify(ctx, email, creds.Password); err != nil {
		return member.Profile{}, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}

	var profile member.Profile
	if email == DemoEmail {
		profile = DemoProfile()
	} else {
		local, _, _ := strings.Cut(email, "@")
		profile = member.Profile{
			ID:       s.newID(),
			Name:     strings.ToUpper(local),
			Email:    email,
			Points:   signInPoints,
			Tier:     member.TierBronze,
			Language: languageOrDefault(creds.Language),
		}
	}

	if err := s.store.Put(ctx, sid, profile); err != nil {
		return member.Profile{}, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	s.logger.Info("profile.signin", slog.String("user_id", profile.ID), slog.String("session_id", sid))
	return profile, nil
}

// SignOut empties the slot. Signing out twice is not an error.
func (s *Service) SignOut(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	if err := s.store.Clear(ctx, sid); err != nil {
		s.logger.Warn("profile.signout clear failed", slog.String("session_id", sid), slog.Any("error", err))
		return err
	}
	return nil
}

// GetProfile returns the profile in the slot. id is accepted for interface
// symmetry; the slot holds at most one profile. An unavailable store reads
// as ErrNotFound so callers degrade to signed out.
func (s *Service) GetProfile(ctx context.Context, sid, id string) (member.Profile, error) {
	if sid == "" {
		return member.Profile{}, ErrNotFound
	}
	profile, err := s.store.Get(ctx, sid)
	if err != nil {
		if errors.Is(err, session.ErrUnavailable) {
			s.logger.Warn("profile.get store unavailable", slog.String("session_id", sid), slog.Any("error", err))
		}
		return member.Profile{}, ErrNotFound
	}
	return profile, nil
}

// Status reports whether the slot is signed in.
func (s *Service) Status(ctx context.Context, sid string) Status {
	profile, err := s.GetProfile(ctx, sid, "")
	if err != nil {
		return Status{State: LoggedOut}
	}
	return Status{State: LoggedIn, Profile: &profile}
}

// UpdateProfile merges patch onto the stored profile and returns the result.
func (s *Service) UpdateProfile(ctx context.Context, sid, id string, patch member.Patch) (member.Profile, error) {
	updated, err := s.store.Update(ctx, sid, func(current member.Profile) (member.Profile, error) {
		return patch.Apply(current)
	})
	return updated, s.mapStoreError(err)
}

// Override applies an administrator patch and returns the profile as it was
// immediately before the write together with the result. Both come from the
// same atomic update, so the difference is exactly what this call changed.
func (s *Service) Override(ctx context.Context, sid string, patch member.Patch) (before, after member.Profile, err error) {
	after, err = s.store.Update(ctx, sid, func(current member.Profile) (member.Profile, error) {
		before = current
		return patch.Apply(current)
	})
	if err != nil {
		return member.Profile{}, member.Profile{}, s.mapStoreError(err)
	}
	return before, after, nil
}

// EditDetails applies a member-initiated patch. Points and tier are not
// editable by members.
func (s *Service) EditDetails(ctx context.Context, sid, id string, patch member.Patch) (member.Profile, error) {
	if patch.TouchesLoyalty() {
		return member.Profile{}, fmt.Errorf("%w: points and tier cannot be edited", ErrValidation)
	}
	if patch.Empty() {
		return member.Profile{}, fmt.Errorf("%w: nothing to update", ErrValidation)
	}
	return s.UpdateProfile(ctx, sid, id, patch)
}

// Debit subtracts cost from the balance in one atomic conditional step. It
// fails with ErrInsufficientPoints when the balance is below cost, and with
// ErrSessionChanged when the slot no longer holds userID.
func (s *Service) Debit(ctx context.Context, sid, userID string, cost int64) (member.Profile, error) {
	if cost <= 0 {
		return member.Profile{}, fmt.Errorf("%w: cost must be positive", ErrValidation)
	}
	updated, err := s.store.Update(ctx, sid, func(current member.Profile) (member.Profile, error) {
		if current.ID != userID {
			return current, ErrSessionChanged
		}
		if current.Points < cost {
			return current, ErrInsufficientPoints
		}
		current.Points -= cost
		return current, nil
	})
	return updated, s.mapStoreError(err)
}

// ListAppointments returns the member's appointments.
func (s *Service) ListAppointments(ctx context.Context, userID string) ([]records.Appointment, error) {
	return s.records.Appointments(ctx, userID)
}

// ListMedicalRecords returns the member's medical history.
func (s *Service) ListMedicalRecords(ctx context.Context, userID string) ([]records.MedicalRecord, error) {
	return s.records.MedicalRecords(ctx, userID)
}

func (s *Service) mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, session.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, member.ErrInvalidField):
		return fmt.Errorf("%w: %v", ErrValidation, err)
	default:
		return err
	}
}

func parseEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrValidation)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email, "@") {
		return "", fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	return email, nil
}

func languageOrDefault(l member.Language) member.Language {
	if l.Valid() {
		return l
	}
	return member.DefaultLanguage
}
