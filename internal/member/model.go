package member

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidField reports a profile field that fails validation.
var ErrInvalidField = errors.New("invalid profile field")

// Language is one of the locales the portal is translated into.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageThai    Language = "th"
	LanguageArabic  Language = "ar"
	LanguageChinese Language = "zh"

	// DefaultLanguage is used when no supported locale was requested.
	DefaultLanguage = LanguageEnglish
)

// Languages lists the supported locales in display order.
func Languages() []Language {
	return []Language{LanguageEnglish, LanguageThai, LanguageArabic, LanguageChinese}
}

// Valid reports whether l is a supported locale.
func (l Language) Valid() bool {
	switch l {
	case LanguageEnglish, LanguageThai, LanguageArabic, LanguageChinese:
		return true
	}
	return false
}

// ParseLanguage validates a locale code.
func ParseLanguage(s string) (Language, error) {
	l := Language(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("%w: unsupported language %q", ErrInvalidField, s)
	}
	return l, nil
}

// Profile is the single record persisted per session slot. The JSON field
// names are the stored blob format.
type Profile struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone"`
	Points         int64    `json:"points"`
	Tier           Tier     `json:"tier"`
	Language       Language `json:"language"`
	PassportNumber string   `json:"passportNumber,omitempty"`
	PhotoURL       string   `json:"photoUrl,omitempty"`
}

// Patch carries a partial profile update. Nil fields are left untouched.
// Email is deliberately absent: it is the immutable login key.
type Patch struct {
	Name           *string   `json:"name,omitempty"`
	Phone          *string   `json:"phone,omitempty"`
	PassportNumber *string   `json:"passportNumber,omitempty"`
	PhotoURL       *string   `json:"photoUrl,omitempty"`
	Language       *Language `json:"language,omitempty"`
	Points         *int64    `json:"points,omitempty"`
	Tier           *Tier     `json:"tier,omitempty"`
}

// TouchesLoyalty reports whether the patch changes the point balance or tier.
func (p Patch) TouchesLoyalty() bool {
	return p.Points != nil || p.Tier != nil
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Phone == nil && p.PassportNumber == nil &&
		p.PhotoURL == nil && p.Language == nil && !p.TouchesLoyalty()
}

// Apply merges the patch onto current and returns the result. current is not modified.
func (p Patch) Apply(current Profile) (Profile, error) {
	next := current
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return Profile{}, fmt.Errorf("%w: name must not be empty", ErrInvalidField)
		}
		next.Name = name
	}
	if p.Phone != nil {
		next.Phone = strings.TrimSpace(*p.Phone)
	}
	if p.PassportNumber != nil {
		next.PassportNumber = strings.ToUpper(strings.TrimSpace(*p.PassportNumber))
	}
	if p.PhotoURL != nil {
		next.PhotoURL = strings.TrimSpace(*p.PhotoURL)
	}
	if p.Language != nil {
		if !p.Language.Valid() {
			return Profile{}, fmt.Errorf("%w: unsupported language %q", ErrInvalidField, *p.Language)
		}
		next.Language = *p.Language
	}
	if p.Points != nil {
		if *p.Points < 0 {
			return Profile{}, fmt.Errorf("%w: points must not be negative", ErrInvalidField)
		}
		next.Points = *p.Points
	}
	if p.Tier != nil {
		if !p.Tier.Valid() {
			return Profile{}, fmt.Errorf("%w: unknown tier %q", ErrInvalidField, *p.Tier)
		}
		next.Tier = *p.Tier
	}
	return next, nil
}
