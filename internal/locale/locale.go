// Package locale maps request language preferences onto the supported site languages.
package locale

import (
	"strings"

	"golang.org/x/text/language"

	"github.com/asia-medicare/medicare_portal/internal/member"
)

// LangParam is the query parameter that overrides Accept-Language.
const LangParam = "lang"

var (
	supportedTags = []language.Tag{
		language.English,
		language.Thai,
		language.Arabic,
		language.Chinese,
	}
	supportedLanguages = []member.Language{
		member.LanguageEnglish,
		member.LanguageThai,
		member.LanguageArabic,
		member.LanguageChinese,
	}
	tagMatcher = language.NewMatcher(supportedTags)
)

// Negotiate picks the site language for an explicit choice and an
// Accept-Language header. An explicit supported choice wins; otherwise the
// header is matched; otherwise English.
func Negotiate(explicit, acceptLanguage string) member.Language {
	if l, err := member.ParseLanguage(explicit); err == nil {
		return l
	}
	accept := strings.TrimSpace(acceptLanguage)
	if accept == "" {
		return member.DefaultLanguage
	}
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return member.DefaultLanguage
	}
	_, idx, confidence := tagMatcher.Match(tags...)
	if confidence == language.No {
		return member.DefaultLanguage
	}
	return supportedLanguages[idx]
}

// IsRTL reports whether the language is written right to left.
func IsRTL(l member.Language) bool {
	return l == member.LanguageArabic
}

// Direction returns the HTML dir attribute value for l.
func Direction(l member.Language) string {
	if IsRTL(l) {
		return "rtl"
	}
	return "ltr"
}
