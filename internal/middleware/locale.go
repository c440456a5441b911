package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/asia-medicare/medicare_portal/internal/locale"
	"github.com/asia-medicare/medicare_portal/internal/member"
)

const localLanguage = "language"

// Locale negotiates the response language from ?lang= and Accept-Language.
func Locale() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lang := locale.Negotiate(c.Query(locale.LangParam), c.Get(fiber.HeaderAcceptLanguage))
		c.Locals(localLanguage, lang)
		c.Set(fiber.HeaderContentLanguage, string(lang))
		return c.Next()
	}
}

// Language returns the negotiated language, English when Locale did not run.
func Language(c *fiber.Ctx) member.Language {
	if l, ok := c.Locals(localLanguage).(member.Language); ok {
		return l
	}
	return member.DefaultLanguage
}
