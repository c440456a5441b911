package middleware

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders handler errors as {"error": ..., "request_id": ...}.
// Errors that are not *fiber.Error become 500s without leaking their text.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := http.StatusInternalServerError
	msg := http.StatusText(status)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
		msg = fe.Message
	}
	body := fiber.Map{"error": msg}
	if id := GetRequestID(c); id != "" {
		body["request_id"] = id
	}
	return c.Status(status).JSON(body)
}
