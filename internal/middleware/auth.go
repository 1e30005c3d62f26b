package middleware

import (
	"license-validation-service/internal/auth"

	"github.com/gofiber/fiber/v2"
)

// APIKey rejects requests whose X-API-Key header does not match the
// admin secret. The check runs before any handler touches the store.
func APIKey(gate *auth.Gate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !gate.Authorize(c.Get("X-API-Key")) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid api key",
			})
		}
		return c.Next()
	}
}
