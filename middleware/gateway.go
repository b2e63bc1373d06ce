// middleware/gateway.go
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"leetcode-companion/logger"
)

// ShellAuthMiddleware only admits requests carrying the shell's Bearer token.
// An empty token disables the check, for local development.
func ShellAuthMiddleware(expectedToken string) fiber.Handler {
	if expectedToken == "" {
		logger.Log.Warn("⚠️  SHELL_TOKEN not set, dispatcher accepts unauthenticated requests")
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			logger.Log.Warnf("🚫 [SHELL_AUTH] Missing Authorization header for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "shell authentication token missing",
			})
		}

		// Parse "Bearer <token>"; a raw token is accepted as well
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token != expectedToken {
			logger.Log.Warnf("❌ [SHELL_AUTH] Invalid token for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid shell authentication token",
			})
		}
		return c.Next()
	}
}
