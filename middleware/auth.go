// middleware/auth.go
package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"leetcode-companion/logger"
)

const HeaderRequestID = "X-Request-ID"

// RequestContextMiddleware tags each request with an id and writes one access log line.
func RequestContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Locals("request_id", requestID)
		c.Set(HeaderRequestID, requestID)

		start := time.Now()
		err := c.Next()

		entry := logger.Log.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     c.Response().StatusCode(),
			"duration":   time.Since(start).String(),
		})
		if err != nil {
			entry.WithError(err).Error("👤 [REQUEST] failed")
		} else {
			entry.Debug("👤 [REQUEST] served")
		}
		return err
	}
}
