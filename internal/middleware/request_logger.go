package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"productapi/pkg/logging"
)

// RequestLogger assigns each request a correlation id, echoes it back in the
// X-Request-ID header, and logs the request and its response with timing.
// Responses with status >= 400 are logged at warn level.
func RequestLogger(log *logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := uuid.New().String()
		c.Locals("requestId", requestID)
		c.Set("X-Request-ID", requestID)

		start := time.Now()
		log.Info("request received", logging.Fields{
			"requestId": requestID,
			"method":    c.Method(),
			"path":      c.Path(),
			"query":     string(c.Request().URI().QueryString()),
			"ip":        c.IP(),
		})

		err := c.Next()

		fields := logging.Fields{
			"requestId":    requestID,
			"method":       c.Method(),
			"path":         c.Path(),
			"statusCode":   c.Response().StatusCode(),
			"responseTime": time.Since(start).String(),
		}
		if c.Response().StatusCode() >= fiber.StatusBadRequest {
			log.Warn("response sent", fields)
		} else {
			log.Info("response sent", fields)
		}
		return err
	}
}
