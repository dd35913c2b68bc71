// middleware/local_auth.go
package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// LocalAuthMiddleware validates the Bearer token the UI shell sends to the
// companion API. An empty expected token disables the check, which is only
// acceptable while the listener is bound to loopback.
func LocalAuthMiddleware(expectedToken string, logger zerolog.Logger) fiber.Handler {
	if expectedToken == "" {
		logger.Warn().Msg("⚠️  LOCAL_API_TOKEN is not set, local API accepts unauthenticated requests")
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			logger.Warn().Str("path", c.Path()).Msg("🚫 missing Authorization header")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "local API token missing",
			})
		}

		// Parse "Bearer <token>"; a raw token is accepted too.
		token := strings.TrimPrefix(authHeader, "Bearer ")

		if subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
			logger.Warn().Str("path", c.Path()).Msg("❌ invalid local API token")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "invalid local API token",
			})
		}
		return c.Next()
	}
}
