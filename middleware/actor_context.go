// middleware/actor_context.go
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/rs/zerolog"
)

const actorIDKey = "actor_id"

// ActorContextMiddleware requires the signed-in user's id in X-User-ID and
// attaches it to the request for handlers.
func ActorContextMiddleware(logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// The header is backed by the request buffer; the id outlives the request.
		actorID := utils.CopyString(strings.TrimSpace(c.Get("X-User-ID")))
		if actorID == "" {
			logger.Warn().Str("path", c.Path()).Msg("❌ X-User-ID required but missing")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "missing X-User-ID",
			})
		}

		c.Locals(actorIDKey, actorID)
		logger.Debug().Str("actor_id", actorID).Str("path", c.Path()).Msg("👤 actor context")
		return c.Next()
	}
}

// ActorID returns the id stored by ActorContextMiddleware, or "".
func ActorID(c *fiber.Ctx) string {
	id, _ := c.Locals(actorIDKey).(string)
	return id
}
