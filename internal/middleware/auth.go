// Package middleware provides HTTP middleware for authentication,
// authorization and request throttling.
package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/avissapr/projectdesk/internal/models"
	"github.com/avissapr/projectdesk/internal/security"
)

// AuthRequired ensures the request carries a valid session. The actor's
// identity and role are placed in the context locals for downstream handlers.
//
// Context Locals Set:
//   - user_id: the authenticated user's ID (int)
//   - user_role: "admin", "manager" or "employee"
//   - user_name: display name (string)
func AuthRequired(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return unauthorized(c)
		}

		userID := sess.Get("user_id")
		if userID == nil {
			return unauthorized(c)
		}

		c.Locals("user_id", userID)
		c.Locals("user_role", sess.Get("user_role"))
		c.Locals("user_name", sess.Get("user_name"))

		return c.Next()
	}
}

// AdminOnly restricts a route to admin users. Must be chained after
// AuthRequired, which sets user_role.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals("user_role") != models.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "admin access required",
			})
		}
		return c.Next()
	}
}

// RateLimit throttles requests per client IP using the given limiter.
func RateLimit(limiter *security.RateLimiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !limiter.Allow(c.IP()) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "rate limit exceeded, try again later",
			})
		}
		return c.Next()
	}
}

// ActorFromContext rebuilds the workflow actor from the locals AuthRequired
// set.
func ActorFromContext(c *fiber.Ctx) models.Actor {
	actor := models.Actor{}
	if id, ok := c.Locals("user_id").(int); ok {
		actor.UserID = id
	}
	if role, ok := c.Locals("user_role").(string); ok {
		actor.Role = role
	}
	return actor
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": "authentication required",
	})
}
