package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// UserIDHeader is set by the authenticating proxy in front of this service
const UserIDHeader = "X-User-ID"

// UserIDKey is where the caller's identity lives in c.Locals
const UserIDKey = "user_id"

// Protected requires an identity established upstream. Authentication
// itself happens before the request reaches us.
func Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1. Get identity from Header
		userID := strings.TrimSpace(c.Get(UserIDHeader))
		if userID == "" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}

		// 2. Save it to Context (So handler knows who is calling).
		// Header values point into fiber's reused buffer, so keep a copy.
		c.Locals(UserIDKey, utils.CopyString(userID))

		return c.Next()
	}
}

// UserID returns the identity stored by Protected
func UserID(c *fiber.Ctx) string {
	userID, _ := c.Locals(UserIDKey).(string)
	return userID
}
