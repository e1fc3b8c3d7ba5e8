package middleware

import (
	"errors"
	"log"
	"strings"

	"certachain/internal/models"
	"certachain/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Keys of the values AuthRequired stores in the Fiber context.
const (
	LocalUserID = "user_id"
	LocalEmail  = "email"
	LocalRole   = "role"
)

// AuthRequired is a Fiber middleware to check for a valid JWT token.
// The token must also belong to the registered identity that is currently
// signed in, so a logout invalidates tokens issued before it.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		claims, err := authService.Authenticate(parts[1])
		if errors.Is(err, services.ErrUnauthenticated) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Session has ended, please log in again",
			})
		}
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalEmail, claims.Email)
		c.Locals(LocalRole, claims.Role)
		return c.Next()
	}
}

// RoleRequired only lets identities with the given role through.
// It must run after AuthRequired.
func RoleRequired(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		got, _ := c.Locals(LocalRole).(models.Role)
		if got != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Access restricted to the " + string(role) + " role",
			})
		}
		return c.Next()
	}
}
