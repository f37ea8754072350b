package middleware

import (
	"log"
	"strings"

	"obrolan/internal/services"

	"github.com/gofiber/fiber/v2"
)

// IdentityRequired resolves the caller's identity for privileged routes. The
// legacy client sends a bare X-Username header; newer clients send the login
// JWT as "Bearer <token>", which cannot be spoofed. Either form sets
// c.Locals("username"); neither present is a 403 in the shared envelope.
func IdentityRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if username := c.Get("X-Username"); username != "" {
			c.Locals("username", username)
			return c.Next()
		}

		authHeader := c.Get("Authorization")
		if authHeader != "" {
			// Expected format: "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				claims, err := authService.ValidateToken(parts[1])
				if err != nil {
					log.Printf("JWT validation failed: %v", err)
					return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
						"success": false,
						"error":   "invalid or expired token",
					})
				}
				if username, ok := claims["username"].(string); ok {
					c.Locals("username", username)
					return c.Next()
				}
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "caller identity is required",
		})
	}
}
