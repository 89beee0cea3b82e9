package middleware

import (
	"log"
	"strings"

	"nictech/internal/models"
	"nictech/internal/services"

	"github.com/gofiber/fiber/v2"
)

// StaffOnly is a Fiber middleware that admits requests bearing a valid
// staff JWT and stores the account claims in the request locals.
func StaffOnly(authService *services.AuthService) fiber.Handler {
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

		tokenString := parts[1]

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		// Store claims in Fiber context for subsequent handlers
		c.Locals("account_id", claims["account_id"])
		c.Locals("username", claims["username"])
		c.Locals("role", claims["role"])

		// Continue to the next handler
		return c.Next()
	}
}

// AdminOnly restricts a route to accounts holding the admin role. It must
// run after StaffOnly, which populates the role local from the token.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		if role != models.RoleAdmin {
			log.Printf("Denied admin route to account %v with role %q", c.Locals("username"), role)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Admin role required",
			})
		}
		return c.Next()
	}
}
