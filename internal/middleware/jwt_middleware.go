package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"shopapi/internal/services"
	"shopapi/pkg/audit"
)

// Locals keys populated by AuthRequired for downstream handlers.
const (
	LocalUserID = "user_id"
	LocalEmail  = "email"
)

// AuthRequired is a Fiber middleware guarding protected routes. A missing or
// malformed Authorization header rejects with 401; a token that fails
// verification rejects with 403. On success the decoded claims are attached
// to the request locals. The check runs independently on every request.
func AuthRequired(authService *services.AuthService, auditLog *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if authHeader == "" || len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			message := "Authorization token missing or invalid"
			auditLog.Record(audit.Entry{
				Level:   audit.LevelWarn,
				Message: message,
				Method:  c.Method(),
				URL:     c.OriginalURL(),
				Status:  fiber.StatusUnauthorized,
			})
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": message,
			})
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			message := "Token verification failed"
			auditLog.Record(audit.Entry{
				Level:   audit.LevelError,
				Message: message + " - " + err.Error(),
				Method:  c.Method(),
				URL:     c.OriginalURL(),
				Status:  fiber.StatusForbidden,
			})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": message,
				"error":   err.Error(),
			})
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalEmail, claims.Email)
		return c.Next()
	}
}
