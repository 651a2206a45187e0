package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"shopapi/pkg/audit"
)

// LocalRequestID is the locals key holding the per-request correlation id.
const LocalRequestID = "request_id"

// RequestAudit tags every request with a correlation id and records one
// audit entry for the incoming request and one for the completed response.
func RequestAudit(auditLog *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := uuid.New().String()
		c.Locals(LocalRequestID, requestID)
		c.Set("X-Request-ID", requestID)

		auditLog.Record(audit.Entry{
			Level:     audit.LevelInfo,
			Message:   fmt.Sprintf("Incoming request: %s %s", c.Method(), c.OriginalURL()),
			Method:    c.Method(),
			URL:       c.OriginalURL(),
			RequestID: requestID,
		})

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		auditLog.Record(audit.Entry{
			Level:     audit.LevelInfo,
			Message:   fmt.Sprintf("Response: %d", status),
			Method:    c.Method(),
			URL:       c.OriginalURL(),
			Status:    status,
			RequestID: requestID,
		})
		return err
	}
}
