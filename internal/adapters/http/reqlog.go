package http

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/formhunt/internal/pkg/logging"
)

// RequestIDLogMiddleware stores the Fiber request ID and a request-scoped
// logger in the user context, so services can log with request_id attached
// via logging.FromContext.
func RequestIDLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid, _ := c.Locals("requestid").(string)
		if rid == "" {
			return c.Next()
		}
		c.SetUserContext(logging.WithRequest(c.UserContext(), rid, slog.Default()))
		return c.Next()
	}
}
