package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/formhunt/internal/pkg/logging"
)

// APIError is a structured error response.
type APIError struct {
	Error     string `json:"error"` // Human-readable message
	Code      string `json:"code"`  // bad_request, not_found, internal_error, ...
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Error:     message,
		Code:      code,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errInternal returns a 500 error. msg must not carry internal detail.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

func errUnavailable(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusServiceUnavailable, "unavailable", msg)
}

var statusCodes = map[int]string{
	fiber.StatusBadRequest:            "bad_request",
	fiber.StatusNotFound:              "not_found",
	fiber.StatusMethodNotAllowed:      "method_not_allowed",
	fiber.StatusRequestTimeout:        "timeout",
	fiber.StatusRequestEntityTooLarge: "payload_too_large",
	fiber.StatusUnprocessableEntity:   "unprocessable_entity",
	fiber.StatusUpgradeRequired:       "upgrade_required",
	fiber.StatusServiceUnavailable:    "unavailable",
}

// ErrorHandler is the application-wide Fiber error handler. Client errors
// pass through with their message; everything else is logged and answered
// with a generic 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		code, ok := statusCodes[fe.Code]
		if !ok {
			code = "client_error"
		}
		return newError(c, fe.Code, code, fe.Message)
	}

	logging.FromContext(c.UserContext()).Error("unhandled error",
		"method", c.Method(),
		"path", c.Path(),
		"error", err,
	)
	return errInternal(c, "internal server error")
}
